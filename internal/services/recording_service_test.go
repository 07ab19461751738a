package services

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/husnainkhadir/sop-generator/internal/utils"
)

type stubUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newStubUploader() *stubUploader { return &stubUploader{objects: make(map[string][]byte)} }

func (u *stubUploader) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.mu.Lock()
	u.objects[objectName] = data
	u.mu.Unlock()
	return "https://storage.example.com/" + objectName, nil
}

func TestRecordingLifecycle(t *testing.T) {
	up := newStubUploader()
	svc := NewRecordingService(up, nil)
	ctx := context.Background()

	id, err := svc.Start(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, svc.AppendFragment(ctx, id, []byte("frag1-")))
	require.NoError(t, svc.AppendFragment(ctx, id, []byte("frag2")))

	out, err := svc.Finish(ctx, id, "data:image/png;base64,abc")
	require.NoError(t, err)
	require.Equal(t, "https://storage.example.com/recordings/"+id+".webm", out.RecordingURL)
	require.Equal(t, "data:image/png;base64,abc", out.Screenshot)
	require.Equal(t, 11, out.SizeBytes)
	require.Equal(t, []byte("frag1-frag2"), up.objects["recordings/"+id+".webm"])
}

func TestFinishWithoutFragmentsUploadsEmptyArtifact(t *testing.T) {
	up := newStubUploader()
	svc := NewRecordingService(up, nil)
	ctx := context.Background()

	id, err := svc.Start(ctx)
	require.NoError(t, err)

	out, err := svc.Finish(ctx, id, "")
	require.NoError(t, err)
	require.Zero(t, out.SizeBytes)
}

func TestRecordingUnknownIDIsNotFound(t *testing.T) {
	svc := NewRecordingService(newStubUploader(), nil)
	ctx := context.Background()

	err := svc.AppendFragment(ctx, "missing", []byte("x"))
	require.True(t, utils.IsCode(err, utils.CodeNotFound))

	_, err = svc.Finish(ctx, "missing", "")
	require.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestFinishedRecordingRejectsFurtherUse(t *testing.T) {
	svc := NewRecordingService(newStubUploader(), nil)
	ctx := context.Background()

	id, err := svc.Start(ctx)
	require.NoError(t, err)

	_, err = svc.Finish(ctx, id, "")
	require.NoError(t, err)

	err = svc.AppendFragment(ctx, id, []byte("late"))
	require.True(t, utils.IsCode(err, utils.CodeNotFound))

	_, err = svc.Finish(ctx, id, "")
	require.True(t, utils.IsCode(err, utils.CodeNotFound))
}
