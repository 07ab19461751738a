package services

import (
	"bytes"
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/husnainkhadir/sop-generator/internal/recording"
	"github.com/husnainkhadir/sop-generator/internal/storage"
	"github.com/husnainkhadir/sop-generator/internal/utils"
)

// FinishedRecording is the deliverable produced when assembly stops.
type FinishedRecording struct {
	RecordingID  string `json:"recording_id"`
	RecordingURL string `json:"recording_url"`
	Screenshot   string `json:"screenshot,omitempty"`
	SizeBytes    int    `json:"size_bytes"`
}

type RecordingService interface {
	Start(ctx context.Context) (recordingID string, err error)
	AppendFragment(ctx context.Context, recordingID string, fragment []byte) error
	// Finish stops assembly, uploads the blob, and returns the deliverable.
	// The assembler is removed whether or not the upload succeeds.
	Finish(ctx context.Context, recordingID, screenshot string) (*FinishedRecording, error)
}

type recordingService struct {
	uploader storage.Uploader
	log      *logrus.Logger

	mu         sync.Mutex
	assemblers map[string]*recording.Assembler
}

func NewRecordingService(uploader storage.Uploader, log *logrus.Logger) RecordingService {
	if log == nil {
		log = logrus.New()
	}
	return &recordingService{
		uploader:   uploader,
		log:        log,
		assemblers: make(map[string]*recording.Assembler),
	}
}

func (s *recordingService) Start(ctx context.Context) (string, error) {
	id := uuid.NewString()

	s.mu.Lock()
	s.assemblers[id] = recording.NewAssembler()
	s.mu.Unlock()

	return id, nil
}

func (s *recordingService) AppendFragment(ctx context.Context, recordingID string, fragment []byte) error {
	const op = "RecordingService.AppendFragment"

	asm, ok := s.lookup(recordingID)
	if !ok {
		return utils.E(utils.CodeNotFound, op, "recording not found", nil)
	}
	if err := asm.Append(fragment); err != nil {
		return utils.E(utils.CodeConflict, op, "recording already finished", err)
	}
	return nil
}

func (s *recordingService) Finish(ctx context.Context, recordingID, screenshot string) (*FinishedRecording, error) {
	const op = "RecordingService.Finish"

	s.mu.Lock()
	asm, ok := s.assemblers[recordingID]
	delete(s.assemblers, recordingID)
	s.mu.Unlock()

	if !ok {
		return nil, utils.E(utils.CodeNotFound, op, "recording not found", nil)
	}

	if screenshot != "" {
		_ = asm.SetScreenshot(screenshot)
	}
	artifact, err := asm.Stop()
	if err != nil {
		return nil, utils.E(utils.CodeConflict, op, "recording already finished", err)
	}

	objectName := "recordings/" + recordingID + ".webm"
	url, err := s.uploader.Upload(ctx, objectName, "video/webm", bytes.NewReader(artifact.Data))
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to upload recording", err)
	}

	return &FinishedRecording{
		RecordingID:  recordingID,
		RecordingURL: url,
		Screenshot:   artifact.Screenshot,
		SizeBytes:    len(artifact.Data),
	}, nil
}

func (s *recordingService) lookup(id string) (*recording.Assembler, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	asm, ok := s.assemblers[id]
	return asm, ok
}
