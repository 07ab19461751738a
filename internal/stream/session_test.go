package stream

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fakeSTT struct {
	mu       sync.Mutex
	payloads [][]byte
	texts    []string // returned per call, in order; "" after exhaustion
	err      error
	gate     chan struct{} // if set, Transcribe blocks until the gate closes
}

func (f *fakeSTT) Transcribe(ctx context.Context, audio []byte, language string) (string, float64, error) {
	// Record before blocking so tests can observe an in-flight call.
	f.mu.Lock()
	cp := make([]byte, len(audio))
	copy(cp, audio)
	f.payloads = append(f.payloads, cp)
	n := len(f.payloads)
	err := f.err
	f.mu.Unlock()

	if f.gate != nil {
		<-f.gate
	}

	if err != nil {
		return "", 0, err
	}
	if n <= len(f.texts) {
		return f.texts[n-1], 0.9, nil
	}
	return "", 0.9, nil
}

func (f *fakeSTT) calls() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.payloads))
	copy(out, f.payloads)
	return out
}

type emitted struct {
	kind string // transcription|error
	text string
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (f *fakeEmitter) EmitTranscription(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emitted{kind: "transcription", text: text})
	return nil
}

func (f *fakeEmitter) EmitError(message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emitted{kind: "error", text: message})
	return nil
}

func (f *fakeEmitter) all() []emitted {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]emitted, len(f.events))
	copy(out, f.events)
	return out
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func testPolicy() Policy {
	return Policy{FlushThreshold: 3, FlushTimeout: 5 * time.Second, Language: "en-US"}
}

func TestThresholdTriggersSingleFlush(t *testing.T) {
	stt := &fakeSTT{texts: []string{"hello world"}}
	em := &fakeEmitter{}
	reg := NewRegistry(stt, testPolicy(), nil, testLogger())

	s, err := reg.Open("conn-1", em)
	require.NoError(t, err)

	require.NoError(t, s.Append([]byte("A"), false))
	require.NoError(t, s.Append([]byte("B"), false))
	require.Empty(t, stt.calls(), "no flush before threshold")

	require.NoError(t, s.Append([]byte("C"), false))

	require.Eventually(t, func() bool { return len(em.all()) == 1 }, time.Second, 5*time.Millisecond)
	calls := stt.calls()
	require.Len(t, calls, 1)
	require.Equal(t, []byte("ABC"), calls[0], "flush covers all buffered chunks in order")
	require.Equal(t, emitted{kind: "transcription", text: "hello world"}, em.all()[0])
}

func TestCloseWithoutFinalDiscardsBufferedAudio(t *testing.T) {
	stt := &fakeSTT{}
	em := &fakeEmitter{}
	reg := NewRegistry(stt, testPolicy(), nil, testLogger())

	s, err := reg.Open("conn-1", em)
	require.NoError(t, err)

	require.NoError(t, s.Append([]byte("A"), false))
	require.NoError(t, s.Append([]byte("B"), false))
	reg.Close("conn-1")

	time.Sleep(50 * time.Millisecond)
	require.Empty(t, stt.calls(), "unflushed trailing chunks are discarded")
	require.Empty(t, em.all())
	require.Zero(t, reg.Len())
}

func TestFinalMarkerFlushesBelowThreshold(t *testing.T) {
	stt := &fakeSTT{texts: []string{"done"}}
	em := &fakeEmitter{}
	reg := NewRegistry(stt, testPolicy(), nil, testLogger())

	s, err := reg.Open("conn-1", em)
	require.NoError(t, err)

	require.NoError(t, s.Append([]byte("A"), false))
	require.NoError(t, s.Append([]byte("B"), true))

	require.Eventually(t, func() bool { return len(em.all()) == 1 }, time.Second, 5*time.Millisecond)
	calls := stt.calls()
	require.Len(t, calls, 1)
	require.Equal(t, []byte("AB"), calls[0])
}

func TestFinalMarkerWithEmptyBufferSkipsBackend(t *testing.T) {
	stt := &fakeSTT{}
	em := &fakeEmitter{}
	reg := NewRegistry(stt, testPolicy(), nil, testLogger())

	s, err := reg.Open("conn-1", em)
	require.NoError(t, err)

	require.NoError(t, s.Append(nil, true))

	time.Sleep(50 * time.Millisecond)
	require.Empty(t, stt.calls())
	require.Empty(t, em.all())
}

func TestLiveCaptionScenario(t *testing.T) {
	// Chunks A,B,C hit the threshold and flush as one window; the final
	// chunk D flushes alone; events arrive in flush order.
	stt := &fakeSTT{texts: []string{"hello world", "done"}}
	em := &fakeEmitter{}
	reg := NewRegistry(stt, testPolicy(), nil, testLogger())

	s, err := reg.Open("conn-1", em)
	require.NoError(t, err)

	for _, c := range []string{"A", "B", "C"} {
		require.NoError(t, s.Append([]byte(c), false))
	}
	require.Eventually(t, func() bool { return len(em.all()) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Append([]byte("D"), true))
	require.Eventually(t, func() bool { return len(em.all()) == 2 }, time.Second, 5*time.Millisecond)

	calls := stt.calls()
	require.Len(t, calls, 2)
	require.Equal(t, []byte("ABC"), calls[0])
	require.Equal(t, []byte("D"), calls[1])

	events := em.all()
	require.Equal(t, "hello world", events[0].text)
	require.Equal(t, "done", events[1].text)

	reg.Close("conn-1")
	require.ErrorIs(t, s.Append([]byte("E"), false), ErrSessionClosed)
}

func TestInFlightFlushDefersNextTrigger(t *testing.T) {
	gate := make(chan struct{})
	stt := &fakeSTT{texts: []string{"first", "second"}, gate: gate}
	em := &fakeEmitter{}
	reg := NewRegistry(stt, testPolicy(), nil, testLogger())

	s, err := reg.Open("conn-1", em)
	require.NoError(t, err)

	for _, c := range []string{"1", "2", "3"} {
		require.NoError(t, s.Append([]byte(c), false))
	}
	// first flush is now blocked inside the backend call
	require.Eventually(t, func() bool { return len(stt.calls()) == 1 }, time.Second, 5*time.Millisecond)

	for _, c := range []string{"4", "5", "6"} {
		require.NoError(t, s.Append([]byte(c), false))
	}
	time.Sleep(50 * time.Millisecond)
	require.Len(t, stt.calls(), 1, "no second flush while one is in flight")

	close(gate)
	require.Eventually(t, func() bool { return len(em.all()) == 2 }, time.Second, 5*time.Millisecond)

	calls := stt.calls()
	require.Len(t, calls, 2)
	require.Equal(t, []byte("123"), calls[0])
	require.Equal(t, []byte("456"), calls[1], "deferred flush covers only unflushed chunks")

	events := em.all()
	require.Equal(t, "first", events[0].text)
	require.Equal(t, "second", events[1].text)
}

func TestBackendFailureEmitsErrorAndDropsWindow(t *testing.T) {
	stt := &fakeSTT{err: errors.New("backend down")}
	em := &fakeEmitter{}
	reg := NewRegistry(stt, testPolicy(), nil, testLogger())

	s, err := reg.Open("conn-1", em)
	require.NoError(t, err)

	for _, c := range []string{"A", "B", "C"} {
		require.NoError(t, s.Append([]byte(c), false))
	}
	require.Eventually(t, func() bool { return len(em.all()) == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, "error", em.all()[0].kind)

	// session survives; the failed window is not re-buffered
	stt.mu.Lock()
	stt.err = nil
	stt.mu.Unlock()

	for _, c := range []string{"D", "E", "F"} {
		require.NoError(t, s.Append([]byte(c), false))
	}
	require.Eventually(t, func() bool { return len(em.all()) == 2 }, time.Second, 5*time.Millisecond)

	calls := stt.calls()
	require.Len(t, calls, 2)
	require.Equal(t, []byte("DEF"), calls[1])
}

func TestTeardownDiscardsInFlightResult(t *testing.T) {
	gate := make(chan struct{})
	stt := &fakeSTT{texts: []string{"late"}, gate: gate}
	em := &fakeEmitter{}
	reg := NewRegistry(stt, testPolicy(), nil, testLogger())

	s, err := reg.Open("conn-1", em)
	require.NoError(t, err)

	for _, c := range []string{"A", "B", "C"} {
		require.NoError(t, s.Append([]byte(c), false))
	}
	require.Eventually(t, func() bool { return len(stt.calls()) == 1 }, time.Second, 5*time.Millisecond)

	reg.Close("conn-1")
	close(gate)

	time.Sleep(50 * time.Millisecond)
	require.Empty(t, em.all(), "result of an in-flight flush is discarded after teardown")
}

func TestSessionIsolation(t *testing.T) {
	stt := &fakeSTT{}
	reg := NewRegistry(stt, testPolicy(), nil, testLogger())

	a, err := reg.Open("conn-a", &fakeEmitter{})
	require.NoError(t, err)
	b, err := reg.Open("conn-b", &fakeEmitter{})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, a.Append([]byte{'a'}, false))
		require.NoError(t, b.Append([]byte{'b'}, false))
	}

	require.Eventually(t, func() bool { return len(stt.calls()) == 2 }, time.Second, 5*time.Millisecond)
	for _, payload := range stt.calls() {
		first := payload[0]
		require.True(t, first == 'a' || first == 'b')
		require.Equal(t, bytes.Repeat([]byte{first}, 3), payload, "no cross-session chunk mixing")
	}
}

func TestRegistryRejectsDuplicateIdentity(t *testing.T) {
	reg := NewRegistry(&fakeSTT{}, testPolicy(), nil, testLogger())

	_, err := reg.Open("conn-1", &fakeEmitter{})
	require.NoError(t, err)

	_, err = reg.Open("conn-1", &fakeEmitter{})
	require.ErrorIs(t, err, ErrDuplicateSession)

	reg.Close("conn-1")
	_, err = reg.Open("conn-1", &fakeEmitter{})
	require.NoError(t, err)
}
