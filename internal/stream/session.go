// Package stream implements the live transcription pipeline: per-connection
// sessions that batch inbound audio chunks and turn them into ordered partial
// transcripts, plus the registry that keys sessions by connection identity.
package stream

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Policy is the chunk-batching policy for live sessions.
type Policy struct {
	// FlushThreshold is how many buffered chunks trigger a backend call.
	FlushThreshold int
	// FlushTimeout bounds each backend transcribe call; expiry counts as a
	// backend failure.
	FlushTimeout time.Duration
	// Language is the BCP-47 recognition language passed to the backend.
	Language string
}

func DefaultPolicy() Policy {
	return Policy{
		FlushThreshold: 3,
		FlushTimeout:   30 * time.Second,
		Language:       "en-US",
	}
}

// Transcriber is the slice of the STT provider the pipeline needs.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, language string) (text string, confidence float64, err error)
}

// Emitter delivers per-flush results back to the originating connection.
// Implementations must serialize their own writes.
type Emitter interface {
	EmitTranscription(text string) error
	EmitError(message string) error
}

// FlushRecord describes one completed flush for archiving.
type FlushRecord struct {
	SessionID  string
	Seq        int64
	AudioBytes int
	Text       string
	Confidence float64
	Status     string // done|failed
	Final      bool
}

// Archiver persists flush outcomes. Best effort: failures are logged by the
// session and never affect delivery.
type Archiver interface {
	Archive(ctx context.Context, rec FlushRecord) error
}

// Session buffers audio for one connection and flushes it to the backend.
//
// At most one flush is in flight at a time; a flush takes the entire pending
// buffer atomically, and results are emitted in flush order. Chunks arriving
// during an in-flight flush are buffered, and the threshold check re-runs when
// the flush completes. Audio of a failed flush is dropped, not retried: live
// captions favor freshness over completeness.
type Session struct {
	id      string
	stt     Transcriber
	emit    Emitter
	pol     Policy
	archive Archiver
	log     *logrus.Entry

	mu           sync.Mutex
	pending      [][]byte
	pendingFinal bool
	inFlight     bool
	closed       bool
	seq          int64
}

func newSession(id string, stt Transcriber, emit Emitter, pol Policy, archive Archiver, log *logrus.Entry) *Session {
	if pol.FlushThreshold <= 0 {
		pol.FlushThreshold = DefaultPolicy().FlushThreshold
	}
	if pol.FlushTimeout <= 0 {
		pol.FlushTimeout = DefaultPolicy().FlushTimeout
	}
	return &Session{
		id:      id,
		stt:     stt,
		emit:    emit,
		pol:     pol,
		archive: archive,
		log:     log,
	}
}

func (s *Session) ID() string { return s.id }

// Append buffers one audio chunk in arrival order. A flush fires when the
// pending count reaches the threshold or final is set, unless one is already
// in flight; in that case the trigger is deferred to flush completion.
func (s *Session) Append(chunk []byte, final bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if len(chunk) > 0 {
		s.pending = append(s.pending, chunk)
	}
	if final {
		s.pendingFinal = true
	}
	s.maybeFlushLocked()
	return nil
}

func (s *Session) maybeFlushLocked() {
	if s.inFlight {
		return
	}
	if !s.pendingFinal && len(s.pending) < s.pol.FlushThreshold {
		return
	}
	if len(s.pending) == 0 {
		// final marker with nothing buffered: nothing to transcribe
		s.pendingFinal = false
		return
	}

	total := 0
	for _, c := range s.pending {
		total += len(c)
	}
	payload := make([]byte, 0, total)
	for _, c := range s.pending {
		payload = append(payload, c...)
	}

	final := s.pendingFinal
	s.pending = nil
	s.pendingFinal = false
	s.inFlight = true
	s.seq++

	go s.runFlush(payload, s.seq, final)
}

func (s *Session) runFlush(payload []byte, seq int64, final bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.pol.FlushTimeout)
	text, conf, err := s.stt.Transcribe(ctx, payload, s.pol.Language)
	cancel()

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()

	// Deliver before clearing the in-flight flag so a deferred flush cannot
	// overtake this one's event. A session torn down mid-flight gets nothing.
	status := "done"
	if err != nil {
		status = "failed"
	}
	if !closed {
		if err != nil {
			s.log.WithError(err).WithField("seq", seq).Warn("flush transcription failed, window dropped")
			_ = s.emit.EmitError("transcription failed")
		} else if werr := s.emit.EmitTranscription(text); werr != nil {
			s.log.WithError(werr).WithField("seq", seq).Debug("transcription delivery failed")
		}
	}

	if s.archive != nil {
		actx, acancel := context.WithTimeout(context.Background(), 5*time.Second)
		if aerr := s.archive.Archive(actx, FlushRecord{
			SessionID:  s.id,
			Seq:        seq,
			AudioBytes: len(payload),
			Text:       text,
			Confidence: conf,
			Status:     status,
			Final:      final,
		}); aerr != nil {
			s.log.WithError(aerr).WithField("seq", seq).Debug("segment archive failed")
		}
		acancel()
	}

	s.mu.Lock()
	s.inFlight = false
	if !s.closed {
		s.maybeFlushLocked()
	}
	s.mu.Unlock()
}

// close tears the session down. Buffered-but-unflushed audio is discarded; an
// in-flight backend call completes on its own and its result is discarded.
func (s *Session) close() {
	s.mu.Lock()
	s.closed = true
	s.pending = nil
	s.pendingFinal = false
	s.mu.Unlock()
}
