package stream

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	// ErrDuplicateSession means an identity is already registered. One
	// session per connection should make this unreachable, but it is guarded.
	ErrDuplicateSession = errors.New("session already registered for identity")
	ErrSessionClosed    = errors.New("session closed")
)

// Registry maps connection identity to its Session. It owns session lifecycle
// and is injected into the socket-handling layer; it is not a package global.
type Registry struct {
	stt     Transcriber
	pol     Policy
	archive Archiver
	log     *logrus.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(stt Transcriber, pol Policy, archive Archiver, log *logrus.Logger) *Registry {
	if log == nil {
		log = logrus.New()
	}
	return &Registry{
		stt:      stt,
		pol:      pol,
		archive:  archive,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// Open registers a new session for identity and returns it.
func (r *Registry) Open(identity string, emit Emitter) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[identity]; ok {
		return nil, ErrDuplicateSession
	}

	s := newSession(identity, r.stt, emit, r.pol, r.archive,
		r.log.WithField("session_id", identity))
	r.sessions[identity] = s
	return s, nil
}

// Close tears down the identity's session, releasing its buffers. Best effort:
// it does not wait for an in-flight flush, whose result is then discarded.
func (r *Registry) Close(identity string) {
	r.mu.Lock()
	s, ok := r.sessions[identity]
	delete(r.sessions, identity)
	r.mu.Unlock()

	if ok {
		s.close()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
