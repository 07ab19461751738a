// Package recording assembles captured media fragments into the final
// deliverable blob, paired with the last still image taken during capture.
package recording

import (
	"errors"
	"sync"
)

var ErrStopped = errors.New("assembler already stopped")

// Artifact is the finished recording.
type Artifact struct {
	Data       []byte
	Screenshot string // base64 data URL, may be empty
}

// Assembler accumulates media fragments in strict arrival order. It produces
// its artifact exactly once, on Stop; stopping with no fragments yields an
// empty artifact, not an error.
type Assembler struct {
	mu         sync.Mutex
	fragments  [][]byte
	total      int
	screenshot string
	stopped    bool
}

func NewAssembler() *Assembler {
	return &Assembler{}
}

func (a *Assembler) Append(fragment []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return ErrStopped
	}
	if len(fragment) == 0 {
		return nil
	}
	a.fragments = append(a.fragments, fragment)
	a.total += len(fragment)
	return nil
}

func (a *Assembler) SetScreenshot(img string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return ErrStopped
	}
	a.screenshot = img
	return nil
}

// Stop concatenates all fragments in receipt order and releases the buffers.
func (a *Assembler) Stop() (Artifact, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return Artifact{}, ErrStopped
	}
	a.stopped = true

	data := make([]byte, 0, a.total)
	for _, f := range a.fragments {
		data = append(data, f...)
	}
	a.fragments = nil
	a.total = 0

	return Artifact{Data: data, Screenshot: a.screenshot}, nil
}

// Size reports the bytes buffered so far.
func (a *Assembler) Size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}
