package config

import (
	"os"
	"strconv"
	"time"

	"github.com/husnainkhadir/sop-generator/internal/stream"
)

// StreamPolicy reads the live-transcription batching policy from env. The
// threshold and cadence were tuned for ~1s capture chunks; both are policy,
// not protocol, and can be changed without touching clients.
func StreamPolicy() stream.Policy {
	p := stream.DefaultPolicy()

	if v := os.Getenv("STREAM_FLUSH_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.FlushThreshold = n
		}
	}
	if v := os.Getenv("STREAM_FLUSH_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.FlushTimeout = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("STT_LANGUAGE"); v != "" {
		p.Language = v
	}
	return p
}
