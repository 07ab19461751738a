package services

import (
	"context"
	"time"

	"github.com/husnainkhadir/sop-generator/internal/models"
	mongorepo "github.com/husnainkhadir/sop-generator/internal/repositories/mongo"
	"github.com/husnainkhadir/sop-generator/internal/stream"
	"github.com/husnainkhadir/sop-generator/internal/utils"
)

// TranscriptArchive records streaming flush outcomes for later inspection.
// It implements stream.Archiver; segments expire via the collection TTL index.
type TranscriptArchive struct {
	segments mongorepo.TranscriptRepository
	ttl      time.Duration
}

func NewTranscriptArchive(segments mongorepo.TranscriptRepository, ttl time.Duration) *TranscriptArchive {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TranscriptArchive{segments: segments, ttl: ttl}
}

func (a *TranscriptArchive) Archive(ctx context.Context, rec stream.FlushRecord) error {
	now := time.Now().UTC()
	return a.segments.InsertSegment(ctx, &models.TranscriptSegment{
		SessionID:  rec.SessionID,
		Seq:        rec.Seq,
		AudioBytes: rec.AudioBytes,
		Text:       rec.Text,
		Confidence: rec.Confidence,
		Status:     rec.Status,
		Final:      rec.Final,
		Timestamp:  now,
		ExpiresAt:  now.Add(a.ttl),
	})
}

// Segments returns the archived flush records of a session in flush order.
// Sessions whose segments already expired come back empty, not as an error.
func (a *TranscriptArchive) Segments(ctx context.Context, sessionID string, limit int64) ([]models.TranscriptSegment, error) {
	const op = "TranscriptArchive.Segments"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session id is required", nil)
	}

	segments, err := a.segments.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list transcript segments", err)
	}
	return segments, nil
}
