package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TranscriptSegment archives the outcome of one streaming flush. Segments are
// short-lived troubleshooting data and expire via a TTL index on ExpiresAt.
type TranscriptSegment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"`
	Seq       int64              `bson:"seq" json:"seq"` // 1-based flush order within a session

	AudioBytes int     `bson:"audio_bytes" json:"audio_bytes"` // size of the flushed window
	Text       string  `bson:"text,omitempty" json:"text,omitempty"`
	Confidence float64 `bson:"confidence,omitempty" json:"confidence,omitempty"`
	Status     string  `bson:"status" json:"status"` // done|failed
	Final      bool    `bson:"final" json:"final"`

	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
}
