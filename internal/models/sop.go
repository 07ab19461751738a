package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Sop is a Standard Operating Procedure: an ordered document of steps.
type Sop struct {
	ID          int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title       string         `gorm:"column:title;type:text;not null" json:"title"`
	Description string         `gorm:"column:description;type:text" json:"description"`
	Tags        pq.StringArray `gorm:"column:tags;type:text[]" json:"tags"`
	CreatedAt   time.Time      `gorm:"column:created_at;type:timestamptz;not null" json:"created_at"`
}

func (Sop) TableName() string { return "sops" }

// Step is one instruction unit within a SOP. Order is 1-based and intended
// monotonic within a SOP, but uniqueness is not enforced.
type Step struct {
	ID           int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SopID        int64  `gorm:"column:sop_id;index;not null" json:"sop_id"`
	Order        int    `gorm:"column:order;not null" json:"order"`
	Instruction  string `gorm:"column:instruction;type:text;not null" json:"instruction"`
	Screenshot   string `gorm:"column:screenshot;type:text" json:"screenshot"` // base64 data URL
	RecordingURL string `gorm:"column:recording_url;type:text" json:"recording_url"`

	// provenance
	Transcription  string `gorm:"column:transcription;type:text" json:"transcription"`
	RefinedContent string `gorm:"column:refined_content;type:text" json:"refined_content"`

	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
}

func (Step) TableName() string { return "steps" }
