package document

import (
	"time"
)

// Document is an owner's text blob. Content is the flattened text
// annotations anchor into; it is written once at creation and never edited,
// which is what keeps anchors valid.
type Document struct {
	ID        uint64
	Title     string
	Content   string `gorm:"type:text"`
	UserID    uint64 `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
