package annotation

import (
	"time"
)

// Annotation kinds
const (
	KindComment    = "comment"
	KindHighlight  = "highlight"
	KindQuestion   = "question"
	KindSuggestion = "suggestion"
)

type Annotation struct {
	ID         uint64
	DocumentID uint64 `gorm:"index"`

	// Anchor fields: the selected span inside the flattened document text
	SelectedText string
	StartIndex   int
	EndIndex     int
	StartOffset  int
	EndOffset    int

	Body string
	Kind string

	// Author captured by value; OwnerEmail is the document owner at creation
	// time and is immutable afterwards (authorization compares against it)
	AuthorEmail string
	AuthorName  string
	OwnerEmail  string

	// Per-annotation reply id counter, bumped under the parent row lock
	ReplySeq uint64

	CreatedAt time.Time
	UpdatedAt time.Time

	Replies []Reply `gorm:"foreignKey:AnnotationID;constraint:OnDelete:CASCADE"`
}

// Reply lives and dies with its parent annotation. Seq is its id, unique
// within the annotation only.
type Reply struct {
	AnnotationID uint64 `gorm:"primaryKey;autoIncrement:false"`
	Seq          uint64 `gorm:"primaryKey;autoIncrement:false"`
	Text         string
	AuthorEmail  string
	AuthorName   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
