package anchor

import "errors"

// ErrInvalidAnchor rejects empty or inverted selections
var ErrInvalidAnchor = errors.New("invalid anchor: empty selection or inverted range")

// TextAnchor records the span of flattened document text an annotation is
// attached to. It is captured once at creation and never mutated; document
// text itself is immutable, so the span stays valid.
type TextAnchor struct {
	SelectedText string `json:"selected_text"`
	StartIndex   int    `json:"start_index"`
	EndIndex     int    `json:"end_index"`
	StartOffset  int    `json:"start_offset"`
	EndOffset    int    `json:"end_offset"`
}

// New validates a raw selection and freezes it into a TextAnchor
func New(selectedText string, startIndex, endIndex, startOffset, endOffset int) (TextAnchor, error) {
	if selectedText == "" || startIndex > endIndex {
		return TextAnchor{}, ErrInvalidAnchor
	}

	return TextAnchor{
		SelectedText: selectedText,
		StartIndex:   startIndex,
		EndIndex:     endIndex,
		StartOffset:  startOffset,
		EndOffset:    endOffset,
	}, nil
}
