// Package collab implements the collaborative-editing session layer: the
// authoritative text buffer, change-set application, and the router that
// multiplexes client connections onto shared per-document state.
package collab

import "strings"

// Text is an immutable text buffer. Change sets produce new buffers
// rather than mutating in place, so replicas applying the same change
// sequence always converge on identical content.
type Text struct {
	content string
}

func NewText(s string) Text {
	return Text{content: s}
}

func (t Text) String() string {
	return t.content
}

// Len is the buffer length in bytes; change-set offsets address bytes.
func (t Text) Len() int {
	return len(t.content)
}

func (t Text) Lines() []string {
	return strings.Split(t.content, "\n")
}
