package collab

import (
	"encoding/json"
	"fmt"
	"strings"
)

// section is one span of a change set: either a retain of n bytes of the
// old text, or a replacement that deletes del bytes and inserts the given
// lines joined by newlines.
type section struct {
	retain  int
	del     int
	insert  []string
	replace bool
}

// ChangeSet is a serialized document edit. The wire form is a JSON array
// whose entries are either a number (retain that many bytes) or an array
// [delLen, line0, line1, ...] (replace delLen bytes with the lines joined
// by "\n"). The sections must cover the old document exactly.
//
// The raw wire bytes are retained so a change set rebroadcast to other
// clients is byte-for-byte what the sender produced.
type ChangeSet struct {
	sections []section
	raw      json.RawMessage
}

func ParseChangeSet(data []byte) (*ChangeSet, error) {
	var cs ChangeSet
	if err := cs.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return &cs, nil
}

func (c *ChangeSet) UnmarshalJSON(data []byte) error {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("change set: %w", err)
	}
	secs := make([]section, 0, len(entries))
	for i, entry := range entries {
		if len(entry) > 0 && entry[0] == '[' {
			var parts []json.RawMessage
			if err := json.Unmarshal(entry, &parts); err != nil {
				return fmt.Errorf("change set section %d: %w", i, err)
			}
			if len(parts) == 0 {
				return fmt.Errorf("change set section %d: empty replacement", i)
			}
			var del int
			if err := json.Unmarshal(parts[0], &del); err != nil {
				return fmt.Errorf("change set section %d: delete length: %w", i, err)
			}
			if del < 0 {
				return fmt.Errorf("change set section %d: negative delete length %d", i, del)
			}
			lines := make([]string, 0, len(parts)-1)
			for _, p := range parts[1:] {
				var line string
				if err := json.Unmarshal(p, &line); err != nil {
					return fmt.Errorf("change set section %d: inserted line: %w", i, err)
				}
				lines = append(lines, line)
			}
			secs = append(secs, section{del: del, insert: lines, replace: true})
			continue
		}
		var n int
		if err := json.Unmarshal(entry, &n); err != nil {
			return fmt.Errorf("change set section %d: %w", i, err)
		}
		if n < 0 {
			return fmt.Errorf("change set section %d: negative retain %d", i, n)
		}
		secs = append(secs, section{retain: n})
	}
	c.sections = secs
	c.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (c *ChangeSet) MarshalJSON() ([]byte, error) {
	if c.raw != nil {
		return c.raw, nil
	}
	out := make([]any, 0, len(c.sections))
	for _, s := range c.sections {
		if !s.replace {
			out = append(out, s.retain)
			continue
		}
		entry := make([]any, 0, 1+len(s.insert))
		entry = append(entry, s.del)
		for _, line := range s.insert {
			entry = append(entry, line)
		}
		out = append(out, entry)
	}
	return json.Marshal(out)
}

// Raw returns the wire bytes the change set was parsed from.
func (c *ChangeSet) Raw() json.RawMessage {
	return c.raw
}

// Apply runs the change set against t and returns the resulting buffer.
// The sections must span t exactly; a mismatch means the sender edited a
// different document revision, and the change is rejected whole.
func (c *ChangeSet) Apply(t Text) (Text, error) {
	old := t.String()
	var out strings.Builder
	pos := 0
	for i, s := range c.sections {
		if s.replace {
			if pos+s.del > len(old) {
				return Text{}, fmt.Errorf("change set section %d: delete of %d bytes past end of document", i, s.del)
			}
			out.WriteString(strings.Join(s.insert, "\n"))
			pos += s.del
			continue
		}
		if pos+s.retain > len(old) {
			return Text{}, fmt.Errorf("change set section %d: retain of %d bytes past end of document", i, s.retain)
		}
		out.WriteString(old[pos : pos+s.retain])
		pos += s.retain
	}
	if pos != len(old) {
		return Text{}, fmt.Errorf("change set covers %d bytes of a %d byte document", pos, len(old))
	}
	return NewText(out.String()), nil
}
