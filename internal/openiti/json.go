package openiti

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// marshalTagged encodes v as a JSON object with a leading "type" member.
func marshalTagged(typ string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `{"type":%q`, typ)
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

// MarshalJSON tags every content item with its type.
func (d Document) MarshalJSON() ([]byte, error) {
	items, err := encodeContent(d.Content)
	if err != nil {
		return nil, err
	}
	meta := d.Metadata
	if meta == nil {
		meta = []string{}
	}
	return json.Marshal(struct {
		Magic    string            `json:"magic_value"`
		Metadata []string          `json:"simple_metadata"`
		Content  []json.RawMessage `json:"content"`
	}{d.Magic, meta, items})
}

// MarshalContent encodes a content sequence as a JSON array, each item
// tagged with its type exactly as in the Document encoding.
func MarshalContent(content []Content) ([]byte, error) {
	items, err := encodeContent(content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(items)
}

func encodeContent(content []Content) ([]json.RawMessage, error) {
	items := make([]json.RawMessage, 0, len(content))
	for i, c := range content {
		raw, err := marshalContent(c)
		if err != nil {
			return nil, fmt.Errorf("content item %d: %w", i, err)
		}
		items = append(items, raw)
	}
	return items, nil
}

func marshalContent(c Content) ([]byte, error) {
	if l, ok := c.(Line); ok {
		return l.MarshalJSON()
	}
	return marshalTagged(c.ContentType(), c)
}

// MarshalJSON tags the line and each of its fragments.
func (l Line) MarshalJSON() ([]byte, error) {
	frags := make([]json.RawMessage, 0, len(l.Fragments))
	for _, f := range l.Fragments {
		raw, err := marshalTagged(f.FragmentType(), f)
		if err != nil {
			return nil, err
		}
		frags = append(frags, raw)
	}
	return marshalTagged(l.ContentType(), struct {
		Orig      string            `json:"orig"`
		Text      string            `json:"text,omitempty"`
		Fragments []json.RawMessage `json:"fragments"`
		Kind      LineKind          `json:"kind"`
	}{l.Orig, l.Text, frags, l.Kind})
}
