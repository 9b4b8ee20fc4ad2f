package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Units are encoded the way the rich-text widget encodes delta operations:
//
//	{"insert":"Hello","attributes":{"bold":true}}
//	{"insert":{"image":"cat.png"},"attributes":{"width":40}}
type wireOp struct {
	Insert     json.RawMessage            `json:"insert"`
	Attributes map[string]json.RawMessage `json:"attributes,omitempty"`
}

type encodedOp struct {
	Insert     json.RawMessage `json:"insert"`
	Attributes map[string]any  `json:"attributes,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (u Unit) MarshalJSON() ([]byte, error) {
	op := encodedOp{}
	attrs := map[string]any{}
	if u.IsEmbed() {
		kind := u.Embed.Type
		if kind == "" {
			kind = "image"
		}
		raw, err := json.Marshal(map[string]string{kind: u.Embed.Source})
		if err != nil {
			return nil, err
		}
		op.Insert = raw
		if u.Embed.Width > 0 {
			attrs["width"] = u.Embed.Width
		}
		if u.Embed.Height > 0 {
			attrs["height"] = u.Embed.Height
		}
	} else {
		raw, err := json.Marshal(u.Text)
		if err != nil {
			return nil, err
		}
		op.Insert = raw
		if u.Style.Header > 0 {
			attrs["header"] = u.Style.Header
		}
		if u.Style.Bold {
			attrs["bold"] = true
		}
		if u.Style.Italic {
			attrs["italic"] = true
		}
	}
	for key, value := range u.Style.Extra {
		attrs[key] = value
	}
	if len(attrs) > 0 {
		op.Attributes = attrs
	}
	return json.Marshal(op)
}

// UnmarshalJSON implements json.Unmarshaler.
func (u *Unit) UnmarshalJSON(data []byte) error {
	var op wireOp
	if err := json.Unmarshal(data, &op); err != nil {
		return err
	}
	if len(op.Insert) == 0 {
		return fmt.Errorf("document: operation without insert")
	}

	var text string
	if err := json.Unmarshal(op.Insert, &text); err == nil {
		style := Style{}
		for key, value := range op.Attributes {
			switch key {
			case "header":
				style.Header = intAttr(value)
			case "bold":
				style.Bold = boolAttr(value)
			case "italic":
				style.Italic = boolAttr(value)
			default:
				if style.Extra, err = putExtra(style.Extra, key, value); err != nil {
					return err
				}
			}
		}
		*u = Styled(text, style)
		return nil
	}

	var object map[string]string
	if err := json.Unmarshal(op.Insert, &object); err != nil {
		return fmt.Errorf("document: unsupported insert %s: %w", string(op.Insert), err)
	}
	if len(object) != 1 {
		return fmt.Errorf("document: embed must have exactly one key, got %d", len(object))
	}
	embed := Embed{}
	for kind, source := range object {
		embed.Type = kind
		embed.Source = source
	}
	style := Style{}
	for key, value := range op.Attributes {
		switch key {
		case "width":
			embed.Width = intAttr(value)
		case "height":
			embed.Height = intAttr(value)
		default:
			var err error
			if style.Extra, err = putExtra(style.Extra, key, value); err != nil {
				return err
			}
		}
	}
	*u = Unit{Kind: KindEmbed, Embed: embed, Style: style}
	return nil
}

func intAttr(raw json.RawMessage) int {
	switch v := decodeAttr(raw).(type) {
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

func boolAttr(raw json.RawMessage) bool {
	switch v := decodeAttr(raw).(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

func decodeAttr(raw json.RawMessage) any {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	return value
}

func putExtra(extra map[string]json.RawMessage, key string, raw json.RawMessage) (map[string]json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return extra, fmt.Errorf("document: attribute %q: %w", key, err)
	}
	if extra == nil {
		extra = map[string]json.RawMessage{}
	}
	extra[key] = buf.Bytes()
	return extra, nil
}
