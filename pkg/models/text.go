package models

import (
	"bytes"
	"encoding/json"
	"errors"

	"spacetraveling/pkg/richtext"
)

// Text is a plain-text field. Besides a string the CMS may send rich-text
// blocks or a bare number or boolean; all of them decode to plain text.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '[':
		var d richtext.Document
		if err := json.Unmarshal(data, &d); err != nil {
			return err
		}
		*t = Text(richtext.AsPlainText(d))
	case '{':
		return errors.New("text field cannot be an object")
	default:
		*t = Text(data)
	}
	return nil
}

// String returns the text, or "" for a nil field.
func (t *Text) String() string {
	if t == nil {
		return ""
	}
	return string(*t)
}
