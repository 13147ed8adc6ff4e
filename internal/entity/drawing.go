package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AsRequired is the quantity marker used by drawings for consumables.
const AsRequired = "AS REQD"

// DrawingRecord is one row of the parts table read off a cross-section drawing.
type DrawingRecord struct {
	Ref         FlexString `json:"ref"`
	Description string     `json:"description"`
	Qty         Quantity   `json:"qty"`
	Material    FlexString `json:"material"`
}

// Quantity is either a number or a textual marker such as "AS REQD".
type Quantity struct {
	Value *float64
	Text  string
}

// Number returns a numeric quantity.
func Number(v float64) Quantity { return Quantity{Value: &v} }

// Marker returns a textual quantity.
func Marker(s string) Quantity { return Quantity{Text: s} }

func (q Quantity) String() string {
	if q.Value != nil {
		return strconv.FormatFloat(*q.Value, 'f', -1, 64)
	}
	return q.Text
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	switch {
	case q.Value != nil:
		return json.Marshal(*q.Value)
	case q.Text != "":
		return json.Marshal(q.Text)
	default:
		return []byte("null"), nil
	}
}

func (q *Quantity) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*q = Quantity{}
	switch {
	case bytes.Equal(b, []byte("null")):
		return nil
	case len(b) > 0 && b[0] == '"':
		return json.Unmarshal(b, &q.Text)
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("qty: %w", err)
		}
		q.Value = &f
		return nil
	}
}

// FlexString decodes from a JSON string or number and always encodes as a string.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*s = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("flex string: %w", err)
		}
		*s = FlexString(strings.TrimSpace(n.String()))
		return nil
	}
}
