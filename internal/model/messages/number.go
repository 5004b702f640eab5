package messages

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number is a form value that may arrive as a JSON number or as a numeric string
// (HTML inputs post strings). Set is false for null, absent or empty values.
type Number struct {
	Value float64
	Set   bool
}

func NewNumber(v float64) Number { return Number{Value: v, Set: true} }

// Present applies the form's truthiness rule: absent, empty and zero all count as missing.
func (n Number) Present() bool { return n.Set && n.Value != 0 }

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = Number{}
		return nil
	}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case float64:
		*n = Number{Value: x, Set: true}
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			*n = Number{}
			return nil
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("not a number: %q", x)
		}
		*n = Number{Value: f, Set: true}
	default:
		return fmt.Errorf("not a number: %s", string(b))
	}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}
