package validators

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Date accepts either an RFC 3339 timestamp or a bare YYYY-MM-DD day, which is
// what HTML date inputs send.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return fmt.Errorf("invalid date %q", raw)
	}
	d.Time = t
	return nil
}

// Ptr returns nil for the zero date.
func (d Date) Ptr() *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// Decimal is an optional JSON number that also accepts numeric strings and
// treats "" as absent, as HTML number inputs submit.
type Decimal struct {
	Value *decimal.Decimal
}

func (d *Decimal) UnmarshalJSON(data []byte) error {
	trimmed := bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		d.Value = nil
		return nil
	}
	v, err := decimal.NewFromString(string(trimmed))
	if err != nil {
		return fmt.Errorf("invalid number %q", string(trimmed))
	}
	d.Value = &v
	return nil
}
