package storage

import (
	"fmt"
	"time"

	"finman/internal/core"
)

// dateColumn scans DATE columns, which SQLite drivers return as text and
// PostgreSQL returns as time.Time.
type dateColumn struct {
	core.Date
}

func (c *dateColumn) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		c.Date = core.DateOf(v)
		return nil
	case string:
		return c.parse(v)
	case []byte:
		return c.parse(string(v))
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
}

func (c *dateColumn) parse(s string) error {
	if len(s) < len(core.DateLayout) {
		return fmt.Errorf("scan date: %q too short", s)
	}
	d, err := core.ParseDate(s[:len(core.DateLayout)])
	if err != nil {
		return fmt.Errorf("scan date: %w", err)
	}
	c.Date = d
	return nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// timeColumn scans TIMESTAMP columns regardless of how the driver hands them over.
type timeColumn struct {
	time.Time
}

func (c *timeColumn) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case time.Time:
		c.Time = v.UTC()
		return nil
	case int64:
		c.Time = time.Unix(0, v).UTC()
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("scan timestamp: unsupported type %T", src)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			c.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("scan timestamp: cannot parse %q", s)
}
