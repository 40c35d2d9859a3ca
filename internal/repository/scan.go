package repository

import (
	"database/sql"
	"time"

	"cashvelo/internal/models"
)

// timeScanner reads a timestamp whether the driver hands back time.Time or text
type timeScanner struct {
	dst *time.Time
}

func (s timeScanner) Scan(src interface{}) error {
	var d models.Date
	if err := d.Scan(src); err != nil {
		return err
	}
	*s.dst = d.Time
	return nil
}

// nullTimeScanner is timeScanner for nullable columns
type nullTimeScanner struct {
	dst **time.Time
}

func (s nullTimeScanner) Scan(src interface{}) error {
	if src == nil {
		*s.dst = nil
		return nil
	}
	var d models.Date
	if err := d.Scan(src); err != nil {
		return err
	}
	t := d.Time
	*s.dst = &t
	return nil
}

func scanTime(dst *time.Time) sql.Scanner {
	return timeScanner{dst: dst}
}

func scanNullTime(dst **time.Time) sql.Scanner {
	return nullTimeScanner{dst: dst}
}

// nullableTime converts an optional instant to a UTC driver value
func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
