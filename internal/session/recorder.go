package session

import (
	"context"
	"time"
)

// UploadRecord summarises one upload attempt.
type UploadRecord struct {
	Source   Source
	Path     string
	Size     int64
	Handle   string
	Category string
	Err      error
	Started  time.Time
	Duration time.Duration
}

// ConversionRecord summarises one conversion attempt.
type ConversionRecord struct {
	RequestID    string
	Handle       string
	Category     string
	TargetFormat string
	Compress     bool
	Result       *Result
	Err          error
	Ticks        int
	Started      time.Time
	Duration     time.Duration
}

// Recorder observes finished attempts. Implementations handle their own
// failures; the flow never fails because a recorder did.
type Recorder interface {
	RecordUpload(ctx context.Context, rec UploadRecord)
	RecordConversion(ctx context.Context, rec ConversionRecord)
}
