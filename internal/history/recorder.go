package history

import (
	"context"
	"log/slog"

	"fileconv/internal/logging"
	"fileconv/internal/services"
	"fileconv/internal/session"
)

// Recorder writes session attempts to the store. Failures are logged and
// never surface to the flow.
type Recorder struct {
	store  *Store
	logger *slog.Logger
}

// NewRecorder wraps store as a session.Recorder.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, logger: logging.NewComponentLogger(logger, "history")}
}

func (r *Recorder) RecordUpload(ctx context.Context, rec session.UploadRecord) {
	if r == nil || r.store == nil {
		return
	}
	u := Upload{
		Source:     string(rec.Source),
		SourcePath: rec.Path,
		SizeBytes:  rec.Size,
		Handle:     rec.Handle,
		Category:   rec.Category,
		Outcome:    services.Outcome(rec.Err),
		StartedAt:  rec.Started,
		Duration:   rec.Duration,
	}
	if rec.Err != nil {
		u.ErrorMessage = session.UserMessage(rec.Err)
	}
	if _, err := r.store.InsertUpload(ctx, u); err != nil {
		logging.WithContext(ctx, r.logger).Warn("record upload failed", logging.Error(err))
	}
}

func (r *Recorder) RecordConversion(ctx context.Context, rec session.ConversionRecord) {
	if r == nil || r.store == nil {
		return
	}
	c := Conversion{
		RequestID:    rec.RequestID,
		Handle:       rec.Handle,
		Category:     rec.Category,
		TargetFormat: rec.TargetFormat,
		Compress:     rec.Compress,
		Outcome:      services.Outcome(rec.Err),
		Ticks:        rec.Ticks,
		StartedAt:    rec.Started,
		Duration:     rec.Duration,
	}
	if rec.Result != nil {
		c.OutputFilename = rec.Result.Filename
		c.DownloadURL = rec.Result.DownloadURL
	}
	if rec.Err != nil {
		c.ErrorMessage = session.UserMessage(rec.Err)
	}
	if _, err := r.store.InsertConversion(ctx, c); err != nil {
		logging.WithContext(ctx, r.logger).Warn("record conversion failed", logging.Error(err))
	}
}
