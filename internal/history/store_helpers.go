package history

import (
	"database/sql"
	"strings"
	"time"
)

const uploadColumns = "id, source, source_path, size_bytes, handle, category, outcome, error_message, started_at, duration_ms"

const conversionColumns = "id, request_id, handle, category, target_format, compress, output_filename, download_url, outcome, error_message, ticks, started_at, duration_ms, downloaded_path, downloaded_at"

type scanner interface{ Scan(dest ...any) error }

func scanUpload(row scanner) (*Upload, error) {
	var (
		u          Upload
		source     sql.NullString
		sourcePath sql.NullString
		handle     sql.NullString
		category   sql.NullString
		errMessage sql.NullString
		startedRaw string
		durationMS int64
	)
	if err := row.Scan(
		&u.ID,
		&source,
		&sourcePath,
		&u.SizeBytes,
		&handle,
		&category,
		&u.Outcome,
		&errMessage,
		&startedRaw,
		&durationMS,
	); err != nil {
		return nil, err
	}
	u.Source = source.String
	u.SourcePath = sourcePath.String
	u.Handle = handle.String
	u.Category = category.String
	u.ErrorMessage = errMessage.String
	u.StartedAt = parseTime(startedRaw)
	u.Duration = time.Duration(durationMS) * time.Millisecond
	return &u, nil
}

func scanConversion(row scanner) (*Conversion, error) {
	var (
		c              Conversion
		category       sql.NullString
		compress       int64
		outputFilename sql.NullString
		downloadURL    sql.NullString
		errMessage     sql.NullString
		startedRaw     string
		durationMS     int64
		downloadedPath sql.NullString
		downloadedAt   sql.NullString
	)
	if err := row.Scan(
		&c.ID,
		&c.RequestID,
		&c.Handle,
		&category,
		&c.TargetFormat,
		&compress,
		&outputFilename,
		&downloadURL,
		&c.Outcome,
		&errMessage,
		&c.Ticks,
		&startedRaw,
		&durationMS,
		&downloadedPath,
		&downloadedAt,
	); err != nil {
		return nil, err
	}
	c.Category = category.String
	c.Compress = compress != 0
	c.OutputFilename = outputFilename.String
	c.DownloadURL = downloadURL.String
	c.ErrorMessage = errMessage.String
	c.StartedAt = parseTime(startedRaw)
	c.Duration = time.Duration(durationMS) * time.Millisecond
	c.DownloadedPath = downloadedPath.String
	if downloadedAt.Valid && downloadedAt.String != "" {
		ts := parseTime(downloadedAt.String)
		c.DownloadedAt = &ts
	}
	return &c, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}
