// Package download fetches converted artefacts referenced by a conversion
// result and stores them in the download directory.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"fileconv/internal/api"
	"fileconv/internal/fileutil"
	"fileconv/internal/logging"
	"fileconv/internal/session"
	"fileconv/internal/textutil"
)

// Fetcher retrieves a download reference. *api.Client satisfies it.
type Fetcher interface {
	Download(ctx context.Context, ref string, w io.Writer) (api.DownloadResult, error)
}

// Options configure a Downloader.
type Options struct {
	Dir string
	// Overwrite replaces an existing file instead of picking "name (n).ext".
	Overwrite bool
	Logger    *slog.Logger
}

// Downloader saves conversion results to disk.
type Downloader struct {
	fetcher   Fetcher
	dir       string
	overwrite bool
	logger    *slog.Logger
}

// Saved describes a stored artefact.
type Saved struct {
	Path        string
	URL         string
	ContentType string
	Bytes       int64
	SHA256      string
}

// New builds a Downloader writing into opts.Dir.
func New(fetcher Fetcher, opts Options) (*Downloader, error) {
	if fetcher == nil {
		return nil, errors.New("download: fetcher is required")
	}
	if strings.TrimSpace(opts.Dir) == "" {
		return nil, errors.New("download: directory is required")
	}
	return &Downloader{
		fetcher:   fetcher,
		dir:       opts.Dir,
		overwrite: opts.Overwrite,
		logger:    logging.NewComponentLogger(opts.Logger, "download"),
	}, nil
}

// Fetch downloads result.DownloadURL. The file is named after the result,
// sanitised, and written atomically.
func (d *Downloader) Fetch(ctx context.Context, result session.Result) (Saved, error) {
	if strings.TrimSpace(result.DownloadURL) == "" {
		return Saved{}, errors.New("download: result has no download reference")
	}
	name := FileName(result)
	target := filepath.Join(d.dir, name)
	if !d.overwrite {
		unique, err := fileutil.UniquePath(d.dir, name)
		if err != nil {
			return Saved{}, fmt.Errorf("download: choose file name: %w", err)
		}
		target = unique
	}

	var meta api.DownloadResult
	written, err := fileutil.WriteAtomic(target, 0o644, func(w io.Writer) error {
		var fetchErr error
		meta, fetchErr = d.fetcher.Download(ctx, result.DownloadURL, w)
		return fetchErr
	})
	if err != nil {
		d.logger.Warn("download failed",
			logging.String("download_url", result.DownloadURL),
			logging.Error(err),
		)
		return Saved{}, err
	}

	d.logger.Info("download saved",
		logging.String("path", written.Path),
		logging.Int64("bytes", written.Bytes),
		logging.String("sha256", written.SHA256),
	)
	return Saved{
		Path:        written.Path,
		URL:         meta.URL,
		ContentType: meta.ContentType,
		Bytes:       written.Bytes,
		SHA256:      written.SHA256,
	}, nil
}

// FileName derives a safe local file name for result.
func FileName(result session.Result) string {
	if name := textutil.SanitizeFileName(result.Filename); name != "" {
		return name
	}
	ref := result.DownloadURL
	if parsed, err := url.Parse(ref); err == nil {
		ref = parsed.Path
	}
	if name := textutil.SanitizeFileName(path.Base(ref)); name != "" && name != "-" {
		return name
	}
	return "download"
}
