package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"fileconv/internal/api"
	"fileconv/internal/logging"
	"fileconv/internal/session"
)

// alreadyReported reports whether err was shown to the user as a session
// notice, so main does not print it a second time.
func alreadyReported(err error) bool {
	var uploadErr *session.UploadError
	if errors.As(err, &uploadErr) {
		return true
	}
	var convErr *session.ConversionError
	return errors.As(err, &convErr)
}

// convertFlags are the flags shared by run and convert.
type convertFlags struct {
	target    string
	compress  bool
	fetch     bool
	overwrite bool
}

func (f *convertFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.target, "to", "t", "", "Target format code (see `fileconv formats`)")
	cmd.Flags().BoolVar(&f.compress, "compress", false, "Ask the service to compress the output")
	cmd.Flags().BoolVarP(&f.fetch, "download", "d", false, "Download the converted file when done")
	cmd.Flags().BoolVar(&f.overwrite, "overwrite", false, "Replace an existing file in the download directory")
}

// resolveCompress prefers an explicit --compress flag over the configured
// default.
func resolveCompress(cmd *cobra.Command, flag bool, configured bool) bool {
	if f := cmd.Flags().Lookup("compress"); f != nil && f.Changed {
		return flag
	}
	return configured
}

// convertLoaded selects the requested format for the loaded file, converts it
// under the conversion lock and downloads the result when asked to.
func (e *sessionEnv) convertLoaded(cmd *cobra.Command, flags convertFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	if code := strings.TrimSpace(flags.target); code != "" {
		if err := e.machine.SelectFormat(code); err != nil {
			return err
		}
	}

	var result session.Result
	err := e.withConversionLock(func() error {
		var convErr error
		result, convErr = e.machine.Convert(ctx, session.ConvertOptions{
			Compress: resolveCompress(cmd, flags.compress, e.cfg.Conversion.Compress),
		})
		return convErr
	})
	if err != nil {
		return e.explain(out, err)
	}
	if !flags.fetch {
		fmt.Fprintln(out, "Run `fileconv download` to save the result.")
		return nil
	}
	return e.saveResult(ctx, out, result, e.latestRequestID(ctx), flags.overwrite)
}

// explain adds a hint for errors caused by an unreachable service and returns
// err unchanged.
func (e *sessionEnv) explain(out io.Writer, err error) error {
	if api.IsUnavailable(err) {
		fmt.Fprintf(out, "Is the conversion service running at %s?\n", e.client.BaseURL())
	}
	return err
}

// saveResult downloads result and records where it went. requestID may be
// empty when the attempt was not persisted.
func (e *sessionEnv) saveResult(ctx context.Context, out io.Writer, result session.Result, requestID string, overwrite bool) error {
	d, err := e.downloader(overwrite)
	if err != nil {
		return err
	}
	saved, err := d.Fetch(ctx, result)
	e.metrics.RecordDownload(saved.Bytes, err)
	if err != nil {
		return fmt.Errorf("download %s: %w", result.Filename, err)
	}
	if requestID != "" {
		if err := e.store.MarkDownloaded(ctx, requestID, saved.Path); err != nil {
			e.logger.Warn("record download failed", logging.String("request_id", requestID), logging.Error(err))
		}
	}
	fmt.Fprintf(out, "Saved %s (%s)\n", saved.Path, humanize.Bytes(uint64(saved.Bytes)))
	return nil
}

// latestRequestID returns the request id of the newest successful conversion.
func (e *sessionEnv) latestRequestID(ctx context.Context) string {
	latest, err := e.store.LatestConversion(ctx)
	if err != nil || latest == nil {
		return ""
	}
	return latest.RequestID
}
