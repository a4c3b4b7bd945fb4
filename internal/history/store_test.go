package history_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"fileconv/internal/api"
	"fileconv/internal/history"
	"fileconv/internal/services"
	"fileconv/internal/session"
	"fileconv/internal/testsupport"
)

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if store.Path() != cfg.HistoryPath() {
		t.Fatalf("unexpected path %q", store.Path())
	}
	if _, err := os.Stat(cfg.HistoryPath()); err != nil {
		t.Fatalf("expected database file: %v", err)
	}

	// Re-opening an initialised database must succeed.
	again, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	_ = again.Close()
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	_ = store.Close()

	db, err := sql.Open("sqlite", cfg.HistoryPath())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := history.Open(cfg); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	if err := history.Remove(cfg); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	reopened, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("open after remove: %v", err)
	}
	_ = reopened.Close()
}

func TestLatestUploadSkipsFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if u, err := store.LatestUpload(ctx); err != nil || u != nil {
		t.Fatalf("expected no upload, got %+v %v", u, err)
	}

	started := time.Now().Add(-time.Minute)
	if _, err := store.InsertUpload(ctx, history.Upload{
		Source: "picker", SourcePath: "/tmp/report.doc", SizeBytes: 2048,
		Handle: "report.doc", Category: "document", Outcome: services.OutcomeOK,
		StartedAt: started, Duration: 1500 * time.Millisecond,
	}); err != nil {
		t.Fatalf("InsertUpload: %v", err)
	}
	if _, err := store.InsertUpload(ctx, history.Upload{
		Source: "drop", SourcePath: "/tmp/virus.exe", Outcome: services.OutcomeRejected,
		ErrorMessage: "Error: File type not allowed", StartedAt: time.Now(),
	}); err != nil {
		t.Fatalf("InsertUpload: %v", err)
	}

	latest, err := store.LatestUpload(ctx)
	if err != nil {
		t.Fatalf("LatestUpload: %v", err)
	}
	if latest == nil || latest.Handle != "report.doc" || latest.Category != "document" || !latest.Succeeded() {
		t.Fatalf("unexpected latest upload %+v", latest)
	}
	if latest.Duration != 1500*time.Millisecond || latest.SizeBytes != 2048 {
		t.Fatalf("unexpected duration/size %s/%d", latest.Duration, latest.SizeBytes)
	}
	if !latest.StartedAt.Equal(started.UTC()) {
		t.Fatalf("started_at round trip: %s vs %s", latest.StartedAt, started)
	}

	all, err := store.ListUploads(ctx, 0)
	if err != nil {
		t.Fatalf("ListUploads: %v", err)
	}
	if len(all) != 2 || all[0].Outcome != services.OutcomeRejected {
		t.Fatalf("expected newest first, got %+v", all)
	}
}

func TestConversionLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := store.InsertConversion(ctx, history.Conversion{Handle: "x"}); err == nil {
		t.Fatal("expected error without request id")
	}
	if _, err := store.InsertConversion(ctx, history.Conversion{
		RequestID: "rid-ok", Handle: "report.doc", Category: "document", TargetFormat: "pdf",
		OutputFilename: "report.pdf", DownloadURL: "/download/report.pdf", Outcome: services.OutcomeOK,
		Ticks: 7, StartedAt: time.Now(),
	}); err != nil {
		t.Fatalf("InsertConversion: %v", err)
	}
	if _, err := store.InsertConversion(ctx, history.Conversion{
		RequestID: "rid-fail", Handle: "report.doc", TargetFormat: "odt", Compress: true,
		Outcome: services.OutcomeRejected, ErrorMessage: "Error: unsupported target", StartedAt: time.Now(),
	}); err != nil {
		t.Fatalf("InsertConversion: %v", err)
	}

	latest, err := store.LatestConversion(ctx)
	if err != nil {
		t.Fatalf("LatestConversion: %v", err)
	}
	if latest == nil || latest.RequestID != "rid-ok" || latest.Ticks != 7 || !latest.Succeeded() {
		t.Fatalf("unexpected latest conversion %+v", latest)
	}
	if latest.DownloadedAt != nil {
		t.Fatal("not downloaded yet")
	}

	if err := store.MarkDownloaded(ctx, "rid-ok", "/home/u/Downloads/report.pdf"); err != nil {
		t.Fatalf("MarkDownloaded: %v", err)
	}
	if err := store.MarkDownloaded(ctx, "missing", "/x"); err == nil {
		t.Fatal("expected error for unknown request id")
	}

	list, err := store.ListConversions(ctx, 10)
	if err != nil {
		t.Fatalf("ListConversions: %v", err)
	}
	if len(list) != 2 || list[0].RequestID != "rid-fail" || !list[0].Compress {
		t.Fatalf("unexpected list %+v", list)
	}
	if list[1].DownloadedPath != "/home/u/Downloads/report.pdf" || list[1].DownloadedAt == nil {
		t.Fatalf("download not recorded: %+v", list[1])
	}

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 rows removed, got %d", removed)
	}
	if c, _ := store.LatestConversion(ctx); c != nil {
		t.Fatal("expected empty history after clear")
	}
}

func TestRecorderPersistsSessionAttempts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	recorder := history.NewRecorder(store, nil)
	ctx := context.Background()

	recorder.RecordUpload(ctx, session.UploadRecord{
		Source: session.SourceDrop, Path: "/tmp/a.png", Size: 10,
		Handle: "a.png", Category: "image", Started: time.Now(),
	})
	recorder.RecordUpload(ctx, session.UploadRecord{
		Source: session.SourcePicker, Path: "/tmp/b.exe",
		Err:     &session.UploadError{Kind: session.UploadRejected, Message: "File type not allowed", Err: &api.RejectedError{Message: "File type not allowed"}},
		Started: time.Now(),
	})
	recorder.RecordConversion(ctx, session.ConversionRecord{
		RequestID: "rid-1", Handle: "a.png", Category: "image", TargetFormat: "webp",
		Result:  &session.Result{Filename: "a.webp", DownloadURL: "/download/a.webp"},
		Started: time.Now(),
	})

	uploads, err := store.ListUploads(ctx, 0)
	if err != nil {
		t.Fatalf("ListUploads: %v", err)
	}
	if len(uploads) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(uploads))
	}
	if uploads[0].Outcome != services.OutcomeRejected || uploads[0].ErrorMessage != "Error: File type not allowed" {
		t.Fatalf("unexpected failed upload row %+v", uploads[0])
	}
	if uploads[1].Source != "drop" || uploads[1].Handle != "a.png" {
		t.Fatalf("unexpected upload row %+v", uploads[1])
	}

	latest, err := store.LatestConversion(ctx)
	if err != nil || latest == nil {
		t.Fatalf("LatestConversion: %+v %v", latest, err)
	}
	if latest.OutputFilename != "a.webp" || latest.Outcome != services.OutcomeOK {
		t.Fatalf("unexpected conversion row %+v", latest)
	}
}

func TestConversionLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := history.NewConversionLock(cfg)
	if err != nil {
		t.Fatalf("NewConversionLock: %v", err)
	}
	second, err := history.NewConversionLock(cfg)
	if err != nil {
		t.Fatalf("NewConversionLock: %v", err)
	}

	if err := first.Acquire(); err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if err := second.Acquire(); !errors.Is(err, history.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := second.Acquire(); err != nil {
		t.Fatalf("second Acquire after release: %v", err)
	}
	_ = second.Release()
}
