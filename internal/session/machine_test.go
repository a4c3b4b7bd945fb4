package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fileconv/internal/api"
	"fileconv/internal/services"
	"fileconv/internal/session"
)

type fakeService struct {
	mu         sync.Mutex
	uploadResp api.UploadResponse
	uploadErr  error
	convertFn  func(ctx context.Context, req api.ConvertRequest) (api.ConvertResponse, error)
	uploads    []string
	converts   []api.ConvertRequest
	requestIDs []string
}

func (f *fakeService) UploadFile(ctx context.Context, path string) (api.UploadResponse, error) {
	f.mu.Lock()
	f.uploads = append(f.uploads, path)
	resp, err := f.uploadResp, f.uploadErr
	f.mu.Unlock()
	return resp, err
}

func (f *fakeService) Convert(ctx context.Context, req api.ConvertRequest) (api.ConvertResponse, error) {
	f.mu.Lock()
	f.converts = append(f.converts, req)
	rid, _ := services.RequestIDFromContext(ctx)
	f.requestIDs = append(f.requestIDs, rid)
	fn := f.convertFn
	f.mu.Unlock()
	if fn == nil {
		return api.ConvertResponse{}, errors.New("convert not configured")
	}
	return fn(ctx, req)
}

func (f *fakeService) convertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.converts)
}

func fastTiming() session.Timing {
	return session.Timing{
		Interval:     2 * time.Millisecond,
		Step:         5,
		Cap:          90,
		SuccessDelay: 5 * time.Millisecond,
		FailureDelay: 5 * time.Millisecond,
	}
}

func newMachine(t *testing.T, svc *fakeService) (*session.Machine, *session.RecordingRenderer) {
	t.Helper()
	renderer := &session.RecordingRenderer{}
	m, err := session.New(session.Options{Service: svc, Renderer: renderer, Timing: fastTiming()})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	return m, renderer
}

func documentService() *fakeService {
	return &fakeService{uploadResp: api.UploadResponse{Filename: "report.doc", FileCategory: "document"}}
}

func succeedAfter(d time.Duration) func(context.Context, api.ConvertRequest) (api.ConvertResponse, error) {
	return func(ctx context.Context, req api.ConvertRequest) (api.ConvertResponse, error) {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return api.ConvertResponse{}, ctx.Err()
		}
		return api.ConvertResponse{Filename: "report.pdf", DownloadURL: "/downloads/report.pdf"}, nil
	}
}

func optionCodes(snap session.Snapshot) []string {
	var out []string
	for _, opt := range snap.Options {
		if opt.Code != "" {
			out = append(out, opt.Code)
		}
	}
	return out
}

func TestNewRequiresService(t *testing.T) {
	if _, err := session.New(session.Options{}); err == nil {
		t.Fatal("expected error without service")
	}
}

func TestUploadPopulatesDocumentFormats(t *testing.T) {
	m, renderer := newMachine(t, documentService())

	if err := m.Upload(context.Background(), "/tmp/report.doc"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	snap := m.Snapshot()
	if snap.State != session.FileLoaded {
		t.Fatalf("expected FileLoaded, got %s", snap.State)
	}
	if snap.Handle != "report.doc" || snap.Category != "document" {
		t.Fatalf("unexpected handle/category %q/%q", snap.Handle, snap.Category)
	}
	got := optionCodes(snap)
	want := []string{"pdf", "docx", "odt", "txt"}
	if len(got) != len(want) {
		t.Fatalf("options = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("options = %v, want %v", got, want)
		}
	}
	if snap.Options[0].Code != "" {
		t.Fatalf("expected placeholder first, got %+v", snap.Options[0])
	}
	if states := renderer.States(); len(states) != 1 || states[0] != session.FileLoaded {
		t.Fatalf("unexpected transitions %v", states)
	}
}

func TestUploadUnknownCategoryOffersNothing(t *testing.T) {
	svc := &fakeService{uploadResp: api.UploadResponse{Filename: "song.mp3", FileCategory: "audio"}}
	m, renderer := newMachine(t, svc)

	if err := m.Upload(context.Background(), "song.mp3"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	snap := m.Snapshot()
	if snap.State != session.FileLoaded || snap.HasFormats() {
		t.Fatalf("expected FileLoaded with no formats, got %+v", snap)
	}
	notices := renderer.Notices()
	if len(notices) != 1 || notices[0].Level != session.NoticeWarn {
		t.Fatalf("expected one warning notice, got %+v", notices)
	}
}

func TestUploadNetworkFailureLeavesIdle(t *testing.T) {
	svc := &fakeService{uploadErr: services.Wrap(services.ErrTransport, "upload", "", "request failed", errors.New("connection refused"))}
	m, renderer := newMachine(t, svc)

	err := m.Upload(context.Background(), "report.doc")
	var uploadErr *session.UploadError
	if !errors.As(err, &uploadErr) || uploadErr.Kind != session.UploadNetwork {
		t.Fatalf("expected network UploadError, got %v", err)
	}
	snap := m.Snapshot()
	if snap.State != session.Idle || snap.Handle != "" || snap.Category != "" || len(snap.Options) != 0 {
		t.Fatalf("expected untouched Idle machine, got %+v", snap)
	}
	if len(renderer.States()) != 0 {
		t.Fatalf("format selector must not be invoked, got transitions %v", renderer.States())
	}
	notices := renderer.Notices()
	if len(notices) != 1 || !notices[0].Blocking || notices[0].Message != "Upload failed. Please try again." {
		t.Fatalf("unexpected notices %+v", notices)
	}
}

func TestUploadRejectedKeepsPreviousFile(t *testing.T) {
	svc := documentService()
	m, _ := newMachine(t, svc)
	if err := m.Upload(context.Background(), "report.doc"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := m.SelectFormat("pdf"); err != nil {
		t.Fatalf("SelectFormat: %v", err)
	}

	svc.mu.Lock()
	svc.uploadErr = &api.RejectedError{Endpoint: "upload", Status: 400, Message: "File type not allowed"}
	svc.mu.Unlock()

	err := m.Upload(context.Background(), "virus.exe")
	var uploadErr *session.UploadError
	if !errors.As(err, &uploadErr) || uploadErr.Kind != session.UploadRejected || uploadErr.Message != "File type not allowed" {
		t.Fatalf("expected rejected UploadError, got %v", err)
	}
	if session.UserMessage(err) != "Error: File type not allowed" {
		t.Fatalf("unexpected user message %q", session.UserMessage(err))
	}
	snap := m.Snapshot()
	if snap.State != session.FormatSelected || snap.Handle != "report.doc" || snap.Selected != "pdf" {
		t.Fatalf("state changed on failed upload: %+v", snap)
	}
}

func TestIntakeTakesFirstFileOnly(t *testing.T) {
	svc := documentService()
	m, _ := newMachine(t, svc)

	if err := m.Intake(context.Background(), session.SourceDrop, nil); err != nil {
		t.Fatalf("empty intake: %v", err)
	}
	if len(svc.uploads) != 0 || m.State() != session.Idle {
		t.Fatal("empty intake must be a no-op")
	}

	if err := m.Intake(context.Background(), session.SourceDrop, []string{"a.doc", "b.doc", "c.doc"}); err != nil {
		t.Fatalf("Intake: %v", err)
	}
	if len(svc.uploads) != 1 || svc.uploads[0] != "a.doc" {
		t.Fatalf("expected only first file uploaded, got %v", svc.uploads)
	}
	if snap := m.Snapshot(); snap.Source != session.SourceDrop || snap.Path != "a.doc" {
		t.Fatalf("unexpected intake source/path %q/%q", snap.Source, snap.Path)
	}
}

func TestSelectFormat(t *testing.T) {
	m, _ := newMachine(t, documentService())
	if err := m.SelectFormat("pdf"); !errors.Is(err, session.ErrNoFile) {
		t.Fatalf("expected ErrNoFile before upload, got %v", err)
	}
	if err := m.Upload(context.Background(), "report.doc"); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if err := m.SelectFormat("PNG"); !errors.Is(err, session.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if m.State() != session.FileLoaded {
		t.Fatalf("unknown format must not change state, got %s", m.State())
	}
	if err := m.SelectFormat(" PDF "); err != nil {
		t.Fatalf("SelectFormat: %v", err)
	}
	if snap := m.Snapshot(); snap.State != session.FormatSelected || snap.Selected != "pdf" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if err := m.SelectFormat(""); err != nil {
		t.Fatalf("SelectFormat empty: %v", err)
	}
	if snap := m.Snapshot(); snap.State != session.FileLoaded || snap.Selected != "" {
		t.Fatalf("expected cleared selection, got %+v", snap)
	}
}

func TestConvertWithoutFormatMakesNoRequest(t *testing.T) {
	svc := documentService()
	svc.convertFn = succeedAfter(0)
	m, renderer := newMachine(t, svc)

	if _, err := m.Convert(context.Background(), session.ConvertOptions{}); !errors.Is(err, session.ErrNoFile) {
		t.Fatalf("expected ErrNoFile, got %v", err)
	}
	if err := m.Upload(context.Background(), "report.doc"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	before := m.Snapshot()

	_, err := m.Convert(context.Background(), session.ConvertOptions{})
	var convErr *session.ConversionError
	if !errors.As(err, &convErr) || convErr.Kind != session.ConversionNoFormatSelected {
		t.Fatalf("expected ConversionNoFormatSelected, got %v", err)
	}
	if svc.convertCount() != 0 {
		t.Fatal("no network request expected")
	}
	after := m.Snapshot()
	if after.State != before.State || after.Progress != before.Progress {
		t.Fatalf("state changed: %+v -> %+v", before, after)
	}
	notices := renderer.Notices()
	if notices[len(notices)-1].Message != "Please select a target format" {
		t.Fatalf("unexpected notice %+v", notices[len(notices)-1])
	}
}

func TestConvertSuccessReachesDownloadable(t *testing.T) {
	svc := documentService()
	svc.convertFn = succeedAfter(30 * time.Millisecond)
	m, renderer := newMachine(t, svc)

	if err := m.Upload(context.Background(), "report.doc"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := m.SelectFormat("pdf"); err != nil {
		t.Fatalf("SelectFormat: %v", err)
	}
	result, err := m.Convert(context.Background(), session.ConvertOptions{Compress: false})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if result.Label() != "Download report.pdf" || result.DownloadURL != "/downloads/report.pdf" {
		t.Fatalf("unexpected result %+v", result)
	}
	if m.State() != session.Downloadable {
		t.Fatalf("expected Downloadable, got %s", m.State())
	}
	if got, ok := m.Result(); !ok || got != result {
		t.Fatalf("Result() = %+v %v", got, ok)
	}

	req := svc.converts[0]
	if req.Filename != "report.doc" || req.TargetFormat != "pdf" || req.Compress {
		t.Fatalf("unexpected request %+v", req)
	}
	if svc.requestIDs[0] == "" {
		t.Fatal("expected request id on context")
	}

	states := renderer.States()
	want := []session.State{session.FileLoaded, session.FormatSelected, session.Converting, session.Downloadable}
	if len(states) != len(want) {
		t.Fatalf("transitions = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("transitions = %v, want %v", states, want)
		}
	}
	notices := renderer.Notices()
	if notices[len(notices)-1].Message != "Conversion complete!" {
		t.Fatalf("unexpected final notice %+v", notices[len(notices)-1])
	}
}

func TestProgressMonotonicAndCompleteAtTerminal(t *testing.T) {
	cases := []struct {
		name  string
		delay time.Duration
		fail  bool
	}{
		{"instant success", 0, false},
		{"slow success", 40 * time.Millisecond, false},
		{"past cap", 120 * time.Millisecond, false},
		{"slow failure", 40 * time.Millisecond, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := documentService()
			svc.convertFn = func(ctx context.Context, req api.ConvertRequest) (api.ConvertResponse, error) {
				time.Sleep(tc.delay)
				if tc.fail {
					return api.ConvertResponse{}, &api.RejectedError{Endpoint: "convert", Message: "unsupported target"}
				}
				return api.ConvertResponse{Filename: "report.pdf", DownloadURL: "/downloads/report.pdf"}, nil
			}
			m, renderer := newMachine(t, svc)
			if err := m.Upload(context.Background(), "report.doc"); err != nil {
				t.Fatalf("Upload: %v", err)
			}
			if err := m.SelectFormat("pdf"); err != nil {
				t.Fatalf("SelectFormat: %v", err)
			}
			_, _ = m.Convert(context.Background(), session.ConvertOptions{})

			var (
				inConverting bool
				last         = -1
				checked      bool
			)
			for _, ev := range renderer.Events() {
				switch ev.Kind {
				case "transition":
					if ev.Snapshot.State == session.Converting {
						inConverting = true
						continue
					}
					if inConverting {
						if last != 100 || ev.Snapshot.Progress != 100 {
							t.Fatalf("terminal %s entered with progress %d (last rendered %d)", ev.Snapshot.State, ev.Snapshot.Progress, last)
						}
						inConverting = false
						checked = true
					}
				case "progress":
					if !inConverting {
						t.Fatalf("progress %d rendered outside Converting", ev.Percent)
					}
					if ev.Percent < last {
						t.Fatalf("progress went backwards: %d after %d", ev.Percent, last)
					}
					if ev.Percent != 100 && ev.Percent > 90 {
						t.Fatalf("cosmetic progress exceeded cap: %d", ev.Percent)
					}
					last = ev.Percent
				}
			}
			if !checked {
				t.Fatal("terminal transition not observed")
			}
		})
	}
}

func TestTickerStopsAtCap(t *testing.T) {
	svc := documentService()
	svc.convertFn = succeedAfter(400 * time.Millisecond)
	m, renderer := newMachine(t, svc)
	if err := m.Upload(context.Background(), "report.doc"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := m.SelectFormat("pdf"); err != nil {
		t.Fatalf("SelectFormat: %v", err)
	}
	if _, err := m.Convert(context.Background(), session.ConvertOptions{}); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	progresses := renderer.Progresses()
	if len(progresses) < 2 || progresses[len(progresses)-2] != 90 || progresses[len(progresses)-1] != 100 {
		t.Fatalf("expected progress to reach the 90 cap then snap to 100, got %v", progresses)
	}
	count90 := 0
	for _, p := range progresses {
		if p == 90 {
			count90++
		}
	}
	if count90 != 1 {
		t.Fatalf("ticker kept rendering at the cap: %v", progresses)
	}
}

func TestConvertRejectedRevertsToFormatSelected(t *testing.T) {
	svc := documentService()
	svc.convertFn = func(ctx context.Context, req api.ConvertRequest) (api.ConvertResponse, error) {
		return api.ConvertResponse{}, &api.RejectedError{Endpoint: "convert", Status: 500, Message: "unsupported target"}
	}
	m, renderer := newMachine(t, svc)
	if err := m.Upload(context.Background(), "report.doc"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := m.SelectFormat("odt"); err != nil {
		t.Fatalf("SelectFormat: %v", err)
	}

	_, err := m.Convert(context.Background(), session.ConvertOptions{})
	var convErr *session.ConversionError
	if !errors.As(err, &convErr) || convErr.Kind != session.ConversionRejected || convErr.Message != "unsupported target" {
		t.Fatalf("expected rejected ConversionError, got %v", err)
	}
	snap := m.Snapshot()
	if snap.State != session.FormatSelected || snap.Handle != "report.doc" || snap.Category != "document" || snap.Selected != "odt" {
		t.Fatalf("expected FormatSelected with file intact, got %+v", snap)
	}
	if snap.Result != nil {
		t.Fatal("no result expected after failure")
	}
	var sawError bool
	for _, n := range renderer.Notices() {
		if n.Level == session.NoticeError && n.Message == "Error: unsupported target" {
			sawError = true
		}
	}
	if !sawError {
		t.Fatalf("expected error notice, got %+v", renderer.Notices())
	}

	svc.mu.Lock()
	svc.convertFn = succeedAfter(0)
	svc.mu.Unlock()
	if _, err := m.Convert(context.Background(), session.ConvertOptions{}); err != nil {
		t.Fatalf("retry without re-upload failed: %v", err)
	}
	if len(svc.uploads) != 1 {
		t.Fatalf("expected a single upload, got %d", len(svc.uploads))
	}
	if svc.requestIDs[0] == svc.requestIDs[1] {
		t.Fatal("each attempt needs a fresh request id")
	}
}

func TestConvertNetworkFailure(t *testing.T) {
	svc := documentService()
	svc.convertFn = func(ctx context.Context, req api.ConvertRequest) (api.ConvertResponse, error) {
		return api.ConvertResponse{}, services.Wrap(services.ErrTransport, "convert", "", "request failed", errors.New("eof"))
	}
	m, _ := newMachine(t, svc)
	if err := m.Upload(context.Background(), "report.doc"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := m.SelectFormat("txt"); err != nil {
		t.Fatalf("SelectFormat: %v", err)
	}
	_, err := m.Convert(context.Background(), session.ConvertOptions{})
	var convErr *session.ConversionError
	if !errors.As(err, &convErr) || convErr.Kind != session.ConversionNetwork {
		t.Fatalf("expected network ConversionError, got %v", err)
	}
	if !errors.Is(err, services.ErrTransport) {
		t.Fatal("expected ConversionError to unwrap to transport cause")
	}
	if session.UserMessage(err) != "Conversion failed. Please try again." {
		t.Fatalf("unexpected message %q", session.UserMessage(err))
	}
	if m.State() != session.FormatSelected {
		t.Fatalf("expected FormatSelected, got %s", m.State())
	}
}

func TestSecondConvertWhileConvertingIsRejected(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	svc := documentService()
	svc.convertFn = func(ctx context.Context, req api.ConvertRequest) (api.ConvertResponse, error) {
		close(started)
		<-release
		return api.ConvertResponse{Filename: "report.pdf", DownloadURL: "/downloads/report.pdf"}, nil
	}
	m, _ := newMachine(t, svc)
	if err := m.Upload(context.Background(), "report.doc"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := m.SelectFormat("pdf"); err != nil {
		t.Fatalf("SelectFormat: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := m.Convert(context.Background(), session.ConvertOptions{})
		done <- err
	}()
	<-started

	if _, err := m.Convert(context.Background(), session.ConvertOptions{}); !errors.Is(err, session.ErrConversionInProgress) {
		t.Fatalf("expected ErrConversionInProgress, got %v", err)
	}
	if err := m.Upload(context.Background(), "other.doc"); !errors.Is(err, session.ErrBusy) {
		t.Fatalf("expected ErrBusy for upload while converting, got %v", err)
	}
	if err := m.SelectFormat("docx"); !errors.Is(err, session.ErrConversionInProgress) {
		t.Fatalf("expected selection to be locked, got %v", err)
	}
	if err := m.Reset(); !errors.Is(err, session.ErrConversionInProgress) {
		t.Fatalf("expected reset to be refused, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Convert: %v", err)
	}
	if svc.convertCount() != 1 {
		t.Fatalf("expected exactly one request, got %d", svc.convertCount())
	}
}

func TestCancelledContextSkipsDisplayDelay(t *testing.T) {
	svc := documentService()
	ctx, cancel := context.WithCancel(context.Background())
	svc.convertFn = func(context.Context, api.ConvertRequest) (api.ConvertResponse, error) {
		cancel()
		return api.ConvertResponse{Filename: "report.pdf", DownloadURL: "/downloads/report.pdf"}, nil
	}
	renderer := &session.RecordingRenderer{}
	timing := fastTiming()
	timing.SuccessDelay = time.Hour
	m, err := session.New(session.Options{Service: svc, Renderer: renderer, Timing: timing})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	if err := m.Upload(context.Background(), "report.doc"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := m.SelectFormat("pdf"); err != nil {
		t.Fatalf("SelectFormat: %v", err)
	}

	start := time.Now()
	if _, err := m.Convert(ctx, session.ConvertOptions{}); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("display delay was not cut short")
	}
	if m.State() != session.Downloadable {
		t.Fatalf("expected Downloadable, got %s", m.State())
	}
}

func TestResetAndRestore(t *testing.T) {
	svc := documentService()
	svc.convertFn = succeedAfter(0)
	m, _ := newMachine(t, svc)

	if err := m.Restore("", "document"); !errors.Is(err, session.ErrNoFile) {
		t.Fatalf("expected ErrNoFile, got %v", err)
	}
	if err := m.Restore("photo.jpg", "Image"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	snap := m.Snapshot()
	if snap.State != session.FileLoaded || snap.Category != "image" || len(optionCodes(snap)) != 5 {
		t.Fatalf("unexpected restored snapshot %+v", snap)
	}
	if err := m.SelectFormat("webp"); err != nil {
		t.Fatalf("SelectFormat: %v", err)
	}
	if _, err := m.Convert(context.Background(), session.ConvertOptions{Compress: true}); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !svc.converts[0].Compress || svc.converts[0].Filename != "photo.jpg" {
		t.Fatalf("unexpected request %+v", svc.converts[0])
	}

	if err := m.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	snap = m.Snapshot()
	if snap.State != session.Idle || snap.Handle != "" || snap.Result != nil || snap.Selected != "" {
		t.Fatalf("expected clean Idle machine, got %+v", snap)
	}
	if _, ok := m.Result(); ok {
		t.Fatal("result must be dropped on reset")
	}
}

type recorderSpy struct {
	mu          sync.Mutex
	uploads     []session.UploadRecord
	conversions []session.ConversionRecord
}

func (r *recorderSpy) RecordUpload(_ context.Context, rec session.UploadRecord) {
	r.mu.Lock()
	r.uploads = append(r.uploads, rec)
	r.mu.Unlock()
}

func (r *recorderSpy) RecordConversion(_ context.Context, rec session.ConversionRecord) {
	r.mu.Lock()
	r.conversions = append(r.conversions, rec)
	r.mu.Unlock()
}

func TestRecordersObserveAttempts(t *testing.T) {
	svc := documentService()
	svc.convertFn = succeedAfter(10 * time.Millisecond)
	spy := &recorderSpy{}
	m, err := session.New(session.Options{Service: svc, Recorders: []session.Recorder{spy}, Timing: fastTiming()})
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	if err := m.Intake(context.Background(), session.SourcePicker, []string{"report.doc"}); err != nil {
		t.Fatalf("Intake: %v", err)
	}
	if err := m.SelectFormat("docx"); err != nil {
		t.Fatalf("SelectFormat: %v", err)
	}
	if _, err := m.Convert(context.Background(), session.ConvertOptions{}); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if len(spy.uploads) != 1 || spy.uploads[0].Handle != "report.doc" || spy.uploads[0].Err != nil {
		t.Fatalf("unexpected upload records %+v", spy.uploads)
	}
	if len(spy.conversions) != 1 {
		t.Fatalf("expected one conversion record, got %d", len(spy.conversions))
	}
	rec := spy.conversions[0]
	if rec.TargetFormat != "docx" || rec.Result == nil || rec.RequestID == "" || rec.Err != nil {
		t.Fatalf("unexpected conversion record %+v", rec)
	}
}
