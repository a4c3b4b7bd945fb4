package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fileconv/internal/api"
	"fileconv/internal/formats"
	"fileconv/internal/logging"
	"fileconv/internal/services"
)

// Service is the remote side of the flow. *api.Client satisfies it.
type Service interface {
	UploadFile(ctx context.Context, path string) (api.UploadResponse, error)
	Convert(ctx context.Context, req api.ConvertRequest) (api.ConvertResponse, error)
}

// Options configure a Machine.
type Options struct {
	Service   Service
	Catalog   *formats.Catalog
	Renderer  Renderer
	Recorders []Recorder
	// Timing defaults to DefaultTiming when left zero.
	Timing Timing
	Logger *slog.Logger
}

// ConvertOptions are the per-attempt conversion flags.
type ConvertOptions struct {
	Compress bool
}

// Machine sequences intake, upload, format selection, conversion and result
// presentation. It is safe for concurrent use.
type Machine struct {
	service   Service
	catalog   *formats.Catalog
	renderer  Renderer
	recorders []Recorder
	timing    Timing
	logger    *slog.Logger
	sampler   *logging.ProgressSampler

	mu        sync.Mutex
	state     State
	uploading bool
	source    Source
	path      string
	handle    string
	category  string
	options   []formats.Format
	selected  string
	progress  int
	result    *Result
	attempt   string
}

// New builds a Machine in the Idle state.
func New(opts Options) (*Machine, error) {
	if opts.Service == nil {
		return nil, errors.New("session: service is required")
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = formats.Default()
	}
	renderer := opts.Renderer
	if renderer == nil {
		renderer = nopRenderer{}
	}
	timing := opts.Timing
	if timing == (Timing{}) {
		timing = DefaultTiming()
	}
	return &Machine{
		service:   opts.Service,
		catalog:   catalog,
		renderer:  renderer,
		recorders: opts.Recorders,
		timing:    timing.normalized(),
		logger:    logging.NewComponentLogger(opts.Logger, "session"),
		sampler:   logging.NewProgressSampler(25),
		state:     Idle,
	}, nil
}

// State returns the active state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Snapshot returns a copy of the current machine state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Result returns the last successful conversion while Downloadable.
func (m *Machine) Result() (Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Downloadable || m.result == nil {
		return Result{}, false
	}
	return *m.result, true
}

// Intake takes the first of the offered files and uploads it. Extra files are
// ignored and an empty list is a no-op.
func (m *Machine) Intake(ctx context.Context, source Source, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	if len(paths) > 1 {
		m.logger.Debug("ignoring extra files",
			logging.String("source", string(source)),
			logging.Int("offered", len(paths)),
			logging.String("used", paths[0]),
		)
	}
	return m.upload(ctx, source, paths[0])
}

// Upload sends path to the upload service. On failure the state, handle and
// category are left untouched.
func (m *Machine) Upload(ctx context.Context, filePath string) error {
	return m.upload(ctx, SourcePicker, filePath)
}

func (m *Machine) upload(ctx context.Context, source Source, filePath string) error {
	m.mu.Lock()
	if m.state == Converting || m.uploading {
		m.mu.Unlock()
		return ErrBusy
	}
	m.uploading = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.uploading = false
		m.mu.Unlock()
	}()

	ctx = services.WithStage(ctx, "uploading")
	logger := logging.WithContext(ctx, m.logger)
	rec := UploadRecord{Source: source, Path: filePath, Size: fileSize(filePath), Started: time.Now()}

	logger.Info("uploading file",
		logging.String("path", filePath),
		logging.String("source", string(source)),
		logging.Int64("bytes", rec.Size),
	)
	resp, err := m.service.UploadFile(ctx, filePath)
	rec.Duration = time.Since(rec.Started)
	if err != nil {
		failure := classifyUpload(err)
		rec.Err = failure
		m.mu.Lock()
		m.renderer.Notice(Notice{Level: NoticeError, Message: UserMessage(failure), Blocking: true})
		m.mu.Unlock()
		logger.Warn("upload failed", logging.String("path", filePath), logging.Error(failure))
		m.recordUpload(ctx, rec)
		return failure
	}

	rec.Handle = resp.Filename
	rec.Category = resp.FileCategory

	m.mu.Lock()
	m.source = source
	m.path = filePath
	m.loadLocked(resp.Filename, resp.FileCategory)
	if !m.hasFormatsLocked() {
		m.renderer.Notice(Notice{
			Level:   NoticeWarn,
			Message: fmt.Sprintf("No target formats available for %s files", formats.DisplayCategory(m.category)),
		})
	}
	m.mu.Unlock()

	logger.Info("upload complete",
		logging.String(logging.FieldHandle, resp.Filename),
		logging.String(logging.FieldCategory, resp.FileCategory),
		logging.Duration("elapsed", rec.Duration),
	)
	m.recordUpload(ctx, rec)
	return nil
}

// Restore rebuilds a FileLoaded machine from a previously uploaded handle.
func (m *Machine) Restore(handle, category string) error {
	handle = strings.TrimSpace(handle)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Converting {
		return ErrConversionInProgress
	}
	if m.uploading {
		return ErrBusy
	}
	if handle == "" {
		return ErrNoFile
	}
	m.source = ""
	m.path = ""
	m.loadLocked(handle, strings.ToLower(strings.TrimSpace(category)))
	return nil
}

// SelectFormat picks a target format from the current options. An empty code
// clears the selection.
func (m *Machine) SelectFormat(code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Converting {
		return ErrConversionInProgress
	}
	if m.handle == "" {
		return ErrNoFile
	}
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		m.selected = ""
		m.result = nil
		m.transitionLocked(FileLoaded)
		return nil
	}
	if f, ok := m.catalog.Lookup(m.category, code); ok {
		m.selected = f.Code
		m.result = nil
		m.transitionLocked(FormatSelected)
		return nil
	}
	return fmt.Errorf("%w %q for %s files", ErrUnknownFormat, code, formats.DisplayCategory(m.category))
}

// Convert requests a conversion of the loaded file to the selected format.
// The call returns once the terminal state has been entered.
func (m *Machine) Convert(ctx context.Context, opts ConvertOptions) (Result, error) {
	m.mu.Lock()
	switch {
	case m.state == Converting:
		m.mu.Unlock()
		return Result{}, ErrConversionInProgress
	case m.uploading:
		m.mu.Unlock()
		return Result{}, ErrBusy
	case m.handle == "":
		m.mu.Unlock()
		return Result{}, ErrNoFile
	case m.selected == "":
		failure := &ConversionError{Kind: ConversionNoFormatSelected}
		m.renderer.Notice(Notice{Level: NoticeWarn, Message: failure.UserMessage()})
		m.mu.Unlock()
		return Result{}, failure
	}

	attempt := uuid.NewString()
	req := api.ConvertRequest{Filename: m.handle, TargetFormat: m.selected, Compress: opts.Compress}
	rec := ConversionRecord{
		RequestID:    attempt,
		Handle:       m.handle,
		Category:     m.category,
		TargetFormat: m.selected,
		Compress:     opts.Compress,
		Started:      time.Now(),
	}
	m.attempt = attempt
	m.progress = 0
	m.result = nil
	m.transitionLocked(Converting)
	m.renderer.Progress(0)
	m.mu.Unlock()

	ctx = services.WithRequestID(services.WithStage(ctx, "converting"), attempt)
	logger := logging.WithContext(ctx, m.logger)
	logger.Info("conversion requested",
		logging.String(logging.FieldHandle, req.Filename),
		logging.String(logging.FieldTargetFormat, req.TargetFormat),
		logging.Bool("compress", req.Compress),
	)

	tickCtx, stopTicker := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		rec.Ticks = m.runTicker(tickCtx, attempt, logger)
	}()

	resp, err := m.service.Convert(ctx, req)

	stopTicker()
	wg.Wait()

	var (
		result  Result
		failure *ConversionError
	)
	m.mu.Lock()
	m.progress = 100
	m.renderer.Progress(100)
	if err != nil {
		failure = classifyConversion(err)
		m.renderer.Notice(Notice{Level: NoticeError, Message: failure.UserMessage()})
	} else {
		result = Result{Filename: resultName(resp), DownloadURL: resp.DownloadURL}
		m.renderer.Notice(Notice{Level: NoticeSuccess, Message: "Conversion complete!"})
	}
	m.mu.Unlock()

	if failure != nil {
		pause(ctx, m.timing.FailureDelay)
	} else {
		pause(ctx, m.timing.SuccessDelay)
	}

	m.mu.Lock()
	m.attempt = ""
	if failure != nil {
		m.transitionLocked(FormatSelected)
	} else {
		m.result = &result
		m.transitionLocked(Downloadable)
	}
	m.mu.Unlock()

	rec.Duration = time.Since(rec.Started)
	if failure != nil {
		rec.Err = failure
		logger.Warn("conversion failed",
			logging.String("kind", failure.Kind.String()),
			logging.Duration("elapsed", rec.Duration),
			logging.Error(failure),
		)
		m.recordConversion(ctx, rec)
		return Result{}, failure
	}
	rec.Result = &result
	logger.Info("conversion complete",
		logging.String("output", result.Filename),
		logging.String("download_url", result.DownloadURL),
		logging.Duration("elapsed", rec.Duration),
	)
	m.recordConversion(ctx, rec)
	return result, nil
}

// Reset returns the machine to Idle, dropping the handle, category, selection
// and result.
func (m *Machine) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Converting {
		return ErrConversionInProgress
	}
	if m.uploading {
		return ErrBusy
	}
	m.source = ""
	m.path = ""
	m.handle = ""
	m.category = ""
	m.options = nil
	m.selected = ""
	m.progress = 0
	m.result = nil
	m.transitionLocked(Idle)
	return nil
}

// runTicker advances the cosmetic progress until the cap is reached or ctx is
// cancelled. It returns the number of increments applied.
func (m *Machine) runTicker(ctx context.Context, attempt string, logger *slog.Logger) int {
	ticker := time.NewTicker(m.timing.Interval)
	defer ticker.Stop()
	m.sampler.Reset()

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			return ticks
		case <-ticker.C:
		}

		m.mu.Lock()
		if ctx.Err() != nil || m.state != Converting || m.attempt != attempt || m.progress >= m.timing.Cap {
			m.mu.Unlock()
			return ticks
		}
		m.progress = min(m.progress+m.timing.Step, m.timing.Cap)
		percent := m.progress
		m.renderer.Progress(percent)
		m.mu.Unlock()
		ticks++

		if m.sampler.ShouldLog(attempt, percent) {
			logger.Debug("conversion progress", logging.Int("percent", percent))
		}
	}
}

func (m *Machine) loadLocked(handle, category string) {
	m.handle = handle
	m.category = category
	m.options = m.catalog.Options(category)
	m.selected = ""
	m.progress = 0
	m.result = nil
	m.transitionLocked(FileLoaded)
}

func (m *Machine) hasFormatsLocked() bool {
	for _, opt := range m.options {
		if opt.Code != "" {
			return true
		}
	}
	return false
}

func (m *Machine) transitionLocked(next State) {
	prev := m.state
	m.state = next
	m.renderer.Transition(prev, m.snapshotLocked())
	if prev != next {
		m.logger.Debug("state changed",
			logging.String("from", prev.String()),
			logging.String("to", next.String()),
		)
	}
}

func (m *Machine) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:    m.state,
		Source:   m.source,
		Path:     m.path,
		Handle:   m.handle,
		Category: m.category,
		Selected: m.selected,
		Progress: m.progress,
	}
	if len(m.options) > 0 {
		snap.Options = append([]formats.Format(nil), m.options...)
	}
	if m.result != nil {
		res := *m.result
		snap.Result = &res
	}
	return snap
}

func (m *Machine) recordUpload(ctx context.Context, rec UploadRecord) {
	ctx = context.WithoutCancel(ctx)
	for _, r := range m.recorders {
		r.RecordUpload(ctx, rec)
	}
}

func (m *Machine) recordConversion(ctx context.Context, rec ConversionRecord) {
	ctx = context.WithoutCancel(ctx)
	for _, r := range m.recorders {
		r.RecordConversion(ctx, rec)
	}
}

func classifyUpload(err error) error {
	if errors.Is(err, services.ErrValidation) {
		return err
	}
	if rejected, ok := api.IsRejected(err); ok {
		return &UploadError{Kind: UploadRejected, Message: rejected.Message, Err: err}
	}
	return &UploadError{Kind: UploadNetwork, Err: err}
}

func classifyConversion(err error) *ConversionError {
	if rejected, ok := api.IsRejected(err); ok {
		return &ConversionError{Kind: ConversionRejected, Message: rejected.Message, Err: err}
	}
	return &ConversionError{Kind: ConversionNetwork, Err: err}
}

func resultName(resp api.ConvertResponse) string {
	if name := strings.TrimSpace(resp.Filename); name != "" {
		return name
	}
	ref := resp.DownloadURL
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	return path.Base(ref)
}

func fileSize(filePath string) int64 {
	info, err := os.Stat(filePath)
	if err != nil {
		return 0
	}
	return info.Size()
}

// pause waits for d or until ctx is done. The display delay is cosmetic, so
// cancellation shortens it instead of aborting the transition.
func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
