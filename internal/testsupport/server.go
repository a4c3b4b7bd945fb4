package testsupport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

var allowedExtensions = map[string]string{
	"pdf": "document", "docx": "document", "doc": "document", "odt": "document", "txt": "document",
	"png": "image", "jpg": "image", "jpeg": "image", "gif": "image", "bmp": "image", "tiff": "image", "webp": "image",
}

// RecordedConvert is one /convert call seen by the fake service.
type RecordedConvert struct {
	Filename     string `json:"filename"`
	TargetFormat string `json:"target_format"`
	Compress     bool   `json:"compress"`
	RequestID    string `json:"-"`
}

// FakeService is an in-memory stand-in for the conversion service. Uploaded
// files are categorised by extension, conversions rename the stored file and
// downloads serve the stored bytes.
type FakeService struct {
	*httptest.Server

	mu           sync.Mutex
	files        map[string][]byte
	outputs      map[string][]byte
	uploads      []string
	converts     []RecordedConvert
	convertDelay time.Duration
	convertError string
	convertGate  chan struct{}
	failNext     int
}

// NewFakeService starts the fake service and registers cleanup.
func NewFakeService(t testing.TB) *FakeService {
	t.Helper()

	f := &FakeService{
		files:   make(map[string][]byte),
		outputs: make(map[string][]byte),
	}
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Post("/upload", f.upload)
	router.Post("/convert", f.convert)
	router.Get("/download/{name}", f.download)

	f.Server = httptest.NewServer(router)
	t.Cleanup(f.Close)
	return f
}

// SetConvertDelay makes every conversion take at least d.
func (f *FakeService) SetConvertDelay(d time.Duration) {
	f.mu.Lock()
	f.convertDelay = d
	f.mu.Unlock()
}

// SetConvertError makes conversions answer {"error": msg}. An empty message
// restores normal behaviour.
func (f *FakeService) SetConvertError(msg string) {
	f.mu.Lock()
	f.convertError = msg
	f.mu.Unlock()
}

// HoldConversions blocks conversions until the returned release func runs.
func (f *FakeService) HoldConversions() (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.convertGate = gate
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// DropConnections makes the next n requests fail at the transport level.
func (f *FakeService) DropConnections(n int) {
	f.mu.Lock()
	f.failNext = n
	f.mu.Unlock()
}

// Uploads returns the uploaded file names in order.
func (f *FakeService) Uploads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploads...)
}

// Converts returns the conversion requests in order.
func (f *FakeService) Converts() []RecordedConvert {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedConvert(nil), f.converts...)
}

// PutOutput stores a converted artefact to be served under /download/name.
func (f *FakeService) PutOutput(name string, data []byte) {
	f.mu.Lock()
	f.outputs[name] = data
	f.mu.Unlock()
}

func (f *FakeService) dropped(w http.ResponseWriter) bool {
	f.mu.Lock()
	drop := f.failNext > 0
	if drop {
		f.failNext--
	}
	f.mu.Unlock()
	if !drop {
		return false
	}
	if hj, ok := w.(http.Hijacker); ok {
		if conn, _, err := hj.Hijack(); err == nil {
			_ = conn.Close()
			return true
		}
	}
	w.WriteHeader(http.StatusBadGateway)
	return true
}

func (f *FakeService) upload(w http.ResponseWriter, r *http.Request) {
	if f.dropped(w) {
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file part"})
		return
	}
	defer file.Close()

	name := path.Base(strings.ReplaceAll(header.Filename, "\\", "/"))
	if name == "" || name == "." {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No selected file"})
		return
	}
	category, ok := allowedExtensions[extension(name)]
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "File type not allowed"})
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	f.mu.Lock()
	f.files[name] = data
	f.uploads = append(f.uploads, name)
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{
		"message":       "File uploaded successfully",
		"filename":      name,
		"file_category": category,
	})
}

func (f *FakeService) convert(w http.ResponseWriter, r *http.Request) {
	if f.dropped(w) {
		return
	}
	var req RecordedConvert
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing parameters"})
		return
	}
	req.RequestID = r.Header.Get("X-Request-ID")

	f.mu.Lock()
	f.converts = append(f.converts, req)
	delay, forced, gate := f.convertDelay, f.convertError, f.convertGate
	data, known := f.files[req.Filename]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	switch {
	case req.Filename == "" || req.TargetFormat == "":
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing parameters"})
		return
	case !known:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "File not found"})
		return
	case forced != "":
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": forced})
		return
	}

	stem := strings.TrimSuffix(req.Filename, path.Ext(req.Filename))
	if req.Compress {
		stem += "_compressed"
	}
	output := stem + "." + strings.ToLower(req.TargetFormat)

	f.mu.Lock()
	f.outputs[output] = data
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{
		"message":      "Conversion successful",
		"download_url": "/download/" + output,
		"filename":     output,
	})
}

func (f *FakeService) download(w http.ResponseWriter, r *http.Request) {
	if f.dropped(w) {
		return
	}
	name := chi.URLParam(r, "name")
	f.mu.Lock()
	data, ok := f.outputs[name]
	f.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "File not found"})
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func extension(name string) string {
	ext := path.Ext(name)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
