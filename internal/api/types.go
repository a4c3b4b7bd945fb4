package api

// UploadResponse mirrors the /upload response body.
type UploadResponse struct {
	Filename     string `json:"filename,omitempty"`
	FileCategory string `json:"file_category,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ConvertRequest is the /convert request body. A fresh value is built for
// every attempt.
type ConvertRequest struct {
	Filename     string `json:"filename"`
	TargetFormat string `json:"target_format"`
	Compress     bool   `json:"compress"`
}

// ConvertResponse mirrors the /convert response body.
type ConvertResponse struct {
	Filename    string `json:"filename,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

// DownloadResult describes a fetched artefact.
type DownloadResult struct {
	URL         string
	ContentType string
	Bytes       int64
}
