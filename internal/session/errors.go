package session

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when an upload is attempted while another upload or
	// a conversion is pending.
	ErrBusy = errors.New("busy: wait for the current request to finish")
	// ErrConversionInProgress guards against a second concurrent conversion.
	ErrConversionInProgress = errors.New("conversion already in progress")
	// ErrNoFile is returned when an operation needs an uploaded file.
	ErrNoFile = errors.New("no file loaded")
	// ErrUnknownFormat is returned when the selected code is not on offer.
	ErrUnknownFormat = errors.New("unknown target format")
)

// UploadErrorKind classifies upload failures.
type UploadErrorKind int

const (
	UploadNetwork UploadErrorKind = iota
	UploadRejected
)

func (k UploadErrorKind) String() string {
	if k == UploadRejected {
		return "rejected"
	}
	return "network"
}

// UploadError reports a failed upload. The machine state is left unchanged.
type UploadError struct {
	Kind    UploadErrorKind
	Message string
	Err     error
}

func (e *UploadError) Error() string {
	if e.Kind == UploadRejected {
		return "upload rejected: " + e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("upload failed: %v", e.Err)
	}
	return "upload failed"
}

func (e *UploadError) Unwrap() error { return e.Err }

// UserMessage is the notice text shown to the user.
func (e *UploadError) UserMessage() string {
	if e.Kind == UploadRejected {
		return "Error: " + e.Message
	}
	return "Upload failed. Please try again."
}

// ConversionErrorKind classifies conversion failures.
type ConversionErrorKind int

const (
	ConversionNoFormatSelected ConversionErrorKind = iota
	ConversionNetwork
	ConversionRejected
)

func (k ConversionErrorKind) String() string {
	switch k {
	case ConversionNoFormatSelected:
		return "no_format_selected"
	case ConversionRejected:
		return "rejected"
	default:
		return "network"
	}
}

// ConversionError reports a failed or refused conversion attempt.
type ConversionError struct {
	Kind    ConversionErrorKind
	Message string
	Err     error
}

func (e *ConversionError) Error() string {
	switch e.Kind {
	case ConversionNoFormatSelected:
		return "no target format selected"
	case ConversionRejected:
		return "conversion rejected: " + e.Message
	default:
		if e.Err != nil {
			return fmt.Sprintf("conversion failed: %v", e.Err)
		}
		return "conversion failed"
	}
}

func (e *ConversionError) Unwrap() error { return e.Err }

// UserMessage is the notice text shown to the user.
func (e *ConversionError) UserMessage() string {
	switch e.Kind {
	case ConversionNoFormatSelected:
		return "Please select a target format"
	case ConversionRejected:
		return "Error: " + e.Message
	default:
		return "Conversion failed. Please try again."
	}
}

// UserMessage returns the user-facing text for any error produced by the
// machine, falling back to err.Error().
func UserMessage(err error) string {
	var uploadErr *UploadError
	if errors.As(err, &uploadErr) {
		return uploadErr.UserMessage()
	}
	var convErr *ConversionError
	if errors.As(err, &convErr) {
		return convErr.UserMessage()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
