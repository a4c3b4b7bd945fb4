package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTransport  = errors.New("transport failure")
	ErrRejected   = errors.New("rejected by server")
	ErrValidation = errors.New("validation error")
	ErrTimeout    = errors.New("timeout")
)

// Outcome labels used in history records and metrics.
const (
	OutcomeOK       = "ok"
	OutcomeNetwork  = "network"
	OutcomeRejected = "rejected"
	OutcomeInvalid  = "invalid"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of
// the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Outcome maps an error to the label recorded for an attempt.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrRejected):
		return OutcomeRejected
	case errors.Is(err, ErrValidation):
		return OutcomeInvalid
	default:
		return OutcomeNetwork
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
