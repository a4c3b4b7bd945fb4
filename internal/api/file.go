package api

import (
	"fmt"
	"os"

	"fileconv/internal/services"
)

// openFile opens path for upload. Directories and unreadable paths are
// reported as validation errors so callers can tell them from transport
// failures.
func openFile(path string) (*os.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "upload", "open", path, err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "upload", "open", fmt.Sprintf("%s is a directory", path), nil)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "upload", "open", path, err)
	}
	return f, nil
}
