package file

import (
	"fmt"
	"os"
	"path/filepath"
)

// Creates new event log output module. Returns nil nil if no path.
func NewOutput(filePath string) (module *OutModule, err error) {
	if filePath == "" {
		return
	}

	err = os.MkdirAll(filepath.Dir(filePath), 0750)
	if err != nil {
		err = fmt.Errorf("failed to create event log directory: %w", err)
		return
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		err = fmt.Errorf("failed to open event log: %w", err)
		return
	}

	module = &OutModule{sink: file}
	return
}
