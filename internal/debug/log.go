// Package debug writes a categorized log file while the TUI owns the
// terminal.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	file    *os.File
	mu      sync.Mutex
	enabled bool
)

// Enable starts debug logging to path, creating its directory if needed.
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	f, err := tea.LogToFile(path, "")
	if err != nil {
		return err
	}
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	file = f
	enabled = true
	log.Printf("%-10s %s", "debug", "=== Debug logging started ===")
	return nil
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		log.SetOutput(io.Discard)
		file.Close()
		file = nil
	}
	enabled = false
}

// Enabled reports whether messages are being written.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Log writes a message under category.
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || file == nil {
		return
	}
	log.Printf("%-10s %s", category, fmt.Sprintf(format, args...))
}
