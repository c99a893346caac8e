package app

import (
	"strings"
	"sync"

	"fyne.io/fyne/v2/widget"
)

const maxLogLines = 1000

// LogPanel is the read-only scrolling log shown in the main window.
type LogPanel struct {
	mu       sync.Mutex
	textArea *widget.TextGrid
	content  []string
}

func NewLogPanel() *LogPanel {
	return &LogPanel{
		textArea: widget.NewTextGrid(),
		content:  make([]string, 0),
	}
}

func (lp *LogPanel) AddText(text string) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	lp.content = append(lp.content, text)

	// Keep only last 1000 lines
	if len(lp.content) > maxLogLines {
		lp.content = lp.content[len(lp.content)-maxLogLines:]
	}

	lp.textArea.SetText(strings.Join(lp.content, "\n"))
}

func (lp *LogPanel) Clear() {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	lp.content = make([]string, 0)
	lp.textArea.SetText("")
}

// Lines returns a copy of the buffered lines.
func (lp *LogPanel) Lines() []string {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return append([]string(nil), lp.content...)
}

// PanelWriter implements io.Writer for logging
type PanelWriter struct {
	panel *LogPanel
}

func NewPanelWriter(panel *LogPanel) *PanelWriter {
	return &PanelWriter{panel: panel}
}

func (w *PanelWriter) Write(p []byte) (n int, err error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			w.panel.AddText(line)
		}
	}
	return len(p), nil
}
