package log

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/apex/log"
	"github.com/gookit/color"
)

// DefaultLevel is used when WCLANG_LOG is unset or invalid
const DefaultLevel = log.WarnLevel

// InitLogger sets up apex/log to write to w (stderr in practice). level is
// usually the WCLANG_LOG value; verbose raises it to debug.
func InitLogger(w io.Writer, level string, verbose bool) {
	log.SetHandler(NewHandler(w))
	log.SetLevel(ParseLevel(level, verbose))
}

// ParseLevel resolves the effective log level
func ParseLevel(level string, verbose bool) log.Level {
	if verbose {
		return log.DebugLevel
	}

	l, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return DefaultLevel
	}

	return l
}

// Handler writes "wclang: <level>: <message> key=value..." lines. stdout is
// never used: it carries cache paths and query output.
type Handler struct {
	mu sync.Mutex
	w  io.Writer
}

// NewHandler returns a handler writing to w
func NewHandler(w io.Writer) *Handler {
	return &Handler{w: w}
}

// HandleLog implements the log.Handler interface
func (h *Handler) HandleLog(e *log.Entry) error {
	prefix := fmt.Sprintf("wclang: %s:", e.Level)
	if e.Level >= log.WarnLevel {
		prefix = color.Bold.Sprint(prefix)
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(" ")
	b.WriteString(e.Message)

	for _, name := range e.Fields.Names() {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields.Get(name))
	}

	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := io.WriteString(h.w, b.String())
	return err
}
