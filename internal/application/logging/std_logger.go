package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

var levelRank = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// StdLoggerOptions configures a StdLogger
type StdLoggerOptions struct {
	// Minimum level written: debug, info, warn, error
	Level string
	// "text" or "json"
	Format string
	// Destination; defaults to stdout
	Output io.Writer
	// Tag printed on every line, usually the run id
	Tag string
	// Clock for timestamps; defaults to the real clock
	Clock shared.Clock
}

// StdLogger writes level-filtered lines to a writer
type StdLogger struct {
	mu      sync.Mutex
	out     io.Writer
	minRank int
	json    bool
	tag     string
	clock   shared.Clock
}

// NewStdLogger creates a logger from options
func NewStdLogger(opts StdLoggerOptions) *StdLogger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	clock := opts.Clock
	if clock == nil {
		clock = shared.NewRealClock()
	}
	rank, ok := levelRank[strings.ToUpper(opts.Level)]
	if !ok {
		rank = levelRank[LevelInfo]
	}
	return &StdLogger{
		out:     out,
		minRank: rank,
		json:    strings.EqualFold(opts.Format, "json"),
		tag:     opts.Tag,
		clock:   clock,
	}
}

// Log writes one line when level is at or above the configured minimum
func (l *StdLogger) Log(level, message string, metadata map[string]interface{}) {
	level = strings.ToUpper(level)
	if rank, ok := levelRank[level]; ok && rank < l.minRank {
		return
	}
	now := l.clock.Now()

	var line string
	if l.json {
		line = l.jsonLine(now, level, message, metadata)
	} else {
		line = l.textLine(now, level, message, metadata)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, line)
}

func (l *StdLogger) textLine(now time.Time, level, message string, metadata map[string]interface{}) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", now.Format(time.RFC3339))
	if l.tag != "" {
		fmt.Fprintf(&b, "[%s] ", l.tag)
	}
	fmt.Fprintf(&b, "%s: %s", level, message)

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, metadata[k])
	}
	return b.String()
}

func (l *StdLogger) jsonLine(now time.Time, level, message string, metadata map[string]interface{}) string {
	entry := map[string]interface{}{
		"ts":    now.Format(time.RFC3339Nano),
		"level": level,
		"msg":   message,
	}
	if l.tag != "" {
		entry["run"] = l.tag
	}
	if len(metadata) > 0 {
		entry["meta"] = metadata
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return l.textLine(now, level, message, map[string]interface{}{"marshal_error": err.Error()})
	}
	return string(data)
}
