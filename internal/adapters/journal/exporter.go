package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/andrescamacho/citysim-go/internal/application/simulation"
)

// ParseLevel maps a configured compression name to a zstd level
func ParseLevel(name string) (zstd.EncoderLevel, error) {
	switch name {
	case "", "default":
		return zstd.SpeedDefault, nil
	case "fastest":
		return zstd.SpeedFastest, nil
	case "better":
		return zstd.SpeedBetterCompression, nil
	case "best":
		return zstd.SpeedBestCompression, nil
	}
	return zstd.SpeedDefault, fmt.Errorf("unknown compression level %q", name)
}

// ZstdExporter appends tick reports as zstd-compressed JSON lines.
// It is a simulation.ReportSink; Close must be called to finish the frame.
type ZstdExporter struct {
	mu    sync.Mutex
	f     *os.File
	enc   *zstd.Encoder
	w     *bufio.Writer
	lines int
}

// NewZstdExporter creates (or truncates) path and its parent directories
func NewZstdExporter(path string, level zstd.EncoderLevel) (*ZstdExporter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(level))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &ZstdExporter{
		f:   f,
		enc: enc,
		w:   bufio.NewWriterSize(enc, 128*1024),
	}, nil
}

// Publish writes one report as a JSON line
func (e *ZstdExporter) Publish(_ context.Context, report *simulation.TickReport) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.w == nil {
		return fmt.Errorf("exporter is closed")
	}
	b, err := json.Marshal(report)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(b); err != nil {
		return err
	}
	if err := e.w.WriteByte('\n'); err != nil {
		return err
	}
	e.lines++
	return nil
}

// Lines returns how many reports were written
func (e *ZstdExporter) Lines() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lines
}

// Close flushes buffered reports and closes the file
func (e *ZstdExporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var err1, err2 error
	if e.w != nil {
		err1 = e.w.Flush()
		e.w = nil
	}
	if e.enc != nil {
		err2 = e.enc.Close()
		e.enc = nil
	}
	if e.f != nil {
		if err := e.f.Close(); err1 == nil && err2 == nil {
			err1 = err
		}
		e.f = nil
	}
	if err1 != nil {
		return err1
	}
	return err2
}

// ReadReports decodes every report of an export in order and hands it to fn.
// Returning an error from fn stops the read.
func ReadReports(r io.Reader, fn func(*simulation.TickReport) error) error {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		var report simulation.TickReport
		if err := json.Unmarshal(sc.Bytes(), &report); err != nil {
			return fmt.Errorf("line %d: unmarshal: %w", line, err)
		}
		if err := fn(&report); err != nil {
			return err
		}
	}
	return sc.Err()
}

// ReadFile is ReadReports over a file path
func ReadFile(path string, fn func(*simulation.TickReport) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := ReadReports(f, fn); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}
