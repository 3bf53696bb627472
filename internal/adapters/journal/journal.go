package journal

import (
	"bufio"
	"delivery-fleet-sim/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Journal writes simulation events as zstd-compressed JSON lines, one file
// per run. It implements ports.EventSink.
type Journal struct {
	path string

	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
	n   int
}

// Open creates <dir>/<runID>.jsonl.zst, truncating an earlier file for the
// same run.
func Open(dir, runID string) (*Journal, error) {
	if runID == "" {
		return nil, errors.New("open journal: run id must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	path := PathFor(dir, runID)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open journal: %w", err)
	}

	return &Journal{
		path: path,
		f:    f,
		enc:  enc,
		w:    bufio.NewWriterSize(enc, 64*1024),
	}, nil
}

func PathFor(dir, runID string) string {
	return filepath.Join(dir, runID+".jsonl.zst")
}

func (j *Journal) Path() string { return j.path }

// Len is the number of events written so far.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.n
}

func (j *Journal) Record(ev ports.SimEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.w == nil {
		return errors.New("journal: closed")
	}

	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("journal: encode %s event: %w", ev.Kind, err)
	}
	if _, err := j.w.Write(b); err != nil {
		return fmt.Errorf("journal: write: %w", err)
	}
	if err := j.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("journal: write: %w", err)
	}
	j.n++
	return nil
}

// Close flushes and finishes the compressed stream. Closing twice is a no-op.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.w == nil {
		return nil
	}

	var errs []error
	errs = append(errs, j.w.Flush())
	errs = append(errs, j.enc.Close())
	errs = append(errs, j.f.Close())
	j.w, j.enc, j.f = nil, nil, nil
	return errors.Join(errs...)
}

// ReadAll decodes every event from a closed journal file.
func ReadAll(path string) ([]ports.SimEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("read journal %s: %w", path, err)
	}
	defer dec.Close()

	return decode(dec)
}

func decode(r io.Reader) ([]ports.SimEvent, error) {
	var out []ports.SimEvent
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; sc.Scan(); line++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var ev ports.SimEvent
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			return nil, fmt.Errorf("read journal: line %d: %w", line, err)
		}
		out = append(out, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return out, nil
}
