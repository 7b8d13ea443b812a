package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// ZstdJSONL writes one JSON line per entry into zstd-compressed files,
// starting a new file every wall-clock hour.
type ZstdJSONL struct {
	dir    string
	prefix string
	now    func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

// NewZstdJSONL creates a writer under dir. Files are named
// <prefix>-YYYY-MM-DD-HH.jsonl.zst.
func NewZstdJSONL(dir, prefix string) *ZstdJSONL {
	return &ZstdJSONL{dir: dir, prefix: prefix, now: time.Now}
}

// Name identifies the sink in logs and metrics.
func (z *ZstdJSONL) Name() string { return "zstd" }

// Write appends the entries to the current hour's file.
func (z *ZstdJSONL) Write(entries []Entry) error {
	z.mu.Lock()
	defer z.mu.Unlock()

	hour := z.now().UTC().Format("2006-01-02-15")
	if hour != z.curHour {
		if err := z.rotateLocked(hour); err != nil {
			return err
		}
	}

	for _, e := range entries {
		b, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if _, err := z.w.Write(b); err != nil {
			return err
		}
		if err := z.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return z.w.Flush()
}

// Close finishes the current file.
func (z *ZstdJSONL) Close() error {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.closeLocked()
}

func (z *ZstdJSONL) rotateLocked(hour string) error {
	if err := z.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(z.dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(z.path(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	z.f, z.enc, z.curHour = f, enc, hour
	z.w = bufio.NewWriterSize(enc, 64*1024)
	return nil
}

func (z *ZstdJSONL) closeLocked() error {
	var err error
	if z.w != nil {
		err = z.w.Flush()
	}
	if z.enc != nil {
		if cerr := z.enc.Close(); err == nil {
			err = cerr
		}
		z.enc = nil
	}
	if z.f != nil {
		if cerr := z.f.Close(); err == nil {
			err = cerr
		}
		z.f = nil
	}
	z.w = nil
	z.curHour = ""
	return err
}

func (z *ZstdJSONL) path(hour string) string {
	return filepath.Join(z.dir, fmt.Sprintf("%s-%s.jsonl.zst", z.prefix, hour))
}

// ReadZstdJSONL decodes every entry of one journal file.
func ReadZstdJSONL(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []Entry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("decode journal line: %w", err)
		}
		out = append(out, e)
	}
	return out, sc.Err()
}
