// Package store persists the per-pair counters behind the counting variant
// strategy. Every type here satisfies loader.Counter.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Memory keeps counts for the lifetime of the process.
type Memory struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMemory() *Memory { return &Memory{counts: map[string]int{}} }

func (m *Memory) Count(key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key], nil
}

func (m *Memory) SetCount(key string, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key] = n
	return nil
}

// JSONFile keeps counts in a JSON document under "counts". Other top-level
// fields of the file are preserved.
type JSONFile struct {
	path string
	mu   sync.Mutex
}

func NewJSONFile(path string) *JSONFile { return &JSONFile{path: path} }

func (f *JSONFile) Path() string { return f.path }

func (f *JSONFile) read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []byte(`{}`), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []byte(`{}`), nil
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%s: not valid json", f.path)
	}
	return data, nil
}

func (f *JSONFile) Count(key string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	if err != nil {
		return 0, err
	}
	return int(gjson.GetBytes(data, countPath(key)).Int()), nil
}

func (f *JSONFile) SetCount(key string, n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	if err != nil {
		return err
	}
	out, err := sjson.SetBytes(data, countPath(key), n)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, out, "", "  "); err == nil {
		out = buf.Bytes()
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

// Snapshot returns every stored count.
func (f *JSONFile) Snapshot() (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	if err != nil {
		return nil, err
	}
	out := map[string]int{}
	gjson.GetBytes(data, "counts").ForEach(func(k, v gjson.Result) bool {
		out[k.String()] = int(v.Int())
		return true
	})
	return out, nil
}

func countPath(key string) string {
	var b strings.Builder
	b.WriteString("counts.")
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%', ':':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
