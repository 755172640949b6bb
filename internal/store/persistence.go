// Package store records published events to a JSONL history file.
package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmylchreest/hybar/internal/model"
)

// SchemaVersion is the current persistence schema version.
const SchemaVersion = 1

// schemaHeader is the first line of the JSONL file.
type schemaHeader struct {
	HybarSchemaVersion int   `json:"hybar_schema_version"`
	CreatedAt          int64 `json:"created_at"`
}

// ErrPersistenceClosed is returned when operations are attempted on a closed persistence.
var ErrPersistenceClosed = errors.New("persistence is closed")

// JSONLPersistence appends events to a JSONL file. It implements publish.Sink.
type JSONLPersistence struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	closed bool
}

// NewJSONLPersistence opens path for appending, creating it with a schema
// header if it doesn't exist.
func NewJSONLPersistence(path string) (*JSONLPersistence, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := openAppend(path)
	if err != nil {
		return nil, err
	}

	return &JSONLPersistence{
		path: path,
		file: file,
	}, nil
}

// openAppend opens path for appending and writes the schema header when the
// file is new or empty.
func openAppend(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	if info.Size() == 0 {
		if err := writeHeader(file); err != nil {
			file.Close()
			return nil, err
		}
	}
	return file, nil
}

// Path returns the history file path.
func (p *JSONLPersistence) Path() string {
	return p.path
}

func newHeader() schemaHeader {
	return schemaHeader{
		HybarSchemaVersion: SchemaVersion,
		CreatedAt:          time.Now().Unix(),
	}
}

func writeHeader(w io.Writer) error {
	data, err := json.Marshal(newHeader())
	if err != nil {
		return err
	}

	_, err = w.Write(append(data, '\n'))
	return err
}

// Publish appends an event. Events are not synced individually; Close syncs.
// If another process replaced or removed the file (history prune), the path
// is reopened first so the event lands in the live file.
func (p *JSONLPersistence) Publish(e model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.file == nil {
		return ErrPersistenceClosed
	}

	if err := p.reopenIfReplaced(); err != nil {
		return err
	}

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	_, err = p.file.Write(append(data, '\n'))
	return err
}

// reopenIfReplaced swaps the append handle for a fresh one when the file at
// p.path is no longer the file the handle points at. Must hold p.mu.
func (p *JSONLPersistence) reopenIfReplaced() error {
	onDisk, err := os.Stat(p.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err == nil {
		current, err := p.file.Stat()
		if err != nil {
			return err
		}
		if os.SameFile(current, onDisk) {
			return nil
		}
	}

	file, err := openAppend(p.path)
	if err != nil {
		return err
	}
	_ = p.file.Close()
	p.file = file
	return nil
}

// Rewrite atomically replaces the file contents with events and reopens it
// for appending. Used by prune.
func (p *JSONLPersistence) Rewrite(events []model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPersistenceClosed
	}

	tmpPath := p.path + ".tmp"
	if err := writeEvents(tmpPath, events); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if p.file != nil {
		_ = p.file.Close()
		p.file = nil
	}
	if err := os.Rename(tmpPath, p.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", p.path, err)
	}

	file, err := os.OpenFile(p.path, os.O_RDWR|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to reopen %s: %w", p.path, err)
	}
	p.file = file
	return nil
}

// writeEvents writes a header and events to a new file at path.
func writeEvents(path string, events []model.Event) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	err = enc.Encode(newHeader())
	for i := 0; err == nil && i < len(events); i++ {
		err = enc.Encode(events[i])
	}
	if err == nil {
		err = w.Flush()
	}
	if err == nil {
		err = file.Sync()
	}
	return errors.Join(err, file.Close())
}

// Close syncs and releases the file.
func (p *JSONLPersistence) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.file == nil {
		return nil
	}
	syncErr := p.file.Sync()
	closeErr := p.file.Close()
	p.file = nil
	return errors.Join(syncErr, closeErr)
}

// Load reads every event from a history file. Malformed lines are skipped
// and counted. A missing file yields no events.
func Load(path string) (events []model.Event, skipped int, err error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	defer file.Close()

	return decode(file)
}

func decode(r io.Reader) ([]model.Event, int, error) {
	var events []model.Event
	skipped := 0

	scanner := bufio.NewScanner(r)
	const maxLineSize = 1024 * 1024 // 1MB
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		// First line is the header
		if lineNum == 1 {
			var header schemaHeader
			if err := json.Unmarshal(line, &header); err == nil && header.HybarSchemaVersion > 0 {
				if header.HybarSchemaVersion > SchemaVersion {
					return nil, 0, fmt.Errorf("unsupported schema version %d (max: %d)",
						header.HybarSchemaVersion, SchemaVersion)
				}
				continue
			}
		}

		var e model.Event
		if err := json.Unmarshal(line, &e); err != nil || e.ID == "" {
			skipped++
			continue
		}
		events = append(events, e)
	}

	if err := scanner.Err(); err != nil {
		return events, skipped, fmt.Errorf("error reading file: %w", err)
	}
	return events, skipped, nil
}
