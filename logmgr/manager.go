// Package logmgr is the log manager spec.md §6 lists as "consumed,
// optional" — called from the table heap and index mutators at the points
// original_source's InsertTuple/MarkDelete/UpdateTuple emit a record, but
// with no replay: recovery stays a non-goal. Grounded on the teacher's
// storage_engine/wal_manager/wal_segment.go (append-only file, Append then
// Sync, no read-back), collapsed to a single segment with an LSN allocator
// instead of the teacher's segment-rotation scheme, since this core never
// reads its own log back.
package logmgr

import (
	"encoding/binary"
	"os"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Manager allocates LSNs and appends records to a single backing file.
// AppendRecord does not fsync — FlushedLSN only advances once Flush (or
// Close) has actually synced the OS buffer to disk.
type Manager struct {
	mu   sync.Mutex
	file *os.File

	nextLSN    uint64
	flushedLSN atomic.Uint64
}

// NewManager opens (creating if absent) the log file at path.
func NewManager(path string) (*Manager, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "logmgr: open %s", path)
	}
	return &Manager{file: f, nextLSN: 1}, nil
}

// AppendRecord assigns data the next LSN and writes [lsn(8) len(4) data] to
// the log. Returns the assigned LSN.
func (m *Manager) AppendRecord(data []byte) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lsn := m.nextLSN
	m.nextLSN++

	header := make([]byte, 12)
	binary.LittleEndian.PutUint64(header, lsn)
	binary.LittleEndian.PutUint32(header[8:], uint32(len(data)))

	if _, err := m.file.Write(header); err != nil {
		return 0, errors.Wrap(err, "logmgr: write header")
	}
	if _, err := m.file.Write(data); err != nil {
		return 0, errors.Wrap(err, "logmgr: write record")
	}
	return lsn, nil
}

// Flush forces the OS buffer to disk and advances FlushedLSN to the last
// LSN assigned.
func (m *Manager) Flush() error {
	m.mu.Lock()
	last := m.nextLSN - 1
	m.mu.Unlock()

	if err := m.file.Sync(); err != nil {
		return errors.Wrap(err, "logmgr: sync")
	}
	m.flushedLSN.Store(last)
	return nil
}

// FlushedLSN reports the highest LSN known to be durable.
func (m *Manager) FlushedLSN() uint64 { return m.flushedLSN.Load() }

// Close flushes and closes the backing file.
func (m *Manager) Close() error {
	if err := m.Flush(); err != nil {
		return err
	}
	return m.file.Close()
}
