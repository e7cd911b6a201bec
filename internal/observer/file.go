package observer

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/matteso1/radixkv/internal/store"
)

// File appends one JSON line per store event to a log file.
type File struct {
	log    *zap.Logger
	file   *os.File
	path   string
	closed bool
	mu     sync.Mutex
}

// OpenFile opens (or creates) path for appending and writes a start marker.
func OpenFile(path string) (*File, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.Lock(file),
		zap.InfoLevel,
	)

	f := &File{
		log:  zap.New(core).With(zap.String("sink", "file")),
		file: file,
		path: path,
	}
	f.log.Info("log started")
	return f, nil
}

// Path returns the file being written.
func (f *File) Path() string {
	return f.path
}

// OnEvent implements store.Observer. Events after Close are dropped.
func (f *File) OnEvent(kind store.EventType, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.log.Info("store event", zap.String("op", kind.String()), zap.String("key", key))
}

// Close writes an end marker and flushes the file. Detach the sink from the
// store before closing it.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	f.log.Info("log ended")
	if err := f.log.Sync(); err != nil {
		return errors.Join(fmt.Errorf("failed to sync event log: %w", err), f.file.Close())
	}
	return f.file.Close()
}
