package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"klema-chatbot/internal/rag"
)

// FileProvider serves the snapshot written by the refresh job. The snapshot
// is loaded lazily and reloaded whenever Watch sees the file change.
type FileProvider struct {
	path   string
	logger *slog.Logger

	mu       sync.RWMutex
	products []rag.ProductRecord
	loaded   bool
	onReload func()
}

// NewFileProvider creates a provider for the snapshot at path.
func NewFileProvider(path string, logger *slog.Logger) (*FileProvider, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: catalog file path is empty", ErrNotConfigured)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileProvider{path: path, logger: logger}, nil
}

// Path returns the snapshot location.
func (p *FileProvider) Path() string {
	return p.path
}

// OnReload registers fn to run after Watch reloads the snapshot.
func (p *FileProvider) OnReload(fn func()) {
	p.mu.Lock()
	p.onReload = fn
	p.mu.Unlock()
}

// Products returns the current snapshot. A missing file is an empty catalog.
func (p *FileProvider) Products(ctx context.Context) ([]rag.ProductRecord, error) {
	p.mu.RLock()
	if p.loaded {
		products := p.products
		p.mu.RUnlock()
		return products, nil
	}
	p.mu.RUnlock()

	if err := p.Reload(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.products, nil
}

// Reload re-reads the snapshot from disk.
func (p *FileProvider) Reload() error {
	snap, err := ReadSnapshot(p.path)
	if errors.Is(err, os.ErrNotExist) {
		p.logger.Warn("catalog snapshot not found, serving empty catalog", "path", p.path)
		snap = Snapshot{}
	} else if err != nil {
		return err
	}

	p.mu.Lock()
	p.products = snap.Products
	p.loaded = true
	p.mu.Unlock()

	p.logger.Info("catalog snapshot loaded", "path", p.path, "products", len(snap.Products))
	return nil
}

// Watch reloads the snapshot whenever the file is written or replaced, until
// ctx is cancelled. The parent directory is watched so atomic renames are seen.
func (p *FileProvider) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	dir := filepath.Dir(p.path)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(p.path)
	go func() {
		defer func() {
			_ = w.Close()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if err := p.Reload(); err != nil {
					p.logger.Error("failed to reload catalog snapshot", "path", p.path, "error", err)
					continue
				}
				p.mu.RLock()
				fn := p.onReload
				p.mu.RUnlock()
				if fn != nil {
					fn()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				p.logger.Warn("catalog watcher error", "error", err)
			}
		}
	}()
	return nil
}

// ReadSnapshot decodes a snapshot file.
func ReadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read catalog snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode catalog snapshot %s: %w", path, err)
	}
	return snap, nil
}

// WriteSnapshot writes snap to path atomically via a temp file and rename.
func WriteSnapshot(path string, snap Snapshot) error {
	snap.Count = len(snap.Products)
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
