package render

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const templateExt = ".html"

var ErrTemplateNotFound = errors.New("template not found")

//go:embed templates/*.html
var defaultTemplates embed.FS

// Store resolves a template identifier to template text.
type Store interface {
	Lookup(id string) (string, error)
}

type FSStore struct {
	fsys fs.FS
}

func NewFSStore(fsys fs.FS) *FSStore {
	return &FSStore{fsys: fsys}
}

// DefaultStore serves the template set compiled into the binary.
func DefaultStore() *FSStore {
	sub, err := fs.Sub(defaultTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return NewFSStore(sub)
}

func (s *FSStore) Lookup(id string) (string, error) {
	if !validId(id) {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}
	b, err := fs.ReadFile(s.fsys, id+templateExt)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
		}
		return "", fmt.Errorf("read template %q: %w", id, err)
	}
	return string(b), nil
}

// DirStore reads templates from a directory and caches their text until the
// file changes on disk.
type DirStore struct {
	dir    string
	fs     *FSStore
	logger zerolog.Logger

	mu    sync.RWMutex
	cache map[string]string
}

func NewDirStore(dir string, logger zerolog.Logger) *DirStore {
	return &DirStore{
		dir:    dir,
		fs:     NewFSStore(os.DirFS(dir)),
		logger: logger,
		cache:  map[string]string{},
	}
}

func (s *DirStore) Lookup(id string) (string, error) {
	s.mu.RLock()
	text, ok := s.cache[id]
	s.mu.RUnlock()
	if ok {
		return text, nil
	}

	text, err := s.fs.Lookup(id)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.cache[id] = text
	s.mu.Unlock()
	return text, nil
}

// Invalidate drops the cached text of one template.
func (s *DirStore) Invalidate(id string) {
	s.mu.Lock()
	delete(s.cache, id)
	s.mu.Unlock()
}

// Watch invalidates cached templates whenever their files change. It blocks
// until ctx is done.
func (s *DirStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create template watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("watch template dir %s: %w", s.dir, err)
	}
	s.logger.Info().Str("dir", s.dir).Msg("watching template dir")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if !strings.HasSuffix(name, templateExt) {
				continue
			}
			id := strings.TrimSuffix(name, templateExt)
			s.Invalidate(id)
			s.logger.Debug().Str("template", id).Str("op", ev.Op.String()).Msg("template changed")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn().Err(err).Msg("template watcher error")
		}
	}
}

// ChainStore returns the first store that knows the template.
type ChainStore []Store

func (c ChainStore) Lookup(id string) (string, error) {
	for _, s := range c {
		text, err := s.Lookup(id)
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, ErrTemplateNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
}

func validId(id string) bool {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return false
	}
	return true
}
