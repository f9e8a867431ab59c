// Package vfs makes in-memory byte buffers addressable by path so the embedded
// engine can read and write them as if they were files.
//
// On Linux each file is an anonymous memory file (memfd) reached through
// /proc/self/fd/N; nothing touches a real filesystem. Other platforms fall back
// to a private temporary directory that is removed when the store is closed.
//
// A Store belongs to exactly one engine session and is not safe for concurrent
// use.
package vfs

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrExists is returned when a name is registered twice in the same store.
var ErrExists = errors.New("virtual file already registered")

// ErrClosed is returned when a closed store is used.
var ErrClosed = errors.New("virtual file store closed")

// File is a single registered buffer.
type File struct {
	name string
	path string
	f    *os.File
}

// Name returns the name the file was registered under.
func (f *File) Name() string { return f.name }

// Path returns the path the engine should use to address the file.
func (f *File) Path() string { return f.path }

// Bytes reads the full current content of the file.
// Content written by the engine through Path is visible here.
func (f *File) Bytes() ([]byte, error) {
	if _, err := f.f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek %s: %w", f.name, err)
	}
	data, err := io.ReadAll(f.f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.name, err)
	}
	return data, nil
}

// Size returns the current size of the file in bytes.
func (f *File) Size() (int64, error) {
	st, err := f.f.Stat()
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}

// backend creates the os-level file behind a virtual file.
type backend interface {
	open(name string) (*os.File, string, error)
	close() error
}

// Store owns every virtual file registered during one session.
type Store struct {
	backend backend
	files   map[string]*File
	order   []string
	closed  bool
}

// New creates an empty store. tempDir is only used on platforms without
// anonymous memory files; empty means os.TempDir().
func New(tempDir string) *Store {
	return &Store{
		backend: newBackend(tempDir),
		files:   make(map[string]*File),
	}
}

// Register copies data into a new virtual file called name.
func (s *Store) Register(name string, data []byte) (*File, error) {
	vf, err := s.Create(name)
	if err != nil {
		return nil, err
	}
	if _, err := vf.f.Write(data); err != nil {
		return nil, fmt.Errorf("write %s: %w", name, err)
	}
	return vf, nil
}

// Create registers an empty virtual file, typically as an engine output target.
func (s *Store) Create(name string) (*File, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if _, ok := s.files[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrExists, name)
	}

	f, path, err := s.backend.open(name)
	if err != nil {
		return nil, err
	}

	vf := &File{name: name, path: path, f: f}
	s.files[name] = vf
	s.order = append(s.order, name)
	return vf, nil
}

// Get returns a registered file by name.
func (s *Store) Get(name string) (*File, bool) {
	vf, ok := s.files[name]
	return vf, ok
}

// Len returns the number of open virtual files.
func (s *Store) Len() int {
	return len(s.files)
}

// Close releases every file in reverse registration order.
// It is safe to call more than once.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for i := len(s.order) - 1; i >= 0; i-- {
		vf := s.files[s.order[i]]
		if err := vf.f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", vf.name, err))
		}
	}
	s.files = make(map[string]*File)
	s.order = nil

	if err := s.backend.close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
