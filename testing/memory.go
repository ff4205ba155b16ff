// Package testing provides in-memory stand-ins for the filesystem, the host
// and the notice sink used by proforma's tests.
package testing

import (
	"bytes"
	"io/fs"
	"path"
	"strings"
	"time"
)

// MemoryFS is a read-only fs.FS holding library template sources. Only files
// are stored; directories exist implicitly.
type MemoryFS struct {
	files map[string][]byte
}

func NewMemoryFS() *MemoryFS {
	return &MemoryFS{files: make(map[string][]byte)}
}

func (m *MemoryFS) WriteFile(name string, data []byte) {
	m.files[path.Clean(name)] = data
}

// Open implements fs.FS. Opening a directory is not supported.
func (m *MemoryFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	data, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return &sourceFile{Reader: bytes.NewReader(data), info: sourceInfo{name: path.Base(name), size: int64(len(data))}}, nil
}

// Sub returns the files under dir as a new MemoryFS, so one MemoryFS can hold
// the install roots of several libraries.
func (m *MemoryFS) Sub(dir string) *MemoryFS {
	prefix := strings.Trim(path.Clean(dir), "/") + "/"
	sub := NewMemoryFS()
	for name, data := range m.files {
		if rel, ok := strings.CutPrefix(name, prefix); ok {
			sub.files[rel] = data
		}
	}
	return sub
}

type sourceFile struct {
	*bytes.Reader
	info sourceInfo
}

func (f *sourceFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *sourceFile) Close() error               { return nil }

type sourceInfo struct {
	name string
	size int64
}

func (i sourceInfo) Name() string       { return i.name }
func (i sourceInfo) Size() int64        { return i.size }
func (i sourceInfo) Mode() fs.FileMode  { return 0o444 }
func (i sourceInfo) ModTime() time.Time { return time.Time{} }
func (i sourceInfo) IsDir() bool        { return false }
func (i sourceInfo) Sys() any           { return nil }
