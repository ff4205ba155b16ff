// Package write puts rendered files on disk.
package write

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Operations reported in Error.
const (
	OpMkdir  = "mkdir"
	OpBackup = "backup"
	OpWrite  = "write"
)

// ErrExists is returned when the target exists and overwriting is disabled.
var ErrExists = errors.New("file already exists")

// Error records the step of a write that failed.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Writer stores rendered content at a path.
type Writer interface {
	Write(path string, content []byte, options Options) error
	Exists(path string) bool
}

// Options controls a single write. Zero modes mean 0o755 for directories and
// 0o644 for files.
type Options struct {
	CreateDirs bool
	Backup     bool
	Overwrite  bool
	Atomic     bool
	DirMode    fs.FileMode
	FileMode   fs.FileMode
}

func (o Options) dirMode() fs.FileMode {
	if o.DirMode == 0 {
		return 0o755
	}
	return o.DirMode
}

func (o Options) fileMode() fs.FileMode {
	if o.FileMode == 0 {
		return 0o644
	}
	return o.FileMode
}

// FileWriter writes to the local filesystem.
type FileWriter struct{}

func NewFileWriter() *FileWriter {
	return &FileWriter{}
}

func (w *FileWriter) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func (w *FileWriter) Write(path string, content []byte, options Options) error {
	if options.CreateDirs {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, options.dirMode()); err != nil {
			return &Error{Op: OpMkdir, Path: dir, Err: err}
		}
	}

	exists := w.Exists(path)
	if exists && !options.Overwrite {
		return &Error{Op: OpWrite, Path: path, Err: ErrExists}
	}

	if exists && options.Backup {
		if err := copyFile(path, path+".bak", options.fileMode()); err != nil {
			return &Error{Op: OpBackup, Path: path, Err: err}
		}
	}

	var err error
	if options.Atomic {
		err = atomicWrite(path, content, options.fileMode())
	} else {
		err = os.WriteFile(path, content, options.fileMode())
	}
	if err != nil {
		return &Error{Op: OpWrite, Path: path, Err: err}
	}
	return nil
}

func copyFile(src, dst string, mode fs.FileMode) error {
	input, err := os.Open(src)
	if err != nil {
		return err
	}
	defer input.Close()

	output, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	if _, err := io.Copy(output, input); err != nil {
		output.Close()
		return err
	}
	return output.Close()
}

func atomicWrite(path string, content []byte, mode fs.FileMode) error {
	file, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tempPath := file.Name()

	if _, err := file.Write(content); err != nil {
		file.Close()
		os.Remove(tempPath)
		return err
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	if err := os.Chmod(tempPath, mode); err != nil {
		os.Remove(tempPath)
		return err
	}

	return os.Rename(tempPath, path)
}
