package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem stores objects as files below Root. Writes go to a hidden temporary file in
// the destination directory that is then renamed over the target.
type FileSystem struct {
	Root string
}

func (f *FileSystem) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	destination := f.Location(key)
	directory := filepath.Dir(destination)

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return err
	}

	temporaryFile, err := os.CreateTemp(directory, fmt.Sprintf(".%s.*.tmp", filepath.Base(destination)))
	if err != nil {
		return err
	}
	temporaryName := temporaryFile.Name()

	if err := writeAndClose(temporaryFile, body); err != nil {
		os.Remove(temporaryName)
		return err
	}

	if err := os.Chmod(temporaryName, 0o644); err != nil {
		os.Remove(temporaryName)
		return err
	}

	if err := os.Rename(temporaryName, destination); err != nil {
		os.Remove(temporaryName)
		return err
	}

	return nil
}

func writeAndClose(file *os.File, body []byte) error {
	if _, err := file.Write(body); err != nil {
		file.Close()
		return err
	}

	if err := file.Sync(); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}

func (f *FileSystem) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return os.ReadFile(f.Location(key))
}

func (f *FileSystem) List(ctx context.Context, prefix string) ([]string, error) {
	start := f.Location(prefix)

	info, err := os.Stat(start)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{strings.Trim(filepath.ToSlash(prefix), "/")}, nil
	}

	var keys []string
	err = filepath.WalkDir(start, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if strings.HasPrefix(entry.Name(), ".") && path != start {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}

		relative, err := filepath.Rel(f.Root, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(relative))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return filterPrefix(keys, filepath.ToSlash(prefix)), nil
}

func (f *FileSystem) Location(key string) string {
	return filepath.Join(f.Root, filepath.FromSlash(key))
}

func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
