package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"
)

// Store is a flat key/value object store. Put must replace the object as a whole: a reader
// either sees the previous object or the new one, never a partial write.
type Store interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns, sorted, the keys of every object at or below prefix. The prefix names
	// either an object or a directory-like path.
	List(ctx context.Context, prefix string) ([]string, error)

	Location(key string) string
}

type S3Options struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"ssl"`
}

type Options struct {
	S3 S3Options `yaml:"s3"`
}

// Open resolves a location into the store that holds it and the key the location names
// inside that store. Supported forms are gs://bucket/key, s3://bucket/key, file:///path
// and plain filesystem paths.
func Open(ctx context.Context, location string, options Options) (Store, string, error) {
	switch {
	case strings.HasPrefix(location, "gs://"):
		bucket, key := splitBucketKey(strings.TrimPrefix(location, "gs://"))
		if bucket == "" {
			return nil, "", fmt.Errorf("location %s has no bucket", location)
		}

		store, err := NewGCS(ctx, bucket)
		return store, key, err
	case strings.HasPrefix(location, "s3://"):
		bucket, key := splitBucketKey(strings.TrimPrefix(location, "s3://"))
		if bucket == "" {
			return nil, "", fmt.Errorf("location %s has no bucket", location)
		}

		store, err := NewS3(bucket, options.S3)
		return store, key, err
	case strings.HasPrefix(location, "file://"):
		return openFileSystem(strings.TrimPrefix(location, "file://"))
	case strings.Contains(location, "://"):
		return nil, "", fmt.Errorf("unsupported location scheme in %s", location)
	default:
		return openFileSystem(location)
	}
}

func JoinKey(elements ...string) string {
	var parts []string
	for _, element := range elements {
		element = strings.Trim(element, "/")
		if element != "" {
			parts = append(parts, element)
		}
	}

	return strings.Join(parts, "/")
}

func openFileSystem(path string) (Store, string, error) {
	if path == "" {
		return nil, "", fmt.Errorf("empty filesystem location")
	}

	info, err := os.Stat(path)
	if err == nil && !info.IsDir() {
		return &FileSystem{Root: filepath.Dir(path)}, filepath.Base(path), nil
	}

	return &FileSystem{Root: path}, "", nil
}

func splitBucketKey(location string) (string, string) {
	bucket, key, _ := strings.Cut(location, "/")

	return bucket, strings.Trim(key, "/")
}

// filterPrefix keeps keys equal to prefix or nested under it, so that a prefix of
// "input/a" does not match "input/ab.json".
func filterPrefix(keys []string, prefix string) []string {
	prefix = strings.Trim(prefix, "/")

	var filtered []string
	for _, key := range keys {
		if prefix == "" || key == prefix || strings.HasPrefix(key, prefix+"/") {
			filtered = append(filtered, key)
		}
	}
	slices.Sort(filtered)

	return filtered
}
