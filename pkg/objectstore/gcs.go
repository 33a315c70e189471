package objectstore

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCS stores objects in a Google Cloud Storage bucket. An object only becomes visible when
// its writer closes successfully, cancelling the writer's context discards the upload.
type GCS struct {
	client *storage.Client
	bucket string
}

func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not create GCP storage client: %w", err)
	}

	return &GCS{
		client: client,
		bucket: bucket,
	}, nil
}

func (g *GCS) Put(ctx context.Context, key string, body []byte, contentType string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writer := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := writer.Write(body); err != nil {
		cancel()
		writer.Close()
		return err
	}

	return writer.Close()
}

func (g *GCS) Get(ctx context.Context, key string) ([]byte, error) {
	reader, err := g.client.Bucket(g.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

func (g *GCS) List(ctx context.Context, prefix string) ([]string, error) {
	objects := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	var keys []string
	for {
		objectAttr, err := objects.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		keys = append(keys, objectAttr.Name)
	}

	return filterPrefix(keys, prefix), nil
}

func (g *GCS) Location(key string) string {
	return fmt.Sprintf("gs://%s/%s", g.bucket, key)
}
