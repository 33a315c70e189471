package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const defaultS3Endpoint = "s3.amazonaws.com"

// S3 stores objects in an S3 compatible bucket. A single PutObject call either lands the
// whole object or nothing.
type S3 struct {
	client *minio.Client
	bucket string
}

func NewS3(bucket string, options S3Options) (*S3, error) {
	endpoint := options.Endpoint
	if endpoint == "" {
		endpoint = defaultS3Endpoint
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(options.AccessKey, options.SecretKey, ""),
		Secure: options.UseSSL,
		Region: options.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create S3 client: %w", err)
	}

	return &S3{
		client: client,
		bucket: bucket,
	}, nil
}

func (s *S3) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
	})

	return err
}

func (s *S3) Get(ctx context.Context, key string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer object.Close()

	return io.ReadAll(object)
}

func (s *S3) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if object.Err != nil {
			return nil, object.Err
		}

		keys = append(keys, object.Key)
	}

	return filterPrefix(keys, prefix), nil
}

func (s *S3) Location(key string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, key)
}
