// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package contentstore

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tomtom215/truthx/internal/config"
)

// objectPrefix namespaces truthx objects inside a possibly shared bucket.
const objectPrefix = "ephemeral/"

// MinioBlobs stores blobs in an S3-compatible bucket.
type MinioBlobs struct {
	client *minio.Client
	bucket string
}

// NewMinioBlobs connects to the endpoint and creates the bucket if missing.
func NewMinioBlobs(ctx context.Context, cfg config.MinioConfig) (*MinioBlobs, error) {
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinioBlobs{client: cli, bucket: cfg.Bucket}, nil
}

func (m *MinioBlobs) Name() string { return "minio" }

func (m *MinioBlobs) Write(ctx context.Context, key string, r io.Reader) (int64, error) {
	// Size -1 streams in multipart chunks without buffering the whole object.
	info, err := m.client.PutObject(ctx, m.bucket, objectPrefix+key, r, -1, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return info.Size, fmt.Errorf("put object: %w", err)
	}
	return info.Size, nil
}

func (m *MinioBlobs) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, objectPrefix+key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	// GetObject is lazy; Stat surfaces a missing key before the caller reads.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat object: %w", err)
	}
	return obj, nil
}

func (m *MinioBlobs) Remove(ctx context.Context, key string) error {
	err := m.client.RemoveObject(ctx, m.bucket, objectPrefix+key, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

func (m *MinioBlobs) List(ctx context.Context) ([]BlobInfo, error) {
	var out []BlobInfo
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    objectPrefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		out = append(out, BlobInfo{Key: obj.Key[len(objectPrefix):], ModTime: obj.LastModified})
	}
	return out, nil
}

// LocalPath is never available for object storage; callers materialise a
// temporary copy through Store.LocalFile.
func (m *MinioBlobs) LocalPath(string) (string, bool) { return "", false }
