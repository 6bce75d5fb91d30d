// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

//go:build integration

package testinfra

import (
	"context"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultMinioImage is the MinIO server image used in tests.
	DefaultMinioImage = "minio/minio:latest"

	minioPort      = "9000/tcp"
	minioAccessKey = "truthx"
	minioSecretKey = "truthx-secret"
)

// MinioContainer is a running MinIO server.
type MinioContainer struct {
	testcontainers.Container
	Endpoint  string
	AccessKey string
	SecretKey string
}

// NewMinioContainer starts a single-node MinIO server.
//
//	minio, err := testinfra.NewMinioContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	testinfra.CleanupContainer(t, minio)
func NewMinioContainer(ctx context.Context) (*MinioContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        DefaultMinioImage,
		ExposedPorts: []string{minioPort},
		Cmd:          []string{"server", "/data"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     minioAccessKey,
			"MINIO_ROOT_PASSWORD": minioSecretKey,
		},
		WaitingFor: wait.ForHTTP("/minio/health/live").
			WithPort(minioPort).
			WithStartupTimeout(60 * time.Second),
	}

	container, endpoint, err := startGeneric(ctx, req, minioPort)
	if err != nil {
		return nil, err
	}
	return &MinioContainer{
		Container: container,
		Endpoint:  endpoint,
		AccessKey: minioAccessKey,
		SecretKey: minioSecretKey,
	}, nil
}
