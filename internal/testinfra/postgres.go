// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DefaultPostgresImage is the PostgreSQL image used in tests.
const DefaultPostgresImage = "postgres:16-alpine"

const postgresPort = "5432/tcp"

// PostgresContainer is a running PostgreSQL server with an empty database.
type PostgresContainer struct {
	testcontainers.Container
	// DSN is a lib/pq connection string.
	DSN string
}

// NewPostgresContainer starts PostgreSQL and waits until it accepts
// connections.
func NewPostgresContainer(ctx context.Context) (*PostgresContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        DefaultPostgresImage,
		ExposedPorts: []string{postgresPort},
		Env: map[string]string{
			"POSTGRES_USER":     "truthx",
			"POSTGRES_PASSWORD": "truthx",
			"POSTGRES_DB":       "truthx",
		},
		// The server restarts once after initdb; wait for the second banner.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, hostPort, err := startGeneric(ctx, req, postgresPort)
	if err != nil {
		return nil, err
	}
	return &PostgresContainer{
		Container: container,
		DSN:       fmt.Sprintf("postgres://truthx:truthx@%s/truthx?sslmode=disable", hostPort),
	}, nil
}
