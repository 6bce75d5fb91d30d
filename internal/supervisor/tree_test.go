// truthx - Multimodal Content Authenticity Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/truthx

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/tomtom215/truthx/internal/logging"
)

func testLogger() *slog.Logger {
	return logging.NewSlogLogger()
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	tree, err := NewSupervisorTree(testLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("failed to create tree: %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("root supervisor should not be nil")
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("expected defaults, got %+v", tree.config)
	}
}

func TestNewSupervisorTree_KeepsExplicitValues(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{FailureThreshold: 2, ShutdownTimeout: time.Second})
	if tree.config.FailureThreshold != 2 || tree.config.ShutdownTimeout != time.Second {
		t.Errorf("explicit values overwritten: %+v", tree.config)
	}
	if tree.config.FailureDecay != 30 {
		t.Errorf("expected default decay, got %v", tree.config.FailureDecay)
	}
}

func TestSupervisorTree_StartsBothLayers(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})

	sweeper := NewMockService("sweeper")
	httpSvc := NewMockService("http")
	tree.AddDataService(sweeper)
	tree.AddAPIService(httpSvc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down in time")
	}

	if sweeper.StartCount() < 1 || httpSvc.StartCount() < 1 {
		t.Errorf("services not started: data=%d api=%d", sweeper.StartCount(), httpSvc.StartCount())
	}
	if sweeper.StopCount() != sweeper.StartCount() {
		t.Errorf("data service still running after shutdown")
	}
	if report, _ := tree.UnstoppedServiceReport(); len(report) != 0 {
		t.Errorf("unstopped services: %v", report)
	}
}

func TestSupervisorTree_DataFailureIsolated(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	flaky := NewMockService("flaky-sweeper")
	flaky.SetFailCount(2)
	httpSvc := NewMockService("http")
	tree.AddDataService(flaky)
	tree.AddAPIService(httpSvc)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	go tree.Serve(ctx)
	time.Sleep(200 * time.Millisecond)

	if flaky.StartCount() < 3 {
		t.Errorf("expected at least 3 starts for flaky service, got %d", flaky.StartCount())
	}
	if httpSvc.StartCount() != 1 {
		t.Errorf("api service restarted by data-layer failure: %d starts", httpSvc.StartCount())
	}
}
