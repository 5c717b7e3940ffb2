//go:build integration
// +build integration

package ibisdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// runPostgres starts image and returns a URL built by ConnectionURL.
func runPostgres(t *testing.T, image string) string {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, image,
		postgres.WithDatabase("ibis"),
		postgres.WithUsername("ibis"),
		postgres.WithPassword("ibis"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("failed to start %s container: %v", image, err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}

	return ConnectionURL("ibis", "ibis", "ibis", &EndpointOptions{Host: host, Port: port.Int()}) + "?sslmode=disable"
}

func TestApplyAndVerifyPostGIS(t *testing.T) {
	ctx := context.Background()
	url := runPostgres(t, "postgis/postgis:16-3.4")

	applied, err := Apply(ctx, url)
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if len(applied) != 1 {
		t.Errorf("first Apply() applied %v, want one migration", applied)
	}

	applied, err = Apply(ctx, url)
	if err != nil {
		t.Fatalf("second Apply() error: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("second Apply() applied %v", applied)
	}

	diffs, err := Verify(ctx, url)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	for _, d := range diffs {
		t.Errorf("drift: %s", d)
	}
}

func TestPlainPostgresReportsMissingPostGIS(t *testing.T) {
	ctx := context.Background()
	url := runPostgres(t, "postgres:16-alpine")

	if _, err := Verify(ctx, url); !errors.Is(err, ErrPostGISMissing) {
		t.Errorf("Verify() error = %v, want ErrPostGISMissing", err)
	}

	applied, err := Apply(ctx, url)
	if !errors.Is(err, ErrPostGISMissing) {
		t.Errorf("Apply() error = %v, want ErrPostGISMissing", err)
	}
	if len(applied) != 0 {
		t.Errorf("Apply() applied %v on a server without PostGIS", applied)
	}
}
