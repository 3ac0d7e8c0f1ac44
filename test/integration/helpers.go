//go:build integration
// +build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/dockhand-io/dockhand/pkg/engine"
	"github.com/dockhand-io/dockhand/pkg/engineclient"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	Host       string
	APIVersion string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Host:       os.Getenv("DOCKER_HOST"),
		APIVersion: os.Getenv("DOCKER_API_VERSION"),
		Verbose:    os.Getenv("DOCKHAND_VERBOSE") == "true",
	}
}

// NewDaemonClient builds a client and verifies the daemon is
// reachable, skipping the test when it is not.
func NewDaemonClient(t *testing.T, config *TestConfig) engine.Client {
	t.Helper()

	client, err := engineclient.New(context.Background(), &engine.Config{
		Host:       config.Host,
		APIVersion: config.APIVersion,
	})
	if err != nil {
		t.Skipf("Skipping integration test, cannot build client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.System().Ping(ctx); err != nil {
		t.Skipf("Skipping integration test, daemon not reachable: %v", err)
	}

	return client
}

// GenerateTestName creates a unique name for test resources
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// CleanupNetwork removes a network, ignoring not-found failures so
// tests can delete defensively.
func CleanupNetwork(t *testing.T, client engine.Client, name string) {
	t.Helper()

	err := client.Networks().Remove(context.Background(), name)
	if err != nil && !engine.IsNotFound(err) {
		t.Logf("cleanup of network %q failed: %v", name, err)
	}
}
