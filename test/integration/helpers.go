//go:build integration

package integration

import (
	"fmt"
	"os"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fivetwenty-io/breeze-client/internal/testutil"
	"github.com/fivetwenty-io/breeze-client/pkg/breeze"
	"github.com/fivetwenty-io/breeze-client/pkg/breezeclient"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	BaseURL string
	Path    string
	Token   string
	Codec   string
	Verbose bool
}

// LoadTestConfig loads configuration from environment variables. Without
// BREEZE_IT_BASE_URL the tests run against an in-memory backend.
func LoadTestConfig() *TestConfig {
	path := os.Getenv("BREEZE_IT_PATH")
	if path == "" {
		path = "integration-notes"
	}

	return &TestConfig{
		BaseURL: os.Getenv("BREEZE_IT_BASE_URL"),
		Path:    path,
		Token:   os.Getenv("BREEZE_IT_TOKEN"),
		Codec:   os.Getenv("BREEZE_IT_CODEC"),
		Verbose: os.Getenv("BREEZE_VERBOSE") == "true",
	}
}

// Remote reports whether the tests target a real backend.
func (config *TestConfig) Remote() bool {
	return config.BaseURL != ""
}

// StartLocal points config at a fresh in-memory backend unless a remote
// backend is configured. The backend is nil in remote mode.
func (config *TestConfig) StartLocal(t *testing.T) *testutil.Backend {
	t.Helper()

	if config.Remote() {
		return nil
	}

	backend := testutil.NewBackend(config.Path)
	if config.Token == "" {
		config.Token = "integration-token"
	}

	backend.Token = config.Token
	config.BaseURL = backend.Start(t).URL

	return backend
}

// Note is the item type the workflows exercise.
type Note struct {
	ID        string   `json:"key"`
	Text      string   `json:"text"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt string   `json:"createdAt,omitempty"`
	UpdatedAt string   `json:"updatedAt,omitempty"`
}

// Key implements breeze.KeyedItem.
func (n Note) Key() string {
	return n.ID
}

// NewNotesClient builds a client for the configured backend.
func NewNotesClient(config *TestConfig, observer breeze.Observer) (*breeze.Client[Note], error) {
	return breezeclient.New[Note](&breeze.Config{
		BaseURL:     config.BaseURL,
		Path:        config.Path,
		Headers:     breeze.Headers{"ClientType": "integration"},
		HTTPTimeout: 10 * time.Second,
		Codec:       config.Codec,
		Observer:    observer,
	})
}

var nameCounter atomic.Int64

// GenerateTestName creates a unique test key.
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), strconv.FormatInt(nameCounter.Add(1), 10))
}

// WaitForCondition waits for a condition to be met with timeout.
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	t.Helper()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	timeoutChan := time.After(timeout)

	for {
		select {
		case <-ticker.C:
			if condition() {
				return
			}
		case <-timeoutChan:
			t.Fatalf("Timeout waiting for condition: %s", message)
		}
	}
}
