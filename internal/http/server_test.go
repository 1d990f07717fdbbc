package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"tunelink/internal/core"
)

func TestNewServer(t *testing.T) {
	t.Skip("Skipping NewServer test due to global prometheus registry conflicts")
}

func TestCreateHTTPServer(t *testing.T) {
	config := &core.ServerConfig{
		Host:         "0.0.0.0",
		Port:         9090,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	mux := http.NewServeMux()
	server := createHTTPServer(config, mux)

	expectedAddr := "0.0.0.0:9090"
	if server.Addr != expectedAddr {
		t.Errorf("createHTTPServer() Addr = %q, expected %q", server.Addr, expectedAddr)
	}

	if server.Handler != mux {
		t.Errorf("createHTTPServer() Handler mismatch")
	}

	if server.ReadTimeout != config.ReadTimeout {
		t.Errorf("createHTTPServer() ReadTimeout = %v, expected %v", server.ReadTimeout, config.ReadTimeout)
	}

	if server.WriteTimeout != config.WriteTimeout {
		t.Errorf("createHTTPServer() WriteTimeout = %v, expected %v", server.WriteTimeout, config.WriteTimeout)
	}
}

func TestSetupRoutes(t *testing.T) {
	logger := zap.NewNop()
	mux := setupRoutes(logger)

	if mux == nil {
		t.Fatal("setupRoutes() returned nil")
	}

	server := httptest.NewServer(mux)
	defer server.Close()

	ctx := context.Background()
	client := &http.Client{}

	for _, endpoint := range []string{"/healthz", "/readyz"} {
		req, _ := http.NewRequestWithContext(ctx, "GET", server.URL+endpoint, http.NoBody)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("Failed to call %s: %v", endpoint, err)
		}

		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s returned status %d, expected %d", endpoint, resp.StatusCode, http.StatusOK)
		}

		if contentType := resp.Header.Get("Content-Type"); contentType != "application/json" {
			t.Errorf("%s Content-Type = %q, expected %q", endpoint, contentType, "application/json")
		}
		resp.Body.Close()
	}

	// Metrics endpoint serves the default registry.
	req, _ := http.NewRequestWithContext(ctx, "GET", server.URL+"/metrics", http.NoBody)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to call /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("/metrics returned status %d, expected %d", resp.StatusCode, http.StatusOK)
	}

	// Index page links the other endpoints.
	req, _ = http.NewRequestWithContext(ctx, "GET", server.URL+"/", http.NoBody)
	indexResp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to call /: %v", err)
	}
	defer indexResp.Body.Close()

	if indexResp.StatusCode != http.StatusOK {
		t.Errorf("/ returned status %d, expected %d", indexResp.StatusCode, http.StatusOK)
	}

	if contentType := indexResp.Header.Get("Content-Type"); contentType != "text/html" {
		t.Errorf("/ Content-Type = %q, expected %q", contentType, "text/html")
	}
}
