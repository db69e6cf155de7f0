package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.DenyPrivateIPs = false // test servers listen on loopback
	cfg.Timeout = 5 * time.Second
	return cfg
}

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Stablecoin Settlement Report</title></head>
<body>
<article>
<h1>Stablecoin Settlement Report</h1>
<p>Stablecoin settlement volume reached a new high this quarter, driven by
cross-border payment corridors and exchange rebalancing flows. Analysts expect
the trend to continue as more issuers obtain regulatory clarity.</p>
<p>The report breaks down activity by chain, issuer, and counterparty type,
noting that a growing share of transfers now originates from automated
treasury systems rather than retail wallets.</p>
</article>
</body>
</html>`

func TestResolveExtractsArticleText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	resolver := NewReadabilityResolver(testConfig())
	content, err := resolver.Resolve(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(content, "settlement volume") {
		t.Errorf("expected extracted text to contain article body, got: %q", content)
	}
}

func TestResolveRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	resolver := NewReadabilityResolver(testConfig())
	content, err := resolver.Resolve(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected success on third attempt, got: %v", err)
	}
	if content == "" {
		t.Error("expected non-empty content after retries")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestResolveDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	resolver := NewReadabilityResolver(testConfig())
	_, err := resolver.Resolve(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected single attempt for client error, got %d", got)
	}
}

func TestResolveMetaDescriptionFallback(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head>
<meta property="og:description" content="Episode 42: why rollup sequencers centralize.">
</head>
<body><div id="player"></div></body>
</html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	resolver := NewReadabilityResolver(testConfig())
	content, err := resolver.Resolve(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(content, "rollup sequencers") {
		t.Errorf("expected meta description fallback, got: %q", content)
	}
}

func TestResolveContentUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head></head><body></body></html>`))
	}))
	defer server.Close()

	resolver := NewReadabilityResolver(testConfig())
	_, err := resolver.Resolve(context.Background(), server.URL)
	if !errors.Is(err, ErrContentUnavailable) {
		t.Errorf("expected ErrContentUnavailable, got: %v", err)
	}
}

func TestResolveRejectsInvalidURL(t *testing.T) {
	resolver := NewReadabilityResolver(testConfig())

	cases := []string{
		"",
		"ftp://example.com/file",
		"not a url",
	}
	for _, tc := range cases {
		if _, err := resolver.Resolve(context.Background(), tc); err == nil {
			t.Errorf("expected error for URL %q", tc)
		}
	}
}

func TestResolveRejectsPrivateIP(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DenyPrivateIPs = true

	resolver := NewReadabilityResolver(cfg)
	_, err := resolver.Resolve(context.Background(), "http://127.0.0.1:9/")
	if !errors.Is(err, ErrPrivateIP) {
		t.Errorf("expected ErrPrivateIP, got: %v", err)
	}
}

func TestResolveBodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(strings.Repeat("a", 2048)))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxBodySize = 1024
	resolver := NewReadabilityResolver(cfg)
	_, err := resolver.Resolve(context.Background(), server.URL)
	if !errors.Is(err, ErrBodyTooLarge) {
		t.Errorf("expected ErrBodyTooLarge, got: %v", err)
	}
}
