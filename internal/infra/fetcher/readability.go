package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"newsrelay/internal/resilience/circuitbreaker"
	"newsrelay/internal/resilience/retry"
)

// ReadabilityResolver resolves full article text from a URL.
//
// Thread safety: ReadabilityResolver is safe for concurrent use, though the
// relay only ever calls it from its single execution stream.
type ReadabilityResolver struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         Config
}

// NewReadabilityResolver creates a resolver with the given configuration.
// Redirect targets are re-validated so a safe URL cannot bounce into a
// private address.
func NewReadabilityResolver(config Config) *ReadabilityResolver {
	resolver := &ReadabilityResolver{
		circuitBreaker: circuitbreaker.New(circuitbreaker.ContentFetchConfig()),
		retryConfig:    retry.RelayConfig(),
		config:         config,
	}

	resolver.client = &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= resolver.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.URL.String(), resolver.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}

	return resolver
}

// Resolve fetches the URL and extracts clean article text. It retries
// transient network failures per the relay policy; ErrContentUnavailable
// means the page was reachable but yielded nothing readable.
func (r *ReadabilityResolver) Resolve(ctx context.Context, urlStr string) (string, error) {
	if err := validateURL(urlStr, r.config.DenyPrivateIPs); err != nil {
		return "", err
	}

	var content string
	retryErr := retry.WithBackoff(ctx, r.retryConfig, func() error {
		cbResult, err := r.circuitBreaker.Execute(func() (interface{}, error) {
			return r.doResolve(ctx, urlStr)
		})
		if err != nil {
			return err
		}
		content = cbResult.(string)
		return nil
	})
	if retryErr != nil {
		return "", retryErr
	}

	return content, nil
}

// doResolve performs the HTTP request and extraction without retry or breaker.
func (r *ReadabilityResolver) doResolve(ctx context.Context, urlStr string) (interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", "NewsRelayBot/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Err != nil {
			return "", urlErr.Err
		}
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	limitedReader := io.LimitReader(resp.Body, r.config.MaxBodySize+1)
	htmlBytes, err := io.ReadAll(limitedReader)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(htmlBytes)) > r.config.MaxBodySize {
		return "", fmt.Errorf("%w: response size %d bytes exceeds limit %d bytes",
			ErrBodyTooLarge, len(htmlBytes), r.config.MaxBodySize)
	}

	finalURL, err := url.Parse(urlStr)
	if err != nil {
		finalURL = nil
	}
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL
	}

	article, err := readability.FromReader(bytes.NewReader(htmlBytes), finalURL)
	if err == nil {
		if article.TextContent != "" {
			return article.TextContent, nil
		}
		if article.Content != "" {
			slog.Debug("using article Content instead of TextContent",
				slog.String("url", urlStr))
			return article.Content, nil
		}
	}

	// Readability came up empty. Podcast episode pages and similar thin
	// documents often carry the useful text only in og:description.
	if desc := metaDescription(htmlBytes); desc != "" {
		slog.Debug("using meta description fallback", slog.String("url", urlStr))
		return desc, nil
	}

	return "", ErrContentUnavailable
}

// metaDescription extracts og:description (or the plain description meta tag)
// from the raw HTML.
func metaDescription(htmlBytes []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBytes))
	if err != nil {
		return ""
	}

	if content, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		return strings.TrimSpace(content)
	}
	if content, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		return strings.TrimSpace(content)
	}
	return ""
}
