// Package seo notifies search engines about site URLs.
package seo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	DefaultIndexNowEndpoint = "https://api.indexnow.org/IndexNow"
	userAgent               = "adserver-seo/1.0"
)

// Client talks to IndexNow and the sitemap ping endpoints.
type Client struct {
	httpClient       *http.Client
	log              *zap.Logger
	maxRetries       int
	IndexNowEndpoint string
	// PingEndpoints maps an engine name to a URL prefix the escaped sitemap URL is appended to.
	PingEndpoints map[string]string
}

func NewClient(timeout time.Duration, maxRetries int, log *zap.Logger) *Client {
	return &Client{
		httpClient:       &http.Client{Timeout: timeout},
		log:              log,
		maxRetries:       maxRetries,
		IndexNowEndpoint: DefaultIndexNowEndpoint,
		PingEndpoints: map[string]string{
			"google": "https://www.google.com/ping?sitemap=",
			"bing":   "https://www.bing.com/ping?sitemap=",
		},
	}
}

// FetchSitemapURLs downloads the sitemap and returns every <loc> entry.
func (c *Client) FetchSitemapURLs(ctx context.Context, sitemapURL string) ([]string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d for %s", resp.StatusCode, sitemapURL)
			continue
		}

		urls, err := ExtractLocs(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return urls, nil
	}
	return nil, lastErr
}

// ExtractLocs returns the trimmed text of every <loc> element in a sitemap.
func ExtractLocs(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	var urls []string
	doc.Find("loc").Each(func(_ int, s *goquery.Selection) {
		if u := strings.TrimSpace(s.Text()); u != "" {
			urls = append(urls, u)
		}
	})
	return urls, nil
}

type indexNowRequest struct {
	Host        string   `json:"host"`
	Key         string   `json:"key"`
	KeyLocation string   `json:"keyLocation"`
	URLList     []string `json:"urlList"`
}

// SubmitIndexNow sends urls in one batch. 200 and 202 both count as accepted.
func (c *Client) SubmitIndexNow(ctx context.Context, host, key string, urls []string) error {
	if key == "" {
		return fmt.Errorf("indexnow key is not set")
	}
	if len(urls) == 0 {
		return nil
	}

	body, err := json.Marshal(indexNowRequest{
		Host:        host,
		Key:         key,
		KeyLocation: fmt.Sprintf("https://%s/%s.txt", host, key),
		URLList:     urls,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.IndexNowEndpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("indexnow unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("indexnow returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	c.log.Info("indexnow submitted", zap.Int("urls", len(urls)), zap.Int("status", resp.StatusCode))
	return nil
}

// PingSitemap notifies every configured engine and returns the failures by engine.
func (c *Client) PingSitemap(ctx context.Context, sitemapURL string) map[string]error {
	failed := make(map[string]error)
	for engine, prefix := range c.PingEndpoints {
		if err := c.ping(ctx, prefix+url.QueryEscape(sitemapURL)); err != nil {
			c.log.Warn("sitemap ping failed", zap.String("engine", engine), zap.Error(err))
			failed[engine] = err
			continue
		}
		c.log.Info("sitemap pinged", zap.String("engine", engine))
	}
	return failed
}

func (c *Client) ping(ctx context.Context, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return nil
}
