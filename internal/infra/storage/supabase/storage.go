package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client uploads objects to a Supabase Storage bucket with the service-role
// key. Objects are upserted so re-rendering an invoice PDF replaces the
// stored copy.
type Client struct {
	baseURL    string
	serviceKey string
	bucket     string
	http       *http.Client
}

func NewClient(baseURL, serviceKey, bucket string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		http:       &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload stores the object and returns its public URL.
func (c *Client) Upload(ctx context.Context, object, contentType string, data []byte) (string, error) {
	urlStr := c.baseURL + "/storage/v1/object/" + c.bucket + "/" + escapePath(object)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, urlStr, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("x-upsert", "true")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("storage status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	return c.baseURL + "/storage/v1/object/public/" + c.bucket + "/" + escapePath(object), nil
}

// escapePath escapes each path segment while keeping the separators, so
// objects can live under per-user folders.
func escapePath(object string) string {
	parts := strings.Split(object, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
