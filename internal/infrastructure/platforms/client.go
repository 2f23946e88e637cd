package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"BangerBoard/internal/domain"
)

const userAgent = "BangerBoard/1.0"

// apiClient wraps the JSON request/response plumbing shared by platform adapters.
type apiClient struct {
	http *http.Client
}

func newAPIClient(client *http.Client) apiClient {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return apiClient{http: client}
}

func (c apiClient) getJSON(ctx context.Context, endpoint string, headers map[string]string, out any) error {
	return c.doJSON(ctx, http.MethodGet, endpoint, headers, nil, out)
}

func (c apiClient) doJSON(ctx context.Context, method, endpoint string, headers map[string]string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, headers, out)
}

// postForm sends form as an urlencoded body, keeping secrets out of the URL.
func (c apiClient) postForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.send(req, nil, out)
}

func (c apiClient) send(req *http.Request, headers map[string]string, out any) error {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	endpoint := req.URL.String()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstream, redactURLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned %s: %s", domain.ErrUpstream, hostOf(endpoint), resp.Status, bytes.TrimSpace(snippet))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", domain.ErrUpstream, hostOf(endpoint), err)
	}
	return nil
}

// redactURLError drops the query string from transport errors; some
// platforms only accept credentials there.
func redactURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = stripQuery(ue.URL)
	}
	return err
}

func stripQuery(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "[redacted]"
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return u.String()
}

func hostOf(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint
	}
	return u.Host
}

func withQuery(base, path string, q url.Values) string {
	endpoint := base + path
	if len(q) == 0 {
		return endpoint
	}
	return endpoint + "?" + q.Encode()
}

func parseTime(layout, value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
