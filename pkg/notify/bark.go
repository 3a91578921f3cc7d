package notify

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/microcosm-cc/bluemonday"
)

// BarkClient pushes short notifications to a Bark server. Bark renders plain
// text only, so the report's HTML rank markup is stripped before sending.
type BarkClient struct {
	serverURL string
	deviceKey string
	client    *http.Client
	stripper  *bluemonday.Policy
}

// NewBarkClient creates a Bark push client. An empty device key makes Send a
// logged no-op.
func NewBarkClient(serverURL, deviceKey string, timeout time.Duration) *BarkClient {
	return &BarkClient{
		serverURL: strings.TrimRight(serverURL, "/"),
		deviceKey: deviceKey,
		client:    &http.Client{Timeout: timeout},
		stripper:  bluemonday.StrictPolicy(),
	}
}

// Send delivers one notification with title, subtitle and body
func (c *BarkClient) Send(ctx context.Context, title, subtitle, body string) error {
	if c.deviceKey == "" {
		lgr.Printf("[WARN] bark device key not configured, skip push")
		return nil
	}

	// strict policy drops every tag, unescape brings entities back to text
	plain := html.UnescapeString(c.stripper.Sanitize(body))

	params := url.Values{}
	params.Set("title", title)
	params.Set("subtitle", subtitle)
	params.Set("body", plain)
	params.Set("group", "热点新闻")

	reqURL := fmt.Sprintf("%s/%s?%s", c.serverURL, url.PathEscape(c.deviceKey), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create bark request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send to bark: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bark push failed with status %d", resp.StatusCode)
	}

	lgr.Printf("[INFO] bark push sent")
	return nil
}
