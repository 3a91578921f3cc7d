package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-pkgz/lgr"
)

// FeishuClient pushes text messages through a Feishu group webhook
type FeishuClient struct {
	webhookURL string
	client     *http.Client
}

// NewFeishuClient creates a Feishu webhook client. An empty webhook URL makes
// Send a logged no-op.
func NewFeishuClient(webhookURL string, timeout time.Duration) *FeishuClient {
	return &FeishuClient{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: timeout},
	}
}

// Send posts a text message to the webhook
func (c *FeishuClient) Send(ctx context.Context, text string) error {
	if c.webhookURL == "" {
		lgr.Printf("[WARN] feishu webhook not configured, skip push")
		return nil
	}

	payload := map[string]interface{}{
		"msg_type": "text",
		"content":  map[string]string{"text": text},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal feishu payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create feishu request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send to feishu: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feishu push failed with status %d", resp.StatusCode)
	}

	lgr.Printf("[INFO] feishu push sent")
	return nil
}
