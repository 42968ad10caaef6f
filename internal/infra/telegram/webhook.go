package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"voice-relay/internal/infra"
)

type setWebhookRequest struct {
	URL            string   `json:"url"`
	SecretToken    string   `json:"secret_token,omitempty"`
	AllowedUpdates []string `json:"allowed_updates"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SetWebhook points the bot's updates at webhookURL. Server errors and
// rate limits are retried; anything else fails immediately.
func (c *Client) SetWebhook(ctx context.Context, cfg infra.RetryConfig, webhookURL, secretToken string) error {
	payload, err := json.Marshal(setWebhookRequest{
		URL:            webhookURL,
		SecretToken:    secretToken,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		return fmt.Errorf("marshaling setWebhook: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/setWebhook", c.baseURL, c.botToken)

	return infra.WithRetry(ctx, cfg, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return infra.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending setWebhook: %s", infra.TransportMessage(err))
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

		var result apiResponse
		_ = json.Unmarshal(body, &result)

		if resp.StatusCode != http.StatusOK || !result.OK {
			apiErr := fmt.Errorf("setWebhook error %d: %s", resp.StatusCode, result.Description)
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return apiErr
			}
			return infra.Permanent(apiErr)
		}

		return nil
	})
}
