package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"voice-relay/internal/domain"
	"voice-relay/internal/infra"
)

const (
	defaultBaseURL = "https://api.telegram.org"

	// Bot API downloads are capped at 20 MB; leave headroom.
	maxMediaBytes = 25 << 20
)

// Client talks to the Telegram Bot API. It fetches media and sends messages
// on behalf of one bot.
type Client struct {
	botToken   string
	parseMode  string
	httpClient *http.Client
	baseURL    string
}

func NewClient(botToken, parseMode string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		botToken:   botToken,
		parseMode:  parseMode,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
	}
}

// WithBaseURL overrides the API base URL (for testing).
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

type fileResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		FileID   string `json:"file_id"`
		FilePath string `json:"file_path"`
		FileSize int64  `json:"file_size"`
		MIMEType string `json:"mime_type"`
	} `json:"result"`
	Description string `json:"description"`
}

// FetchMedia resolves fileID through getFile and downloads its content.
func (c *Client) FetchMedia(ctx context.Context, fileID string) (domain.MediaPayload, error) {
	info, err := c.getFile(ctx, fileID)
	if err != nil {
		return domain.MediaPayload{}, err
	}

	data, err := c.download(ctx, info.Result.FilePath)
	if err != nil {
		return domain.MediaPayload{}, err
	}

	mimeType := info.Result.MIMEType
	if mimeType == "" {
		mimeType = domain.UnknownMIMEType
	}

	return domain.MediaPayload{
		Data:     data,
		Size:     len(data),
		MIMEType: mimeType,
	}, nil
}

func (c *Client) getFile(ctx context.Context, fileID string) (*fileResponse, error) {
	endpoint := fmt.Sprintf("%s/bot%s/getFile?file_id=%s", c.baseURL, c.botToken, url.QueryEscape(fileID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, metadataError(infra.TransportMessage(err), err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, metadataError(infra.TransportMessage(err), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, metadataError(infra.TransportMessage(err), err)
	}

	var info fileResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, metadataError(infra.PrettyJSON(body), fmt.Errorf("decoding getFile response: %w", err))
	}

	if !info.OK || info.Result.FilePath == "" {
		return nil, metadataError(infra.PrettyJSON(body), nil)
	}

	return &info, nil
}

func (c *Client) download(ctx context.Context, filePath string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.botToken, filePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, domain.NewError(domain.KindDownload, "📥 Download Error:\n"+infra.TransportMessage(err), err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewError(domain.KindDownload, "📥 Download Error:\n"+infra.TransportMessage(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := fmt.Sprintf("📥 Download Error:\nStatus: %d\nText: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		return nil, domain.NewError(domain.KindDownload, detail, nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes+1))
	if err != nil {
		return nil, domain.NewError(domain.KindDownload, "📥 Download Error:\n"+infra.TransportMessage(err), err)
	}
	if len(data) > maxMediaBytes {
		return nil, domain.NewError(domain.KindDownload,
			fmt.Sprintf("📥 Download Error:\nfile exceeds %d MB", maxMediaBytes>>20), nil)
	}

	return data, nil
}

func metadataError(detail string, err error) error {
	return domain.NewError(domain.KindMetadata, "🔍 File Info Error:\n"+detail, err)
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload, err := json.Marshal(sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: c.parseMode,
	})
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.botToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.NewError(domain.KindSend, "📤 Message Send Error:\n"+infra.TransportMessage(err), err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewError(domain.KindSend, "📤 Message Send Error:\n"+infra.TransportMessage(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return domain.NewError(domain.KindSend, "📤 Message Send Error:\n"+infra.PrettyJSON(body), nil)
	}

	return nil
}
