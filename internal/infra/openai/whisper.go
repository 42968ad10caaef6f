package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"voice-relay/internal/domain"
	"voice-relay/internal/infra"
)

const defaultModel = "whisper-1"

type WhisperClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
	language   string
}

func NewWhisperClientWithURL(apiKey, model, language string, timeout time.Duration, baseURL string) *WhisperClient {
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &WhisperClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		model:      model,
		language:   language,
	}
}

type transcriptionResponse struct {
	Text any `json:"text"`
}

// Transcribe uploads media to the transcriptions endpoint. It makes exactly
// one request; failures come back as *domain.Error.
func (c *WhisperClient) Transcribe(ctx context.Context, media domain.MediaPayload) (string, error) {
	body, contentType, err := c.buildForm(media)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.NewError(domain.KindTranscriptionAPI,
			"🔄 Transcription API Error:\n"+infra.TransportMessage(err), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", domain.NewError(domain.KindTranscriptionAPI,
			"🔄 Transcription API Error:\n"+infra.TransportMessage(err), err)
	}

	if !json.Valid(respBody) {
		detail := fmt.Sprintf("🔄 API Response Parse Error:\nStatus: %d\nResponse: %s", resp.StatusCode, string(respBody))
		return "", domain.NewError(domain.KindParse, detail, nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", domain.NewError(domain.KindTranscriptionAPI,
			"🔄 Transcription API Error:\n"+infra.PrettyJSON(respBody), nil)
	}

	// Any well-formed body without a string "text" field counts as empty.
	var result transcriptionResponse
	_ = json.Unmarshal(respBody, &result)
	text, _ := result.Text.(string)

	if text == "" {
		return "", domain.NewError(domain.KindEmptyResult,
			"📝 No Transcription in Response:\n"+infra.PrettyJSON(respBody), nil)
	}

	return text, nil
}

func (c *WhisperClient) buildForm(media domain.MediaPayload) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	filename, partType := attachmentFor(media.MIMEType)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", partType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}

	if _, err = part.Write(media.Data); err != nil {
		return nil, "", fmt.Errorf("writing audio: %w", err)
	}

	if err = writer.WriteField("model", c.model); err != nil {
		return nil, "", fmt.Errorf("writing model field: %w", err)
	}

	if c.language != "" {
		if err = writer.WriteField("language", c.language); err != nil {
			return nil, "", fmt.Errorf("writing language field: %w", err)
		}
	}

	if err = writer.Close(); err != nil {
		return nil, "", fmt.Errorf("closing writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

// attachmentFor picks the upload filename and part type. The API infers the
// container from the file extension, so video notes keep their mp4 name.
func attachmentFor(mimeType string) (string, string) {
	if strings.HasPrefix(mimeType, "video/") {
		return "video.mp4", "video/mp4"
	}
	return "voice.oga", "audio/ogg"
}
