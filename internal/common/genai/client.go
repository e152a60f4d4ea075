// internal/common/genai/client.go
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "db-agent/internal/common/errors"
	"db-agent/internal/common/httpclient"
	"db-agent/internal/common/logger"
	"db-agent/internal/common/metrics"
)

// CallKind tags gateway calls in logs and metrics.
type CallKind string

const (
	KindIntent     CallKind = "intent"
	KindSummary    CallKind = "summary"
	KindTranscribe CallKind = "transcribe"
	KindImage      CallKind = "image"
)

// Client talks to the hosted generative-model REST endpoint. Every method is
// one blocking round trip with no retry; the caller owns the turn boundary.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *httpclient.Client
	logger  logger.Logger
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  httpclient.NewClient(timeout),
		logger:  log.WithFields(map[string]interface{}{"component": "genai"}),
	}
}

// --- request/response wire types ---

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Interpret sends a text-only prompt and returns the reply text.
func (c *Client) Interpret(ctx context.Context, prompt string, kind CallKind) (string, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	return c.generate(ctx, &req, kind)
}

// Summarize sends a summarization prompt; same call as Interpret with the
// summary kind tag.
func (c *Client) Summarize(ctx context.Context, prompt string) (string, error) {
	return c.Interpret(ctx, prompt, KindSummary)
}

// Transcribe sends a local audio file inline and returns the transcript.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	data, mimeType, err := encodeFile(audioPath)
	if err != nil {
		return "", apperrors.NewGatewayError(0, fmt.Sprintf("read audio: %v", err))
	}

	req := generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: "Transcribe this audio recording. Return only the transcript text."},
				{InlineData: &inlineData{MIMEType: mimeType, Data: data}},
			},
		}},
	}
	return c.generate(ctx, &req, KindTranscribe)
}

// DescribeImage sends a local image file inline with an instruction.
func (c *Client) DescribeImage(ctx context.Context, imagePath, instruction string) (string, error) {
	data, mimeType, err := encodeFile(imagePath)
	if err != nil {
		return "", apperrors.NewGatewayError(0, fmt.Sprintf("read image: %v", err))
	}

	req := generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: instruction},
				{InlineData: &inlineData{MIMEType: mimeType, Data: data}},
			},
		}},
	}
	return c.generate(ctx, &req, KindImage)
}

// ListModels returns the model names available to the configured key.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	url := fmt.Sprintf("%s/models?key=%s", c.baseURL, c.apiKey)
	resp, err := c.client.Get(ctx, url)
	if err != nil {
		return nil, apperrors.NewGatewayError(0, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var body struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperrors.NewGatewayError(resp.StatusCode, fmt.Sprintf("decode error: %v", err))
	}

	names := make([]string, 0, len(body.Models))
	for _, m := range body.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func (c *Client) generate(ctx context.Context, req *generateRequest, kind CallKind) (string, error) {
	start := time.Now()
	metrics.AgentModelCalls.WithLabelValues(string(kind)).Inc()
	defer func() {
		metrics.AgentModelCallDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	}()

	body, _ := json.Marshal(req)
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", apperrors.NewGatewayError(0, err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", apperrors.NewGatewayError(0, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeAPIError(resp)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", apperrors.NewGatewayError(resp.StatusCode, fmt.Sprintf("decode error: %v", err))
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", apperrors.NewGatewayError(resp.StatusCode, "no candidates returned")
	}

	text := genResp.Candidates[0].Content.Parts[0].Text

	c.logger.Debug("model call completed", map[string]interface{}{
		"kind":       string(kind),
		"durationMs": time.Since(start).Milliseconds(),
		"replyBytes": len(text),
	})

	return text, nil
}

// decodeAPIError pulls the service's error message out of a non-200 body.
func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))

	var apiErr apiError
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apperrors.NewGatewayError(resp.StatusCode, apiErr.Error.Message)
	}
	return apperrors.NewGatewayError(resp.StatusCode, strings.TrimSpace(string(raw)))
}

// mimeByExtension covers the media types the agent actually handles; anything
// else falls back to content sniffing.
var mimeByExtension = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

func encodeFile(path string) (data string, mimeType string, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}

	ext := strings.ToLower(filepath.Ext(path))
	mimeType, ok := mimeByExtension[ext]
	if !ok {
		mimeType = http.DetectContentType(raw)
	}

	return base64.StdEncoding.EncodeToString(raw), mimeType, nil
}
