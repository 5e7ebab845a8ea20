package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultRemoteTimeout = 30 * time.Second

// RemoteEngine calls an external OCR service over HTTP. The service accepts
// a base64-encoded image and returns recognized text with per-block
// confidence scores.
type RemoteEngine struct {
	baseURL   string
	languages []string
	client    *http.Client
}

type remoteRequest struct {
	Image     string   `json:"image"`
	Languages []string `json:"languages,omitempty"`
}

type remoteResponse struct {
	Text             string    `json:"text"`
	BlockConfidences []float64 `json:"block_confidences"`
	Error            string    `json:"error,omitempty"`
}

// NewRemoteEngine constructs an engine talking to the OCR service at
// baseURL. The client timeout is a backstop; per-request deadlines come
// from the caller's context.
func NewRemoteEngine(baseURL string, languages ...string) *RemoteEngine {
	return &RemoteEngine{
		baseURL:   baseURL,
		languages: languages,
		client:    &http.Client{Timeout: defaultRemoteTimeout},
	}
}

func (e *RemoteEngine) Name() string { return "remote" }

// Extract sends the image to the remote service and decodes the response.
func (e *RemoteEngine) Extract(ctx context.Context, image []byte) (RawResult, error) {
	payload, err := json.Marshal(remoteRequest{
		Image:     base64.StdEncoding.EncodeToString(image),
		Languages: e.languages,
	})
	if err != nil {
		return RawResult{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/ocr", bytes.NewReader(payload))
	if err != nil {
		return RawResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return RawResult{}, fmt.Errorf("ocr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return RawResult{}, fmt.Errorf("ocr service returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var remote remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		return RawResult{}, fmt.Errorf("decode response: %w", err)
	}
	if remote.Error != "" {
		return RawResult{}, fmt.Errorf("ocr service error: %s", remote.Error)
	}

	return RawResult{
		Text:             remote.Text,
		BlockConfidences: remote.BlockConfidences,
	}, nil
}
