package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client is the external translation capability. Implementations translate a
// single text between two language codes and prepare the per-pair language
// model before first use (preparation may trigger a download on the remote
// side).
type Client interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
	PrepareModel(ctx context.Context, source, target string) error
}

type httpClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type translateRequest struct {
	Text   string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
}

type prepareModelRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// NewHTTPClient creates a Client backed by a self-hosted translation service.
func NewHTTPClient(baseURL string, logger *slog.Logger) Client {
	return &httpClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 45 * time.Second, // model downloads can be slow
		},
		logger: logger.With("service", "translate"),
	}
}

func (c *httpClient) Translate(ctx context.Context, text, source, target string) (string, error) {
	reqBody := translateRequest{
		Text:   text,
		Source: source,
		Target: target,
		Format: "text",
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal translate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/translate", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create translate request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make translate request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read translate response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate API error: %d - %s", resp.StatusCode, string(body))
	}

	var translateResp translateResponse
	if err := json.Unmarshal(body, &translateResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal translate response: %w", err)
	}

	c.logger.Debug("Translated text",
		"source", source,
		"target", target,
		"input_length", len(text),
		"output_length", len(translateResp.TranslatedText))

	return translateResp.TranslatedText, nil
}

func (c *httpClient) PrepareModel(ctx context.Context, source, target string) error {
	reqBody := prepareModelRequest{Source: source, Target: target}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal prepare request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/models/prepare", bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create prepare request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make prepare request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("prepare model API error: %d - %s", resp.StatusCode, string(body))
	}

	c.logger.Debug("Language model ready", "source", source, "target", target)
	return nil
}
