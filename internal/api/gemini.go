package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/quocvuong92/gemini-chat/internal/history"
	"github.com/quocvuong92/gemini-chat/internal/logging"
)

// GeminiOptions configures a GeminiClient
type GeminiOptions struct {
	APIKey    string
	Model     string
	UserAgent string

	// BaseURL overrides the API endpoint (tests point it at httptest)
	BaseURL string

	// Logger, when enabled at debug level, receives redacted HTTP traffic
	Logger *logging.Logger
}

// GeminiClient is the Google Gemini API client
type GeminiClient struct {
	client *genai.Client
	model  string
	logger *logging.Logger
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, opts GeminiOptions) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	httpClient := &http.Client{}
	if logger.Enabled(logging.LevelDebug) {
		httpClient.Transport = logging.NewLoggingRoundTripper(nil, logging.NewHTTPLogger(logger), true)
	}

	httpOpts := genai.HTTPOptions{BaseURL: opts.BaseURL}
	if opts.UserAgent != "" {
		httpOpts.Headers = http.Header{"User-Agent": []string{opts.UserAgent}}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: httpOpts,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}

	return &GeminiClient{client: client, model: opts.Model, logger: logger}, nil
}

// Generate sends the conversation to the model and returns the reply text
func (c *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	contents := buildContents(req.History, req.Prompt)
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}

	c.logger.Debug("Sending Gemini request", logging.Fields{
		"model":        c.model,
		"turns":        len(contents),
		"prompt_chars": len([]rune(req.Prompt)),
	})

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &APIError{StatusCode: apiErr.Code, Status: apiErr.Status, Message: apiErr.Message}
		}
		return "", err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		reason := "no candidates"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
			reason = "finish reason " + string(resp.Candidates[0].FinishReason)
		}
		return "", fmt.Errorf("%w: %s", ErrEmptyResponse, reason)
	}
	return text, nil
}

// Close satisfies AIClient. genai.Client has no Close; idle connections
// belong to the http.Client and are reclaimed with it.
func (c *GeminiClient) Close() {}

// buildContents converts history plus the new prompt into Gemini contents
func buildContents(turns []history.Turn, prompt string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns)+1)
	for _, t := range turns {
		role := genai.Role(genai.RoleUser)
		if t.Role == history.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}
	return append(contents, genai.NewContentFromText(prompt, genai.RoleUser))
}
