package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bookify/internal/core"
)

const defaultGeminiModel = "gemini-1.5-flash"

// GeminiClient calls the Generative Language API. An empty key is a supported
// degraded mode: the assistant then serves canned fallbacks only.
type GeminiClient struct {
	APIKey  string
	BaseURL string
	Model   string
	Client  *http.Client
	Retry   int
}

func NewGeminiClient(apiKey, baseURL string, retry int, httpClient *http.Client) *GeminiClient {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	if retry < 0 {
		retry = 0
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &GeminiClient{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   defaultGeminiModel,
		Client:  httpClient,
		Retry:   retry,
	}
}

func (c *GeminiClient) Configured() bool { return c.APIKey != "" }

func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, string, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.BaseURL, c.Model, c.APIKey)

	var lastErr error
	attempts := c.Retry + 1
	for i := 0; i < attempts; i++ {
		text, err := c.completeOnce(ctx, url, prompt)
		if err == nil {
			return text, c.Model, nil
		}
		// mapped kinds are final, retrying cannot help
		switch err {
		case core.ErrInvalidCredential, core.ErrRateLimited, core.ErrContentBlocked:
			return "", "", err
		}
		lastErr = err
		if i < attempts-1 {
			select {
			case <-time.After(time.Duration(150*(i+1)) * time.Millisecond):
			case <-ctx.Done():
				return "", "", ctx.Err()
			}
		}
	}
	return "", "", lastErr
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *GeminiClient) completeOnce(ctx context.Context, url, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var gr geminiResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return "", fmt.Errorf("gemini: status %d: %w", resp.StatusCode, err)
	}

	if kindErr := mapGeminiError(resp.StatusCode, gr); kindErr != nil {
		return "", kindErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini: status %d: %s", resp.StatusCode, string(respBody))
	}

	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return gr.Candidates[0].Content.Parts[0].Text, nil
}

// mapGeminiError translates upstream failures into the assistant's surfaced
// kinds: credential, quota, safety. Everything else stays a plain error.
func mapGeminiError(status int, gr geminiResponse) error {
	if gr.PromptFeedback != nil && gr.PromptFeedback.BlockReason != "" {
		return core.ErrContentBlocked
	}
	for _, cand := range gr.Candidates {
		if cand.FinishReason == "SAFETY" {
			return core.ErrContentBlocked
		}
	}

	msg, apiStatus := "", ""
	if gr.Error != nil {
		msg = gr.Error.Message
		apiStatus = gr.Error.Status
	}

	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden,
		strings.Contains(msg, "API_KEY_INVALID"), strings.Contains(msg, "API key not valid"):
		return core.ErrInvalidCredential
	case status == http.StatusTooManyRequests, apiStatus == "RESOURCE_EXHAUSTED":
		return core.ErrRateLimited
	case strings.Contains(apiStatus, "SAFETY"):
		return core.ErrContentBlocked
	}
	return nil
}
