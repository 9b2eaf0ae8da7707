package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GroqProvider talks to Groq's OpenAI-compatible chat completions API.
type GroqProvider struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

type groqMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqResponseFormat struct {
	Type string `json:"type"`
}

type groqChatReq struct {
	Model          string              `json:"model"`
	Messages       []groqMsg           `json:"messages"`
	Temperature    float64             `json:"temperature"`
	ResponseFormat *groqResponseFormat `json:"response_format,omitempty"`
}

type groqChatResp struct {
	Choices []struct {
		Message groqMsg `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewGroqProvider(baseURL, apiKey, model string, timeout time.Duration) *GroqProvider {
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GroqProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (p *GroqProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	return p.complete(ctx, messages, 0.7, nil)
}

// ChatJSON asks the model for a single JSON object reply.
func (p *GroqProvider) ChatJSON(ctx context.Context, messages []Message) (string, error) {
	return p.complete(ctx, messages, 0.0, &groqResponseFormat{Type: "json_object"})
}

func (p *GroqProvider) complete(ctx context.Context, messages []Message, temperature float64, format *groqResponseFormat) (string, error) {
	if p.Client == nil {
		return "", errors.New("groq: http client is nil")
	}
	if strings.TrimSpace(p.APIKey) == "" {
		return "", errors.New("groq: api key is required")
	}
	model := strings.TrimSpace(p.Model)
	if model == "" {
		return "", errors.New("groq: model is required")
	}

	reqBody := groqChatReq{
		Model:          model,
		Temperature:    temperature,
		ResponseFormat: format,
		Messages: func() []groqMsg {
			out := make([]groqMsg, 0, len(messages))
			for _, m := range messages {
				out = append(out, groqMsg{Role: m.Role, Content: m.Content})
			}
			return out
		}(),
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(p.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("groq: %s", msg)
	}

	var decoded groqChatResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", errors.New(decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("groq: empty response")
	}
	return decoded.Choices[0].Message.Content, nil
}
