package llmapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	openaiBaseURL = "https://api.openai.com"
	openaiModel   = "gpt-4o"
)

// openaiProvider speaks the OpenAI chat completions API.
type openaiProvider struct {
	apiKey  string
	baseURL string
}

func (o *openaiProvider) name() string {
	return "openai"
}

func (o *openaiProvider) endpoint() string {
	base := o.baseURL
	if base == "" {
		base = openaiBaseURL
	}
	return strings.TrimSuffix(base, "/") + "/v1/chat/completions"
}

func (o *openaiProvider) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
}

type openaiRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens,omitempty"`
	Messages  []openaiMessage `json:"messages"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (o *openaiProvider) buildBody(prompt string, maxTokens int) ([]byte, error) {
	return json.Marshal(openaiRequest{
		Model:     openaiModel,
		MaxTokens: maxTokens,
		Messages:  []openaiMessage{{Role: "user", Content: prompt}},
	})
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (o *openaiProvider) parseBody(body []byte) (string, error) {
	var resp openaiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
