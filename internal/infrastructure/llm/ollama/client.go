package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/docmeta/internal/core/ports"
)

// Client talks to the Ollama /api/generate endpoint.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func New(baseURL, model string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *Client) Name() string { return "ollama" }

// Generate sends one non-streaming generation request. With a schema the
// reply is constrained through Ollama's structured output format.
func (c *Client) Generate(ctx context.Context, req ports.GenerateRequest) (string, error) {
	reqBody := map[string]any{
		"model":  c.model,
		"prompt": req.Prompt,
		"stream": false,
	}
	if req.Schema != nil {
		reqBody["format"] = req.Schema.JSONSchema()
	}
	options := map[string]any{"temperature": req.Temperature}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	reqBody["options"] = options

	var response struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "/api/generate", reqBody, &response, "generate"); err != nil {
		return "", markTemporary("ollama.generate", err)
	}
	return strings.TrimSpace(response.Response), nil
}
