package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	domrepo "FinAgent/internal/domain/repository"
	domsvc "FinAgent/internal/domain/service"
	"FinAgent/pkg/config"
	"FinAgent/pkg/logger"
)

const anthropicVersion = "2023-06-01"

const stopToolUse = "tool_use"

// Client answers queries through the Anthropic Messages API.
// With a market data source it exposes price and beta tools and runs
// the tool_use / tool_result exchange until the model stops asking.
type Client struct {
	base        *httpBase
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	attempts    int
	maxRounds   int
	system      string
	tools       *toolbox
	log         *logger.Logger
}

func NewClient(cfg *config.Config, src domrepo.MarketDataSource, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}
	a := cfg.Agent
	c := &Client{
		base: newHTTPBase(strings.TrimRight(a.BaseURL, "/"), a.Timeout, map[string]string{
			"x-api-key":         a.APIKey,
			"anthropic-version": anthropicVersion,
			"Content-Type":      "application/json",
		}),
		apiKey:      a.APIKey,
		model:       a.Model,
		temperature: a.Temperature,
		maxTokens:   a.MaxTokens,
		attempts:    a.Attempts,
		maxRounds:   a.MaxToolRounds,
		system:      Instructions,
		log:         log,
	}
	if c.maxRounds <= 0 {
		c.maxRounds = 1
	}
	if src != nil {
		c.tools = &toolbox{src: src, timeout: cfg.MarketData.FetchTimeout}
	}
	return c
}

// Ready is false when no API key is configured.
func (c *Client) Ready() bool { return c.apiKey != "" }

type contentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

type message struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type messagesRequest struct {
	Model       string     `json:"model"`
	MaxTokens   int        `json:"max_tokens"`
	Temperature float64    `json:"temperature"`
	System      string     `json:"system,omitempty"`
	Tools       []toolSpec `json:"tools,omitempty"`
	Messages    []message  `json:"messages"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

func (c *Client) Answer(ctx context.Context, prompt string) (string, error) {
	req := messagesRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		System:      c.system,
		Messages:    []message{{Role: "user", Content: []contentBlock{{Type: "text", Text: prompt}}}},
	}
	if c.tools != nil {
		req.Tools = toolSpecs
	}

	for round := 1; ; round++ {
		var resp messagesResponse
		if err := c.base.postJSONWithRetry(ctx, "/v1/messages", req, &resp, c.attempts); err != nil {
			return "", fmt.Errorf("messages: %w", err)
		}
		if resp.StopReason != stopToolUse || c.tools == nil {
			return joinText(resp.Content), nil
		}
		if round >= c.maxRounds {
			return "", fmt.Errorf("messages: model still requesting tools after %d rounds", round)
		}

		req.Messages = append(req.Messages,
			message{Role: "assistant", Content: resp.Content},
			message{Role: "user", Content: c.runTools(ctx, resp.Content)},
		)
	}
}

func (c *Client) runTools(ctx context.Context, blocks []contentBlock) []contentBlock {
	var results []contentBlock
	for _, b := range blocks {
		if b.Type != stopToolUse {
			continue
		}
		out, isErr := c.tools.run(ctx, b.Name, b.Input)
		c.log.Debug("agent tool call",
			logger.String("tool", b.Name),
			logger.Bool("error", isErr),
		)
		results = append(results, contentBlock{
			Type:      "tool_result",
			ToolUseID: b.ID,
			Content:   out,
			IsError:   isErr,
		})
	}
	return results
}

func joinText(blocks []contentBlock) string {
	var b strings.Builder
	for _, part := range blocks {
		if part.Type == "text" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

var _ domsvc.QueryAgent = (*Client)(nil)
