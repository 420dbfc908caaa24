package extract

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/matzehuels/speakerbox/pkg/cache"
	"github.com/matzehuels/speakerbox/pkg/errors"
	"github.com/matzehuels/speakerbox/pkg/httputil"
)

// Defaults for the hosted endpoint.
const (
	DefaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	DefaultModel    = "openai/gpt-4o-mini"
	DefaultReferer  = "http://localhost"
	DefaultTitle    = "Speaker Calculator"
)

const promptTemplate = "Extract T/S parameters from this speaker specification text. " +
	"Return ONLY a JSON object with fs, qts, and vas values (numbers only, no units). " +
	"If a parameter isn't found, omit it from the JSON.\n\nText: "

// Client talks to a chat-completions API.
type Client struct {
	apiKey   string
	endpoint string
	model    string
	referer  string
	title    string
	httpOpts []httputil.ClientOption

	cache cache.Cache
	keyer cache.Keyer
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint sets the chat-completions URL.
func WithEndpoint(url string) Option { return func(c *Client) { c.endpoint = url } }

// WithModel sets the model name.
func WithModel(model string) Option { return func(c *Client) { c.model = model } }

// WithReferer sets the HTTP-Referer header OpenRouter uses for attribution.
func WithReferer(referer string) Option { return func(c *Client) { c.referer = referer } }

// WithHTTPOptions passes options to the underlying HTTP client.
func WithHTTPOptions(opts ...httputil.ClientOption) Option {
	return func(c *Client) { c.httpOpts = append(c.httpOpts, opts...) }
}

// WithCache caches replies by model and text. A nil keyer uses
// cache.DefaultKeyer.
func WithCache(ch cache.Cache, keyer cache.Keyer) Option {
	return func(c *Client) {
		c.cache = ch
		if keyer != nil {
			c.keyer = keyer
		}
	}
}

// NewClient creates a client authenticating with apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   strings.TrimSpace(apiKey),
		endpoint: DefaultEndpoint,
		model:    DefaultModel,
		referer:  DefaultReferer,
		title:    DefaultTitle,
		cache:    cache.NewNullCache(),
		keyer:    cache.NewDefaultKeyer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Extract asks the model for the parameters in text.
func (c *Client) Extract(ctx context.Context, text string) (Params, error) {
	return c.extract(ctx, text, false)
}

// ExtractFresh is Extract without reading the cache.
func (c *Client) ExtractFresh(ctx context.Context, text string) (Params, error) {
	return c.extract(ctx, text, true)
}

func (c *Client) extract(ctx context.Context, text string, refresh bool) (Params, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Params{}, errors.New(errors.ErrCodeMissingInput, "specification text is required")
	}
	if c.apiKey == "" {
		return Params{}, errors.New(errors.ErrCodeUnauthorized, "an API key is required for parameter extraction")
	}

	key := c.keyer.ExtractKey(c.model, text)
	if !refresh {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			var p Params
			if json.Unmarshal(data, &p) == nil {
				return p, nil
			}
		}
	}

	content, err := c.complete(ctx, promptTemplate+text)
	if err != nil {
		return Params{}, err
	}
	p, err := ParseReply(content)
	if err != nil {
		return Params{}, err
	}

	if data, err := json.Marshal(p); err == nil {
		_ = c.cache.Set(ctx, key, data, cache.ExtractTTL)
	}
	return p, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	hc := httputil.NewClient(map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"HTTP-Referer":  c.referer,
		"X-Title":       c.title,
	}, c.httpOpts...)

	req := chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	var resp chatResponse
	if err := hc.PostJSON(ctx, c.endpoint, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(errors.ErrCodeInvalidFormat, "model reply has no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
