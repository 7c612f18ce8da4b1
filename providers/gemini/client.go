package gemini

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/schema"
)

// DefaultModel is the Gemini model used when none is configured
const DefaultModel = "gemini-1.5-flash"

// ErrMissingAPIKey is returned when no Gemini API key is configured
var ErrMissingAPIKey = errors.New("gemini api key is not configured")

// contentGenerator is the part of a langchaingo model the client uses
type contentGenerator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Client is the Gemini provider client. The underlying model handle is built
// on first use and shared by every request after that.
type Client struct {
	apiKey string
	model  string

	mu  sync.Mutex
	llm contentGenerator
}

// NewClient creates a new Gemini client
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
	}
}

// newClientWithGenerator creates a client around an existing model handle
func newClientWithGenerator(gen contentGenerator) *Client {
	return &Client{apiKey: "injected", model: DefaultModel, llm: gen}
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// DescribeRoom sends the furniture description and the room photo to Gemini
// and returns the model's text answer
func (c *Client) DescribeRoom(ctx context.Context, description, mimeType string, image []byte) (string, error) {
	llm, err := c.generator()
	if err != nil {
		return "", err
	}

	messages := []llms.MessageContent{
		{
			Role: schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(ComposePrompt(description)),
				llms.BinaryPart(mimeType, image),
			},
		},
	}

	resp, err := llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", errors.Wrap(err, "gemini generate content")
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("gemini returned no choices")
	}

	return resp.Choices[0].Content, nil
}

// generator returns the shared model handle, creating it on first use.
// A failed construction is retried on the next call.
func (c *Client) generator() (contentGenerator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.llm != nil {
		return c.llm, nil
	}
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	llm, err := googleai.New(
		context.Background(),
		googleai.WithAPIKey(c.apiKey),
		googleai.WithDefaultModel(c.model),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gemini client")
	}

	c.llm = llm
	return c.llm, nil
}
