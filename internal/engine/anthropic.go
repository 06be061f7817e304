package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicEngine targets the Anthropic Messages API.
type AnthropicEngine struct {
	client  anthropic.Client
	model   string
	backoff Backoff
}

// NewAnthropic creates an Anthropic-backed engine. Extra request options
// (custom base URL, HTTP client) are mainly for tests.
func NewAnthropic(model string, backoff Backoff, apiKey string, opts ...option.RequestOption) *AnthropicEngine {
	// The retry loop here owns backoff, so the SDK's own retries are off.
	all := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)

	return &AnthropicEngine{
		client:  anthropic.NewClient(all...),
		model:   model,
		backoff: backoff,
	}
}

// Complete sends the prompt and returns the model's text reply.
func (e *AnthropicEngine) Complete(ctx context.Context, prompt string, params Params) (string, Usage, error) {
	maxTokens := params.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	req := anthropic.MessageNewParams{
		Model:       anthropic.Model(e.model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(params.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	var resp *anthropic.Message
	err := retry(ctx, e.backoff, anthropicRetryable, func() error {
		var err error
		resp, err = e.client.Messages.New(ctx, req)
		return err
	})
	if err != nil {
		return "", Usage{}, err
	}

	if len(resp.Content) == 0 {
		return "", Usage{}, fmt.Errorf("%w: empty response", ErrProvider)
	}
	block, ok := resp.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", Usage{}, fmt.Errorf("%w: unexpected content block type", ErrProvider)
	}

	usage := Usage{
		Input:  int(resp.Usage.InputTokens),
		Output: int(resp.Usage.OutputTokens),
	}
	usage.Total = usage.Input + usage.Output

	return block.Text, usage, nil
}

func anthropicRetryable(err error) bool {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == http.StatusTooManyRequests:
			return true
		case apierr.StatusCode == http.StatusRequestTimeout:
			return true
		case apierr.StatusCode >= http.StatusInternalServerError:
			return true
		}
		return false
	}
	return errors.Is(err, context.DeadlineExceeded)
}
