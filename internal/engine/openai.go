package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIEngine targets the OpenAI Chat Completions API.
type OpenAIEngine struct {
	client  openai.Client
	model   string
	backoff Backoff
}

// NewOpenAI creates an OpenAI-backed engine. Extra request options (custom
// base URL, HTTP client) are mainly for tests.
func NewOpenAI(model string, backoff Backoff, apiKey string, opts ...option.RequestOption) *OpenAIEngine {
	all := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)

	return &OpenAIEngine{
		client:  openai.NewClient(all...),
		model:   model,
		backoff: backoff,
	}
}

// Complete sends the prompt and returns the model's text reply.
func (e *OpenAIEngine) Complete(ctx context.Context, prompt string, params Params) (string, Usage, error) {
	maxTokens := params.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	req := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(e.model),
		Temperature: openai.Float(params.Temperature),
		MaxTokens:   openai.Int(int64(maxTokens)),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}

	var resp *openai.ChatCompletion
	err := retry(ctx, e.backoff, openaiRetryable, func() error {
		var err error
		resp, err = e.client.Chat.Completions.New(ctx, req)
		return err
	})
	if err != nil {
		return "", Usage{}, err
	}

	if len(resp.Choices) == 0 {
		return "", Usage{}, fmt.Errorf("%w: empty response", ErrProvider)
	}

	usage := Usage{
		Input:  int(resp.Usage.PromptTokens),
		Output: int(resp.Usage.CompletionTokens),
		Total:  int(resp.Usage.TotalTokens),
	}

	return resp.Choices[0].Message.Content, usage, nil
}

func openaiRetryable(err error) bool {
	var apierr *openai.Error
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
