package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/voyagent/voyagent/config"
)

// Model is the narrow slice of the language-model client the orchestrator
// consumes; tests substitute a fake.
type Model interface {
	Stream(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, toolDefs []openai.ChatCompletionToolUnionParam, onDelta func(string)) (*openai.ChatCompletionMessage, error)
}

type OpenAIModel struct {
	client openai.Client
	model  string
}

func NewOpenAIModel(cfg config.OpenAIConfig) *OpenAIModel {
	return &OpenAIModel{
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  cfg.Model,
	}
}

// Stream runs one streaming completion, forwarding text deltas as they
// arrive and returning the accumulated final message (which may carry tool
// calls instead of text).
func (m *OpenAIModel) Stream(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, toolDefs []openai.ChatCompletionToolUnionParam, onDelta func(string)) (*openai.ChatCompletionMessage, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(m.model),
		Messages: messages,
	}
	if len(toolDefs) > 0 {
		params.Tools = toolDefs
	}

	stream := m.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	acc := openai.ChatCompletionAccumulator{}
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) > 0 {
			if delta := chunk.Choices[0].Delta.Content; delta != "" && onDelta != nil {
				onDelta(delta)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, fmt.Errorf("stream completion: %w", err)
	}
	if len(acc.Choices) == 0 {
		return nil, errors.New("model returned no choices")
	}
	return &acc.Choices[0].Message, nil
}

var _ Model = (*OpenAIModel)(nil)
