package stream

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/citetrail/internal/model"
)

// OpenAI is a fallback answer source backed by an OpenAI-compatible chat
// completion endpoint. It emits plain deltas without search lifecycle
// events, so answers produced this way carry no citations.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates the fallback source. baseURL may point at any
// OpenAI-compatible server (e.g. a local Ollama).
func NewOpenAI(apiKey, baseURL, modelName string) (*OpenAI, error) {
	if apiKey == "" && baseURL == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientConfig),
		model:  modelName,
	}, nil
}

// Events streams one answer as AnswerDelta events followed by
// AnswerCompleted. Mid-stream errors end the answer, they do not
// propagate.
func (o *OpenAI) Events(ctx context.Context, question string) (<-chan model.Event, error) {
	chatStream, err := o.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
		Stream: true,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	events := make(chan model.Event, 16)

	go func() {
		defer close(events)
		defer chatStream.Close()

		send := func(ev model.Event) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			resp, err := chatStream.Recv()
			if err != nil {
				// io.EOF is the normal end of stream; anything else also
				// just ends the answer.
				send(model.AnswerCompleted{})
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			if content := resp.Choices[0].Delta.Content; content != "" {
				if !send(model.AnswerDelta{Text: content}) {
					return
				}
			}
		}
	}()

	return events, nil
}
