package ai

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// MockConverse is an in-memory implementation of ConverseAPI for testing
type MockConverse struct {
	mu     sync.Mutex
	reply  string
	err    error
	delay  time.Duration
	inputs []*bedrockruntime.ConverseInput
}

// NewMockConverse creates a mock that answers every query with reply
func NewMockConverse(reply string) *MockConverse {
	return &MockConverse{reply: reply}
}

// FailWith makes subsequent calls return err
func (m *MockConverse) FailWith(err error) *MockConverse {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Delay makes subsequent calls wait d or until the context is done
func (m *MockConverse) Delay(d time.Duration) *MockConverse {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
	return m
}

// Inputs returns the requests received so far
func (m *MockConverse) Inputs() []*bedrockruntime.ConverseInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*bedrockruntime.ConverseInput(nil), m.inputs...)
}

// Converse implements ConverseAPI.Converse
func (m *MockConverse) Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, params)
	reply, err, delay := m.reply, m.err, m.delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	return &bedrockruntime.ConverseOutput{
		Output: &types.ConverseOutputMemberMessage{
			Value: types.Message{
				Role:    types.ConversationRoleAssistant,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: reply}},
			},
		},
		StopReason: types.StopReasonEndTurn,
		Usage: &types.TokenUsage{
			InputTokens:  aws.Int32(int32(len(m.queryText(params)))),
			OutputTokens: aws.Int32(int32(len(reply))),
		},
	}, nil
}

func (m *MockConverse) queryText(params *bedrockruntime.ConverseInput) string {
	if params == nil || len(params.Messages) == 0 || len(params.Messages[0].Content) == 0 {
		return ""
	}
	if text, ok := params.Messages[0].Content[0].(*types.ContentBlockMemberText); ok {
		return text.Value
	}
	return ""
}
