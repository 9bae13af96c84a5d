package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"function-url-api/internal/config"
)

// DefaultTimeout bounds a single model invocation
const DefaultTimeout = 30 * time.Second

// ConverseAPI is the subset of the Bedrock runtime client used here
type ConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Answer is the model's reply to a single query
type Answer struct {
	Text         string
	Model        string
	StopReason   string
	InputTokens  int
	OutputTokens int
	Duration     time.Duration
}

// Client sends single-turn queries to a hosted model
type Client struct {
	api         ConverseAPI
	modelID     string
	temperature float32
	timeout     time.Duration
}

// New creates a client backed by Bedrock using the default AWS credential chain
func New(ctx context.Context, cfg config.AIConfig) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewWithAPI(bedrockruntime.NewFromConfig(awsCfg), cfg), nil
}

// NewWithAPI creates a client around an existing Converse implementation
func NewWithAPI(api ConverseAPI, cfg config.AIConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		api:         api,
		modelID:     cfg.ModelID,
		temperature: cfg.Temperature,
		timeout:     timeout,
	}
}

// ModelID returns the configured model identifier
func (c *Client) ModelID() string {
	return c.modelID
}

// Ask sends query to the model and returns the concatenated text reply
func (c *Client) Ask(ctx context.Context, query string) (*Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.modelID),
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: query},
				},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			Temperature: aws.Float32(c.temperature),
		},
	}

	start := time.Now()
	out, err := c.api.Converse(ctx, input)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &ModelError{ModelID: c.modelID, Err: errors.Join(ErrModelTimeout, err)}
		}
		return nil, &ModelError{ModelID: c.modelID, Err: errors.Join(ErrModelFailure, err)}
	}

	text := outputText(out)
	if text == "" {
		return nil, &ModelError{ModelID: c.modelID, Err: ErrEmptyResponse}
	}

	answer := &Answer{
		Text:       text,
		Model:      c.modelID,
		StopReason: string(out.StopReason),
		Duration:   time.Since(start),
	}
	if out.Usage != nil {
		answer.InputTokens = int(aws.ToInt32(out.Usage.InputTokens))
		answer.OutputTokens = int(aws.ToInt32(out.Usage.OutputTokens))
	}
	return answer, nil
}

func outputText(out *bedrockruntime.ConverseOutput) string {
	if out == nil {
		return ""
	}
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}

	var parts []string
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok && text.Value != "" {
			parts = append(parts, text.Value)
		}
	}
	return strings.Join(parts, "\n")
}
