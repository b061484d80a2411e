package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"golang.org/x/time/rate"

	"github.com/teemow/inboxdigest/internal/logging"
)

// DefaultRegion is used when no AWS region is configured.
const DefaultRegion = "us-east-1"

// ErrEmptyResponse is wrapped in a ProviderError when the model returns no text.
var ErrEmptyResponse = errors.New("model returned no text")

// Converser is the subset of the Bedrock runtime client used here.
type Converser interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Option configures a BedrockClient.
type Option func(*BedrockClient)

// WithLimiter paces generation calls. A nil limiter disables pacing.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *BedrockClient) { c.limiter = l }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *BedrockClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// BedrockClient generates text through the Bedrock Converse API.
type BedrockClient struct {
	api     Converser
	modelID string
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewBedrockClient loads AWS credentials from the default chain and returns a
// client bound to modelID.
func NewBedrockClient(ctx context.Context, region, modelID string, opts ...Option) (*BedrockClient, error) {
	if region == "" {
		region = DefaultRegion
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, &ProviderError{ModelID: modelID, Err: fmt.Errorf("failed to load AWS config: %w", err)}
	}
	return NewBedrockClientWithAPI(bedrockruntime.NewFromConfig(cfg), modelID, opts...), nil
}

// NewBedrockClientWithAPI wraps an existing Converser.
func NewBedrockClientWithAPI(api Converser, modelID string, opts ...Option) *BedrockClient {
	c := &BedrockClient{
		api:     api,
		modelID: modelID,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.WithService(c.logger, "bedrock")
	return c
}

// ModelID returns the identifier the client invokes.
func (c *BedrockClient) ModelID() string {
	return c.modelID
}

// Generate sends one user message with optional system instructions and
// returns the model's text reply.
func (c *BedrockClient) Generate(ctx context.Context, req Request) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", c.callErr(ctx, err)
		}
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.modelID),
		Messages: []brtypes.Message{{
			Role:    brtypes.ConversationRoleUser,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: req.Prompt}},
		}},
		InferenceConfig: &brtypes.InferenceConfiguration{
			Temperature: aws.Float32(req.Temperature),
		},
	}
	if req.MaxTokens > 0 {
		input.InferenceConfig.MaxTokens = aws.Int32(req.MaxTokens)
	}
	if req.System != "" {
		input.System = []brtypes.SystemContentBlock{&brtypes.SystemContentBlockMemberText{Value: req.System}}
	}

	start := time.Now()
	out, err := c.api.Converse(ctx, input)
	if err != nil {
		c.logger.Error("converse failed",
			logging.ModelID(c.modelID),
			slog.Duration(logging.KeyDuration, time.Since(start)),
			logging.Err(err))
		return "", c.callErr(ctx, err)
	}

	text := responseText(out)
	if text == "" {
		return "", &ProviderError{ModelID: c.modelID, Err: ErrEmptyResponse}
	}

	c.logger.Debug("converse completed",
		logging.ModelID(c.modelID),
		slog.Duration(logging.KeyDuration, time.Since(start)),
		slog.Bool("system_prompt", req.System != ""))
	return text, nil
}

// callErr wraps err in a ProviderError unless the caller's context ended.
// Cancellation and deadlines pass through carrying the context error.
func (c *BedrockClient) callErr(ctx context.Context, err error) error {
	ctxErr := ctx.Err()
	switch {
	case ctxErr == nil:
		return &ProviderError{ModelID: c.modelID, Err: err}
	case errors.Is(err, ctxErr):
		return err
	default:
		return fmt.Errorf("%w: %w", ctxErr, err)
	}
}

// responseText returns the last text block of the reply. Reasoning blocks
// emitted by some models are skipped.
func responseText(out *bedrockruntime.ConverseOutput) string {
	if out == nil {
		return ""
	}
	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}
	text := ""
	for _, block := range msg.Value.Content {
		if t, ok := block.(*brtypes.ContentBlockMemberText); ok && t.Value != "" {
			text = t.Value
		}
	}
	return text
}
