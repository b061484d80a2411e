package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"github.com/teemow/inboxdigest/internal/config"
	"github.com/teemow/inboxdigest/internal/logging"
)

// successMessage is the response body of a completed run.
const successMessage = "Email summarizer ran successfully"

func newLambdaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Start the AWS Lambda runtime",
		Long: `Serve invocations from the AWS Lambda runtime. Each invocation runs one
report. The event selects the account and model:

  {"email_account": "PRIMARY", "model": "CLAUDE_HAIKU"}

EventBridge events carry the same fields under "detail". Missing fields fall
back to EMAIL_ACCOUNT and TARGET_MODEL.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			lambda.Start(newHandler(runDigest, slog.Default()))
		},
	}
}

// runDigest runs one report with a fresh configuration, so environment
// changes between warm invocations are picked up.
func runDigest(ctx context.Context, req digestRequest) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))
	return a.run(ctx, req)
}

// lambdaEvent is the invocation payload.
type lambdaEvent struct {
	EmailAccount string       `json:"email_account"`
	Model        string       `json:"model"`
	Detail       *lambdaEvent `json:"detail,omitempty"`
}

func (e lambdaEvent) request() digestRequest {
	if e.EmailAccount == "" && e.Model == "" && e.Detail != nil {
		return e.Detail.request()
	}
	return digestRequest{Account: e.EmailAccount, Model: e.Model}
}

type handler func(ctx context.Context, payload json.RawMessage) (events.APIGatewayProxyResponse, error)

// newHandler returns the Lambda handler. Input errors answer 400, any other
// failure 500. The handler itself never fails so the runtime does not retry.
func newHandler(run func(context.Context, digestRequest) error, logger *slog.Logger) handler {
	logger = logging.WithOperation(logger, "lambda")
	return func(ctx context.Context, payload json.RawMessage) (events.APIGatewayProxyResponse, error) {
		logger.Info("received event", slog.String("event", string(payload)))

		var ev lambdaEvent
		if len(payload) > 0 && string(payload) != "null" {
			if err := json.Unmarshal(payload, &ev); err != nil {
				logger.Warn("malformed event", logging.Err(err))
				return response(http.StatusBadRequest, fmt.Sprintf("invalid event: %v", err)), nil
			}
		}

		if err := run(ctx, ev.request()); err != nil {
			logger.Error("email summarizer failed", logging.Err(err))
			if errors.Is(err, config.ErrInvalidInput) {
				return response(http.StatusBadRequest, err.Error()), nil
			}
			return response(http.StatusInternalServerError, err.Error()), nil
		}
		return response(http.StatusOK, successMessage), nil
	}
}

func response(status int, message string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(map[string]string{"message": message})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
