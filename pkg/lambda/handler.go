package lambda

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"function-url-api/internal/router"
)

// HandlerFunc is the signature registered with lambda.Start
type HandlerFunc func(ctx context.Context, event json.RawMessage) (events.APIGatewayV2HTTPResponse, error)

// NewHandler adapts a dispatcher to the Lambda runtime. The returned error is
// always nil: every failure is already rendered into the response.
func NewHandler(d *router.Dispatcher) HandlerFunc {
	return func(ctx context.Context, event json.RawMessage) (events.APIGatewayV2HTTPResponse, error) {
		req := Normalize(event)
		env := d.Dispatch(ctx, req, ExecContextFrom(ctx))
		return ToResponse(env), nil
	}
}

// ExecContextFrom extracts the execution context of the current invocation.
// Values the runtime did not provide are left empty.
func ExecContextFrom(ctx context.Context) *router.ExecContext {
	exec := &router.ExecContext{
		FunctionName:    lambdacontext.FunctionName,
		FunctionVersion: lambdacontext.FunctionVersion,
		MemoryLimitMB:   lambdacontext.MemoryLimitInMB,
	}

	if lc, ok := lambdacontext.FromContext(ctx); ok && lc != nil {
		exec.RequestID = lc.AwsRequestID
	}

	if deadline, ok := ctx.Deadline(); ok {
		exec.WithDeadline(deadline)
	}

	return exec
}

// ToResponse converts an envelope into the platform response
func ToResponse(env router.Envelope) events.APIGatewayV2HTTPResponse {
	headers := make(map[string]string, len(env.Headers))
	for k, v := range env.Headers {
		headers[k] = v
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: env.StatusCode,
		Headers:    headers,
		Body:       env.Body,
	}
}
