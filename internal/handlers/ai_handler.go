package handlers

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"function-url-api/internal/router"
)

// APIRequest is the body accepted by POST /strands
type APIRequest struct {
	Query    string         `json:"query" validate:"required"`
	Message  string         `json:"message,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// AIHandler forwards validated queries to the model
type AIHandler struct {
	model     Model
	validator *validator.Validate
	logger    logrus.FieldLogger
}

// NewAIHandler creates a new AI handler
func NewAIHandler(model Model, logger logrus.FieldLogger) *AIHandler {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &AIHandler{model: model, validator: v, logger: logger}
}

// Query handles POST /strands
func (h *AIHandler) Query(ctx context.Context, req *router.Request, body router.Body, exec *router.ExecContext) (router.Result, error) {
	apiReq, err := h.bind(body)
	if err != nil {
		return router.Result{}, err
	}

	answer, err := h.model.Ask(ctx, apiReq.Query)
	if err != nil {
		return router.Result{}, router.Dependency("AI service error", err)
	}

	h.logger.WithFields(logrus.Fields{
		"query_length":     len(apiReq.Query),
		"model":            answer.Model,
		"stop_reason":      answer.StopReason,
		"input_tokens":     answer.InputTokens,
		"output_tokens":    answer.OutputTokens,
		"response_time_ms": milliseconds(answer.Duration),
	}).Info("AI query completed")

	return router.OK(map[string]any{
		"query":            apiReq.Query,
		"response":         answer.Text,
		"model":            answer.Model,
		"response_time_ms": milliseconds(answer.Duration),
	}), nil
}

// bind builds and validates the request from the body's exact keys. Anything
// that is not a JSON object is treated as a request without a query.
func (h *AIHandler) bind(body router.Body) (*APIRequest, error) {
	var apiReq APIRequest

	if obj, ok := body.Object(); ok {
		if q, present := obj["query"]; present && q != nil {
			query, isString := q.(string)
			if !isString {
				return nil, router.Validation("Invalid request: query must be a string")
			}
			apiReq.Query = query
		}
		if m, present := obj["message"]; present && m != nil {
			message, isString := m.(string)
			if !isString {
				return nil, router.Validation("Invalid request: message must be a string")
			}
			apiReq.Message = message
		}
		if md, present := obj["metadata"]; present && md != nil {
			metadata, isObject := md.(map[string]any)
			if !isObject {
				return nil, router.Validation("Invalid request: metadata must be an object")
			}
			apiReq.Metadata = metadata
		}
	}
	apiReq.Query = strings.TrimSpace(apiReq.Query)

	if err := h.validator.Struct(&apiReq); err != nil {
		return nil, invalidRequest(err)
	}
	return &apiReq, nil
}
