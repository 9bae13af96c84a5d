package lambda

import (
	"strings"

	"github.com/segmentio/encoding/json"
	"github.com/spf13/cast"

	"function-url-api/internal/router"
)

// Event field names of the function URL / HTTP API v2 payload
const (
	fieldRequestContext = "requestContext"
	fieldHTTP           = "http"
	fieldMethod         = "method"
	fieldSourceIP       = "sourceIp"
	fieldRequestID      = "requestId"
	fieldRawPath        = "rawPath"
	fieldHeaders        = "headers"
	fieldQuery          = "queryStringParameters"
	fieldMultiQuery     = "multiValueQueryStringParameters"
	fieldPathParams     = "pathParameters"
	fieldStageVars      = "stageVariables"
	fieldBody           = "body"
	fieldIsBase64       = "isBase64Encoded"
)

// Event is the explicit schema of the inbound platform event. Every field is
// optional; missing or mistyped values take the defaults applied by Normalize.
type Event struct {
	Method     string
	RawPath    string
	Headers    map[string]string
	Query      map[string]string
	MultiQuery map[string][]string
	PathParams map[string]string
	StageVars  map[string]string
	Body       *string
	IsBase64   bool
	RequestID  string
	SourceIP   string
}

// ParseEvent reads the event schema out of raw event bytes. Malformed input
// yields an empty Event rather than an error.
func ParseEvent(raw []byte) Event {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		doc = map[string]any{}
	}

	reqCtx := cast.ToStringMap(doc[fieldRequestContext])
	httpCtx := cast.ToStringMap(reqCtx[fieldHTTP])

	event := Event{
		Method:     cast.ToString(httpCtx[fieldMethod]),
		RawPath:    cast.ToString(doc[fieldRawPath]),
		Headers:    cast.ToStringMapString(doc[fieldHeaders]),
		Query:      cast.ToStringMapString(doc[fieldQuery]),
		PathParams: cast.ToStringMapString(doc[fieldPathParams]),
		StageVars:  cast.ToStringMapString(doc[fieldStageVars]),
		IsBase64:   cast.ToBool(doc[fieldIsBase64]),
		RequestID:  cast.ToString(reqCtx[fieldRequestID]),
		SourceIP:   cast.ToString(httpCtx[fieldSourceIP]),
	}

	if mv, ok := doc[fieldMultiQuery]; ok && mv != nil {
		event.MultiQuery = cast.ToStringMapStringSlice(mv)
	}

	if body, ok := bodyText(doc[fieldBody]); ok {
		event.Body = &body
	}

	return event
}

// bodyText accepts the documented string body and re-encodes any other JSON
// value so a misconfigured upstream does not lose the payload.
func bodyText(v any) (string, bool) {
	switch b := v.(type) {
	case nil:
		return "", false
	case string:
		return b, true
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return "", false
		}
		return string(encoded), true
	}
}

// Normalize converts raw event bytes into a router request. It never fails.
func Normalize(raw []byte) *router.Request {
	return ParseEvent(raw).Request()
}

// Request converts the event into a router request applying defaults
func (e Event) Request() *router.Request {
	req := router.NewRequest(e.Method, e.RawPath)

	for k, v := range e.Headers {
		req.Headers[strings.ToLower(k)] = v
	}
	for k, v := range e.Query {
		req.Query[k] = v
	}
	for k, v := range e.PathParams {
		req.PathParams[k] = v
	}
	for k, v := range e.StageVars {
		req.StageVars[k] = v
	}
	if len(e.MultiQuery) > 0 {
		req.MultiQuery = make(map[string][]string, len(e.MultiQuery))
		for k, v := range e.MultiQuery {
			req.MultiQuery[k] = append([]string(nil), v...)
		}
	}

	if e.Body != nil {
		req.WithBody(*e.Body, e.IsBase64)
	}
	req.RequestID = e.RequestID
	req.SourceIP = e.SourceIP

	return req
}
