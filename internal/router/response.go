package router

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/segmentio/encoding/json"
)

// CORS header values
const (
	AllowOrigin  = "*"
	AllowMethods = "GET, POST, OPTIONS"
	AllowHeaders = "Content-Type, Authorization, X-Amz-Date, X-Api-Key, X-Amz-Security-Token"
	MaxAge       = "86400"
)

// Envelope is the normalized response returned for every request
type Envelope struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

type successBody struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Success renders a handler result. A zero status means 200.
func Success(result Result) Envelope {
	status := result.Status
	if status == 0 {
		status = http.StatusOK
	}
	return Envelope{
		StatusCode: status,
		Headers:    jsonHeaders(),
		Body:       encode(successBody{Success: true, Data: result.Data}),
	}
}

// Failure renders a classified error
func Failure(err *Error) Envelope {
	if err == nil {
		err = Classify(fmt.Errorf("unclassified failure"))
	}
	return Envelope{
		StatusCode: err.Status(),
		Headers:    jsonHeaders(),
		Body:       encode(errorBody{Success: false, Error: err.Message}),
	}
}

// Preflight renders the fixed CORS preflight response
func Preflight() Envelope {
	return Envelope{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Access-Control-Allow-Origin":  AllowOrigin,
			"Access-Control-Allow-Methods": AllowMethods,
			"Access-Control-Allow-Headers": AllowHeaders,
			"Access-Control-Max-Age":       MaxAge,
		},
		Body: "",
	}
}

func jsonHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                "application/json",
		"Access-Control-Allow-Origin": AllowOrigin,
	}
}

// encode never fails: values the codec rejects are replaced by their
// string form before a second attempt.
func encode(v any) string {
	b, err := json.Marshal(v)
	if err == nil {
		return string(b)
	}

	b, err = json.Marshal(sanitize(reflect.ValueOf(v), 0))
	if err != nil {
		return `{"success":false,"error":"` + internalErrorMessage + `"}`
	}
	return string(b)
}

const maxSanitizeDepth = 32

var (
	timeType      = reflect.TypeOf(time.Time{})
	marshalerType = reflect.TypeOf((*interface{ MarshalJSON() ([]byte, error) })(nil)).Elem()
)

// sanitize converts v into maps, slices and scalars the codec accepts
func sanitize(v reflect.Value, depth int) any {
	if !v.IsValid() {
		return nil
	}
	if depth > maxSanitizeDepth {
		return fmt.Sprint(v.Interface())
	}

	if v.Type() == timeType {
		return v.Interface().(time.Time).Format(time.RFC3339Nano)
	}
	if v.Type().Implements(marshalerType) && v.CanInterface() {
		if _, err := json.Marshal(v.Interface()); err == nil {
			return v.Interface()
		}
		return fmt.Sprint(v.Interface())
	}

	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return sanitize(v.Elem(), depth+1)
	case reflect.Map:
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = sanitize(iter.Value(), depth+1)
		}
		return out
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Interface()
		}
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = sanitize(v.Index(i), depth+1)
		}
		return out
	case reflect.Struct:
		return sanitizeStruct(v, depth)
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Interface()
	case reflect.Float32, reflect.Float64:
		if _, err := json.Marshal(v.Interface()); err != nil {
			return fmt.Sprint(v.Interface())
		}
		return v.Interface()
	default:
		if v.CanInterface() {
			return fmt.Sprint(v.Interface())
		}
		return nil
	}
}

func sanitizeStruct(v reflect.Value, depth int) any {
	t := v.Type()
	out := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag := field.Tag.Get("json"); tag != "" {
			if tag == "-" {
				continue
			}
			if n, _, _ := strings.Cut(tag, ","); n != "" {
				name = n
			}
		}
		out[name] = sanitize(v.Field(i), depth+1)
	}
	return out
}
