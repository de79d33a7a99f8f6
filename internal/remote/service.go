package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
)

// Meta carries pagination metadata when an endpoint returns it
type Meta struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	LastPage    int `json:"last_page"`
}

// Envelope is the API's common response wrapper. Some read endpoints omit
// the success flag and return a bare {"data": ...}; Ok treats an absent flag
// as success.
type Envelope struct {
	Success *bool               `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Meta    *Meta               `json:"meta"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// Ok reports whether the response indicates success.
func (e *Envelope) Ok() bool {
	return e.Success == nil || *e.Success
}

// DecodeData unmarshals the envelope's data payload into v.
func (e *Envelope) DecodeData(v any) error {
	if len(e.Data) == 0 {
		return nil
	}
	return json.Unmarshal(e.Data, v)
}

// Service is the remote-data-service contract the controllers depend on.
// Implementations own transport, auth headers and serialization; consumers
// see only paths, parameters and envelopes.
type Service interface {
	Get(ctx context.Context, path string, params url.Values) (*Envelope, error)
	Post(ctx context.Context, path string, body any) (*Envelope, error)
	PostMultipart(ctx context.Context, path string, fields map[string]string, fileField, fileName string, file io.Reader) (*Envelope, error)
	Delete(ctx context.Context, path string) (*Envelope, error)
}
