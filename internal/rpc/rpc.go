// Package rpc adapts Connect to plain Go request and response structs.
//
// The dashboard's RPC surface has no protobuf schema: messages are ordinary
// structs with json tags, carried by a JSON codec registered under the
// "json" name so the Connect protocol's application/json content type keeps
// working for browsers and for connect clients.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
)

// Package is the RPC package prefix of every service.
const Package = "adpaws.v1"

// RetryableHeader marks errors the view may offer to retry.
const RetryableHeader = "Adpaws-Retryable"

// JSONCodec marshals messages with encoding/json.
type JSONCodec struct{}

// Name implements connect.Codec.
func (JSONCodec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (JSONCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// MarshalStable is Marshal; encoding/json already sorts map keys.
func (JSONCodec) MarshalStable(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// IsBinary reports false: the codec produces text.
func (JSONCodec) IsBinary() bool { return false }

// Unmarshal implements connect.Codec. An empty body leaves msg zero.
func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	return nil
}

// Procedure returns the procedure path of a method.
func Procedure(service, method string) string {
	return "/" + Package + "." + service + "/" + method
}

// Path returns the path prefix of a service.
func Path(service string) string {
	return "/" + Package + "." + service + "/"
}

// UnaryFunc is a unary RPC method.
type UnaryFunc[Req, Res any] func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error)

// Handle registers fn as service/method on mux with the JSON codec.
func Handle[Req, Res any](mux *http.ServeMux, service, method string, fn UnaryFunc[Req, Res], opts ...connect.HandlerOption) {
	procedure := Procedure(service, method)
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
}

// NewClient returns a client for service/method using the JSON codec.
func NewClient[Req, Res any](hc connect.HTTPClient, baseURL, service, method string, opts ...connect.ClientOption) *connect.Client[Req, Res] {
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return connect.NewClient[Req, Res](hc, baseURL+Procedure(service, method), opts...)
}

// Retryable wraps err in a Connect error marked as retryable.
func Retryable(code connect.Code, err error) *connect.Error {
	cerr := connect.NewError(code, err)
	cerr.Meta().Set(RetryableHeader, "true")
	return cerr
}

// IsRetryable reports whether err carries the retryable mark.
func IsRetryable(err error) bool {
	var cerr *connect.Error
	return errors.As(err, &cerr) && cerr.Meta().Get(RetryableHeader) == "true"
}
