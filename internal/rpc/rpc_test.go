package rpc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRequest struct {
	Name string `json:"name"`
}

type echoResponse struct {
	Greeting string `json:"greeting"`
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	Handle(mux, "EchoService", "Echo", func(_ context.Context, req *connect.Request[echoRequest]) (*connect.Response[echoResponse], error) {
		if req.Msg.Name == "" {
			return nil, Retryable(connect.CodeUnavailable, errors.New("backend down"))
		}
		return connect.NewResponse(&echoResponse{Greeting: "Hola " + req.Msg.Name}), nil
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRoundTrip(t *testing.T) {
	srv := newServer(t)
	client := NewClient[echoRequest, echoResponse](srv.Client(), srv.URL, "EchoService", "Echo")

	resp, err := client.CallUnary(context.Background(), connect.NewRequest(&echoRequest{Name: "Luna"}))
	require.NoError(t, err)
	assert.Equal(t, "Hola Luna", resp.Msg.Greeting)
}

func TestRetryableError(t *testing.T) {
	srv := newServer(t)
	client := NewClient[echoRequest, echoResponse](srv.Client(), srv.URL, "EchoService", "Echo")

	_, err := client.CallUnary(context.Background(), connect.NewRequest(&echoRequest{}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeUnavailable, connect.CodeOf(err))
	assert.True(t, IsRetryable(err))
	assert.False(t, IsRetryable(connect.NewError(connect.CodeInternal, errors.New("x"))))
}

func TestPlainHTTPJSON(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Post(srv.URL+Procedure("EchoService", "Echo"), "application/json", strings.NewReader(`{"name":"Max"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProcedure(t *testing.T) {
	assert.Equal(t, "/adpaws.v1.AuthService/Login", Procedure("AuthService", "Login"))
	assert.Equal(t, "/adpaws.v1.AuthService/", Path("AuthService"))
}
