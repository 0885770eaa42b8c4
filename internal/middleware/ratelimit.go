package middleware

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"connectrpc.com/connect"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when a throttled procedure is called too often.
var ErrRateLimited = errors.New("too many attempts, try again in a moment")

// RateLimit returns an interceptor that throttles the given procedures with
// one shared token bucket. Other procedures pass through.
func RateLimit(limit rate.Limit, burst int, procedures ...string) connect.UnaryInterceptorFunc {
	limiter := rate.NewLimiter(limit, burst)
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			procedure := req.Spec().Procedure
			if slices.Contains(procedures, procedure) && !limiter.Allow() {
				slog.Warn("RPC throttled", "procedure", procedure, "peer", req.Peer().Addr)
				return nil, connect.NewError(connect.CodeResourceExhausted, ErrRateLimited)
			}
			return next(ctx, req)
		}
	}
}
