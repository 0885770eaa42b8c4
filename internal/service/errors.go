package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/adpaws/dashboard/internal/forms"
	"github.com/adpaws/dashboard/internal/graphql"
	"github.com/adpaws/dashboard/internal/rpc"
	"github.com/adpaws/dashboard/internal/wizard"
)

// ErrNoCompany is returned when there is no company to scope a call to.
var ErrNoCompany = errors.New("no company for this session")

// wizardError maps a wizard controller error to a Connect error.
func wizardError(err error) error {
	switch {
	case errors.Is(err, ErrWizardNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, wizard.ErrUnknownField), errors.Is(err, wizard.ErrWrongType):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, wizard.ErrNotTerminalStep):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, wizard.ErrSubmitInFlight),
		errors.Is(err, wizard.ErrClosed),
		errors.Is(err, wizard.ErrDiscarded):
		return connect.NewError(connect.CodeAborted, err)
	}
	return backendError(err)
}

// backendError maps a backend call failure to a Connect error. Transport
// failures are marked retryable; rejections carry the backend's message.
func backendError(err error) error {
	var remote *graphql.RemoteError
	switch {
	case errors.Is(err, graphql.ErrUnauthenticated):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return rpc.Retryable(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, forms.ErrNoService):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.As(err, &remote):
		msg := remote.Message()
		if msg == "" {
			msg = err.Error()
		}
		return connect.NewError(connect.CodeFailedPrecondition, errors.New(msg))
	}
	slog.Warn("Backend call failed", "error", err)
	return rpc.Retryable(connect.CodeUnavailable, err)
}
