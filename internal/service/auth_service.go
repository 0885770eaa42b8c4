package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"

	"github.com/adpaws/dashboard/internal/calculator"
	"github.com/adpaws/dashboard/internal/forms"
	"github.com/adpaws/dashboard/internal/graphql"
	"github.com/adpaws/dashboard/internal/guard"
	"github.com/adpaws/dashboard/internal/rpc"
	"github.com/adpaws/dashboard/internal/session"
)

// AuthServiceName is the RPC service name of AuthService.
const AuthServiceName = "AuthService"

// ErrInvalidCredentials is returned when the backend rejects a sign-in
// without saying why.
var ErrInvalidCredentials = errors.New("invalid email or password")

// SessionController is the session surface AuthService drives.
type SessionController interface {
	session.Reader
	SignIn(ctx context.Context, email, password string) error
	Logout(ctx context.Context)
	RefetchUser(ctx context.Context) error
}

// LoginRequest carries the login form and the remembered location.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	From     string `json:"from,omitempty"`
}

// LoginResponse is the session after a login attempt. FieldErrors is set
// when the form did not validate and nothing was sent.
type LoginResponse struct {
	Session     session.State     `json:"session"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	Redirect    string            `json:"redirect,omitempty"`
}

// Empty is a request without fields.
type Empty struct{}

// SessionResponse reports the session state.
type SessionResponse struct {
	Session  session.State `json:"session"`
	Greeting string        `json:"greeting,omitempty"`
}

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	session SessionController
	logger  *slog.Logger
	now     func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(s SessionController, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{session: s, logger: logger, now: time.Now}
}

// LoginProcedure is throttled by the login rate limit.
var LoginProcedure = rpc.Procedure(AuthServiceName, "Login")

// Handler returns the service's path prefix and handler.
func (s *AuthService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	rpc.Handle(mux, AuthServiceName, "Login", s.Login, opts...)
	rpc.Handle(mux, AuthServiceName, "Logout", s.Logout, opts...)
	rpc.Handle(mux, AuthServiceName, "CurrentUser", s.CurrentUser, opts...)
	rpc.Handle(mux, AuthServiceName, "RefetchUser", s.RefetchUser, opts...)
	return rpc.Path(AuthServiceName), mux
}

// Login validates the form, signs in and reports where to go next.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	s.logger.Info("Login request", "email", req.Msg.Email)

	creds, fieldErrs := forms.ValidateLogin(req.Msg.Email, req.Msg.Password)
	if fieldErrs != nil {
		return connect.NewResponse(&LoginResponse{Session: s.session.State(), FieldErrors: fieldErrs}), nil
	}

	if err := s.session.SignIn(ctx, creds.Email, creds.Password); err != nil {
		s.logger.Warn("Login failed", "email", creds.Email, "error", err)
		var remote *graphql.RemoteError
		if errors.As(err, &remote) || errors.Is(err, graphql.ErrUnauthenticated) {
			msg := ErrInvalidCredentials
			if remote != nil && remote.Message() != "" {
				msg = errors.New(remote.Message())
			}
			return nil, connect.NewError(connect.CodeUnauthenticated, msg)
		}
		return nil, backendError(err)
	}

	redirect := guard.LandingPath
	if from, ok := guard.SafeFrom(req.Msg.From); ok {
		redirect = from
	}

	s.logger.Info("Login successful", "email", creds.Email, "redirect", redirect)
	return connect.NewResponse(&LoginResponse{Session: s.session.State(), Redirect: redirect}), nil
}

// Logout ends the session. It never fails.
func (s *AuthService) Logout(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[SessionResponse], error) {
	s.session.Logout(ctx)
	return connect.NewResponse(&SessionResponse{Session: s.session.State()}), nil
}

// CurrentUser returns the session and the header greeting.
func (s *AuthService) CurrentUser(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[SessionResponse], error) {
	return connect.NewResponse(&SessionResponse{
		Session:  s.session.State(),
		Greeting: calculator.Greeting(s.now().Hour()),
	}), nil
}

// RefetchUser refreshes the user snapshot. Failures are reported through
// the returned session only: a rejected token shows up as signed out.
func (s *AuthService) RefetchUser(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[SessionResponse], error) {
	if err := s.session.RefetchUser(ctx); err != nil {
		s.logger.Warn("RefetchUser failed", "error", err)
	}
	return connect.NewResponse(&SessionResponse{Session: s.session.State()}), nil
}
