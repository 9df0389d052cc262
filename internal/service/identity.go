package service

import (
	"context"
	"log/slog"
	"time"

	domainauth "github.com/target/carecircle/internal/domain/auth"
	obserrors "github.com/target/carecircle/internal/observability/errors"
	"github.com/target/carecircle/internal/observability/metrics"
	"github.com/target/carecircle/internal/ports"
)

// Identity operation names used for metrics and logs.
const (
	OpSignIn      = "sign_in"
	OpSignUp      = "sign_up"
	OpSignOut     = "sign_out"
	OpCurrentUser = "current_user"
)

// InstrumentedIdentityOptions groups dependencies for InstrumentIdentity.
type InstrumentedIdentityOptions struct {
	Next    ports.IdentityService
	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

type instrumentedIdentity struct {
	next    ports.IdentityService
	metrics *metrics.Recorder
	logger  *slog.Logger
}

// InstrumentIdentity wraps an identity service with latency metrics and debug logging.
func InstrumentIdentity(opts InstrumentedIdentityOptions) ports.IdentityService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &instrumentedIdentity{next: opts.Next, metrics: opts.Metrics, logger: logger}
}

func (i *instrumentedIdentity) observe(op string, start time.Time, err error) {
	took := time.Since(start)
	i.metrics.AuthAttempt(op, err, took)
	attrs := []any{
		slog.String("op", op),
		slog.String("result", metrics.ResultFor(err)),
		slog.Duration("took", took),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error_type", obserrors.Classify(err)))
	}
	i.logger.Debug("identity call", attrs...)
}

func (i *instrumentedIdentity) SignIn(ctx context.Context, creds domainauth.Credentials) (domainauth.Grant, error) {
	start := time.Now()
	g, err := i.next.SignIn(ctx, creds)
	i.observe(OpSignIn, start, err)
	return g, err
}

func (i *instrumentedIdentity) SignUp(
	ctx context.Context,
	creds domainauth.Credentials,
	profile domainauth.Profile,
) (domainauth.Grant, error) {
	start := time.Now()
	g, err := i.next.SignUp(ctx, creds, profile)
	i.observe(OpSignUp, start, err)
	return g, err
}

func (i *instrumentedIdentity) SignOut(ctx context.Context, accessToken string) error {
	start := time.Now()
	err := i.next.SignOut(ctx, accessToken)
	i.observe(OpSignOut, start, err)
	return err
}

func (i *instrumentedIdentity) CurrentUser(ctx context.Context, accessToken string) (domainauth.Identity, error) {
	start := time.Now()
	id, err := i.next.CurrentUser(ctx, accessToken)
	i.observe(OpCurrentUser, start, err)
	return id, err
}
