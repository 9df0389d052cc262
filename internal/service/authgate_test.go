package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/carecircle/internal/domain/auth"
	"github.com/target/carecircle/internal/domain/authform"
	mocks "github.com/target/carecircle/internal/mocks/auth"
)

func invalidCredentials(context.Context, domainauth.Credentials) (domainauth.Grant, error) {
	return domainauth.Grant{}, domainauth.NewRemoteError(400, "invalid_grant", "Invalid login credentials")
}

func TestAuthGate_LoginWrongCredentials(t *testing.T) {
	identity := &mocks.MockIdentityService{SignInFunc: invalidCredentials}
	gate := NewAuthGate(AuthGateOptions{Identity: identity})
	gate.Open()

	err := gate.Submit(context.Background(), authform.LoginSubmission{Email: "ada@example.com", Password: "wrong"})
	require.Error(t, err)

	st := gate.State()
	assert.Equal(t, "Invalid login credentials", st.LastError)
	assert.False(t, st.IsSubmitting)
	assert.True(t, st.DialogVisible)
	assert.Equal(t, 1, identity.Calls("SignIn"))
}

func TestAuthGate_SignupPasswordMismatchNeverCallsIdentity(t *testing.T) {
	identity := mocks.NewMockIdentityService()
	gate := NewAuthGate(AuthGateOptions{Identity: identity})
	gate.Open()
	gate.Toggle()

	err := gate.Submit(context.Background(), authform.SignupSubmission{
		FullName:        "Ada Lovelace",
		Email:           "ada@example.com",
		Password:        "abc123",
		ConfirmPassword: "xyz456",
	})
	require.Error(t, err)

	st := gate.State()
	assert.Equal(t, "Passwords don't match", st.LastError)
	assert.False(t, st.IsSubmitting)
	assert.Equal(t, 0, identity.TotalCalls())
}

func TestAuthGate_SignupPassesFullName(t *testing.T) {
	var got domainauth.Profile
	identity := &mocks.MockIdentityService{
		SignUpFunc: func(_ context.Context, _ domainauth.Credentials, p domainauth.Profile) (domainauth.Grant, error) {
			got = p
			return domainauth.Grant{AccessToken: "tok"}, nil
		},
	}
	gate := NewAuthGate(AuthGateOptions{Identity: identity, Initial: authform.State{DialogVisible: true, ActiveForm: authform.Signup}})

	require.NoError(t, gate.Submit(context.Background(), authform.SignupSubmission{
		FullName: "Ada Lovelace", Email: "ada@example.com", Password: "p", ConfirmPassword: "p",
	}))
	assert.Equal(t, "Ada Lovelace", got.FullName)
}

func TestAuthGate_ToggleShowsEmptyBanner(t *testing.T) {
	gate := NewAuthGate(AuthGateOptions{Identity: &mocks.MockIdentityService{SignInFunc: invalidCredentials}})
	gate.Open()
	_ = gate.Submit(context.Background(), authform.LoginSubmission{Email: "ada@example.com", Password: "x"})
	require.NotEmpty(t, gate.State().LastError)

	gate.Toggle()
	assert.Empty(t, gate.State().LastError)
	assert.Equal(t, authform.OpenSignup, gate.State().Phase())

	gate.Toggle()
	assert.Empty(t, gate.State().LastError)
	assert.Equal(t, authform.OpenLogin, gate.State().Phase())
}

func TestAuthGate_SuccessDoesNotChangeStateAndNotifiesObservers(t *testing.T) {
	gate := NewAuthGate(AuthGateOptions{Identity: mocks.NewMockIdentityService()})
	gate.Open()

	var grants []domainauth.Grant
	gate.OnSessionChange(func(_ context.Context, g domainauth.Grant) { grants = append(grants, g) })

	before := gate.State()
	require.NoError(t, gate.Submit(context.Background(), authform.LoginSubmission{Email: "ada@example.com", Password: "pw"}))

	assert.Equal(t, before, gate.State())
	require.Len(t, grants, 1)
	assert.Equal(t, "ada@example.com", grants[0].Identity.Email)
}

func TestAuthGate_NewSubmissionClearsPreviousError(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	calls := 0
	identity := &mocks.MockIdentityService{
		SignInFunc: func(ctx context.Context, c domainauth.Credentials) (domainauth.Grant, error) {
			calls++
			if calls == 1 {
				return invalidCredentials(ctx, c)
			}
			close(started)
			<-release
			return invalidCredentials(ctx, c)
		},
	}
	gate := NewAuthGate(AuthGateOptions{Identity: identity})
	gate.Open()
	sub := authform.LoginSubmission{Email: "ada@example.com", Password: "x"}

	_ = gate.Submit(context.Background(), sub)
	require.NotEmpty(t, gate.State().LastError)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = gate.Submit(context.Background(), sub)
	}()
	<-started

	st := gate.State()
	assert.True(t, st.IsSubmitting)
	assert.Empty(t, st.LastError)
	assert.False(t, gate.CanSubmit())

	close(release)
	<-done
	assert.False(t, gate.State().IsSubmitting)
	assert.True(t, gate.CanSubmit())
}

func TestAuthGate_CloseDuringSubmissionStillRecordsFailure(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	identity := &mocks.MockIdentityService{
		SignInFunc: func(ctx context.Context, c domainauth.Credentials) (domainauth.Grant, error) {
			close(started)
			<-release
			return invalidCredentials(ctx, c)
		},
	}
	gate := NewAuthGate(AuthGateOptions{Identity: identity})
	gate.Open()
	gate.Show(authform.Signup)
	gate.Show(authform.Login)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = gate.Submit(context.Background(), authform.LoginSubmission{Email: "ada@example.com", Password: "x"})
	}()
	<-started

	gate.Close()
	assert.True(t, gate.State().IsSubmitting, "closing does not cancel the pending submission")

	close(release)
	<-done

	st := gate.State()
	assert.False(t, st.DialogVisible)
	assert.False(t, st.IsSubmitting)
	assert.Equal(t, "Invalid login credentials", st.LastError)
}

func TestAuthGate_UnmountDropsLateResult(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	identity := &mocks.MockIdentityService{
		SignInFunc: func(ctx context.Context, c domainauth.Credentials) (domainauth.Grant, error) {
			close(started)
			<-release
			return domainauth.Grant{AccessToken: "tok"}, nil
		},
	}
	gate := NewAuthGate(AuthGateOptions{Identity: identity})
	gate.Open()

	notified := false
	gate.OnSessionChange(func(context.Context, domainauth.Grant) { notified = true })

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = gate.Submit(context.Background(), authform.LoginSubmission{Email: "ada@example.com", Password: "x"})
	}()
	<-started

	snapshot := gate.State()
	gate.Unmount()
	close(release)
	<-done

	assert.Equal(t, snapshot, gate.State())
	assert.False(t, notified)

	// an unmounted gate ignores new submissions too
	require.NoError(t, gate.Submit(context.Background(), authform.LoginSubmission{Email: "ada@example.com", Password: "x"}))
	assert.Equal(t, 1, identity.Calls("SignIn"))
}

func TestAuthGate_OverlappingSubmissionsLastWriterWins(t *testing.T) {
	var mu sync.Mutex
	releases := map[string]chan struct{}{
		"first@example.com":  make(chan struct{}),
		"second@example.com": make(chan struct{}),
	}
	started := make(chan string, 2)
	identity := &mocks.MockIdentityService{
		SignInFunc: func(_ context.Context, c domainauth.Credentials) (domainauth.Grant, error) {
			mu.Lock()
			ch := releases[c.Email]
			mu.Unlock()
			started <- c.Email
			<-ch
			return domainauth.Grant{}, domainauth.NewRemoteError(400, "", "rejected "+c.Email)
		},
	}
	gate := NewAuthGate(AuthGateOptions{Identity: identity})
	gate.Open()

	var wg sync.WaitGroup
	for _, email := range []string{"first@example.com", "second@example.com"} {
		wg.Add(1)
		go func(email string) {
			defer wg.Done()
			_ = gate.Submit(context.Background(), authform.LoginSubmission{Email: email, Password: "x"})
		}(email)
	}
	<-started
	<-started

	close(releases["second@example.com"])
	assert.Eventually(t, func() bool { return gate.State().LastError == "rejected second@example.com" }, timeout, tick)
	assert.True(t, gate.State().IsSubmitting, "first submission still in flight")

	close(releases["first@example.com"])
	wg.Wait()

	st := gate.State()
	assert.Equal(t, "rejected first@example.com", st.LastError)
	assert.False(t, st.IsSubmitting)
}

func TestAuthGate_RemoteUnreachable(t *testing.T) {
	identity := &mocks.MockIdentityService{
		SignInFunc: func(context.Context, domainauth.Credentials) (domainauth.Grant, error) {
			return domainauth.Grant{}, domainauth.Unreachable(context.DeadlineExceeded)
		},
	}
	gate := NewAuthGate(AuthGateOptions{Identity: identity})
	gate.Open()

	_ = gate.Submit(context.Background(), authform.LoginSubmission{Email: "ada@example.com", Password: "x"})
	assert.Equal(t, domainauth.UnreachableMessage, gate.State().LastError)
}
