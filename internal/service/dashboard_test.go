package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/target/carecircle/internal/domain/auth"
	"github.com/target/carecircle/internal/domain/carecircle"
	"github.com/target/carecircle/internal/mocks"
	mockauth "github.com/target/carecircle/internal/mocks/auth"
)

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// gatewayStub is a SessionGateway with func fields.
type gatewayStub struct {
	currentUser func(ctx context.Context) (domainauth.Identity, error)
	signOut     func(ctx context.Context) error
}

func (g *gatewayStub) CurrentUser(ctx context.Context) (domainauth.Identity, error) {
	if g.currentUser != nil {
		return g.currentUser(ctx)
	}
	return domainauth.Identity{DisplayName: "Ada"}, nil
}

func (g *gatewayStub) SignOut(ctx context.Context) error {
	if g.signOut != nil {
		return g.signOut(ctx)
	}
	return nil
}

func newTestDashboard(gw SessionGateway, providers []carecircle.CareProvider, nav *mockauth.RecordingNavigator) *Dashboard {
	return NewDashboard(DashboardOptions{
		Session:   gw,
		Providers: &mockauth.StaticDirectory{Providers: providers},
		Navigator: nav,
	})
}

func TestDashboard_MountResolvesDisplayName(t *testing.T) {
	d := newTestDashboard(&gatewayStub{}, nil, nil)
	d.Mount(context.Background())
	defer d.Unmount()

	d.Wait(context.Background())
	name, ok := d.DisplayName()
	require.True(t, ok)
	assert.Equal(t, "Ada", name)
}

func TestDashboard_NameAbsentWhileLoading(t *testing.T) {
	release := make(chan struct{})
	d := newTestDashboard(&gatewayStub{currentUser: func(ctx context.Context) (domainauth.Identity, error) {
		select {
		case <-release:
			return domainauth.Identity{DisplayName: "Ada"}, nil
		case <-ctx.Done():
			return domainauth.Identity{}, ctx.Err()
		}
	}}, nil, nil)

	d.Mount(context.Background())
	_, ok := d.DisplayName()
	assert.False(t, ok)

	close(release)
	d.Wait(context.Background())
	name, ok := d.DisplayName()
	assert.True(t, ok)
	assert.Equal(t, "Ada", name)
	d.Unmount()
}

func TestDashboard_NoNameSetLooksLikeLoading(t *testing.T) {
	d := newTestDashboard(&gatewayStub{currentUser: func(context.Context) (domainauth.Identity, error) {
		return domainauth.Identity{UserID: "u"}, nil
	}}, nil, nil)
	d.Mount(context.Background())
	d.Wait(context.Background())
	defer d.Unmount()

	name, ok := d.DisplayName()
	assert.False(t, ok)
	assert.Empty(t, name)
}

func TestDashboard_UnmountDiscardsStaleResult(t *testing.T) {
	entered := make(chan struct{})
	d := newTestDashboard(&gatewayStub{currentUser: func(ctx context.Context) (domainauth.Identity, error) {
		close(entered)
		<-ctx.Done()
		// answer anyway, as a slow client that ignores cancellation would
		return domainauth.Identity{DisplayName: "Stale"}, nil
	}}, nil, nil)

	d.Mount(context.Background())
	<-entered
	d.Unmount()

	_, ok := d.DisplayName()
	assert.False(t, ok)
}

func TestDashboard_RemountIgnoresEarlierLookup(t *testing.T) {
	first := make(chan struct{})
	firstDone := make(chan struct{})
	calls := 0
	d := newTestDashboard(&gatewayStub{currentUser: func(ctx context.Context) (domainauth.Identity, error) {
		calls++
		if calls == 1 {
			defer close(firstDone)
			close(first)
			<-ctx.Done()
			return domainauth.Identity{DisplayName: "First"}, nil
		}
		return domainauth.Identity{DisplayName: "Second"}, nil
	}}, nil, nil)

	d.Mount(context.Background())
	<-first
	d.Mount(context.Background())
	<-firstDone
	d.Wait(context.Background())
	defer d.Unmount()

	name, ok := d.DisplayName()
	require.True(t, ok)
	assert.Equal(t, "Second", name)
}

func TestDashboard_LookupFailureRendersNoName(t *testing.T) {
	d := newTestDashboard(&gatewayStub{currentUser: func(context.Context) (domainauth.Identity, error) {
		return domainauth.Identity{}, domainauth.NewRemoteError(401, "", "invalid JWT")
	}}, carecircle.DefaultProviders(), nil)

	view, err := d.Load(context.Background(), timeout)
	require.NoError(t, err)
	d.Unmount()

	assert.Empty(t, view.DisplayName)
	assert.Len(t, view.Points, 6)
}

func TestDashboard_LoadDefaultProviders(t *testing.T) {
	d := newTestDashboard(&gatewayStub{}, carecircle.DefaultProviders(), nil)
	view, err := d.Load(context.Background(), timeout)
	require.NoError(t, err)
	d.Unmount()

	assert.Equal(t, "Ada", view.DisplayName)
	assert.Equal(t, carecircle.DefaultGeometry, view.Geometry)
	require.Len(t, view.Points, 6)
	assert.InDelta(t, 300, view.Points[0].X, 1e-9)
	assert.InDelta(t, 50, view.Points[0].Y, 1e-9)
}

func TestDashboard_LoadZeroProviders(t *testing.T) {
	d := newTestDashboard(&gatewayStub{}, nil, nil)
	view, err := d.Load(context.Background(), timeout)
	require.NoError(t, err)
	d.Unmount()
	assert.Empty(t, view.Points)
}

func TestDashboard_LoadDoesNotWaitPastBudget(t *testing.T) {
	d := newTestDashboard(&gatewayStub{currentUser: func(ctx context.Context) (domainauth.Identity, error) {
		<-ctx.Done()
		return domainauth.Identity{}, ctx.Err()
	}}, carecircle.DefaultProviders(), nil)

	start := time.Now()
	view, err := d.Load(context.Background(), 20*time.Millisecond)
	require.NoError(t, err)
	d.Unmount()

	assert.Less(t, time.Since(start), timeout)
	assert.Empty(t, view.DisplayName)
	assert.Len(t, view.Points, 6)
}

func TestDashboard_LoadProviderFailure(t *testing.T) {
	d := NewDashboard(DashboardOptions{
		Session:   &gatewayStub{},
		Providers: &mockauth.StaticDirectory{Err: errors.New("db down")},
	})
	_, err := d.Load(context.Background(), timeout)
	d.Unmount()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list providers")
}

func TestDashboard_LoadRejectsDuplicateNames(t *testing.T) {
	dup := []carecircle.CareProvider{{Type: "Dentist", Name: "Dr. A"}, {Type: "Physician", Name: "Dr. A"}}
	d := newTestDashboard(&gatewayStub{}, dup, nil)
	_, err := d.Load(context.Background(), timeout)
	d.Unmount()
	require.ErrorIs(t, err, carecircle.ErrDuplicateName)
}

func TestDashboard_SignOutSuccessNavigatesOnce(t *testing.T) {
	nav := &mockauth.RecordingNavigator{}
	d := newTestDashboard(&gatewayStub{}, nil, nav)

	d.SignOut(context.Background())
	assert.Equal(t, []string{"/"}, nav.Paths())
}

func TestDashboard_SignOutFailureIsSilent(t *testing.T) {
	nav := &mockauth.RecordingNavigator{}
	d := newTestDashboard(&gatewayStub{signOut: func(context.Context) error {
		return errors.New("network error")
	}}, nil, nav)

	assert.NotPanics(t, func() { d.SignOut(context.Background()) })
	assert.Empty(t, nav.Paths())
}

func TestDashboard_SignOutWithGeneratedMocks(t *testing.T) {
	ctrl := gomock.NewController(t)
	identity := mocks.NewMockIdentityService(ctrl)
	nav := mocks.NewMockNavigator(ctrl)

	sessions := mockauth.NewMemorySessionStore()
	auth := NewAuthService(AuthServiceOptions{Identity: identity, Sessions: sessions})
	sess := domainauth.Session{ID: "s-1", AccessToken: "tok-1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, sessions.Save(context.Background(), sess))

	gomock.InOrder(
		identity.EXPECT().SignOut(gomock.Any(), "tok-1").Return(nil),
		nav.EXPECT().Navigate(gomock.Any(), "/").Times(1),
	)

	d := NewDashboard(DashboardOptions{Session: auth.Bind(sess), Navigator: nav})
	d.SignOut(context.Background())
	assert.Equal(t, 0, sessions.Len())
}

func TestDashboard_SignOutFailureWithGeneratedMocks(t *testing.T) {
	ctrl := gomock.NewController(t)
	identity := mocks.NewMockIdentityService(ctrl)
	nav := mocks.NewMockNavigator(ctrl)

	sessions := mockauth.NewMemorySessionStore()
	auth := NewAuthService(AuthServiceOptions{Identity: identity, Sessions: sessions})
	sess := domainauth.Session{ID: "s-1", AccessToken: "tok-1"}
	require.NoError(t, sessions.Save(context.Background(), sess))

	identity.EXPECT().SignOut(gomock.Any(), "tok-1").Return(domainauth.NewRemoteError(500, "", "upstream error"))
	nav.EXPECT().Navigate(gomock.Any(), gomock.Any()).Times(0)

	d := NewDashboard(DashboardOptions{Session: auth.Bind(sess), Navigator: nav})
	d.SignOut(context.Background())
	assert.Equal(t, 1, sessions.Len())
}

func TestDashboard_LayoutUsesGeneratedDirectory(t *testing.T) {
	ctrl := gomock.NewController(t)
	dir := mocks.NewMockProviderDirectory(ctrl)
	dir.EXPECT().List(gomock.Any()).Return(carecircle.DefaultProviders()[:4], nil)

	d := NewDashboard(DashboardOptions{
		Session:   &gatewayStub{},
		Providers: dir,
		Geometry:  carecircle.NewGeometry(400, 400, 100),
	})
	points, err := d.Layout(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 4)
	assert.InDelta(t, 300, points[1].X, 1e-9)
	assert.InDelta(t, 200, points[1].Y, 1e-9)
}
