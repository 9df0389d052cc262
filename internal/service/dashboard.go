package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	domainauth "github.com/target/carecircle/internal/domain/auth"
	"github.com/target/carecircle/internal/domain/carecircle"
	"github.com/target/carecircle/internal/observability/metrics"
	"github.com/target/carecircle/internal/ports"
)

// SessionGateway is the dashboard's view of the signed-in session.
type SessionGateway interface {
	CurrentUser(ctx context.Context) (domainauth.Identity, error)
	SignOut(ctx context.Context) error
}

var _ SessionGateway = (*BoundSession)(nil)

// DashboardOptions groups dependencies for Dashboard.
type DashboardOptions struct {
	Session   SessionGateway
	Providers ports.ProviderDirectory
	Navigator ports.Navigator
	Geometry  carecircle.Geometry
	Metrics   *metrics.Recorder
	Logger    *slog.Logger
}

// Dashboard is the care circle screen controller.
//
// Mount starts a one-shot display name lookup tied to a generation number.
// Unmount (or a later Mount) bumps the generation so a stale result is ignored.
type Dashboard struct {
	session   SessionGateway
	providers ports.ProviderDirectory
	navigator ports.Navigator
	geometry  carecircle.Geometry
	metrics   *metrics.Recorder
	logger    *slog.Logger

	mu          sync.Mutex
	gen         uint64
	cancel      context.CancelFunc
	done        chan struct{}
	displayName string
	resolved    bool
}

// NewDashboard constructs a Dashboard.
func NewDashboard(opts DashboardOptions) *Dashboard {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	g := opts.Geometry
	if g.Radius <= 0 || g.Width <= 0 || g.Height <= 0 {
		g = carecircle.DefaultGeometry
	}
	return &Dashboard{
		session:   opts.Session,
		providers: opts.Providers,
		navigator: opts.Navigator,
		geometry:  g,
		metrics:   opts.Metrics,
		logger:    logger,
	}
}

// Geometry returns the canvas the layout is computed for.
func (d *Dashboard) Geometry() carecircle.Geometry { return d.geometry }

// Mount starts the display name lookup. The lookup runs until it completes,
// ctx is cancelled, or the dashboard is unmounted.
func (d *Dashboard) Mount(ctx context.Context) {
	d.mu.Lock()
	d.stopLocked()
	d.gen++
	gen := d.gen
	lookupCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	d.cancel = cancel
	d.done = done
	d.displayName, d.resolved = "", false
	d.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()
		id, err := d.session.CurrentUser(lookupCtx)
		d.resolve(gen, id, err)
	}()
}

func (d *Dashboard) resolve(gen uint64, id domainauth.Identity, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		d.metrics.SessionBootstrap("stale")
		return
	}
	if err != nil {
		d.metrics.SessionBootstrap(metrics.ResultFor(err))
		d.logger.Warn("current user lookup failed", slog.Any("error", err))
		return
	}
	d.metrics.SessionBootstrap(metrics.ResultSuccess)
	d.displayName = id.DisplayName
	d.resolved = true
}

// Unmount cancels any pending lookup and waits for it to exit.
func (d *Dashboard) Unmount() {
	d.mu.Lock()
	d.gen++
	done := d.done
	d.stopLocked()
	d.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (d *Dashboard) stopLocked() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// Wait blocks until the current lookup finishes or ctx is done.
func (d *Dashboard) Wait(ctx context.Context) {
	d.mu.Lock()
	done := d.done
	d.mu.Unlock()
	if done == nil {
		return
	}
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// DisplayName returns the signed-in user's name once the lookup has resolved.
// An empty name and a pending lookup look the same to callers.
func (d *Dashboard) DisplayName() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.resolved || d.displayName == "" {
		return "", false
	}
	return d.displayName, true
}

// Layout lists the providers and places them around the center marker.
func (d *Dashboard) Layout(ctx context.Context) ([]carecircle.LayoutPoint, error) {
	providers, err := d.providers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	if err := carecircle.ValidateSequence(providers); err != nil {
		return nil, err
	}
	points := carecircle.RadialLayout(providers, d.geometry)
	d.metrics.DashboardProviders(len(points))
	return points, nil
}

// View is everything the dashboard page renders.
type View struct {
	DisplayName string
	Points      []carecircle.LayoutPoint
	Geometry    carecircle.Geometry
}

// Load mounts the dashboard and lays out providers while the name lookup runs.
// It waits at most wait for the name; a missing name is not an error.
func (d *Dashboard) Load(ctx context.Context, wait time.Duration) (View, error) {
	d.Mount(ctx)

	var points []carecircle.LayoutPoint
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		points, err = d.Layout(gctx)
		return err
	})
	g.Go(func() error {
		waitCtx, cancel := context.WithTimeout(gctx, wait)
		defer cancel()
		d.Wait(waitCtx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return View{}, err
	}

	name, _ := d.DisplayName()
	return View{DisplayName: name, Points: points, Geometry: d.geometry}, nil
}

// SignOut ends the session and navigates to the landing page. Failures are
// logged only: no navigation and nothing shown to the user.
func (d *Dashboard) SignOut(ctx context.Context) {
	if err := d.session.SignOut(ctx); err != nil {
		d.metrics.SignOutFailure()
		d.logger.Error("sign out failed", slog.Any("error", err))
		return
	}
	if d.navigator != nil {
		d.navigator.Navigate(ctx, "/")
	}
}
