package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	domainauth "github.com/target/carecircle/internal/domain/auth"
	"github.com/target/carecircle/internal/domain/carecircle"
	authmocks "github.com/target/carecircle/internal/mocks/auth"
	"github.com/target/carecircle/internal/observability/metrics"
	"github.com/target/carecircle/internal/service"
)

const testCSRFToken = "test-csrf-token"

// testApp is the full router wired to in-memory doubles.
type testApp struct {
	handler  http.Handler
	identity *authmocks.MockIdentityService
	sessions *authmocks.MemorySessionStore
	auth     *service.AuthService
	dir      *authmocks.StaticDirectory
	registry *prometheus.Registry
}

// newTestApp builds the router; opts adjust RouterServices before it is built.
func newTestApp(t *testing.T, opts ...func(*RouterServices)) *testApp {
	t.Helper()
	if _, err := os.Stat(TemplatePathFromTest); os.IsNotExist(err) {
		t.Skip("Templates not available, skipping handler test")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := &testApp{
		identity: authmocks.NewMockIdentityService(),
		sessions: authmocks.NewMemorySessionStore(),
		dir:      &authmocks.StaticDirectory{Providers: carecircle.DefaultProviders()},
		registry: prometheus.NewRegistry(),
	}
	app.auth = service.NewAuthService(service.AuthServiceOptions{
		Identity: app.identity,
		Sessions: app.sessions,
		Logger:   logger,
	})

	services := RouterServices{
		Auth:        app.auth,
		Providers:   app.dir,
		Geometry:    carecircle.DefaultGeometry,
		ProfileWait: time.Second,
		Metrics:     metrics.New(app.registry),
		Gatherer:    app.registry,
		TemplateFS:  os.DirFS(TemplatePathFromTest),
		StaticFS:    os.DirFS("../../frontend/static"),
		Logger:      logger,
	}
	for _, opt := range opts {
		opt(&services)
	}

	h, err := NewRouter(services)
	require.NoError(t, err)
	app.handler = h
	return app
}

func (a *testApp) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

// signIn opens a session for the mock's default user and returns its cookie.
func (a *testApp) signIn(t *testing.T) *http.Cookie {
	t.Helper()
	user := a.identity.DefaultUser
	sess, err := a.auth.OpenSession(context.Background(), domainauth.Grant{
		Identity:     user,
		AccessToken:  "access-" + user.UserID,
		RefreshToken: "refresh-" + user.UserID,
		ExpiresAt:    time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	return &http.Cookie{Name: SessionCookieName, Value: sess.ID}
}

// formPost builds a form POST that passes CSRF through the hidden field.
func formPost(target string, form url.Values) *http.Request {
	if form == nil {
		form = url.Values{}
	}
	form.Set(DefaultCSRFCookieName, testCSRFToken)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
	return req
}

// htmx marks req as an htmx request carrying the CSRF header, as the layout's
// hx-headers would.
func htmx(req *http.Request) *http.Request {
	req.Header.Set("Hx-Request", "true")
	req.Header.Set(DefaultCSRFHeaderName, testCSRFToken)
	if _, err := req.Cookie(DefaultCSRFCookieName); err != nil {
		req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
	}
	return req
}

func withCookie(req *http.Request, c *http.Cookie) *http.Request {
	req.AddCookie(c)
	return req
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func parseHTML(t *testing.T, body string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if all := findAll(n, match); len(all) > 0 {
		return all[0]
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		for _, c := range strings.Fields(attr(n, "class")) {
			if c == class {
				return true
			}
		}
		return false
	}
}

func hasID(id string) func(*html.Node) bool {
	return func(n *html.Node) bool { return attr(n, "id") == id }
}

func inputNamed(name string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Data == "input" && attr(n, "name") == name }
}

// textOf returns the whitespace-collapsed text content of n.
func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
