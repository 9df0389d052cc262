package httpx

import (
	"context"
	"sync"

	"github.com/target/carecircle/internal/ports"
)

var _ ports.Navigator = (*responseNavigator)(nil)

// responseNavigator records where a screen asked to go. The handler turns the
// target into a redirect once the screen operation returns.
type responseNavigator struct {
	mu     sync.Mutex
	target string
	set    bool
}

func (n *responseNavigator) Navigate(_ context.Context, path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.target, n.set = path, true
}

// Target returns the last requested path and whether navigation happened.
func (n *responseNavigator) Target() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.target, n.set
}
