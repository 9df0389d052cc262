package ports_test

import (
	"testing"

	mocks "github.com/target/carecircle/internal/mocks/auth"
	"github.com/target/carecircle/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.IdentityService = (*mocks.MockIdentityService)(nil)
	var _ ports.SessionStore = (*mocks.MemorySessionStore)(nil)
	var _ ports.Navigator = (*mocks.RecordingNavigator)(nil)
	var _ ports.ProviderDirectory = (*mocks.StaticDirectory)(nil)
}
