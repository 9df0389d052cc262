package service

import (
	"testing"

	"go.uber.org/goleak"
)

// Dashboard lookups run on their own goroutine; none may outlive Unmount.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
