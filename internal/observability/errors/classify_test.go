package errors

import (
	"context"
	goerrors "errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/target/carecircle/internal/domain/auth"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", goerrors.New("x"), "errors_errorstring"},
		{"unreachable wraps cause", domainauth.Unreachable(fmt.Errorf("post: %w", &net.DNSError{Err: "no such host"})), "net_dnserror"},
		{"remote rejection", domainauth.NewRemoteError(400, "invalid_grant", "bad"), "auth_remoteerror"},
		{"joined takes first", goerrors.Join(&net.AddrError{Err: "missing port"}, goerrors.New("y")), "net_addrerror"},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), "deadline_exceeded"},
		{"canceled", context.Canceled, "canceled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
