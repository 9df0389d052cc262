// Package mocks provides gomock implementations of the hexagonal ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	identity := mocks.NewMockIdentityService(ctrl)
//	identity.EXPECT().SignOut(gomock.Any(), "tok").Return(nil)
//
// Hand-written doubles with func fields live in internal/mocks/auth.
package mocks

// Generate mocks for the identity, navigation and provider ports.
// This creates MockIdentityService (SignIn, SignUp, SignOut, CurrentUser),
// MockNavigator (Navigate) and MockProviderDirectory (List).
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/target/carecircle/internal/ports IdentityService,Navigator,ProviderDirectory
