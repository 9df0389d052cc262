//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// They are installed with `go install` and are not tracked in go.mod.
package tools

// Air - live reload for cmd/carecircle with DEV=true (templates reload from disk)
//   Install: go install github.com/air-verse/air@v1.63.0
//   Docs: https://github.com/air-verse/air
//
// mockgen - regenerates internal/mocks/ports_mock.go via `go generate ./internal/mocks`
//   Install: go install go.uber.org/mock/mockgen@v0.6.0
//   Docs: https://github.com/uber-go/mock
