package data

import (
	"context"

	"github.com/target/carecircle/internal/domain/carecircle"
	"github.com/target/carecircle/internal/ports"
)

var _ ports.ProviderDirectory = StaticProviderDirectory{}

// StaticProviderDirectory serves the built-in provider sequence.
type StaticProviderDirectory struct{}

// List returns a fresh copy of the default providers.
func (StaticProviderDirectory) List(context.Context) ([]carecircle.CareProvider, error) {
	return carecircle.DefaultProviders(), nil
}
