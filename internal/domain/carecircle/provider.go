// Package carecircle holds the care provider model and the radial layout
// that places providers around the "You" marker on the dashboard.
package carecircle

import (
	"errors"
	"fmt"
	"strings"
)

// CareProvider is one member of a user's care circle.
// Name is the stable key and must be unique within a sequence.
type CareProvider struct {
	Type    string `json:"type"    db:"type"`
	Name    string `json:"name"    db:"name"`
	IconRef string `json:"icon_ref" db:"icon_ref"`
}

// ErrDuplicateName is returned when two providers in a sequence share a name.
var ErrDuplicateName = errors.New("duplicate provider name")

// ErrEmptyField is returned when a provider is missing its type or name.
var ErrEmptyField = errors.New("provider type and name are required")

// DefaultProviders returns the built-in provider sequence, in display order.
func DefaultProviders() []CareProvider {
	return []CareProvider{
		{Type: "Dentist", Name: "Dr. Sarah Smith", IconRef: "/static/icons/dentist.svg"},
		{Type: "Chiropractor", Name: "Dr. Robert Lee", IconRef: "/static/icons/chiropractor.svg"},
		{Type: "Physician", Name: "Dr. Lisa Johnson", IconRef: "/static/icons/physician.svg"},
		{Type: "Physiotherapist", Name: "John Martinez", IconRef: "/static/icons/physiotherapist.svg"},
		{Type: "Massage Therapist", Name: "Emma Wilson", IconRef: "/static/icons/massagetherapist.svg"},
		{Type: "Podiatrist", Name: "Dr. Michael Chang", IconRef: "/static/icons/podiatrist.svg"},
	}
}

// Validate checks a single provider.
func (p CareProvider) Validate() error {
	if strings.TrimSpace(p.Type) == "" || strings.TrimSpace(p.Name) == "" {
		return ErrEmptyField
	}
	return nil
}

// ValidateSequence checks every provider and enforces name uniqueness.
func ValidateSequence(providers []CareProvider) error {
	seen := make(map[string]int, len(providers))
	for i, p := range providers {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("provider %d: %w", i, err)
		}
		if j, ok := seen[p.Name]; ok {
			return fmt.Errorf("%w: %q at positions %d and %d", ErrDuplicateName, p.Name, j, i)
		}
		seen[p.Name] = i
	}
	return nil
}
