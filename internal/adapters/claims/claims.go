// Package claims pulls display names out of identity documents with JMESPath.
package claims

import (
	"encoding/json"
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// NameExtractor evaluates a JMESPath expression against a decoded JSON document.
type NameExtractor struct {
	expr string
}

// NewNameExtractor validates expr. An empty expression extracts nothing.
func NewNameExtractor(expr string) (*NameExtractor, error) {
	expr = strings.TrimSpace(expr)
	if expr != "" {
		if _, err := jmespath.Compile(expr); err != nil {
			return nil, fmt.Errorf("invalid display name expression %q: %w", expr, err)
		}
	}
	return &NameExtractor{expr: expr}, nil
}

// MustNameExtractor is NewNameExtractor for expressions known at compile time.
func MustNameExtractor(expr string) *NameExtractor {
	e, err := NewNameExtractor(expr)
	if err != nil {
		panic(err)
	}
	return e
}

// Expr returns the configured expression.
func (e *NameExtractor) Expr() string { return e.expr }

// Extract returns the trimmed string result, or "" when the expression selects
// nothing or a non-string value.
func (e *NameExtractor) Extract(doc any) string {
	if e == nil || e.expr == "" || doc == nil {
		return ""
	}
	v, err := jmespath.Search(e.expr, doc)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// ExtractJSON decodes raw into a generic document and calls Extract.
func (e *NameExtractor) ExtractJSON(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ""
	}
	return e.Extract(doc)
}
