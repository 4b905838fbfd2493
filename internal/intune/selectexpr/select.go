// Package selectexpr filters which policies an export run emits, using a
// small boolean expression evaluated against per-policy summary fields.
package selectexpr

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/cfphilippson/intune-export/internal/intune"
)

// Selector is a compiled selection expression. The zero-value-like
// selector produced by Compile("") matches every policy.
type Selector struct {
	src  string
	prog *vm.Program
}

// Compile validates and compiles src. An empty or whitespace-only source
// yields a match-all selector.
func Compile(src string) (*Selector, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return &Selector{}, nil
	}

	if err := Validate(src); err != nil {
		return nil, fmt.Errorf("invalid selection expression: %w", err)
	}

	prog, err := expr.Compile(src, expr.Env(map[string]any{}), expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile selection expression: %w", err)
	}

	return &Selector{src: src, prog: prog}, nil
}

// Match evaluates the selector against one summary row. platform carries
// the category-specific discriminator (OData type, technologies, or
// platform string) so expressions can filter on it.
func (s *Selector) Match(row intune.SummaryRow, platform string) (bool, error) {
	if s.prog == nil {
		return true, nil
	}

	out, err := expr.Run(s.prog, map[string]any{
		"Category":        string(row.Type),
		"Name":            row.PolicyName,
		"IsActive":        row.IsActive,
		"AssignmentCount": row.AssignmentCount,
		"Platform":        platform,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate selection expression %q: %w", s.src, err)
	}

	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("selection expression must evaluate to bool (got %T)", out)
	}
	return b, nil
}
