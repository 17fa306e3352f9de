package content

import (
	"fmt"
	"strings"
)

// ValidationError lists the problems that stopped a record from being built.
type ValidationError struct {
	Kind     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Kind, strings.Join(e.Problems, "; "))
}

// validator collects problems for one record.
type validator struct {
	kind     string
	problems []string
}

func (v *validator) require(ok bool, format string, args ...interface{}) {
	if !ok {
		v.problems = append(v.problems, fmt.Sprintf(format, args...))
	}
}

func (v *validator) err() error {
	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{Kind: v.kind, Problems: v.problems}
}
