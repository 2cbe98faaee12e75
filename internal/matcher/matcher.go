package matcher

import (
	"context"
	"strings"
)

// SizeMatcher replaces an instance type with the first supported type of the
// same size (r5.2xlarge -> g5.2xlarge). Types with no size suffix never match.
type SizeMatcher struct{}

// Match implements migrate.Matcher.
func (SizeMatcher) Match(_ context.Context, sourceType string, supported []string) (string, bool, error) {
	size := Size(sourceType)
	if size == "" {
		return "", false, nil
	}
	for _, candidate := range supported {
		if Size(candidate) == size {
			return candidate, true, nil
		}
	}
	return "", false, nil
}

// Size returns the size part of an instance type ("2xlarge" for "r5.2xlarge").
func Size(instanceType string) string {
	_, size, ok := strings.Cut(instanceType, ".")
	if !ok {
		return ""
	}
	return size
}
