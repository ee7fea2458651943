package monitoring

import (
	"fmt"
	"strings"
)

// WarehouseMatcher decides whether a sales breakdown warehouse name refers to
// the same warehouse as a stock entry.
type WarehouseMatcher interface {
	Match(stockName, salesName string) bool
}

// normalizeWarehouseName lowercases and strips whitespace and underscores.
func normalizeWarehouseName(name string) string {
	name = strings.Join(strings.Fields(strings.ToLower(name)), "")
	return strings.ReplaceAll(name, "_", "")
}

// ContainmentMatcher matches when either normalized name contains the other.
// "Тверь_склад" and "Тверь" match; empty names never match.
type ContainmentMatcher struct{}

func (ContainmentMatcher) Match(stockName, salesName string) bool {
	a := normalizeWarehouseName(stockName)
	b := normalizeWarehouseName(salesName)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// ExactMatcher matches only identical normalized names.
type ExactMatcher struct{}

func (ExactMatcher) Match(stockName, salesName string) bool {
	a := normalizeWarehouseName(stockName)
	return a != "" && a == normalizeWarehouseName(salesName)
}

// Matcher names accepted by NewMatcher.
const (
	MatcherContainment = "containment"
	MatcherExact       = "exact"
)

// NewMatcher returns the matcher registered under name. An empty name is
// containment.
func NewMatcher(name string) (WarehouseMatcher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", MatcherContainment:
		return ContainmentMatcher{}, nil
	case MatcherExact:
		return ExactMatcher{}, nil
	}
	return nil, fmt.Errorf("unknown warehouse matcher %q", name)
}

var (
	_ WarehouseMatcher = ContainmentMatcher{}
	_ WarehouseMatcher = ExactMatcher{}
)
