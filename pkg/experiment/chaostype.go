package experiment

import (
	"fmt"
	"strings"
)

// ChaosType selects experiments by the level they act on
type ChaosType string

const (
	TypeAll  ChaosType = "all"
	TypePod  ChaosType = "pod"
	TypeNode ChaosType = "node"
)

const nodePrefix = "node-"

// ParseChaosType parses pod, node or all
func ParseChaosType(s string) (ChaosType, error) {
	switch t := ChaosType(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeAll, TypePod, TypeNode:
		return t, nil
	default:
		return "", fmt.Errorf("invalid chaos type %q (expected: pod, node, all)", s)
	}
}

// Classify returns the level of an experiment. Litmus names node-level
// experiments node-*; everything else targets pods.
func Classify(name string) ChaosType {
	if strings.HasPrefix(name, nodePrefix) {
		return TypeNode
	}
	return TypePod
}

// Matches reports whether the experiment belongs to this type
func (t ChaosType) Matches(name string) bool {
	return t == TypeAll || Classify(name) == t
}

// Filter keeps the experiments matching t, preserving order
func Filter(names []string, t ChaosType) []string {
	filtered := make([]string, 0, len(names))
	for _, name := range names {
		if t.Matches(name) {
			filtered = append(filtered, name)
		}
	}
	return filtered
}
