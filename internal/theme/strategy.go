package theme

import (
	"fmt"
	"strings"
)

// Strategy selects how the middle theme layer is chosen
type Strategy string

const (
	// StrategyFixed ignores the request: base theme plus overrides
	StrategyFixed Strategy = "fixed"
	// StrategyParam picks a named variant from a request parameter
	StrategyParam Strategy = "param"
	// StrategyComputed asks a callback for a tree built from the request
	StrategyComputed Strategy = "computed"
)

// ParseStrategy maps a configured name to a Strategy. "initializer" and "proc"
// are accepted as aliases of fixed and computed; empty means fixed.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "fixed", "initializer":
		return StrategyFixed, nil
	case "param":
		return StrategyParam, nil
	case "computed", "proc":
		return StrategyComputed, nil
	default:
		return "", fmt.Errorf("unknown theme strategy %q (valid: fixed, param, computed)", name)
	}
}
