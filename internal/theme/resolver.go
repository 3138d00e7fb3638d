package theme

import (
	"fmt"

	"github.com/harrison/assessment/internal/logger"
)

// ComputeFunc builds a theme layer from the request
type ComputeFunc func(req RequestContext) Tree

// Config holds everything the resolver needs
type Config struct {
	Base      Tree            // Least specific layer; DefaultTree when nil
	Variants  map[string]Tree // Named variants for StrategyParam
	Strategy  Strategy        // Empty means StrategyFixed
	ParamKeys []string        // Candidate request keys for StrategyParam, tried in order
	Compute   ComputeFunc     // Callback for StrategyComputed
	Logger    logger.Logger   // Receives a warning when Compute panics
}

// Resolver produces resolved theme trees. It holds no mutable state and is
// safe for concurrent use.
type Resolver struct {
	base      Tree
	variants  map[string]Tree
	strategy  Strategy
	paramKeys []string
	compute   ComputeFunc
	logger    logger.Logger
}

// NewResolver normalizes cfg into a Resolver
func NewResolver(cfg Config) *Resolver {
	base := cfg.Base
	if base == nil {
		base = DefaultTree()
	}

	variants := make(map[string]Tree, len(cfg.Variants))
	for name, tree := range cfg.Variants {
		variants[name] = Normalize(tree)
	}

	keys := cfg.ParamKeys
	if len(keys) == 0 {
		keys = []string{"theme"}
	}

	strategy := cfg.Strategy
	if strategy == "" {
		strategy = StrategyFixed
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &Resolver{
		base:      Normalize(base),
		variants:  variants,
		strategy:  strategy,
		paramKeys: keys,
		compute:   cfg.Compute,
		logger:    log,
	}
}

// Strategy returns the configured strategy
func (r *Resolver) Strategy() Strategy {
	return r.strategy
}

// Base returns a copy of the base layer
func (r *Resolver) Base() Tree {
	return Normalize(r.base)
}

// Variant returns a copy of a named variant
func (r *Resolver) Variant(name string) (Tree, bool) {
	tree, ok := r.variants[name]
	if !ok {
		return nil, false
	}
	return Normalize(tree), true
}

// Resolve merges base → strategy layer → definitionOverride → callOverride.
// req and either override may be nil. Resolution never fails: an unusable
// strategy input degrades to the fixed behavior.
func (r *Resolver) Resolve(req RequestContext, definitionOverride, callOverride Tree) Tree {
	return Merge(r.base, r.strategyLayer(req), definitionOverride, callOverride)
}

func (r *Resolver) strategyLayer(req RequestContext) Tree {
	switch r.strategy {
	case StrategyParam:
		return r.paramLayer(req)
	case StrategyComputed:
		return r.computedLayer(req)
	default:
		return nil
	}
}

// paramLayer finds the first candidate key present in the request and
// returns the variant it names
func (r *Resolver) paramLayer(req RequestContext) Tree {
	if req == nil {
		return nil
	}
	for _, key := range r.paramKeys {
		value, ok := req.Param(key)
		if !ok {
			continue
		}
		return r.variants[value]
	}
	return nil
}

func (r *Resolver) computedLayer(req RequestContext) (layer Tree) {
	if r.compute == nil {
		return nil
	}
	defer func() {
		if p := recover(); p != nil {
			r.logger.LogWarn(fmt.Sprintf("Theme compute callback panicked: %v", p))
			layer = nil
		}
	}()
	return r.compute(req)
}
