package sync

import (
	pkgerrors "github.com/lukehargrove/channelstock-backend/pkg/errors"

	"github.com/lukehargrove/channelstock-backend/pkg/enums"
)

// Resolution is the outcome of applying a strategy to a conflict. Resolved is
// false when the conflict was deferred to manual review.
type Resolution struct {
	Resolved bool
	Quantity int
}

// Resolver applies a resolution strategy to a detected conflict.
type Resolver struct {
	strategy enums.ConflictResolution
}

// NewResolver builds a resolver with the given default strategy. An empty
// strategy falls back to use_lowest, the safe choice against overselling.
func NewResolver(strategy enums.ConflictResolution) (*Resolver, error) {
	if strategy == "" {
		strategy = enums.ConflictResolutionUseLowest
	}
	if !strategy.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown resolution strategy "+string(strategy))
	}
	return &Resolver{strategy: strategy}, nil
}

// Strategy returns the configured default strategy.
func (r *Resolver) Strategy() enums.ConflictResolution {
	return r.strategy
}

// Resolve picks the reconciled quantity for the conflict. Conflicts the
// detector marked non-auto-resolvable always go to manual review regardless
// of the configured strategy.
func (r *Resolver) Resolve(conflict *Conflict) (Resolution, error) {
	if conflict == nil || len(conflict.States) == 0 {
		return Resolution{}, pkgerrors.New(pkgerrors.CodeValidation, "conflict with states required")
	}
	if !conflict.AutoResolvable {
		return Resolution{Resolved: false}, nil
	}

	switch r.strategy {
	case enums.ConflictResolutionUseLowest:
		return Resolution{Resolved: true, Quantity: lowestQuantity(conflict.States)}, nil
	case enums.ConflictResolutionUseHighest:
		return Resolution{Resolved: true, Quantity: highestQuantity(conflict.States)}, nil
	case enums.ConflictResolutionManualReview:
		return Resolution{Resolved: false}, nil
	default:
		return Resolution{}, pkgerrors.New(pkgerrors.CodeInternal, "unhandled resolution strategy "+string(r.strategy))
	}
}

func lowestQuantity(states []PlatformState) int {
	lowest := states[0].Quantity
	for _, state := range states[1:] {
		if state.Quantity < lowest {
			lowest = state.Quantity
		}
	}
	return lowest
}

func highestQuantity(states []PlatformState) int {
	highest := states[0].Quantity
	for _, state := range states[1:] {
		if state.Quantity > highest {
			highest = state.Quantity
		}
	}
	return highest
}
