package services

import (
	"fmt"

	"github.com/vitthalk15/DataDash/app/models"
)

// TransitionPolicy decides whether an order may move between statuses.
type TransitionPolicy interface {
	Allow(from, to models.OrderStatus) error
}

// AllowAll permits any transition between valid statuses.
type AllowAll struct{}

func (AllowAll) Allow(_, _ models.OrderStatus) error { return nil }

// Strict forbids leaving delivered or cancelled.
type Strict struct{}

func (Strict) Allow(from, to models.OrderStatus) error {
	if from == to {
		return nil
	}
	if from == models.StatusDelivered || from == models.StatusCancelled {
		return invalid("status", fmt.Sprintf("Cannot change status of a %s order", from))
	}
	return nil
}

// PolicyFor returns Strict when strict is set, otherwise AllowAll.
func PolicyFor(strict bool) TransitionPolicy {
	if strict {
		return Strict{}
	}
	return AllowAll{}
}
