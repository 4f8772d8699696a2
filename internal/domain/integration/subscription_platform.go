package integration

import (
	"context"
	"time"
)

// SubscriptionStatus is the contract status filter of the subscription app
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
)

// Subscription is a subscription contract.
// Timestamps the platform sent in an unreadable format are nil.
type Subscription struct {
	ID          int64
	Status      string
	CreatedAt   *time.Time
	CancelledOn *time.Time
}

// SubscriptionPlatform is the port for reading subscription contracts
type SubscriptionPlatform interface {
	// ListSubscriptions returns one zero-based page of contracts with the given status
	ListSubscriptions(ctx context.Context, status SubscriptionStatus, page, size int) ([]Subscription, error)
}
