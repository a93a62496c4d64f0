package counterparty

import "context"

//go:generate mockgen -source=lookup.go -destination=lookup_mock.go -package=counterparty
type Lookup interface {
	// Get returns an active counterparty. Writes go through Get, so nothing
	// new is booked against a deactivated company.
	Get(ctx context.Context, id int64) (*Counterparty, error)
	// Find returns the counterparty whether or not it is still active. Read
	// paths use it so history stays reachable.
	Find(ctx context.Context, id int64) (*Counterparty, error)
	ListActive(ctx context.Context) ([]*Counterparty, error)
}
