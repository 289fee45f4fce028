package domain

import "time"

// Status enumerates recognized entity lifecycle states.
// Values outside this set must be rejected by the resolver, never
// defaulted to active.
type Status string

const (
	StatusActive      Status = "active"
	StatusReactivated Status = "reactivated"
	StatusOpen        Status = "open"
	StatusSuspended   Status = "suspended"
	StatusLocked      Status = "locked"
	StatusClosed      Status = "closed"
)

// Terminal reports whether the status ends the entity's active life.
// Terminal statuses anchor lookback windows at the transition date.
func (s Status) Terminal() bool {
	switch s {
	case StatusSuspended, StatusLocked, StatusClosed:
		return true
	}
	return false
}

// Recognized reports whether the status is in the accepted set.
func (s Status) Recognized() bool {
	switch s {
	case StatusActive, StatusReactivated, StatusOpen,
		StatusSuspended, StatusLocked, StatusClosed:
		return true
	}
	return false
}

// Entity is the unit being scored for churn: a user or a standalone
// account. Corresponds to the entity master table in PostgreSQL.
type Entity struct {
	EntityID string     // PRIMARY KEY
	Status   Status     // lifecycle state
	OpenedAt *time.Time // first activation date (nullable)
	ClosedAt *time.Time // terminal transition date, required for terminal statuses

	// Static attributes carried into entity-level features.
	DomicileCountry   string
	DomicileState     string
	BookCurrency      string
	CapitalCommitment *float64
	Objective         string

	// Owned accounts. For standalone account entities this is empty
	// and the entity's own fields describe the account.
	Accounts []*Account
}

// Account is an owned account bridging an entity to its child records.
// Corresponds to the account master table in PostgreSQL.
type Account struct {
	AccountID         string     // PRIMARY KEY
	OwnerID           string     // owning entity
	Status            Status     // open | closed
	OpenDate          *time.Time // nullable
	CloseDate         *time.Time // nullable, anchors the secondary label
	ReopenDate        *time.Time // nullable
	AccountType       string
	DomicileCountry   string
	DomicileState     string
	BookCurrency      string
	CapitalCommitment *float64
	Objective         string
}

// Resolution is the Entity Resolver output: the per-entity anchor date
// for all lookback windows plus the primary churn label. Once assigned
// it is never recomputed downstream.
type Resolution struct {
	EntityID      string
	ReferenceDate time.Time // closure date for churned entities, run date for active ones
	Churned       bool
}
