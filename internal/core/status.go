package core

import (
	"fmt"
	"strings"
)

// QuoteStatus is the lifecycle state of a quote.
//
//	DRAFT → SENT → APPROVED | REJECTED
//	DRAFT, SENT, APPROVED → EXPIRED
type QuoteStatus string

const (
	StatusDraft    QuoteStatus = "DRAFT"
	StatusSent     QuoteStatus = "SENT"
	StatusApproved QuoteStatus = "APPROVED"
	StatusRejected QuoteStatus = "REJECTED"
	StatusExpired  QuoteStatus = "EXPIRED"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []QuoteStatus{StatusDraft, StatusSent, StatusApproved, StatusRejected, StatusExpired}

// ParseStatus accepts a status name in any letter case.
func ParseStatus(s string) (QuoteStatus, error) {
	st := QuoteStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", NewValidationError("status", fmt.Sprintf("unknown status %q", s))
	}
	return st, nil
}

// Valid reports whether s is one of AllStatuses.
func (s QuoteStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusApproved, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// NextStatuses returns the statuses reachable from s in one step.
// Every status must have a case here; status_test.go fails on a missing one.
func (s QuoteStatus) NextStatuses() []QuoteStatus {
	switch s {
	case StatusDraft:
		return []QuoteStatus{StatusSent, StatusExpired}
	case StatusSent:
		return []QuoteStatus{StatusApproved, StatusRejected, StatusExpired}
	case StatusApproved:
		return []QuoteStatus{StatusExpired}
	case StatusRejected, StatusExpired:
		return nil
	}
	panic(fmt.Sprintf("quote status %q has no transition entry", s))
}

// ValidateTransition reports whether from → to is permitted.
func ValidateTransition(from, to QuoteStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	for _, next := range from.NextStatuses() {
		if next == to {
			return true
		}
	}
	return false
}

func checkTransition(from, to QuoteStatus) error {
	if !ValidateTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}
