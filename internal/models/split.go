package models

import (
	"fmt"
	"maps"
	"strings"

	"github.com/shopspring/decimal"
)

// SplitKind names a split rule. Its string form is the literal persisted by
// the storage layer and accepted on the wire.
type SplitKind int

const (
	SplitEqual SplitKind = iota
	SplitPercentage
	SplitExact
)

func (k SplitKind) String() string {
	switch k {
	case SplitEqual:
		return "equal"
	case SplitPercentage:
		return "percentage"
	case SplitExact:
		return "exact"
	default:
		return fmt.Sprintf("SplitKind(%d)", int(k))
	}
}

// ParseSplitKind parses the literal name of a split rule (case-insensitive).
// An empty string means an equal split.
func ParseSplitKind(s string) (SplitKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "equal":
		return SplitEqual, nil
	case "percentage":
		return SplitPercentage, nil
	case "exact":
		return SplitExact, nil
	default:
		return 0, fmt.Errorf("%w: unknown split rule %q", ErrValidation, s)
	}
}

// SplitRule decides how a transaction's total is divided among its
// participants. It is one of EqualSplit, PercentageSplit or ExactSplit.
type SplitRule interface {
	Kind() SplitKind
	// Details returns the per-user values carried by the rule, or nil for
	// rules without a payload. The returned map is a copy.
	Details() map[string]decimal.Decimal
}

// EqualSplit divides the total evenly among all participants.
type EqualSplit struct{}

// PercentageSplit assigns each participant a percentage of the total.
// Participants without an entry owe nothing.
type PercentageSplit struct {
	Percentages map[string]decimal.Decimal
}

// ExactSplit assigns each participant an absolute amount.
// Participants without an entry owe nothing.
type ExactSplit struct {
	Amounts map[string]decimal.Decimal
}

func (EqualSplit) Kind() SplitKind                     { return SplitEqual }
func (EqualSplit) Details() map[string]decimal.Decimal { return nil }

func (s PercentageSplit) Kind() SplitKind { return SplitPercentage }
func (s PercentageSplit) Details() map[string]decimal.Decimal {
	return maps.Clone(s.Percentages)
}

func (s ExactSplit) Kind() SplitKind { return SplitExact }
func (s ExactSplit) Details() map[string]decimal.Decimal {
	return maps.Clone(s.Amounts)
}

// NewSplitRule builds the rule of the given kind. Details are ignored for an
// equal split.
func NewSplitRule(kind SplitKind, details map[string]decimal.Decimal) (SplitRule, error) {
	switch kind {
	case SplitEqual:
		return EqualSplit{}, nil
	case SplitPercentage:
		return PercentageSplit{Percentages: maps.Clone(details)}, nil
	case SplitExact:
		return ExactSplit{Amounts: maps.Clone(details)}, nil
	default:
		return nil, fmt.Errorf("%w: unknown split rule %v", ErrValidation, kind)
	}
}
