package reconciler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shadeworks/fabricsync/pkg/catalog"
	"github.com/shadeworks/fabricsync/pkg/codes"
	"github.com/shadeworks/fabricsync/pkg/errors"
)

// KeepPredicate decides whether a target record missing from the supply feed
// should be kept as-is instead of deprecated. Used for identifier ranges that
// are managed outside the supply catalog.
type KeepPredicate func(rec catalog.TargetRecord) bool

// Option configures a reconciler.
type Option func(*reconciler) error

// WithAllocator replaces the identifier allocator.
func WithAllocator(a codes.Allocator) Option {
	return func(r *reconciler) error {
		if a == nil {
			return &errors.ConfigError{Value: "allocator", Message: "allocator cannot be nil"}
		}
		r.allocator = a
		return nil
	}
}

// WithClock replaces the time source. Tests pin it for stable effective dates.
func WithClock(now func() time.Time) Option {
	return func(r *reconciler) error {
		if now == nil {
			return &errors.ConfigError{Value: "clock", Message: "clock cannot be nil"}
		}
		r.now = now
		return nil
	}
}

// WithDefaultMarkup replaces the markup used when a group has no override and
// no usable pricing history.
func WithDefaultMarkup(m decimal.Decimal) Option {
	return func(r *reconciler) error {
		if !m.IsPositive() {
			return &errors.ConfigError{Value: m.String(), Message: "default markup must be positive"}
		}
		r.defaultMarkup = m
		return nil
	}
}

// WithKeepPredicate registers a keep predicate for one group. Records the
// predicate returns true for are never deprecated.
func WithKeepPredicate(id catalog.GroupID, keep KeepPredicate) Option {
	return func(r *reconciler) error {
		if keep == nil {
			return &errors.ConfigError{Group: string(id), Value: "keep predicate", Message: "predicate cannot be nil"}
		}
		r.keep[id] = keep
		return nil
	}
}
