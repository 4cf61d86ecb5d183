package core

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"limscore/pkg/domain"
)

// LookupFunc looks up a record by its natural key. ok=false means a clean
// miss; err is reserved for transport problems.
type LookupFunc[T any] func(ctx context.Context) (record T, ok bool, err error)

// CreateFunc creates the record for the natural key.
type CreateFunc[T any] func(ctx context.Context) (T, error)

// ResolveOrCreate is the idempotent resolve-or-create flow for externally
// keyed reference data. It looks up first, creates on a miss, and reconciles
// duplicate-creation races: when creation reports a conflict, relist is
// consulted; it must search the full unfiltered listing for the owning
// parent, since the narrower lookup may itself be unreliable. Terminal
// validation failures are returned as-is without retry; any other creation
// failure propagates. Two concurrent callers resolving the same key converge
// on the same single created record.
func ResolveOrCreate[T any](ctx context.Context, lookup LookupFunc[T], create CreateFunc[T], relist LookupFunc[T]) (record T, created bool, err error) {
	record, ok, err := lookup(ctx)
	if err != nil {
		return record, false, fmt.Errorf("lookup: %w", err)
	}
	if ok {
		return record, false, nil
	}

	record, err = create(ctx)
	if err == nil {
		return record, true, nil
	}
	if domain.IsTerminal(err) {
		return record, false, err
	}
	if !domain.IsConflict(err) {
		return record, false, fmt.Errorf("create: %w", err)
	}

	// Lost the creation race; somebody else's record must now be visible in
	// the full listing.
	record, ok, relistErr := relist(ctx)
	if relistErr != nil {
		return record, false, fmt.Errorf("relist after conflict: %w", relistErr)
	}
	if !ok {
		return record, false, fmt.Errorf("conflict reported but record absent from full listing: %w", err)
	}
	return record, false, nil
}

// NormalizeExpiry converts a 4-character month/year compact code, as printed
// on consumable labels, to the last calendar day of that month. "0226" ->
// 2026-02-28, "0224" -> 2024-02-29. Invalid length or non-numeric input is an
// error, never a guess.
func NormalizeExpiry(compact string) (time.Time, error) {
	if len(compact) != 4 {
		return time.Time{}, domain.TerminalError{Reason: fmt.Sprintf("expiry code %q: want 4 characters MMYY", compact)}
	}
	month, err := strconv.Atoi(compact[:2])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, domain.TerminalError{Reason: fmt.Sprintf("expiry code %q: invalid month", compact)}
	}
	year, err := strconv.Atoi(compact[2:])
	if err != nil {
		return time.Time{}, domain.TerminalError{Reason: fmt.Sprintf("expiry code %q: invalid year", compact)}
	}
	// Day zero of the following month is the last day of this one.
	return time.Date(2000+year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC), nil
}
