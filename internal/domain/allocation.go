package domain

import (
	"maps"
	"math"
	"slices"
)

// AllocationRequest maps resource type to the amount to take from a record.
// Amounts are float64 so that fractional or negative input from callers
// reaches validation instead of being truncated on decode.
type AllocationRequest map[string]float64

// normalized folds request keys to canonical resource names. Keys that fold
// to the same name are summed.
func (r AllocationRequest) normalized() AllocationRequest {
	out := make(AllocationRequest, len(r))
	for k, v := range r {
		out[NormalizeColumn(k)] += v
	}
	return out
}

// Apply validates req against record and returns the record with the
// requested amounts subtracted. The input record is never modified, and on
// any error no quantity changes.
//
// Validation stops at the first violation, in this order: every resource
// must exist on the record (UnknownResourceError), every amount must be a
// non-negative integer (InvalidAmountError), every amount must fit in the
// quantity available before the allocation (InsufficientStockError).
func Apply(record StockRecord, req AllocationRequest) (StockRecord, error) {
	req = req.normalized()
	keys := slices.Sorted(maps.Keys(req))

	for _, k := range keys {
		if _, ok := record.Quantities[k]; !ok {
			return record, &UnknownResourceError{Resource: k, Amount: req[k]}
		}
	}

	amounts := make(map[string]int, len(keys))
	for _, k := range keys {
		n, ok := wholeAmount(req[k])
		if !ok {
			return record, &InvalidAmountError{Resource: k, Amount: req[k]}
		}
		amounts[k] = n
	}

	for _, k := range keys {
		if available := record.Quantities[k]; amounts[k] > available {
			return record, &InsufficientStockError{Resource: k, Requested: amounts[k], Available: available}
		}
	}

	out := record.Clone()
	for _, k := range keys {
		out.Quantities[k] -= amounts[k]
	}
	return out, nil
}

func wholeAmount(v float64) (int, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}

// Allocated reports, per requested resource, how much was taken, computed as
// the difference between two versions of the same record.
func Allocated(before, after StockRecord) map[string]int {
	out := make(map[string]int)
	for k, v := range before.Quantities {
		if d := v - after.Quantities[k]; d != 0 {
			out[k] = d
		}
	}
	return out
}
