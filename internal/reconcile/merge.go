package reconcile

import "sort"

// localRenames maps local draft keys onto their backend names.
var localRenames = map[string]string{
	"event":          "eventType",
	"guestsPerTable": "numPeople",
	"mainDish":       "foodPackage",
	"sideDishes":     "selectedSides",
	"amountDue":      "totalAmount",
}

// SourceLocal marks records that only exist in local storage.
const SourceLocal = "local"

// MergeBookings combines backend records with local drafts. A record whose
// id is known to the backend is taken from remote in full; local-only
// drafts are reshaped and appended. The result is sorted newest first by
// createdAt, records without a usable timestamp last, ties keeping their
// merged order.
func MergeBookings(remote, local []Record) []Record {
	seen := make(map[string]bool, len(remote))
	merged := make([]Record, 0, len(remote)+len(local))

	for _, rec := range remote {
		if rec == nil {
			continue
		}
		id := ID(rec)
		if id != "" {
			if seen[id] {
				continue
			}
			seen[id] = true
		}
		merged = append(merged, rec)
	}

	for _, rec := range local {
		if rec == nil {
			continue
		}
		id := ID(rec)
		if id != "" {
			if seen[id] {
				continue
			}
			seen[id] = true
		}
		merged = append(merged, ToRemoteShape(rec))
	}

	SortNewestFirst(merged)
	return merged
}

// SortNewestFirst orders records by createdAt descending in place.
func SortNewestFirst(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		ti, okI := CreatedAt(records[i])
		tj, okJ := CreatedAt(records[j])
		switch {
		case okI && okJ:
			return ti.After(tj)
		case okI:
			return true
		default:
			return false
		}
	})
}

// ToRemoteShape copies a local draft into the backend's field layout. The
// original keys are kept so older readers still find them.
func ToRemoteShape(local Record) Record {
	out := local.Clone()

	for from, to := range localRenames {
		if v, ok := present(local[from]); ok {
			if _, exists := present(out[to]); !exists {
				out[to] = v.Raw()
			}
		}
	}

	if payment, ok := asMap(local["payment"]); ok {
		if v, ok := present(payment["receiptName"]); ok {
			out["receiptFileName"] = v.Raw()
		}
		if v, ok := present(payment["amountPaid"]); ok {
			out["amountPaid"] = v.Raw()
		}
	}

	if status, ok := present(local["status"]); ok {
		if _, exists := present(out["paymentStatus"]); !exists {
			out["paymentStatus"] = status.Raw()
		}
	}

	out["source"] = SourceLocal
	return out
}
