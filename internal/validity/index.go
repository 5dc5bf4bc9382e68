package validity

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/apothex/pricing-backend/pkg/db/models"
	"github.com/apothex/pricing-backend/pkg/types"
)

// ErrNotFound signals that no discount covers the requested date. Callers
// treat it as "no discount" (0%), not as a failure.
var ErrNotFound = errors.New("no discount covers date")

// AmbiguousError reports overlapping validity windows that the tie-break
// could not separate. Overlaps are a source-data bug, so this is surfaced
// with enough context to fix the records, never silently resolved.
type AmbiguousError struct {
	CustomerID uuid.UUID
	AsOf       time.Time
	RecordIDs  []uuid.UUID
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous discount validity for customer %s on %s (records %v)",
		e.CustomerID, e.AsOf.Format(types.DateLayout), e.RecordIDs)
}

// Index resolves the effective discount per customer and date. It is built
// once per batch: records are bucketed by customer and sorted by ValidFrom so
// a full-catalog resolve never rescans the whole discount table.
type Index struct {
	byCustomer map[uuid.UUID][]models.CustomerDiscount
}

// NewIndex buckets the given discount records by customer.
func NewIndex(records []models.CustomerDiscount) *Index {
	byCustomer := make(map[uuid.UUID][]models.CustomerDiscount)
	for _, rec := range records {
		byCustomer[rec.CustomerID] = append(byCustomer[rec.CustomerID], rec)
	}
	for id := range byCustomer {
		bucket := byCustomer[id]
		sort.Slice(bucket, func(i, j int) bool {
			return bucket[i].ValidFrom.Before(bucket[j].ValidFrom)
		})
	}
	return &Index{byCustomer: byCustomer}
}

// Customers returns the ids that have at least one discount record.
func (ix *Index) Customers() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(ix.byCustomer))
	for id := range ix.byCustomer {
		ids = append(ids, id)
	}
	return ids
}

// Resolve returns the single discount effective for the customer on asOf.
// Overlapping candidates are separated by preferring the latest ValidFrom,
// then the narrowest interval; a remaining tie is an AmbiguousError.
func (ix *Index) Resolve(customerID uuid.UUID, asOf time.Time) (*models.CustomerDiscount, error) {
	bucket := ix.byCustomer[customerID]
	candidates := coveringRecords(bucket, types.Midnight(asOf))

	switch len(candidates) {
	case 0:
		return nil, ErrNotFound
	case 1:
		rec := candidates[0]
		return &rec, nil
	}

	best, tied := pickPreferred(candidates)
	if tied != nil {
		ids := []uuid.UUID{best.ID}
		for _, rec := range tied {
			ids = append(ids, rec.ID)
		}
		return nil, &AmbiguousError{CustomerID: customerID, AsOf: types.Midnight(asOf), RecordIDs: ids}
	}
	return best, nil
}

// ResolveAll resolves every indexed customer in one pass. Customers with no
// covering record are simply absent from the result; ambiguous customers are
// collected separately so one bad agreement set never blocks the batch.
func (ix *Index) ResolveAll(asOf time.Time) (map[uuid.UUID]models.CustomerDiscount, []*AmbiguousError) {
	resolved := make(map[uuid.UUID]models.CustomerDiscount, len(ix.byCustomer))
	var ambiguous []*AmbiguousError

	for customerID := range ix.byCustomer {
		rec, err := ix.Resolve(customerID, asOf)
		if err != nil {
			var ambErr *AmbiguousError
			if errors.As(err, &ambErr) {
				ambiguous = append(ambiguous, ambErr)
			}
			continue
		}
		resolved[customerID] = *rec
	}
	return resolved, ambiguous
}

// coveringRecords collects records whose inclusive [ValidFrom, ValidTo]
// window contains day. The bucket is sorted by ValidFrom, so the binary
// search bounds the scan to records that start on or before day.
func coveringRecords(bucket []models.CustomerDiscount, day time.Time) []models.CustomerDiscount {
	upper := sort.Search(len(bucket), func(i int) bool {
		return types.Midnight(bucket[i].ValidFrom).After(day)
	})

	var covering []models.CustomerDiscount
	for i := 0; i < upper; i++ {
		if covers(bucket[i], day) {
			covering = append(covering, bucket[i])
		}
	}
	return covering
}

func covers(rec models.CustomerDiscount, day time.Time) bool {
	from := types.Midnight(rec.ValidFrom)
	if day.Before(from) {
		return false
	}
	if rec.ValidTo == nil {
		return true
	}
	return !day.After(types.Midnight(*rec.ValidTo))
}

// pickPreferred orders overlapping candidates by the tie-break policy and
// returns the winner, or the winner plus the records it is still tied with.
func pickPreferred(candidates []models.CustomerDiscount) (*models.CustomerDiscount, []models.CustomerDiscount) {
	sorted := make([]models.CustomerDiscount, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		fi, fj := types.Midnight(sorted[i].ValidFrom), types.Midnight(sorted[j].ValidFrom)
		if !fi.Equal(fj) {
			return fi.After(fj)
		}
		return intervalWidth(sorted[i]) < intervalWidth(sorted[j])
	})

	best := sorted[0]
	var tied []models.CustomerDiscount
	for _, rec := range sorted[1:] {
		if types.Midnight(rec.ValidFrom).Equal(types.Midnight(best.ValidFrom)) &&
			intervalWidth(rec) == intervalWidth(best) {
			tied = append(tied, rec)
		}
	}
	if len(tied) > 0 {
		return &best, tied
	}
	return &best, nil
}

// intervalWidth measures the window in days; open-ended windows are widest.
func intervalWidth(rec models.CustomerDiscount) int64 {
	if rec.ValidTo == nil {
		return int64(^uint64(0) >> 1)
	}
	return int64(types.Midnight(*rec.ValidTo).Sub(types.Midnight(rec.ValidFrom)) / (24 * time.Hour))
}
