package growth

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/apothex/pricing-backend/pkg/db/models"
	"github.com/apothex/pricing-backend/pkg/enums"
	"github.com/apothex/pricing-backend/pkg/types"
)

// ContractKey identifies one contract row. SKU is empty when aggregating at
// customer granularity.
type ContractKey struct {
	CustomerID uuid.UUID `json:"customer_id"`
	SKU        string    `json:"sku,omitempty"`
}

func (k ContractKey) String() string {
	if k.SKU == "" {
		return k.CustomerID.String()
	}
	return k.CustomerID.String() + "/" + k.SKU
}

// Record compares one contract's revenue across the two periods. PctChange
// is nil with NoBaseline set when the baseline is zero; Share is nil with
// ShareUndefined set when the portfolio delta is zero. Sentinels, not errors:
// a new contract and a flat portfolio are both valid states.
type Record struct {
	Contract       ContractKey      `json:"contract"`
	Baseline       decimal.Decimal  `json:"baseline"`
	Current        decimal.Decimal  `json:"current"`
	Delta          decimal.Decimal  `json:"delta"`
	PctChange      *decimal.Decimal `json:"pct_change,omitempty"`
	NoBaseline     bool             `json:"no_baseline,omitempty"`
	Share          *decimal.Decimal `json:"share_of_total_growth,omitempty"`
	ShareUndefined bool             `json:"share_undefined,omitempty"`
}

// Summary is the full growth comparison. Total is summed from the
// per-contract rows, so sum(PerContract.Delta) == Total.Delta holds exactly.
type Summary struct {
	PerContract []Record `json:"per_contract"`
	Total       Record   `json:"total"`
}

type bucket struct {
	baseline decimal.Decimal
	current  decimal.Decimal
}

// ComputeGrowth groups transactions by the granularity key, sums revenue per
// period, and attributes portfolio growth across contracts. Transactions
// outside both periods are ignored. Contracts present in only one period get
// a zero on the other side.
func ComputeGrowth(
	transactions []models.SalesTransaction,
	granularity enums.Granularity,
	baselinePeriod, currentPeriod types.Period,
) (*Summary, error) {
	if !granularity.IsValid() {
		return nil, fmt.Errorf("invalid granularity %q", granularity)
	}

	buckets := make(map[ContractKey]*bucket)
	for _, tx := range transactions {
		key := ContractKey{CustomerID: tx.CustomerID}
		if granularity == enums.GranularityCustomerSKU {
			key.SKU = tx.SKU
		}

		inBaseline := baselinePeriod.Contains(tx.OccurredAt)
		inCurrent := currentPeriod.Contains(tx.OccurredAt)
		if !inBaseline && !inCurrent {
			continue
		}

		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		if inBaseline {
			b.baseline = b.baseline.Add(tx.Amount)
		}
		if inCurrent {
			b.current = b.current.Add(tx.Amount)
		}
	}

	keys := make([]ContractKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	total := Record{}
	records := make([]Record, 0, len(keys))
	for _, key := range keys {
		b := buckets[key]
		rec := Record{
			Contract: key,
			Baseline: b.baseline,
			Current:  b.current,
			Delta:    b.current.Sub(b.baseline),
		}
		applyPctChange(&rec)
		records = append(records, rec)

		total.Baseline = total.Baseline.Add(rec.Baseline)
		total.Current = total.Current.Add(rec.Current)
		total.Delta = total.Delta.Add(rec.Delta)
	}
	applyPctChange(&total)

	for i := range records {
		applyShare(&records[i], total.Delta)
	}
	applyShare(&total, total.Delta)

	return &Summary{PerContract: records, Total: total}, nil
}

func applyPctChange(rec *Record) {
	if rec.Baseline.IsZero() {
		rec.NoBaseline = true
		return
	}
	pct := rec.Delta.Div(rec.Baseline)
	rec.PctChange = &pct
}

func applyShare(rec *Record, totalDelta decimal.Decimal) {
	if totalDelta.IsZero() {
		rec.ShareUndefined = true
		return
	}
	share := rec.Delta.Div(totalDelta)
	rec.Share = &share
}
