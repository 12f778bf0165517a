package tally

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

// RingSize hourly buckets, one time-gate window
const RingSize = 24

// BucketRing ages pending active-credit principal into maturity without
// iterating accounts. Each bucket holds the principal maturing in one absolute
// hour; StartHour is the first hour not yet folded. A bucket folds at the top
// of its maturity hour; per-record weight still applies the exact gate.
type BucketRing struct {
	Buckets   [RingSize]decimal.Decimal `json:"buckets"`
	StartHour int64                     `json:"start_hour"`
}

// AdvanceTo folds every bucket maturing at or before hour and returns the
// matured sum.
func (r *BucketRing) AdvanceTo(hour int64) decimal.Decimal {
	matured := decimal.Zero

	if r.StartHour == 0 {
		r.StartHour = hour + 1
		return matured
	}
	if hour < r.StartHour {
		return matured
	}

	if hour-r.StartHour >= RingSize-1 {
		for i := range r.Buckets {
			matured = matured.Add(r.Buckets[i])
			r.Buckets[i] = decimal.Zero
		}
	} else {
		for h := r.StartHour; h <= hour; h++ {
			i := h % RingSize
			matured = matured.Add(r.Buckets[i])
			r.Buckets[i] = decimal.Zero
		}
	}

	r.StartHour = hour + 1
	return matured
}

// Place books pending principal into its maturity bucket. It reports false
// when the hour is already folded; the caller then counts the amount as
// matured directly.
func (r *BucketRing) Place(hour int64, amount decimal.Decimal) bool {
	if hour < r.StartHour {
		return false
	}

	i := hour % RingSize
	r.Buckets[i] = r.Buckets[i].Add(amount)
	return true
}

// Remove takes pending principal back out of its maturity bucket. It reports
// false when the hour is already folded or the bucket no longer covers the
// amount.
func (r *BucketRing) Remove(hour int64, amount decimal.Decimal) bool {
	if hour < r.StartHour {
		return false
	}

	i := hour % RingSize
	if r.Buckets[i].LessThan(amount) {
		return false
	}

	r.Buckets[i] = r.Buckets[i].Sub(amount)
	return true
}

// Pending sums every unfolded bucket.
func (r BucketRing) Pending() decimal.Decimal {
	sum := decimal.Zero
	for i := range r.Buckets {
		sum = sum.Add(r.Buckets[i])
	}

	return sum
}

// Value implements driver.Valuer so the ring persists as a json column.
func (r BucketRing) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner.
func (r *BucketRing) Scan(value interface{}) error {
	if value == nil {
		*r = BucketRing{}
		return nil
	}

	switch data := value.(type) {
	case []byte:
		if len(data) == 0 {
			*r = BucketRing{}
			return nil
		}
		return json.Unmarshal(data, r)
	case string:
		if data == "" {
			*r = BucketRing{}
			return nil
		}
		return json.Unmarshal([]byte(data), r)
	default:
		return errors.New("bucket ring: unsupported column type")
	}
}
