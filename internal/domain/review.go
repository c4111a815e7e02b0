package domain

import (
	"encoding/json"
	"math"
	"math/big"
	"time"
)

// Review is a store review document. Rating is nil when the stored value is
// absent or not a number; such reviews do not count towards the store rating.
type Review struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"storeId"`
	UserID    string    `json:"userId,omitempty"`
	Rating    *float64  `json:"rating,omitempty"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UnmarshalJSON decodes a review snapshot, tolerating a non-numeric rating.
func (r *Review) UnmarshalJSON(data []byte) error {
	type alias Review
	aux := struct {
		*alias
		Rating    json.RawMessage `json:"rating"`
		CreatedAt json.RawMessage `json:"createdAt"`
		UpdatedAt json.RawMessage `json:"updatedAt"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.Rating = nil
	if len(aux.Rating) > 0 {
		var v any
		if err := json.Unmarshal(aux.Rating, &v); err == nil {
			r.Rating = ParseRating(v)
		}
	}
	r.CreatedAt = parseTimestamp(aux.CreatedAt)
	r.UpdatedAt = parseTimestamp(aux.UpdatedAt)
	return nil
}

// parseTimestamp accepts RFC 3339 strings and ignores anything else.
func parseTimestamp(raw json.RawMessage) time.Time {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ParseRating returns the rating if v is a finite number, else nil.
func ParseRating(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// RatingSummary is the derived rating of a store.
type RatingSummary struct {
	Average float64
	Count   int
}

// AggregateRatings averages the numeric ratings of reviews, rounded to one
// decimal. With no numeric ratings the summary is zero.
func AggregateRatings(reviews []Review) RatingSummary {
	var sum float64
	var count int
	for _, r := range reviews {
		if r.Rating == nil {
			continue
		}
		sum += *r.Rating
		count++
	}
	if count == 0 {
		return RatingSummary{}
	}
	return RatingSummary{Average: RoundToTenth(sum / float64(count)), Count: count}
}

// RoundToTenth rounds the exact binary value of x to one decimal place,
// ties away from zero. 1.45 is stored just below 1.45 and rounds to 1.4.
func RoundToTenth(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	// x*10 needs at most 57 significant bits, so 128 keeps it exact.
	scaled := new(big.Float).SetPrec(128).SetFloat64(math.Abs(x))
	scaled.Mul(scaled, big.NewFloat(10))
	n, _ := scaled.Int(nil)
	frac := new(big.Float).SetPrec(128).Sub(scaled, new(big.Float).SetInt(n))
	if frac.Cmp(big.NewFloat(0.5)) >= 0 {
		n.Add(n, big.NewInt(1))
	}
	tenths, _ := new(big.Float).SetInt(n).Float64()
	r := tenths / 10
	if x < 0 {
		r = -r
	}
	return r
}

// StoreIDOf returns the store a review change belongs to: the post-change
// snapshot wins, the pre-change one covers deletes.
func StoreIDOf(c Change[Review]) string {
	if c.After != nil && c.After.StoreID != "" {
		return c.After.StoreID
	}
	if c.Before != nil {
		return c.Before.StoreID
	}
	return ""
}
