package domain

import "time"

// Store holds the rating fields derived from its reviews.
type Store struct {
	ID           string    `json:"id"`
	Rating       float64   `json:"rating"`
	TotalRatings int       `json:"totalRatings"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
