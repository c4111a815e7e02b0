package domain

import "time"

// User is the document record mirroring an account in the users collection.
type User struct {
	ID        string    `json:"id" firestore:"-"`
	Name      string    `json:"name" firestore:"name"`
	Email     string    `json:"email" firestore:"email"`
	Role      Role      `json:"role" firestore:"role"`
	CreatedBy string    `json:"createdBy,omitempty" firestore:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// BootstrapMarker records who claimed the one-time super admin bootstrap.
type BootstrapMarker struct {
	ClaimedBy string    `json:"claimedBy" firestore:"claimedBy"`
	ClaimedAt time.Time `json:"claimedAt" firestore:"claimedAt"`
}
