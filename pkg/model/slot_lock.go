package model

import "time"

// SlotLock is an advisory lock taken for the duration of a checkout.
// Its _id is derived from the slot id, so a concurrent checkout of the
// same slot fails the insert with a duplicate key error instead of
// racing the availability check.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
