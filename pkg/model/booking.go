package model

import (
	"time"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Booking is a business's claim on one ad slot. Creator and slot fields
// are denormalized at creation time so the booking stays readable even
// if the slot or creator record later changes. Bookings are never
// deleted; completion is the terminal state.
type Booking struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	BusinessID    string    `json:"business_id" bson:"business_id" validate:"required"`
	BusinessName  string    `json:"business_name" bson:"business_name" validate:"required,min=2,max=100"`
	BusinessEmail string    `json:"business_email" bson:"business_email" validate:"required,email"`
	CreatorID     string    `json:"creator_id" bson:"creator_id" validate:"required,mongodb"`
	CreatorName   string    `json:"creator_name" bson:"creator_name" validate:"required"`
	SlotID        string    `json:"slot_id" bson:"slot_id" validate:"required,mongodb"`
	SlotType      string    `json:"slot_type" bson:"slot_type" validate:"required,oneof=story post reel"`
	Date          string    `json:"date" bson:"date" validate:"required,date_key"`
	Price         float64   `json:"price" bson:"price" validate:"required,gt=0"`
	PlatformFee   float64   `json:"platform_fee" bson:"platform_fee" validate:"min=0"`
	Total         float64   `json:"total" bson:"total" validate:"min=0"`
	Status        string    `json:"status" bson:"status" validate:"required,oneof=pending completed"`
	ProofURL      string    `json:"proof_url,omitempty" bson:"proof_url,omitempty" validate:"omitempty,url"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// Checkout is the client-submitted request that opens a booking.
// Everything else on the Booking record is derived from the slot and
// its creator server-side.
type Checkout struct {
	SlotID        string `json:"slot_id" validate:"required,mongodb"`
	BusinessID    string `json:"business_id" validate:"required"`
	BusinessName  string `json:"business_name" validate:"required,min=2,max=100"`
	BusinessEmail string `json:"business_email" validate:"required,email"`
}

// ReadyForReview reports whether the booking is waiting on an
// administrator: proof has been submitted but the booking is still pending.
func (b *Booking) ReadyForReview() bool {
	return b.Status == StatusPending && b.ProofURL != ""
}

// AwaitingProof reports whether the creator still owes proof of post.
func (b *Booking) AwaitingProof() bool {
	return b.Status == StatusPending && b.ProofURL == ""
}
