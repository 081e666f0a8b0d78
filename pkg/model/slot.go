package model

import (
	"time"
)

const (
	SlotTypeStory = "story"
	SlotTypePost  = "post"
	SlotTypeReel  = "reel"
)

// AdSlot is a single bookable (creator, content-type, date) unit with a
// fixed price. The available flag is true until exactly one booking
// claims the slot; the flip happens atomically with booking creation and
// there is no un-claim path.
type AdSlot struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	CreatorID string    `json:"creator_id" bson:"creator_id" validate:"required,mongodb"`
	Type      string    `json:"type" bson:"type" validate:"required,oneof=story post reel"`
	Price     float64   `json:"price" bson:"price" validate:"required,gt=0"`
	Date      string    `json:"date" bson:"date" validate:"required,date_key"`
	Available bool      `json:"available" bson:"available"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
