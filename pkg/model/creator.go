package model

import (
	"time"
)

const (
	PlatformInstagram = "instagram"
	PlatformTikTok    = "tiktok"
	PlatformFacebook  = "facebook"
)

// Creator is a social-media creator offering promotional ad slots.
// Creators start unapproved and are hidden from public browse views
// until an administrator approves them.
type Creator struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID         string    `json:"user_id,omitempty" bson:"user_id,omitempty" validate:"omitempty"`
	Name           string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email          string    `json:"email" bson:"email" validate:"required,email"`
	Handle         string    `json:"instagram_handle,omitempty" bson:"instagram_handle,omitempty" validate:"omitempty,min=1,max=60"`
	Photo          string    `json:"photo,omitempty" bson:"photo,omitempty" validate:"omitempty,url"`
	Platform       string    `json:"platform" bson:"platform" validate:"required,oneof=instagram tiktok facebook"`
	FollowerCount  int       `json:"follower_count" bson:"follower_count" validate:"min=0"`
	EngagementRate float64   `json:"engagement_rate,omitempty" bson:"engagement_rate,omitempty" validate:"omitempty,min=0,max=100"`
	Bio            string    `json:"bio,omitempty" bson:"bio,omitempty" validate:"omitempty,max=1000"`
	City           string    `json:"city" bson:"city" validate:"required,min=2,max=50"`
	Approved       bool      `json:"approved" bson:"approved"`
	StoryPrice     *float64  `json:"story_price,omitempty" bson:"story_price,omitempty" validate:"omitempty,gt=0"`
	PostPrice      *float64  `json:"post_price,omitempty" bson:"post_price,omitempty" validate:"omitempty,gt=0"`
	ReelPrice      *float64  `json:"reel_price,omitempty" bson:"reel_price,omitempty" validate:"omitempty,gt=0"`
	BlockedDates   []string  `json:"blocked_dates,omitempty" bson:"blocked_dates,omitempty" validate:"omitempty,dive,date_key"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// CreatorUpdate carries the fields the owning creator may change after
// signup. Identity, city and the approved flag are not updatable here;
// approval has its own administrative operation.
type CreatorUpdate struct {
	Name           string   `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Handle         string   `json:"instagram_handle,omitempty" validate:"omitempty,min=1,max=60"`
	Photo          string   `json:"photo,omitempty" validate:"omitempty,url"`
	Bio            string   `json:"bio,omitempty" validate:"omitempty,max=1000"`
	FollowerCount  *int     `json:"follower_count,omitempty" validate:"omitempty,min=0"`
	EngagementRate *float64 `json:"engagement_rate,omitempty" validate:"omitempty,min=0,max=100"`
	StoryPrice     *float64 `json:"story_price,omitempty" validate:"omitempty,gt=0"`
	PostPrice      *float64 `json:"post_price,omitempty" validate:"omitempty,gt=0"`
	ReelPrice      *float64 `json:"reel_price,omitempty" validate:"omitempty,gt=0"`
}
