package models

import "time"

// Profile is the role profile document kept in the document store. It is
// informationally independent from the relational row: a booking commit and
// a profile read are never atomic together, and never need to be.
type Profile struct {
	UserID        string            `bson:"user_id" json:"user_id"`
	InstitutionID string            `bson:"institution_id" json:"institution_id"`
	Role          UserRole          `bson:"role" json:"role"`
	DisplayName   string            `bson:"display_name" json:"display_name"`
	AvatarURL     string            `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	Phone         string            `bson:"phone,omitempty" json:"phone,omitempty"`
	Extras        map[string]string `bson:"extras,omitempty" json:"extras,omitempty"`
	UpdatedAt     time.Time         `bson:"updated_at" json:"updated_at"`
}

// PushSubscription is one registered push address for a user, kept in the
// document store next to profiles.
type PushSubscription struct {
	UserID    string    `bson:"user_id" json:"user_id"`
	Endpoint  string    `bson:"endpoint" json:"endpoint"`
	Keys      SubKeys   `bson:"keys" json:"keys"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// SubKeys carries the client encryption keys of a push subscription.
type SubKeys struct {
	P256DH string `bson:"p256dh" json:"p256dh"`
	Auth   string `bson:"auth" json:"auth"`
}
