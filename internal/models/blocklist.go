package models

import "time"

// BlockedNumber bars a phone number from lookups for every requester.
type BlockedNumber struct {
	Number  string    `bson:"_id" json:"number"`
	AddedBy int64     `bson:"added_by" json:"added_by"`
	AddedAt time.Time `bson:"added_at" json:"added_at"`
}
