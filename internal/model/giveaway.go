package model

import "time"

// Giveaway is an admin-managed prize draw that accounts can enter for points.
type Giveaway struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Prize       string  `json:"prize"`
	EndDate     string  `json:"endDate"`
	Active      bool    `json:"active"`
	TweetLink   string  `json:"tweetLink"`
	MaxEntries  int     `json:"maxEntries"`
	EntryCost   int64   `json:"entryCost"`
	Description *string `json:"description,omitempty"`
}

// GiveawayEntry records one entry of an account into a giveaway.
type GiveawayEntry struct {
	ID         int64     `json:"id"`
	AccountID  int64     `json:"accountId"`
	GiveawayID int64     `json:"giveawayId"`
	ProofLink  string    `json:"proofLink"`
	Timestamp  time.Time `json:"timestamp"`
}
