package models

import "time"

// ProfileRecord represents a LinkedIn lead parsed from a search result card
type ProfileRecord struct {
	ID         string    `json:"id,omitempty" db:"id"`
	FullName   string    `json:"fullName" db:"full_name"`
	Headline   string    `json:"headline,omitempty" db:"headline"`
	JobTitle   string    `json:"jobTitle" db:"job_title"`
	Company    string    `json:"company" db:"company"`
	Location   string    `json:"location" db:"location"`
	ProfileURL string    `json:"profileUrl" db:"profile_url"`
	About      string    `json:"about,omitempty" db:"about"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// RawCard holds the text fragments pulled out of one rendered result card.
// Secondary lists every "normal weight" text fragment in DOM order.
type RawCard struct {
	Name      string
	Headline  string
	Secondary []string
	Links     []string
	Summary   string
}
