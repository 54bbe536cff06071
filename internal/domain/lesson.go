package domain

import "time"

// Lesson is the response shape of a lesson, independent of which field
// names the stored document uses.
type Lesson struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"`
	Location    string    `json:"location"`
	Price       float64   `json:"price"`
	Spaces      int       `json:"spaces"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	AddedAt     time.Time `json:"addedAt"`
}

// NewLesson is a lesson as written to the store, always using canonical
// field names.
type NewLesson struct {
	Subject     string  `bson:"subject" json:"subject"`
	Location    string  `bson:"location" json:"location"`
	Price       float64 `bson:"price" json:"price"`
	Spaces      int     `bson:"spaces" json:"spaces"`
	Description string  `bson:"description" json:"description"`
	Image       string  `bson:"image" json:"image"`
}
