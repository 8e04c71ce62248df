package models

import "time"

// ListingStatus is the moderation state of a listing.
type ListingStatus string

const (
	StatusPending  ListingStatus = "pending"
	StatusApproved ListingStatus = "approved"
	StatusRejected ListingStatus = "rejected"
)

// Valid reports whether s is one of the known states.
func (s ListingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Category values are stored verbatim and double as UI label keys.
type Category string

const (
	CategoryJob         Category = "job"
	CategoryInternship  Category = "internship"
	CategoryVolunteer   Category = "volunteer"
	CategorySeminar     Category = "seminar"
	CategoryStudyAbroad Category = "study_abroad"
	CategoryOther       Category = "other"
)

// Categories lists every canonical category in display order.
var Categories = []Category{
	CategoryJob,
	CategoryInternship,
	CategoryVolunteer,
	CategorySeminar,
	CategoryStudyAbroad,
	CategoryOther,
}

// ListingContent holds the owner-editable fields. Only the submission validator builds one.
type ListingContent struct {
	Title           string   `db:"title" json:"title"`
	Description     string   `db:"description" json:"description"`
	Category        Category `db:"category" json:"category"`
	City            string   `db:"city" json:"city"`
	ExperienceLevel *string  `db:"experience_level" json:"experience_level,omitempty"`
	Salary          *string  `db:"salary" json:"salary,omitempty"`
	ContactEmail    string   `db:"contact_email" json:"contact_email"`
	ContactPhone    string   `db:"contact_phone" json:"contact_phone"`
}

// Listing is a classified advertisement stored in the listings table.
type Listing struct {
	ID     string        `db:"id" json:"id"`
	UserID string        `db:"user_id" json:"user_id"`
	Status ListingStatus `db:"status" json:"status"`
	Views  int64         `db:"views" json:"views"`
	ListingContent
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	Seq       int64     `db:"seq" json:"-"`
}

// ListingQuery is the store-level filter produced by the visibility policy.
type ListingQuery struct {
	Status *ListingStatus
	UserID *string
}
