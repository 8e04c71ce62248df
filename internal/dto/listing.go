package dto

// ListingPayload is the raw create/edit body as submitted by a client.
type ListingPayload struct {
	Title           string `json:"title" validate:"min=5,max=100"`
	Description     string `json:"description" validate:"min=20,max=1000"`
	Category        string `json:"category" validate:"required,category"`
	City            string `json:"city" validate:"required,city"`
	ExperienceLevel string `json:"experience_level" validate:"omitempty,experience_level"`
	Salary          string `json:"salary"`
	ContactEmail    string `json:"contact_email" validate:"required,email"`
	ContactPhone    string `json:"contact_phone" validate:"required"`
}

// CategoryAll disables the category filter.
const CategoryAll = "all"

// ListingFilter narrows a listing collection after the visibility policy has been applied.
type ListingFilter struct {
	Search   string
	Category string
	Page     int
	PageSize int
}

// ExportRequest selects listings for an admin export.
type ExportRequest struct {
	Status string
	Format string
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
