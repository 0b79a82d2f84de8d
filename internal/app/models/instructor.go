package models

import "github.com/google/uuid"

// InstructorSummary is the instructor data joined onto course reads
type InstructorSummary struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Name     string    `json:"name" db:"name"`
	Bio      *string   `json:"bio,omitempty" db:"bio"`
	ImageURL *string   `json:"imageUrl,omitempty" db:"image_url"`
}
