package domain

import "time"

// Category classifies complaints and maps them to a handling department.
type Category struct {
	ID         string
	Name       string
	Department string
	CreatedAt  time.Time
}
