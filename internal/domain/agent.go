package domain

import "time"

// Agent models a support staff member eligible for ticket assignment.
type Agent struct {
	ID              int64
	Name            string
	Email           string
	Active          bool
	Available       bool
	Specialties     []string
	CurrentWorkload int
	LastAssignedAt  *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasSpecialty reports whether the agent covers the given ticket category.
func (a *Agent) HasSpecialty(category string) bool {
	for _, specialty := range a.Specialties {
		if specialty == category {
			return true
		}
	}
	return false
}
