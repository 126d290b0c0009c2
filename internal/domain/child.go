package domain

import (
	"time"
)

// Child is a learner profile, owned by the enrollment service.
type Child struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Birthdate *time.Time `json:"birthdate,omitempty"`
}

// AgeAt returns the child's age in whole years at the given time.
// The second return value is false when the birthdate is unknown.
func (c *Child) AgeAt(now time.Time) (int, bool) {
	if c == nil || c.Birthdate == nil {
		return 0, false
	}
	b := *c.Birthdate
	age := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		age--
	}
	return age, true
}

// Lesson is a curriculum unit, owned by the content service.
type Lesson struct {
	ID   string `json:"id"`
	Name string `json:"lesson_name"`
}
