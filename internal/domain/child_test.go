package domain

import (
	"testing"
	"time"
)

func TestAgeAt(t *testing.T) {
	birthdate := time.Date(2019, time.June, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		now     time.Time
		wantAge int
	}{
		{
			name:    "birthday already passed this year",
			now:     time.Date(2026, time.August, 21, 12, 0, 0, 0, time.UTC),
			wantAge: 7,
		},
		{
			name:    "birthday later this year",
			now:     time.Date(2026, time.May, 1, 12, 0, 0, 0, time.UTC),
			wantAge: 6,
		},
		{
			name:    "birthday month, day before",
			now:     time.Date(2026, time.June, 14, 12, 0, 0, 0, time.UTC),
			wantAge: 6,
		},
		{
			name:    "birthday itself",
			now:     time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC),
			wantAge: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			child := &Child{ID: "c1", Name: "Elif", Birthdate: &birthdate}
			age, ok := child.AgeAt(tt.now)
			if !ok {
				t.Fatal("expected a known age")
			}
			if age != tt.wantAge {
				t.Errorf("age = %d, want %d", age, tt.wantAge)
			}
		})
	}
}

func TestAgeAtUnknownBirthdate(t *testing.T) {
	child := &Child{ID: "c1", Name: "Elif"}
	if _, ok := child.AgeAt(time.Now()); ok {
		t.Error("expected unknown age for missing birthdate")
	}

	var nilChild *Child
	if _, ok := nilChild.AgeAt(time.Now()); ok {
		t.Error("expected unknown age for nil child")
	}
}
