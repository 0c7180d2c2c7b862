// Package domain contains core domain types for the dog trainer skill.
package domain

import (
	"strings"
	"time"
)

// Sex is the recorded sex of a dog.
type Sex string

const (
	SexUnknown Sex = "unknown"
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
)

// ParseSex maps a canonical slot value onto a Sex. The second return value
// is false when the value does not resolve to a known sex.
func ParseSex(value string) (Sex, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "male", "boy", "he":
		return SexMale, true
	case "female", "girl", "she":
		return SexFemale, true
	}
	return SexUnknown, false
}

// Known returns true when the sex has actually been recorded.
func (s Sex) Known() bool {
	return s == SexMale || s == SexFemale
}

// Praise returns the praise word used in the training script.
// Falls back to "boy" when the sex was never recorded.
func (s Sex) Praise() string {
	if s == SexFemale {
		return "girl"
	}
	return "boy"
}

// Dog is the persisted per-user profile. The store holds it as a single
// JSON document keyed by user ID and rewrites it whole on every mutation.
type Dog struct {
	Name          string         `json:"dogName,omitempty"`
	Sex           Sex            `json:"sex"`
	TrainingCount int            `json:"number_of_trainings"`
	RenameCount   int            `json:"number_of_renames"`
	PriorNames    map[string]Sex `json:"previous_names,omitempty"`
	CreatedAt     time.Time      `json:"created_at,omitempty"`
	UpdatedAt     time.Time      `json:"updated_at,omitempty"`
}

// NewDog creates a fresh profile for a first-time user.
func NewDog(name string) *Dog {
	return &Dog{
		Name:       name,
		Sex:        SexUnknown,
		PriorNames: map[string]Sex{},
	}
}

// HasName returns true when the profile exists and carries a name.
func (d *Dog) HasName() bool {
	return d != nil && d.Name != ""
}

// Rename installs a new name, archiving the old name and its sex under
// PriorNames so a later rename back restores the sex without re-asking.
// Name comparison is case-insensitive; returns true when the name changed.
func (d *Dog) Rename(name string) bool {
	if strings.EqualFold(d.Name, name) {
		return false
	}
	if d.PriorNames == nil {
		d.PriorNames = map[string]Sex{}
	}
	if d.Name != "" {
		d.PriorNames[strings.ToLower(d.Name)] = d.Sex
		d.RenameCount++
	}
	d.Name = name

	// A name used before carries its recorded sex back; the key moves out
	// of PriorNames so the current name never appears there.
	if prior, ok := d.PriorNames[strings.ToLower(name)]; ok {
		d.Sex = prior
		delete(d.PriorNames, strings.ToLower(name))
	} else {
		d.Sex = SexUnknown
	}
	return true
}

// Normalize fills zero values left behind by older stored documents.
func (d *Dog) Normalize() {
	if d.Sex == "" {
		d.Sex = SexUnknown
	}
	if d.PriorNames == nil {
		d.PriorNames = map[string]Sex{}
	}
}
