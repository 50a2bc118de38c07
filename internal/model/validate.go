package model

import (
	"fmt"
	"strings"
)

// Sexes lists accepted values of Animal.Sex.
var Sexes = []string{"male", "female", "castrate"}

// Grades lists accepted carcass grades, best first.
var Grades = []string{"E", "U", "R", "O", "P"}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Validate checks required fields and value ranges.
func (a Animal) Validate() error {
	switch {
	case strings.TrimSpace(a.TagNumber) == "":
		return fmt.Errorf("%w: tag number is required", ErrInvalid)
	case strings.TrimSpace(a.Species) == "":
		return fmt.Errorf("%w: species is required", ErrInvalid)
	case a.Sex != "" && !contains(Sexes, a.Sex):
		return fmt.Errorf("%w: sex must be one of %s", ErrInvalid, strings.Join(Sexes, ", "))
	case !a.LiveWeightKg.IsPositive():
		return fmt.Errorf("%w: live weight must be positive", ErrInvalid)
	case a.SupplierID <= 0:
		return fmt.Errorf("%w: supplier is required", ErrInvalid)
	case a.Status != "" && !a.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, a.Status)
	}
	return nil
}

// Validate checks required supplier fields.
func (s Supplier) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: supplier name is required", ErrInvalid)
	}
	return nil
}

// Validate checks the kill-floor record.
func (in SlaughterInput) Validate() error {
	switch {
	case in.AnimalID <= 0:
		return fmt.Errorf("%w: animal is required", ErrInvalid)
	case !in.HotWeightKg.IsPositive():
		return fmt.Errorf("%w: hot weight must be positive", ErrInvalid)
	case !contains(Grades, in.Grade):
		return fmt.Errorf("%w: grade must be one of %s", ErrInvalid, strings.Join(Grades, ", "))
	}
	return nil
}

// CanTransition reports whether a manual status change from -> to is allowed.
// Slaughter is only reachable through SlaughterAnimal.
func CanTransition(from, to AnimalStatus) bool {
	if from.Final() || from == to {
		return false
	}
	switch to {
	case StatusLairage:
		return from == StatusReceived
	case StatusRejected:
		return true
	}
	return false
}
