package shared

import (
	"fmt"
	"strings"
)

// EducationLevel ranks how qualified an inhabitant is for a job.
// Levels are totally ordered: a worker qualifies for an office when the
// worker's level is at least the office's required level.
type EducationLevel int

const (
	EducationNone EducationLevel = iota
	EducationLow
)

func (l EducationLevel) String() string {
	switch l {
	case EducationNone:
		return "none"
	case EducationLow:
		return "low"
	default:
		return fmt.Sprintf("education(%d)", int(l))
	}
}

// Satisfies reports whether l meets the required level
func (l EducationLevel) Satisfies(required EducationLevel) bool {
	return l >= required
}

// ParseEducationLevel parses "none" or "low" (case-insensitive)
func ParseEducationLevel(s string) (EducationLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return EducationNone, nil
	case "low":
		return EducationLow, nil
	default:
		return EducationNone, NewValidationError("education_level", fmt.Sprintf("unknown level %q", s))
	}
}
