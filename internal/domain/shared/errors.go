package shared

import "fmt"

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Building-related errors

type BuildingError struct {
	*DomainError
}

func NewBuildingError(message string) *BuildingError {
	return &BuildingError{DomainError: &DomainError{Message: message}}
}

// UnknownBuildingKindError is returned at the boundary when an inbound event or
// scenario file names a building kind the catalog does not define.
type UnknownBuildingKindError struct {
	*BuildingError
	Kind string
}

func NewUnknownBuildingKindError(kind string) *UnknownBuildingKindError {
	return &UnknownBuildingKindError{
		BuildingError: NewBuildingError(fmt.Sprintf("unknown building kind %q", kind)),
		Kind:          kind,
	}
}

// UnknownBuildingError is returned when an event references a building id that
// was never reported as completed.
type UnknownBuildingError struct {
	*BuildingError
	BuildingID EntityID
}

func NewUnknownBuildingError(id EntityID) *UnknownBuildingError {
	return &UnknownBuildingError{
		BuildingError: NewBuildingError(fmt.Sprintf("building %s is not registered", id)),
		BuildingID:    id,
	}
}

// DuplicateBuildingError is returned when the same building id completes twice
type DuplicateBuildingError struct {
	*BuildingError
	BuildingID EntityID
}

func NewDuplicateBuildingError(id EntityID) *DuplicateBuildingError {
	return &DuplicateBuildingError{
		BuildingError: NewBuildingError(fmt.Sprintf("building %s already completed", id)),
		BuildingID:    id,
	}
}

// OccupancyUnderflowError is returned when an occupancy decrement would take a
// building below zero occupants.
type OccupancyUnderflowError struct {
	*BuildingError
	BuildingID EntityID
	Current    uint32
	Delta      int32
}

func NewOccupancyUnderflowError(id EntityID, current uint32, delta int32) *OccupancyUnderflowError {
	return &OccupancyUnderflowError{
		BuildingError: NewBuildingError(fmt.Sprintf("building %s has %d occupants, cannot apply %d", id, current, delta)),
		BuildingID:    id,
		Current:       current,
		Delta:         delta,
	}
}
