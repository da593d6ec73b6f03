package ports

import (
	"errors"

	"ifcmass/internal/domain"
)

// ErrUnsupportedType is returned when an element type is not part of the model's schema
var ErrUnsupportedType = errors.New("type not in schema")

// ModelLoader opens building models from disk
type ModelLoader interface {
	// Load parses the model at path. Any failure here is fatal for a run.
	Load(path string) (Model, error)
}

// Model is a loaded building-information model
type Model interface {
	// Schema returns the schema identifier (e.g., "IFC2X3", "IFC4")
	Schema() string

	// ElementsByType returns the elements of a type and its subtypes.
	// Returns ErrUnsupportedType if the schema does not define the type.
	ElementsByType(elementType string) ([]domain.Element, error)

	// Relationships returns the relationships pointing at an element,
	// in the order the model enumerates them
	Relationships(el domain.Element) []domain.Relationship

	// LengthUnit returns the declared linear unit, or domain.UnitUnspecified
	LengthUnit() domain.LengthUnit
}
