package domain

import (
	"strings"
	"unicode"
)

// UnknownMaterial is reported when an element has no resolvable material
const UnknownMaterial = "unknown"

// MaterialShape tags the representation of a material descriptor
type MaterialShape int

const (
	MaterialShapeOther          MaterialShape = iota
	MaterialShapeSingle                       // IfcMaterial
	MaterialShapeLayerSetUsage                // IfcMaterialLayerSetUsage
	MaterialShapeLayerSet                     // IfcMaterialLayerSet
	MaterialShapeConstituentSet               // IfcMaterialConstituentSet
)

func (s MaterialShape) String() string {
	switch s {
	case MaterialShapeSingle:
		return "material"
	case MaterialShapeLayerSetUsage:
		return "layer set usage"
	case MaterialShapeLayerSet:
		return "layer set"
	case MaterialShapeConstituentSet:
		return "constituent set"
	default:
		return "other"
	}
}

// MaterialDescriptor describes what an element is made of.
// Only the fields belonging to Shape are meaningful. Layer and constituent
// entries hold the name of their material, or "" when none is assigned.
type MaterialDescriptor struct {
	Shape        MaterialShape
	Name         string
	Layers       []string
	Constituents []string
}

// representatives reduces each descriptor shape to one material name.
// Composite shapes are approximated by their first entry.
var representatives = map[MaterialShape]func(MaterialDescriptor) string{
	MaterialShapeSingle:         func(d MaterialDescriptor) string { return d.Name },
	MaterialShapeLayerSetUsage:  func(d MaterialDescriptor) string { return first(d.Layers) },
	MaterialShapeLayerSet:       func(d MaterialDescriptor) string { return first(d.Layers) },
	MaterialShapeConstituentSet: func(d MaterialDescriptor) string { return first(d.Constituents) },
}

func first(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// Representative returns the single material name standing for the descriptor.
// ok is false for unsupported shapes, empty collections and unnamed materials.
func (d MaterialDescriptor) Representative() (name string, ok bool) {
	reduce, found := representatives[d.Shape]
	if !found {
		return "", false
	}
	name = reduce(d)
	return name, name != ""
}

// NormalizeMaterialName derives the density cache key of a raw material name:
// every non-letter is dropped and the rest is lowercased, so "Concrete-30"
// and "concrete 30" share the key "concrete".
func NormalizeMaterialName(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
