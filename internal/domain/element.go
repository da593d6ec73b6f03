package domain

// VolumeElementTypes lists the element categories that can carry a physical volume.
// Querying a category also returns its subtypes (IfcWall includes IfcWallStandardCase).
var VolumeElementTypes = []string{
	"IfcBeam", "IfcBearing", "IfcBuildingElementProxy", "IfcChimney", "IfcColumn", "IfcCovering",
	"IfcCurtainWall", "IfcDeepFoundation", "IfcDoor", "IfcFooting", "IfcMember", "IfcPlate",
	"IfcRailing", "IfcRamp", "IfcRampFlight", "IfcRoof", "IfcShadingDevice", "IfcSlab", "IfcStair",
	"IfcStairFlight", "IfcWall", "IfcWindow",
}

// Element is a handle to a building element inside a loaded model
type Element struct {
	ID       int    // Model-local instance number (e.g., 1234 for #1234)
	GlobalID string // IFC GlobalId
	Type     string // Concrete entity type, e.g., "IfcWallStandardCase"
}

// RelationshipKind identifies the relationships the mass calculation understands
type RelationshipKind int

const (
	RelationshipOther RelationshipKind = iota
	RelationshipMaterial                // IfcRelAssociatesMaterial
	RelationshipProperties              // IfcRelDefinesByProperties
)

func (k RelationshipKind) String() string {
	switch k {
	case RelationshipMaterial:
		return "material"
	case RelationshipProperties:
		return "properties"
	default:
		return "other"
	}
}

// Relationship is an inbound edge pointing at an element
type Relationship struct {
	Kind       RelationshipKind
	Material   *MaterialDescriptor // Set for RelationshipMaterial
	Definition *PropertyDefinition // Set for RelationshipProperties
}

// PropertyDefinition is the relating definition of a properties relationship
type PropertyDefinition struct {
	Type       string // e.g., "IfcElementQuantity", "IfcPropertySet"
	Name       string
	Quantities []Quantity // Only populated for element quantity sets
}

// IsElementQuantity reports whether the definition is an element quantity set
func (d *PropertyDefinition) IsElementQuantity() bool {
	return d != nil && d.Type == "IfcElementQuantity"
}

// QuantityKind is the physical dimension of a quantity
type QuantityKind int

const (
	QuantityOther QuantityKind = iota
	QuantityLength
	QuantityArea
	QuantityVolume
	QuantityWeight
	QuantityCount
)

// Quantity is a single named value inside an element quantity set.
// Volumes are expressed in the model's length unit cubed.
type Quantity struct {
	Name  string // e.g., "NetVolume"
	Kind  QuantityKind
	Value float64
}
