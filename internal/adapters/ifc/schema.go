package ifc

import "strings"

// subtypes lists the instantiable subtypes queried together with a type
var subtypes = map[string][]string{
	"IfcWall":           {"IfcWallStandardCase", "IfcWallElementedCase"},
	"IfcSlab":           {"IfcSlabStandardCase", "IfcSlabElementedCase"},
	"IfcBeam":           {"IfcBeamStandardCase"},
	"IfcColumn":         {"IfcColumnStandardCase"},
	"IfcMember":         {"IfcMemberStandardCase"},
	"IfcPlate":          {"IfcPlateStandardCase"},
	"IfcDoor":           {"IfcDoorStandardCase"},
	"IfcWindow":         {"IfcWindowStandardCase"},
	"IfcDeepFoundation": {"IfcPile", "IfcCaissonFoundation"},
}

// schema generations in release order
const (
	schemaUnknown = iota
	schemaIFC2X3
	schemaIFC4
	schemaIFC4X1
	schemaIFC4X2
	schemaIFC4X3
)

// introducedIn records types added after IFC2X3
var introducedIn = map[string]int{
	"IfcChimney":                schemaIFC4,
	"IfcShadingDevice":          schemaIFC4,
	"IfcWallElementedCase":      schemaIFC4,
	"IfcSlabStandardCase":       schemaIFC4,
	"IfcSlabElementedCase":      schemaIFC4,
	"IfcBeamStandardCase":       schemaIFC4,
	"IfcColumnStandardCase":     schemaIFC4,
	"IfcMemberStandardCase":     schemaIFC4,
	"IfcPlateStandardCase":      schemaIFC4,
	"IfcDoorStandardCase":       schemaIFC4,
	"IfcWindowStandardCase":     schemaIFC4,
	"IfcCaissonFoundation":      schemaIFC4,
	"IfcMaterialConstituentSet": schemaIFC4,
	"IfcBearing":                schemaIFC4X3,
	"IfcDeepFoundation":         schemaIFC4X3,
}

func schemaGeneration(schema string) int {
	s := strings.ToUpper(schema)
	switch {
	case strings.HasPrefix(s, "IFC4X3"):
		return schemaIFC4X3
	case strings.HasPrefix(s, "IFC4X2"):
		return schemaIFC4X2
	case strings.HasPrefix(s, "IFC4X1"):
		return schemaIFC4X1
	case strings.HasPrefix(s, "IFC4"):
		return schemaIFC4
	case strings.HasPrefix(s, "IFC2X3"):
		return schemaIFC2X3
	default:
		return schemaUnknown
	}
}

// supports reports whether a schema defines a type. Unknown schemas accept everything.
func supports(schema, typeName string) bool {
	gen := schemaGeneration(schema)
	if gen == schemaUnknown {
		return true
	}
	return gen >= introducedIn[typeName]
}

// knownNames maps upper-case entity names back to their canonical spelling
var knownNames = func() map[string]string {
	names := []string{
		"IfcBeam", "IfcBearing", "IfcBuildingElementProxy", "IfcChimney", "IfcColumn",
		"IfcCovering", "IfcCurtainWall", "IfcDeepFoundation", "IfcDoor", "IfcFooting",
		"IfcMember", "IfcPlate", "IfcRailing", "IfcRamp", "IfcRampFlight", "IfcRoof",
		"IfcShadingDevice", "IfcSlab", "IfcStair", "IfcStairFlight", "IfcWall", "IfcWindow",
		"IfcPile", "IfcCaissonFoundation",
		"IfcElementQuantity", "IfcPropertySet", "IfcQuantityVolume", "IfcQuantityLength",
		"IfcQuantityArea", "IfcQuantityWeight", "IfcQuantityCount",
		"IfcMaterial", "IfcMaterialLayerSetUsage", "IfcMaterialLayerSet",
		"IfcMaterialConstituentSet", "IfcMaterialList", "IfcMaterialProfileSetUsage",
	}
	m := make(map[string]string)
	for _, n := range names {
		m[strings.ToUpper(n)] = n
	}
	for _, subs := range subtypes {
		for _, n := range subs {
			m[strings.ToUpper(n)] = n
		}
	}
	return m
}()

// canonicalName returns the usual spelling of an upper-case entity name.
// Names outside the known set keep only the Ifc prefix capitalised.
func canonicalName(upper string) string {
	if n, ok := knownNames[upper]; ok {
		return n
	}
	if strings.HasPrefix(upper, "IFC") && len(upper) > 3 {
		return "Ifc" + upper[3:4] + strings.ToLower(upper[4:])
	}
	return upper
}
