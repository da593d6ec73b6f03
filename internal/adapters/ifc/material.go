package ifc

import "ifcmass/internal/domain"

// material decodes the relating material of an IfcRelAssociatesMaterial
func (m *Model) material(v any) *domain.MaterialDescriptor {
	in, ok := m.resolveValue(v)
	if !ok {
		return &domain.MaterialDescriptor{Shape: domain.MaterialShapeOther}
	}

	switch in.Type {
	case "IFCMATERIAL":
		name, _ := in.StringArg(0)
		return &domain.MaterialDescriptor{Shape: domain.MaterialShapeSingle, Name: name}

	case "IFCMATERIALLAYERSETUSAGE":
		set, _ := m.resolveValue(in.Arg(0))
		return &domain.MaterialDescriptor{
			Shape:  domain.MaterialShapeLayerSetUsage,
			Layers: m.layerNames(set),
		}

	case "IFCMATERIALLAYERSET":
		return &domain.MaterialDescriptor{
			Shape:  domain.MaterialShapeLayerSet,
			Layers: m.layerNames(in),
		}

	case "IFCMATERIALCONSTITUENTSET":
		var names []string
		for _, r := range in.RefsArg(2) {
			c, _ := m.Resolve(r)
			names = append(names, m.materialName(c.Arg(2)))
		}
		return &domain.MaterialDescriptor{
			Shape:        domain.MaterialShapeConstituentSet,
			Constituents: names,
		}

	default:
		return &domain.MaterialDescriptor{Shape: domain.MaterialShapeOther}
	}
}

// layerNames returns the material name of every layer, empty for layers without one
func (m *Model) layerNames(set *Instance) []string {
	var names []string
	for _, r := range set.RefsArg(0) {
		layer, _ := m.Resolve(r)
		names = append(names, m.materialName(layer.Arg(0)))
	}
	return names
}

func (m *Model) materialName(v any) string {
	mat, ok := m.resolveValue(v)
	if !ok || mat.Type != "IFCMATERIAL" {
		return ""
	}
	name, _ := mat.StringArg(0)
	return name
}

var quantityKinds = map[string]domain.QuantityKind{
	"IFCQUANTITYLENGTH": domain.QuantityLength,
	"IFCQUANTITYAREA":   domain.QuantityArea,
	"IFCQUANTITYVOLUME": domain.QuantityVolume,
	"IFCQUANTITYWEIGHT": domain.QuantityWeight,
	"IFCQUANTITYCOUNT":  domain.QuantityCount,
}

// propertyDefinition decodes the relating definition of an IfcRelDefinesByProperties.
// Volumes are reported in model length units cubed.
func (m *Model) propertyDefinition(v any) *domain.PropertyDefinition {
	in, ok := m.resolveValue(v)
	if !ok {
		return nil
	}

	name, _ := in.StringArg(2)
	def := &domain.PropertyDefinition{Type: canonicalName(in.Type), Name: name}
	if in.Type != "IFCELEMENTQUANTITY" {
		return def
	}

	for _, r := range in.RefsArg(5) {
		q, ok := m.Resolve(r)
		if !ok {
			continue
		}
		kind, ok := quantityKinds[q.Type]
		if !ok {
			kind = domain.QuantityOther
		}
		qname, _ := q.StringArg(0)
		value, ok := q.FloatArg(3)
		if !ok {
			continue
		}
		if kind == domain.QuantityVolume {
			value *= m.volumeFactor
		}
		def.Quantities = append(def.Quantities, domain.Quantity{Name: qname, Kind: kind, Value: value})
	}
	return def
}
