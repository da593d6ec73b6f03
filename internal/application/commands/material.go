package commands

import "ifcmass/internal/domain"

// ResolveMaterialName returns the representative material of an element from
// its inbound relationships. The first material association that resolves
// wins; which one comes first depends on the model's enumeration order.
func ResolveMaterialName(rels []domain.Relationship) string {
	for _, rel := range rels {
		if rel.Kind != domain.RelationshipMaterial || rel.Material == nil {
			continue
		}
		if name, ok := rel.Material.Representative(); ok {
			return name
		}
	}
	return domain.UnknownMaterial
}
