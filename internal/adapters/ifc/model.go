package ifc

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"ifcmass/internal/domain"
	"ifcmass/internal/logger"
	"ifcmass/internal/ports"
)

// Verify interface compliance
var (
	_ ports.ModelLoader = (*Loader)(nil)
	_ ports.Model       = (*Model)(nil)
)

// Loader reads IFC models from STEP files
type Loader struct{}

// NewLoader creates a new Loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses the file at path
func (l *Loader) Load(path string) (ports.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	m, err := Parse(data)
	if err != nil {
		return nil, err
	}

	logger.Debug("Loaded model",
		"path", path,
		"schema", m.Schema(),
		"instances", len(m.instances),
		"unit", string(m.unit),
	)
	return m, nil
}

// Model is a parsed IFC file with the indexes the mass calculation needs
type Model struct {
	schema    string
	instances map[int]*Instance
	position  map[int]int         // Instance id -> file order
	byType    map[string][]int    // Upper-case type -> ids in file order
	inverse   map[int][]*Instance // Element id -> relationships naming it, in file order
	openings  map[int][]*Instance // Element id -> opening elements voiding it

	unit         domain.LengthUnit
	volumeFactor float64 // Converts declared volumes into model length units cubed
}

// Parse builds a model from the contents of a STEP file
func Parse(data []byte) (*Model, error) {
	f, err := parseStep(data)
	if err != nil {
		return nil, err
	}
	if len(f.schemas) == 0 {
		return nil, fmt.Errorf("%w: missing FILE_SCHEMA", ErrSyntax)
	}

	m := &Model{
		schema:    strings.ToUpper(f.schemas[0]),
		instances: make(map[int]*Instance, len(f.instances)),
		position:  make(map[int]int, len(f.instances)),
		byType:    make(map[string][]int),
		inverse:   make(map[int][]*Instance),
		openings:  make(map[int][]*Instance),
	}

	for i, in := range f.instances {
		if _, dup := m.instances[in.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate instance #%d", ErrSyntax, in.ID)
		}
		m.instances[in.ID] = in
		m.position[in.ID] = i
		m.byType[in.Type] = append(m.byType[in.Type], in.ID)
	}

	// Inverse relationships, kept in file order across both kinds
	for _, in := range f.instances {
		switch in.Type {
		case "IFCRELASSOCIATESMATERIAL", "IFCRELDEFINESBYPROPERTIES":
			for _, obj := range in.RefsArg(4) {
				m.inverse[int(obj)] = append(m.inverse[int(obj)], in)
			}
		case "IFCRELVOIDSELEMENT":
			host, hostOK := in.RefArg(4)
			ref, refOK := in.RefArg(5)
			if !hostOK || !refOK {
				continue
			}
			if opening, ok := m.Resolve(ref); ok {
				m.openings[int(host)] = append(m.openings[int(host)], opening)
			}
		}
	}

	m.unit, m.volumeFactor = m.units()
	return m, nil
}

// Schema returns the FILE_SCHEMA identifier, e.g. "IFC4"
func (m *Model) Schema() string {
	return m.schema
}

// LengthUnit returns the project length unit
func (m *Model) LengthUnit() domain.LengthUnit {
	return m.unit
}

// Instance returns an instance by id
func (m *Model) Instance(id int) (*Instance, bool) {
	in, ok := m.instances[id]
	return in, ok
}

// Resolve follows a reference
func (m *Model) Resolve(r Ref) (*Instance, bool) {
	return m.Instance(int(r))
}

// Openings returns the opening elements voiding an element, in file order
func (m *Model) Openings(id int) []*Instance {
	return m.openings[id]
}

// ElementsByType returns instances of elementType and its subtypes in file order
func (m *Model) ElementsByType(elementType string) ([]domain.Element, error) {
	name := canonicalName(strings.ToUpper(elementType))
	if !supports(m.schema, name) {
		return nil, fmt.Errorf("%w: %s in %s", ports.ErrUnsupportedType, name, m.schema)
	}

	var ids []int
	for _, t := range append([]string{name}, subtypes[name]...) {
		if !supports(m.schema, t) {
			continue
		}
		ids = append(ids, m.byType[strings.ToUpper(t)]...)
	}
	slices.SortFunc(ids, func(a, b int) int { return m.position[a] - m.position[b] })

	elements := make([]domain.Element, 0, len(ids))
	for _, id := range ids {
		in := m.instances[id]
		guid, _ := in.StringArg(0)
		elements = append(elements, domain.Element{
			ID:       id,
			GlobalID: guid,
			Type:     canonicalName(in.Type),
		})
	}
	return elements, nil
}

// Relationships decodes the material and property relationships of an element
func (m *Model) Relationships(el domain.Element) []domain.Relationship {
	var rels []domain.Relationship
	for _, rel := range m.inverse[el.ID] {
		switch rel.Type {
		case "IFCRELASSOCIATESMATERIAL":
			rels = append(rels, domain.Relationship{
				Kind:     domain.RelationshipMaterial,
				Material: m.material(rel.Arg(5)),
			})
		case "IFCRELDEFINESBYPROPERTIES":
			// IFC4 allows a set of definitions here
			defs := []any{rel.Arg(5)}
			if l := AsList(rel.Arg(5)); l != nil {
				defs = l
			}
			for _, d := range defs {
				if def := m.propertyDefinition(d); def != nil {
					rels = append(rels, domain.Relationship{
						Kind:       domain.RelationshipProperties,
						Definition: def,
					})
				}
			}
		}
	}
	return rels
}

func (m *Model) resolveValue(v any) (*Instance, bool) {
	r, ok := AsRef(v)
	if !ok {
		return nil, false
	}
	return m.Resolve(r)
}
