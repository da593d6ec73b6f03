package commands

import (
	"context"
	"errors"

	"ifcmass/internal/domain"
	"ifcmass/internal/ports"
)

// fakeModel is an in-memory ports.Model
type fakeModel struct {
	schema      string
	unit        domain.LengthUnit
	byType      map[string][]domain.Element
	unsupported map[string]bool
	rels        map[int][]domain.Relationship
}

func newFakeModel() *fakeModel {
	return &fakeModel{
		schema:      "IFC4",
		byType:      make(map[string][]domain.Element),
		unsupported: make(map[string]bool),
		rels:        make(map[int][]domain.Relationship),
	}
}

func (m *fakeModel) Schema() string { return m.schema }

func (m *fakeModel) ElementsByType(t string) ([]domain.Element, error) {
	if m.unsupported[t] {
		return nil, ports.ErrUnsupportedType
	}
	return m.byType[t], nil
}

func (m *fakeModel) Relationships(el domain.Element) []domain.Relationship { return m.rels[el.ID] }

func (m *fakeModel) LengthUnit() domain.LengthUnit { return m.unit }

// add registers an element under a queried type with its relationships
func (m *fakeModel) add(queryType string, el domain.Element, rels ...domain.Relationship) {
	m.byType[queryType] = append(m.byType[queryType], el)
	m.rels[el.ID] = rels
}

func material(name string) domain.Relationship {
	return domain.Relationship{
		Kind:     domain.RelationshipMaterial,
		Material: &domain.MaterialDescriptor{Shape: domain.MaterialShapeSingle, Name: name},
	}
}

func declaredVolume(v float64) domain.Relationship {
	return domain.Relationship{
		Kind: domain.RelationshipProperties,
		Definition: &domain.PropertyDefinition{
			Type: "IfcElementQuantity",
			Name: "BaseQuantities",
			Quantities: []domain.Quantity{
				{Name: "Length", Kind: domain.QuantityLength, Value: 5},
				{Name: "NetVolume", Kind: domain.QuantityVolume, Value: v},
			},
		},
	}
}

// fakeSolid is a solid with a fixed volume
type fakeSolid float64

func (s fakeSolid) Volume() float64 { return float64(s) }

// fakeKernel returns per-element volumes or errors and counts calls
type fakeKernel struct {
	volumes map[int]float64
	calls   int
}

var errBadGeometry = errors.New("unsupported representation")

func (k *fakeKernel) Solid(el domain.Element) (ports.Solid, error) {
	k.calls++
	v, ok := k.volumes[el.ID]
	if !ok {
		return nil, errBadGeometry
	}
	return fakeSolid(v), nil
}

// countingLookup answers from a table and counts invocations
type countingLookup struct {
	densities map[string]int
	err       error
	calls     map[string]int
}

func newCountingLookup(densities map[string]int) *countingLookup {
	return &countingLookup{densities: densities, calls: make(map[string]int)}
}

func (l *countingLookup) LookupDensity(_ context.Context, material string, _ float64) (int, error) {
	l.calls[material]++
	if l.err != nil {
		return 0, l.err
	}
	d, ok := l.densities[material]
	if !ok {
		return 0, errors.New("no answer")
	}
	return d, nil
}

func (l *countingLookup) total() int {
	n := 0
	for _, c := range l.calls {
		n += c
	}
	return n
}

// memStore is an in-memory ports.DensityStore
type memStore struct {
	entries map[string]int
	loadErr error
	saveErr error
	saves   int
}

func (s *memStore) Load() (map[string]int, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make(map[string]int, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) Save(entries map[string]int) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.entries = make(map[string]int, len(entries))
	for k, v := range entries {
		s.entries[k] = v
	}
	return nil
}

// fakeLoader hands out a prepared model
type fakeLoader struct {
	model ports.Model
	err   error
}

func (l *fakeLoader) Load(string) (ports.Model, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.model, nil
}

func kernelFactory(k ports.GeometryKernel) ports.GeometryKernelFactory {
	return func(ports.Model) (ports.GeometryKernel, error) { return k, nil }
}
