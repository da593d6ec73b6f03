package commands

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"ifcmass/internal/adapters/jsonstore"
	"ifcmass/internal/application"
	"ifcmass/internal/domain"
	"ifcmass/internal/ports"
)

func newCalc(model *fakeModel, kernel *fakeKernel, store *memStore) *CalculateCommand {
	var kernels ports.GeometryKernelFactory
	if kernel != nil {
		kernels = kernelFactory(kernel)
	}
	return NewCalculateCommand(&fakeLoader{model: model}, kernels, store, nil, "model.ifc")
}

func TestCalculateCommand_Validate(t *testing.T) {
	tests := []struct {
		name        string
		modelPath   string
		temperature float64
		wantErr     bool
	}{
		{"valid", "house.ifc", 0, false},
		{"empty path", "", 0, true},
		{"whitespace path", "   ", 0, true},
		{"temperature too high", "house.ifc", 2.5, true},
		{"negative temperature", "house.ifc", -0.1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewCalculateCommand(&fakeLoader{}, nil, nil, nil, tt.modelPath)
			cmd.Temperature = tt.temperature
			err := cmd.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCalculateCommand_DeclaredVolumeInMillimetreModel(t *testing.T) {
	// The loader reports declared quantities in model units cubed
	m := newFakeModel()
	m.unit = domain.UnitMillimetre
	m.add("IfcWall", domain.Element{ID: 1, GlobalID: "w1", Type: "IfcWall"}, material("Concrete"), declaredVolume(2.0e9))

	kernel := &fakeKernel{volumes: map[int]float64{1: 5.0e9}}
	result, err := newCalc(m, kernel, &memStore{}).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	v, ok := result.Volumes.Volume(domain.VolumeKey{ElementType: "IfcWall", Material: "Concrete"})
	if !ok || math.Abs(v-2.0) > 1e-9 {
		t.Errorf("expected declared volume 2.0 m³, got %v (ok=%v)", v, ok)
	}
	if kernel.calls != 0 {
		t.Errorf("geometry must not be computed when a volume is declared, got %d calls", kernel.calls)
	}
}

func TestCalculateCommand_BrokenGeometryContributesNothing(t *testing.T) {
	m := newFakeModel()
	m.add("IfcSlab", domain.Element{ID: 1, GlobalID: "s1", Type: "IfcSlab"}, material("Concrete"))

	result, err := newCalc(m, &fakeKernel{}, &memStore{}).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.Volumes.Len() != 0 || len(result.Mass.Rows) != 0 {
		t.Errorf("expected no rows, got %+v", result.Volumes.Rows())
	}
	if result.Stats.NoVolume != 1 {
		t.Errorf("expected element to be counted without volume, got %+v", result.Stats)
	}
}

func TestCalculateCommand_SameTypeAndMaterialSumsIntoOneRow(t *testing.T) {
	m := newFakeModel()
	m.add("IfcWall", domain.Element{ID: 1, Type: "IfcWall"}, material("Concrete"), declaredVolume(1.0))
	m.add("IfcWall", domain.Element{ID: 2, Type: "IfcWall"}, material("Concrete"), declaredVolume(1.5))

	store := &memStore{entries: map[string]int{"concrete": 2400}}
	result, err := newCalc(m, nil, store).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(result.Mass.Rows) != 1 {
		t.Fatalf("expected one row, got %d", len(result.Mass.Rows))
	}
	row := result.Mass.Rows[0]
	if row.Volume != 2.5 {
		t.Errorf("expected volume 2.5, got %v", row.Volume)
	}
	if row.Mass != 6000 || result.Mass.TotalMass != 6000 {
		t.Errorf("expected mass 6000, got row %v total %v", row.Mass, result.Mass.TotalMass)
	}
}

func TestCalculateCommand_Types(t *testing.T) {
	m := newFakeModel()
	m.add("IfcWall", domain.Element{ID: 1, Type: "IfcWall"}, material("Concrete"), declaredVolume(1.0))
	m.add("IfcSlab", domain.Element{ID: 2, Type: "IfcSlab"}, material("Concrete"), declaredVolume(3.0))

	calc := newCalc(m, nil, &memStore{entries: map[string]int{"concrete": 2400}})
	calc.Types = []string{"IfcSlab"}
	result, err := calc.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.Stats.Elements != 1 || result.Mass.TotalMass != 7200 {
		t.Errorf("expected only the slab, got %+v total %v", result.Stats, result.Mass.TotalMass)
	}
}

func TestCalculateCommand_UnknownMaterialIsUnresolved(t *testing.T) {
	m := newFakeModel()
	m.add("IfcWall", domain.Element{ID: 1, Type: "IfcWall"}, material("Concrete"), declaredVolume(1.0))
	m.add("IfcDoor", domain.Element{ID: 2, Type: "IfcDoor"}, declaredVolume(0.4))

	store := &memStore{entries: map[string]int{"concrete": 2400}}
	lookup := newCountingLookup(map[string]int{"unknown": 999})
	cmd := NewCalculateCommand(&fakeLoader{model: m}, nil, store, lookup, "model.ifc")

	result, err := cmd.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	v, ok := result.Volumes.Volume(domain.VolumeKey{ElementType: "IfcDoor", Material: domain.UnknownMaterial})
	if !ok || v != 0.4 {
		t.Errorf("expected unknown material in the volume summary, got %v (ok=%v)", v, ok)
	}

	unresolved := result.Mass.Unresolved()
	if len(unresolved) != 1 || unresolved[0].Material != domain.UnknownMaterial {
		t.Errorf("expected the unknown row to be unresolved, got %+v", unresolved)
	}
	if result.Mass.TotalMass != 2400 {
		t.Errorf("expected total 2400, got %v", result.Mass.TotalMass)
	}
	if lookup.total() != 0 {
		t.Errorf("unknown material must not be looked up, got %d calls", lookup.total())
	}
}

func TestCalculateCommand_PersistsLookupsAcrossRuns(t *testing.T) {
	m := newFakeModel()
	m.add("IfcColumn", domain.Element{ID: 1, Type: "IfcColumn"}, material("Steel"), declaredVolume(0.2))
	m.add("IfcPlate", domain.Element{ID: 2, Type: "IfcPlate"}, material("Cardboard"), declaredVolume(1))

	store := &memStore{}
	lookup := newCountingLookup(map[string]int{"steel": 7850, "cardboard": 0})
	cmd := NewCalculateCommand(&fakeLoader{model: m}, nil, store, lookup, "model.ifc")

	first, err := cmd.Execute(context.Background())
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := cmd.Execute(context.Background())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if lookup.total() != 2 {
		t.Errorf("expected each material looked up once across runs, got %v", lookup.calls)
	}
	if store.entries["steel"] != 7850 {
		t.Errorf("expected steel persisted, got %v", store.entries)
	}
	if d, ok := store.entries["cardboard"]; !ok || d != domain.InvalidDensity {
		t.Errorf("expected cardboard persisted as invalid, got %v", store.entries)
	}
	if first.Mass.TotalMass != second.Mass.TotalMass {
		t.Errorf("expected stable totals, got %v then %v", first.Mass.TotalMass, second.Mass.TotalMass)
	}
	if second.CacheSize != 2 {
		t.Errorf("expected cache size 2, got %d", second.CacheSize)
	}
}

func TestCalculateCommand_LookupFailureIsNotPersisted(t *testing.T) {
	m := newFakeModel()
	m.add("IfcWall", domain.Element{ID: 1, Type: "IfcWall"}, material("Brick"), declaredVolume(1))

	store := &memStore{}
	lookup := newCountingLookup(nil)
	lookup.err = errors.New("rate limited")
	cmd := NewCalculateCommand(&fakeLoader{model: m}, nil, store, lookup, "model.ifc")

	result, err := cmd.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Mass.TotalMass != 0 {
		t.Errorf("expected no mass, got %v", result.Mass.TotalMass)
	}
	if _, ok := store.entries["brick"]; ok {
		t.Error("failed lookup must not be persisted")
	}
}

func TestCalculateCommand_ModelLoadFailure(t *testing.T) {
	loader := &fakeLoader{err: errors.New("not a STEP file")}
	store := &memStore{}
	cmd := NewCalculateCommand(loader, nil, store, nil, "broken.ifc")

	result, err := cmd.Execute(context.Background())

	if result != nil {
		t.Errorf("expected no result, got %+v", result)
	}
	if !errors.Is(err, application.ErrModelLoad) {
		t.Errorf("expected ErrModelLoad, got %v", err)
	}
	var loadErr *application.ModelLoadError
	if !errors.As(err, &loadErr) || loadErr.Path != "broken.ifc" {
		t.Errorf("expected ModelLoadError for broken.ifc, got %v", err)
	}
	if store.saves != 0 {
		t.Errorf("cache must not be saved on load failure, got %d saves", store.saves)
	}
}

func TestCalculateCommand_CacheErrors(t *testing.T) {
	m := newFakeModel()
	m.add("IfcWall", domain.Element{ID: 1, Type: "IfcWall"}, material("Concrete"), declaredVolume(1))

	t.Run("unreadable cache starts empty and is not saved", func(t *testing.T) {
		corrupt := errors.New("corrupt")
		store := &memStore{loadErr: corrupt}
		result, err := newCalc(m, nil, store).Execute(context.Background())
		if !errors.Is(err, application.ErrCacheSave) || !errors.Is(err, corrupt) {
			t.Errorf("expected ErrCacheSave wrapping the read error, got %v", err)
		}
		if result == nil || result.Mass.TotalMass != 0 {
			t.Errorf("expected a result without mass, got %+v", result)
		}
		if store.saves != 0 {
			t.Errorf("unreadable cache must not be overwritten, got %d saves", store.saves)
		}
	})

	t.Run("unwritable cache keeps the result", func(t *testing.T) {
		readOnly := errors.New("read-only")
		store := &memStore{entries: map[string]int{"concrete": 2400}, saveErr: readOnly}
		result, err := newCalc(m, nil, store).Execute(context.Background())
		if !errors.Is(err, application.ErrCacheSave) || !errors.Is(err, readOnly) {
			t.Errorf("expected ErrCacheSave wrapping the write error, got %v", err)
		}
		if result == nil || result.Mass.TotalMass != 2400 {
			t.Errorf("expected complete result alongside the error, got %+v", result)
		}
	})
}

func TestCalculateCommand_MalformedCacheFileSurvives(t *testing.T) {
	path := filepath.Join(t.TempDir(), "material_densities.json")
	original := []byte(`{"concrete": 2400, "steel": 7850,}`)
	if err := os.WriteFile(path, original, 0644); err != nil {
		t.Fatal(err)
	}

	m := newFakeModel()
	m.add("IfcWall", domain.Element{ID: 1, Type: "IfcWall"}, material("Brick"), declaredVolume(1))
	lookup := newCountingLookup(map[string]int{"brick": 1800})
	cmd := NewCalculateCommand(&fakeLoader{model: m}, nil, jsonstore.NewStore(path), lookup, "model.ifc")

	result, err := cmd.Execute(context.Background())
	if !errors.Is(err, application.ErrCacheSave) {
		t.Errorf("expected ErrCacheSave, got %v", err)
	}
	if result == nil || result.Mass.TotalMass != 1800 {
		t.Errorf("expected the run to complete with 1800 kg, got %+v", result)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(original) {
		t.Errorf("malformed cache file was rewritten: %s", data)
	}
}

func TestCalculateCommand_KernelFactoryFailure(t *testing.T) {
	m := newFakeModel()
	m.add("IfcWall", domain.Element{ID: 1, Type: "IfcWall"}, material("Concrete"), declaredVolume(1))
	m.add("IfcSlab", domain.Element{ID: 2, Type: "IfcSlab"}, material("Concrete"))

	failing := func(ports.Model) (ports.GeometryKernel, error) { return nil, errors.New("no geometry") }
	cmd := NewCalculateCommand(&fakeLoader{model: m}, failing, nil, nil, "model.ifc")

	result, err := cmd.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Stats.Declared != 1 || result.Stats.NoVolume != 1 {
		t.Errorf("expected declared volumes only, got %+v", result.Stats)
	}
}

func TestRepeatCommand(t *testing.T) {
	m := newFakeModel()
	m.add("IfcWall", domain.Element{ID: 1, Type: "IfcWall"}, material("Concrete"), declaredVolume(1))

	store := &memStore{}
	lookup := newCountingLookup(map[string]int{"concrete": 2400})
	calc := NewCalculateCommand(&fakeLoader{model: m}, nil, store, lookup, "model.ifc")

	var seen []int
	cmd := NewRepeatCommand(calc, 3)
	cmd.OnRun = func(run int, _ *CalculateResult) error {
		seen = append(seen, run)
		return nil
	}

	result, err := cmd.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(result.Totals) != 3 {
		t.Fatalf("expected 3 totals, got %d", len(result.Totals))
	}
	for i, total := range result.Totals {
		if total != 2400 {
			t.Errorf("run %d total = %v, want 2400", i, total)
		}
	}
	if len(seen) != 3 || seen[2] != 2 {
		t.Errorf("expected callbacks for runs 0..2, got %v", seen)
	}
	if lookup.total() != 1 {
		t.Errorf("expected one lookup across runs, got %d", lookup.total())
	}
}

func TestRepeatCommand_Validate(t *testing.T) {
	calc := NewCalculateCommand(&fakeLoader{}, nil, nil, nil, "model.ifc")

	for _, runs := range []int{0, -1} {
		var valErr *application.ValidationError
		if err := NewRepeatCommand(calc, runs).Validate(); !errors.As(err, &valErr) {
			t.Errorf("runs=%d: expected ValidationError, got %v", runs, err)
		}
	}
	if err := NewRepeatCommand(calc, 1).Validate(); err != nil {
		t.Errorf("runs=1: unexpected error %v", err)
	}
}

func TestRepeatCommand_StopsOnModelLoadFailure(t *testing.T) {
	calc := NewCalculateCommand(&fakeLoader{err: errors.New("missing")}, nil, nil, nil, "model.ifc")

	result, err := NewRepeatCommand(calc, 5).Execute(context.Background())

	if !errors.Is(err, application.ErrModelLoad) {
		t.Errorf("expected ErrModelLoad, got %v", err)
	}
	if result == nil || len(result.Totals) != 0 {
		t.Errorf("expected no totals, got %+v", result)
	}
}
