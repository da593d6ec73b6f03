package mcp

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"ifcmass/internal/adapters/ifc"
	"ifcmass/internal/adapters/jsonstore"
	"ifcmass/internal/ports"
)

const wallsModel = "../ifc/testdata/walls_mm.ifc"

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("expected tool content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

type countingLookup struct {
	densities map[string]int
	calls     int
}

func (l *countingLookup) LookupDensity(_ context.Context, material string, _ float64) (int, error) {
	l.calls++
	d, ok := l.densities[material]
	if !ok {
		return 0, errors.New("unknown material")
	}
	return d, nil
}

func testDeps(t *testing.T, lookup ports.DensityLookup) (Deps, *jsonstore.Store) {
	t.Helper()
	store := jsonstore.NewStore(filepath.Join(t.TempDir(), "densities.json"))
	return Deps{Loader: ifc.NewLoader(), Store: store, Lookup: lookup}, store
}

func TestCalculateMass(t *testing.T) {
	lookup := &countingLookup{densities: map[string]int{"betonc": 2400}}
	deps, store := testDeps(t, lookup)

	res, err := calculateHandler(deps)(context.Background(), callRequest(map[string]any{
		"model_path": wallsModel,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}

	text := resultText(t, res)
	for _, want := range []string{"Element,Material,Volume [m³],Mass [kg]", "IfcWall,Beton C30/37,2,4800", "Whole mass: 4800 kg"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}

	saved, _ := store.Load()
	if saved["betonc"] != 2400 {
		t.Errorf("expected the looked-up density to be persisted, got %v", saved)
	}
}

func TestCalculateMass_JSON(t *testing.T) {
	deps, _ := testDeps(t, &countingLookup{densities: map[string]int{"betonc": 2400}})

	res, _ := calculateHandler(deps)(context.Background(), callRequest(map[string]any{
		"model_path": wallsModel,
		"format":     "json",
	}))
	text := resultText(t, res)
	if !strings.Contains(text, `"total_mass_kg": 4800`) {
		t.Errorf("expected a JSON document with the total:\n%s", text)
	}
}

func TestCalculateMass_Errors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing model path", map[string]any{}, "model path is required"},
		{"missing file", map[string]any{"model_path": "nope.ifc"}, "cannot load model"},
		{"bad format", map[string]any{"model_path": wallsModel, "format": "xml"}, "unknown format"},
		{"temperature out of range", map[string]any{"model_path": wallsModel, "temperature": 3.0}, "temperature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, _ := testDeps(t, nil)
			res, err := calculateHandler(deps)(context.Background(), callRequest(tt.args))
			if err != nil {
				t.Fatal(err)
			}
			if !res.IsError {
				t.Fatal("expected a tool error")
			}
			if text := resultText(t, res); !strings.Contains(text, tt.want) {
				t.Errorf("expected %q in %q", tt.want, text)
			}
		})
	}
}

func TestLookupDensityTool(t *testing.T) {
	lookup := &countingLookup{densities: map[string]int{"steel": 7850, "cardboard": 0}}
	deps, store := testDeps(t, lookup)
	handler := lookupHandler(deps)

	res, _ := handler(context.Background(), callRequest(map[string]any{"material": "steel"}))
	if text := resultText(t, res); text != "Density of steel: 7850 kg/m³" {
		t.Errorf("unexpected answer %q", text)
	}

	res, _ = handler(context.Background(), callRequest(map[string]any{"material": "cardboard"}))
	if text := resultText(t, res); !strings.Contains(text, "not a valid material") {
		t.Errorf("unexpected answer %q", text)
	}

	res, _ = handler(context.Background(), callRequest(map[string]any{"material": "unobtainium"}))
	if !res.IsError {
		t.Error("expected a tool error for a failed lookup")
	}

	if saved, _ := store.Load(); len(saved) != 0 {
		t.Errorf("lookup_density must not touch the cache, got %v", saved)
	}
}

func TestLookupDensityTool_NoLookup(t *testing.T) {
	deps, _ := testDeps(t, nil)
	res, _ := lookupHandler(deps)(context.Background(), callRequest(map[string]any{"material": "steel"}))
	if !res.IsError || !strings.Contains(resultText(t, res), "no density lookup") {
		t.Errorf("expected a missing lookup error, got %q", resultText(t, res))
	}
}

func TestSetAndListDensities(t *testing.T) {
	deps, store := testDeps(t, nil)
	set := setDensityHandler(store)

	res, _ := set(context.Background(), callRequest(map[string]any{"material": "Concrete C30/37", "density": 2400.0}))
	if res.IsError {
		t.Fatalf("unexpected error: %s", resultText(t, res))
	}
	if text := resultText(t, res); text != "Set concretec = 2400 kg/m³" {
		t.Errorf("unexpected message %q", text)
	}

	res, _ = set(context.Background(), callRequest(map[string]any{"material": "cardboard", "density": 0.0}))
	if text := resultText(t, res); text != "Marked cardboard as invalid" {
		t.Errorf("unexpected message %q", text)
	}

	res, _ = listDensitiesHandler(deps)(context.Background(), callRequest(nil))
	want := "cardboard  invalid\nconcretec  2400\n"
	if text := resultText(t, res); text != want {
		t.Errorf("list = %q, want %q", text, want)
	}
}

func TestSetDensity_Rejects(t *testing.T) {
	_, store := testDeps(t, nil)
	set := setDensityHandler(store)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"fractional", map[string]any{"material": "steel", "density": 7850.5}},
		{"negative", map[string]any{"material": "steel", "density": -1.0}},
		{"missing density", map[string]any{"material": "steel"}},
		{"no letters", map[string]any{"material": "42", "density": 1000.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _ := set(context.Background(), callRequest(tt.args))
			if !res.IsError {
				t.Errorf("expected a tool error, got %q", resultText(t, res))
			}
		})
	}
}

func TestListDensities_Empty(t *testing.T) {
	deps, _ := testDeps(t, nil)
	res, _ := listDensitiesHandler(deps)(context.Background(), callRequest(nil))
	if text := resultText(t, res); text != "No results." {
		t.Errorf("unexpected output %q", text)
	}
}
