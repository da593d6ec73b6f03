package geometry

import (
	"errors"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"ifcmass/internal/adapters/ifc"
	"ifcmass/internal/domain"
	"ifcmass/internal/ports"
)

// shared placement, direction and profile instances
const common = `#900=IFCGEOMETRICREPRESENTATIONCONTEXT($,'Model',3,1.E-05,#901,$);
#901=IFCAXIS2PLACEMENT3D(#902,$,$);
#902=IFCCARTESIANPOINT((0.,0.,0.));
#903=IFCDIRECTION((0.,0.,1.));
#904=IFCAXIS2PLACEMENT2D(#905,$);
#905=IFCCARTESIANPOINT((0.,0.));
#906=IFCDIRECTION((0.,0.,-1.));
`

func parseModel(t *testing.T, data string) *ifc.Model {
	t.Helper()
	content := "ISO-10303-21;\nHEADER;\nFILE_SCHEMA(('IFC4'));\nENDSEC;\nDATA;\n" +
		common + data + "\nENDSEC;\nEND-ISO-10303-21;\n"
	m, err := ifc.Parse([]byte(content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return m
}

// body wraps solid items into an element #1 with placement #2
func body(items string) string {
	return `#1=IFCBUILDINGELEMENTPROXY('proxy',$,$,$,$,#2,#3,$,$);
#2=IFCLOCALPLACEMENT($,#4);
#4=IFCAXIS2PLACEMENT3D(#5,$,$);
#5=IFCCARTESIANPOINT((10.,0.,0.));
#3=IFCPRODUCTDEFINITIONSHAPE($,$,(#6));
#6=IFCSHAPEREPRESENTATION(#900,'Body','SweptSolid',(` + items + `));
`
}

func solidVolume(t *testing.T, m *ifc.Model, opts ...Option) float64 {
	t.Helper()
	s, err := NewKernel(m, ports.GeometrySettings{}, opts...).Solid(domain.Element{ID: 1})
	if err != nil {
		t.Fatalf("Solid failed: %v", err)
	}
	return s.Volume()
}

func assertClose(t *testing.T, got, want, relTol float64) {
	t.Helper()
	if math.Abs(got-want) > relTol*want {
		t.Errorf("volume = %v, want %v (±%.1f%%)", got, want, relTol*100)
	}
}

func TestKernel_ExtrudedProfiles(t *testing.T) {
	tests := []struct {
		name  string
		items string
		want  float64
	}{
		{
			name: "rectangle",
			items: body("#10") + `#10=IFCEXTRUDEDAREASOLID(#11,#901,#903,3.);
#11=IFCRECTANGLEPROFILEDEF(.AREA.,$,#904,2.,0.5);`,
			want: 3.0,
		},
		{
			name: "circle",
			items: body("#10") + `#10=IFCEXTRUDEDAREASOLID(#11,#901,#903,2.);
#11=IFCCIRCLEPROFILEDEF(.AREA.,$,#904,0.5);`,
			want: math.Pi * 0.25 * 2,
		},
		{
			name: "concave polyline",
			items: body("#10") + `#10=IFCEXTRUDEDAREASOLID(#11,#901,#903,1.);
#11=IFCARBITRARYCLOSEDPROFILEDEF(.AREA.,$,#12);
#12=IFCPOLYLINE((#20,#21,#22,#23,#24,#25,#20));
#20=IFCCARTESIANPOINT((0.,0.));
#21=IFCCARTESIANPOINT((2.,0.));
#22=IFCCARTESIANPOINT((2.,1.));
#23=IFCCARTESIANPOINT((1.,1.));
#24=IFCCARTESIANPOINT((1.,2.));
#25=IFCCARTESIANPOINT((0.,2.));`,
			want: 3.0,
		},
		{
			name: "clockwise polyline",
			items: body("#10") + `#10=IFCEXTRUDEDAREASOLID(#11,#901,#903,2.);
#11=IFCARBITRARYCLOSEDPROFILEDEF(.AREA.,$,#12);
#12=IFCPOLYLINE((#20,#21,#22,#23));
#20=IFCCARTESIANPOINT((0.,0.));
#21=IFCCARTESIANPOINT((0.,1.));
#22=IFCCARTESIANPOINT((1.,1.));
#23=IFCCARTESIANPOINT((1.,0.));`,
			want: 2.0,
		},
		{
			name: "indexed polycurve",
			items: body("#10") + `#10=IFCEXTRUDEDAREASOLID(#11,#901,#903,1.);
#11=IFCARBITRARYCLOSEDPROFILEDEF(.AREA.,$,#12);
#12=IFCINDEXEDPOLYCURVE(#13,$,.F.);
#13=IFCCARTESIANPOINTLIST2D(((0.,0.),(3.,0.),(3.,2.),(0.,2.)));`,
			want: 6.0,
		},
		{
			name: "rotated and oblique extrusion",
			items: body("#10") + `#10=IFCEXTRUDEDAREASOLID(#11,#12,#14,2.);
#11=IFCRECTANGLEPROFILEDEF(.AREA.,$,#904,1.,1.);
#12=IFCAXIS2PLACEMENT3D(#902,#13,$);
#13=IFCDIRECTION((1.,0.,0.));
#14=IFCDIRECTION((0.,0.6,0.8));`,
			want: 1.6,
		},
		{
			name: "downward extrusion next to upward one",
			items: body("#10,#11") + `#10=IFCEXTRUDEDAREASOLID(#12,#901,#906,2.);
#11=IFCEXTRUDEDAREASOLID(#12,#901,#903,1.);
#12=IFCRECTANGLEPROFILEDEF(.AREA.,$,#904,1.,1.);`,
			want: 3.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertClose(t, solidVolume(t, parseModel(t, tt.items)), tt.want, 1e-9)
		})
	}
}

func TestKernel_FacetedGeometry(t *testing.T) {
	tests := []struct {
		name  string
		items string
		want  float64
	}{
		{
			name: "faceted brep cube",
			items: body("#10") + `#10=IFCFACETEDBREP(#11);
#11=IFCCLOSEDSHELL((#40,#41,#42,#43,#44,#45));
#20=IFCCARTESIANPOINT((0.,0.,0.));
#21=IFCCARTESIANPOINT((1.,0.,0.));
#22=IFCCARTESIANPOINT((1.,1.,0.));
#23=IFCCARTESIANPOINT((0.,1.,0.));
#24=IFCCARTESIANPOINT((0.,0.,1.));
#25=IFCCARTESIANPOINT((1.,0.,1.));
#26=IFCCARTESIANPOINT((1.,1.,1.));
#27=IFCCARTESIANPOINT((0.,1.,1.));
#30=IFCPOLYLOOP((#20,#23,#22,#21));
#31=IFCPOLYLOOP((#24,#25,#26,#27));
#32=IFCPOLYLOOP((#20,#21,#25,#24));
#33=IFCPOLYLOOP((#22,#23,#27,#26));
#34=IFCPOLYLOOP((#20,#24,#27,#23));
#35=IFCPOLYLOOP((#21,#22,#26,#25));
#40=IFCFACE((#50));
#41=IFCFACE((#51));
#42=IFCFACE((#52));
#43=IFCFACE((#53));
#44=IFCFACE((#54));
#45=IFCFACE((#55));
#50=IFCFACEOUTERBOUND(#30,.T.);
#51=IFCFACEOUTERBOUND(#31,.T.);
#52=IFCFACEOUTERBOUND(#32,.T.);
#53=IFCFACEOUTERBOUND(#33,.T.);
#54=IFCFACEOUTERBOUND(#34,.T.);
#55=IFCFACEOUTERBOUND(#35,.T.);`,
			want: 1.0,
		},
		{
			name: "triangulated tetrahedron",
			items: body("#10") + `#10=IFCTRIANGULATEDFACESET(#11,$,.T.,((1,3,2),(1,2,4),(1,4,3),(2,3,4)),$);
#11=IFCCARTESIANPOINTLIST3D(((0.,0.,0.),(1.,0.,0.),(0.,1.,0.),(0.,0.,1.)));`,
			want: 1.0 / 6.0,
		},
		{
			name: "polygonal face set box",
			items: body("#10") + `#10=IFCPOLYGONALFACESET(#11,.T.,(#20,#21,#22,#23,#24,#25),$);
#11=IFCCARTESIANPOINTLIST3D(((0.,0.,0.),(2.,0.,0.),(2.,1.,0.),(0.,1.,0.),(0.,0.,1.),(2.,0.,1.),(2.,1.,1.),(0.,1.,1.)));
#20=IFCINDEXEDPOLYGONALFACE((1,4,3,2));
#21=IFCINDEXEDPOLYGONALFACE((5,6,7,8));
#22=IFCINDEXEDPOLYGONALFACE((1,2,6,5));
#23=IFCINDEXEDPOLYGONALFACE((3,4,8,7));
#24=IFCINDEXEDPOLYGONALFACE((1,5,8,4));
#25=IFCINDEXEDPOLYGONALFACE((2,3,7,6));`,
			want: 2.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertClose(t, solidVolume(t, parseModel(t, tt.items)), tt.want, 1e-9)
		})
	}
}

func TestKernel_Booleans(t *testing.T) {
	tests := []struct {
		name  string
		items string
		want  float64
	}{
		{
			name: "wall with opening",
			items: body("#10") + `#10=IFCBOOLEANCLIPPINGRESULT(.DIFFERENCE.,#20,#30);
#20=IFCEXTRUDEDAREASOLID(#21,#901,#903,3.);
#21=IFCRECTANGLEPROFILEDEF(.AREA.,$,#904,4.,0.3);
#30=IFCEXTRUDEDAREASOLID(#31,#32,#903,1.2);
#31=IFCRECTANGLEPROFILEDEF(.AREA.,$,#904,1.,1.);
#32=IFCAXIS2PLACEMENT3D(#33,$,$);
#33=IFCCARTESIANPOINT((0.,0.,1.));`,
			want: 3.24,
		},
		{
			name: "cube clipped by half space",
			items: body("#10") + `#10=IFCBOOLEANCLIPPINGRESULT(.DIFFERENCE.,#20,#30);
#20=IFCEXTRUDEDAREASOLID(#21,#901,#903,1.);
#21=IFCRECTANGLEPROFILEDEF(.AREA.,$,#904,1.,1.);
#30=IFCHALFSPACESOLID(#31,.F.);
#31=IFCPLANE(#32);
#32=IFCAXIS2PLACEMENT3D(#33,$,$);
#33=IFCCARTESIANPOINT((0.,0.,0.5));`,
			want: 0.5,
		},
		{
			name: "column with round hole",
			items: body("#10") + `#10=IFCBOOLEANRESULT(.DIFFERENCE.,#20,#30);
#20=IFCEXTRUDEDAREASOLID(#21,#901,#903,2.);
#21=IFCRECTANGLEPROFILEDEF(.AREA.,$,#904,1.,1.);
#30=IFCEXTRUDEDAREASOLID(#31,#32,#903,3.);
#31=IFCCIRCLEPROFILEDEF(.AREA.,$,#904,0.25);
#32=IFCAXIS2PLACEMENT3D(#33,$,$);
#33=IFCCARTESIANPOINT((0.,0.,-0.5));`,
			want: 2.0 - math.Pi*0.0625*2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertClose(t, solidVolume(t, parseModel(t, tt.items)), tt.want, 0.03)
		})
	}
}

// voidedWall is a 4 x 0.3 x 3 wall voided by a 1 x 1 x 1.2 opening whose
// placement is given by openingPlacement
func voidedWall(openingPlacement string) string {
	return body("#10") + `#10=IFCEXTRUDEDAREASOLID(#11,#901,#903,3.);
#11=IFCRECTANGLEPROFILEDEF(.AREA.,$,#904,4.,0.3);
#40=IFCOPENINGELEMENT('opening',$,$,$,$,#41,#44,$,.OPENING.);
` + openingPlacement + `
#44=IFCPRODUCTDEFINITIONSHAPE($,$,(#45));
#45=IFCSHAPEREPRESENTATION(#900,'Body','SweptSolid',(#46));
#46=IFCEXTRUDEDAREASOLID(#47,#901,#903,1.2);
#47=IFCRECTANGLEPROFILEDEF(.AREA.,$,#904,1.,1.);
#50=IFCRELVOIDSELEMENT('voids',$,$,$,#1,#40);`
}

func TestKernel_Openings(t *testing.T) {
	tests := []struct {
		name      string
		placement string
		want      float64
	}{
		{
			name: "relative to the wall",
			placement: `#41=IFCLOCALPLACEMENT(#2,#42);
#42=IFCAXIS2PLACEMENT3D(#43,$,$);
#43=IFCCARTESIANPOINT((0.,0.,1.));`,
			want: 3.24,
		},
		{
			name: "absolute",
			placement: `#41=IFCLOCALPLACEMENT($,#42);
#42=IFCAXIS2PLACEMENT3D(#43,$,$);
#43=IFCCARTESIANPOINT((10.,0.,1.));`,
			want: 3.24,
		},
		{
			name: "outside the wall",
			placement: `#41=IFCLOCALPLACEMENT($,#42);
#42=IFCAXIS2PLACEMENT3D(#43,$,$);
#43=IFCCARTESIANPOINT((50.,0.,1.));`,
			want: 3.6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertClose(t, solidVolume(t, parseModel(t, voidedWall(tt.placement))), tt.want, 0.03)
		})
	}
}

func TestFrame_Inverse(t *testing.T) {
	f := newFrame(v3.Vec{X: 1, Y: 2, Z: 3}, v3.Vec{X: 1}, v3.Vec{Y: 1})
	p := v3.Vec{X: 0.5, Y: -4, Z: 7}

	got := f.inverse().point(f.point(p))
	if got.Sub(p).Length() > 1e-9 {
		t.Errorf("inverse().point(point(p)) = %v, want %v", got, p)
	}
	if want := f.local(p); f.inverse().point(p).Sub(want).Length() > 1e-9 {
		t.Errorf("inverse().point(p) = %v, want %v", f.inverse().point(p), want)
	}
}

func TestKernel_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name:    "no representation",
			data:    `#1=IFCBUILDINGELEMENTPROXY('proxy',$,$,$,$,$,$,$,$);`,
			wantErr: ErrNoBody,
		},
		{
			name: "unsupported item",
			data: body("#10") + `#10=IFCSWEPTDISKSOLID(#11,0.1,$,$,$);
#11=IFCPOLYLINE(());`,
			wantErr: ErrUnsupportedGeometry,
		},
		{
			name: "brep operand in boolean",
			data: body("#10") + `#10=IFCBOOLEANRESULT(.DIFFERENCE.,#20,#30);
#20=IFCEXTRUDEDAREASOLID(#21,#901,#903,1.);
#21=IFCRECTANGLEPROFILEDEF(.AREA.,$,#904,1.,1.);
#30=IFCFACETEDBREP(#31);
#31=IFCCLOSEDSHELL(());`,
			wantErr: ErrUnsupportedGeometry,
		},
		{
			name: "zero depth",
			data: body("#10") + `#10=IFCEXTRUDEDAREASOLID(#11,#901,#903,0.);
#11=IFCRECTANGLEPROFILEDEF(.AREA.,$,#904,1.,1.);`,
			wantErr: ErrUnsupportedGeometry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := parseModel(t, tt.data)
			_, err := NewKernel(m, ports.GeometrySettings{}).Solid(domain.Element{ID: 1})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	_, err := NewKernel(parseModel(t, ""), ports.GeometrySettings{}).Solid(domain.Element{ID: 404})
	if err == nil {
		t.Error("expected error for missing element")
	}
}

func TestKernel_WorldCoordinates(t *testing.T) {
	m := parseModel(t, body("#10")+`#10=IFCEXTRUDEDAREASOLID(#11,#901,#903,3.);
#11=IFCRECTANGLEPROFILEDEF(.AREA.,$,#904,2.,0.5);`)

	local, err := NewKernel(m, ports.GeometrySettings{}).Solid(domain.Element{ID: 1})
	if err != nil {
		t.Fatalf("Solid failed: %v", err)
	}
	world, err := NewKernel(m, ports.GeometrySettings{WorldCoords: true}).Solid(domain.Element{ID: 1})
	if err != nil {
		t.Fatalf("Solid failed: %v", err)
	}

	localMin, _ := local.(*Solid).Mesh().Bounds()
	worldMin, worldMax := world.(*Solid).Mesh().Bounds()
	if math.Abs(localMin.X+1) > 1e-9 {
		t.Errorf("expected local min x -1, got %v", localMin.X)
	}
	if math.Abs(worldMin.X-9) > 1e-9 || math.Abs(worldMax.X-11) > 1e-9 {
		t.Errorf("expected world x range 9..11, got %v..%v", worldMin.X, worldMax.X)
	}
	if math.Abs(local.Volume()-world.Volume()) > 1e-9 {
		t.Errorf("placement changed the volume: %v vs %v", local.Volume(), world.Volume())
	}
}

func TestKernel_MappedItem(t *testing.T) {
	m := parseModel(t, body("#10")+`#10=IFCMAPPEDITEM(#11,#14);
#11=IFCREPRESENTATIONMAP(#901,#12);
#12=IFCSHAPEREPRESENTATION(#900,'Body','SweptSolid',(#13));
#13=IFCEXTRUDEDAREASOLID(#15,#901,#903,2.);
#14=IFCCARTESIANTRANSFORMATIONOPERATOR3D($,$,#902,$,$);
#15=IFCRECTANGLEPROFILEDEF(.AREA.,$,#904,1.5,1.);`)

	assertClose(t, solidVolume(t, m), 3.0, 1e-9)
}

func TestNewFactory(t *testing.T) {
	factory := NewFactory(ports.GeometrySettings{}, WithMeshCells(64))

	k, err := factory(parseModel(t, ""))
	if err != nil {
		t.Fatalf("factory failed: %v", err)
	}
	if k.(*Kernel).cells != 64 {
		t.Errorf("expected 64 mesh cells, got %d", k.(*Kernel).cells)
	}

	if _, err := factory(otherModel{}); err == nil {
		t.Error("expected error for a model not read by the ifc loader")
	}
}

type otherModel struct{}

func (otherModel) Schema() string                                     { return "IFC4" }
func (otherModel) ElementsByType(string) ([]domain.Element, error)    { return nil, nil }
func (otherModel) Relationships(domain.Element) []domain.Relationship { return nil }
func (otherModel) LengthUnit() domain.LengthUnit                      { return domain.UnitMetre }
