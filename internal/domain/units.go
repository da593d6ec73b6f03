package domain

// LengthUnit is the linear unit declared by a model
type LengthUnit string

const (
	UnitUnspecified LengthUnit = ""
	UnitMetre       LengthUnit = "METRE"
	UnitMillimetre  LengthUnit = "MILLIMETRE"
	UnitCentimetre  LengthUnit = "CENTIMETRE"
	UnitInch        LengthUnit = "INCH"
)

var lengthScales = map[LengthUnit]float64{
	UnitMetre:      1.0,
	UnitMillimetre: 0.001,
	UnitCentimetre: 0.01,
	UnitInch:       0.0254,
}

// LengthScale returns the factor converting a length in unit to metres.
// Unspecified or unrecognised units are assumed to be metres.
func LengthScale(unit LengthUnit) float64 {
	if s, ok := lengthScales[unit]; ok {
		return s
	}
	return 1.0
}

// VolumeScale returns the factor converting a volume in unit³ to cubic metres
func VolumeScale(unit LengthUnit) float64 {
	s := LengthScale(unit)
	return s * s * s
}
