package ifc

import (
	"strings"

	"ifcmass/internal/domain"
)

var siPrefixes = map[string]float64{
	"EXA": 1e18, "PETA": 1e15, "TERA": 1e12, "GIGA": 1e9, "MEGA": 1e6,
	"KILO": 1e3, "HECTO": 1e2, "DECA": 1e1, "DECI": 1e-1, "CENTI": 1e-2,
	"MILLI": 1e-3, "MICRO": 1e-6, "NANO": 1e-9, "PICO": 1e-12,
}

// units reads the project unit assignment. Without a declared volume unit,
// declared volumes are taken to be in the length unit cubed.
func (m *Model) units() (domain.LengthUnit, float64) {
	unit := domain.UnitUnspecified
	volume := 0.0

	ids := m.byType["IFCUNITASSIGNMENT"]
	if len(ids) == 0 {
		return unit, 1
	}

	for _, r := range m.instances[ids[0]].RefsArg(0) {
		u, ok := m.Resolve(r)
		if !ok {
			continue
		}
		kind, _ := u.EnumArg(1)
		switch kind {
		case "LENGTHUNIT":
			unit = m.lengthUnit(u)
		case "VOLUMEUNIT":
			volume = m.volumeUnitScale(u)
		}
	}

	if volume == 0 {
		return unit, 1
	}
	return unit, volume / domain.VolumeScale(unit)
}

func (m *Model) lengthUnit(u *Instance) domain.LengthUnit {
	switch u.Type {
	case "IFCSIUNIT":
		prefix, _ := u.EnumArg(2)
		name, _ := u.EnumArg(3)
		if name != "METRE" {
			return domain.UnitUnspecified
		}
		switch prefix {
		case "":
			return domain.UnitMetre
		case "MILLI":
			return domain.UnitMillimetre
		case "CENTI":
			return domain.UnitCentimetre
		}
	case "IFCCONVERSIONBASEDUNIT":
		name, _ := u.StringArg(2)
		if strings.EqualFold(strings.TrimSpace(name), "INCH") {
			return domain.UnitInch
		}
	}
	return domain.UnitUnspecified
}

// volumeUnitScale returns cubic metres per volume unit, 0 when unknown
func (m *Model) volumeUnitScale(u *Instance) float64 {
	switch u.Type {
	case "IFCSIUNIT":
		name, _ := u.EnumArg(3)
		if name != "CUBIC_METRE" {
			return 0
		}
		prefix, _ := u.EnumArg(2)
		if prefix == "" {
			return 1
		}
		s, ok := siPrefixes[prefix]
		if !ok {
			return 0
		}
		return s * s * s

	case "IFCCONVERSIONBASEDUNIT":
		// ConversionFactor is an IfcMeasureWithUnit relative to an SI volume unit
		measure, ok := m.resolveValue(u.Arg(3))
		if !ok {
			return 0
		}
		factor, ok := measure.FloatArg(0)
		if !ok {
			return 0
		}
		base, ok := m.resolveValue(measure.Arg(1))
		if !ok {
			return 0
		}
		return factor * m.volumeUnitScale(base)
	}
	return 0
}
