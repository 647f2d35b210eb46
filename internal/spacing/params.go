package spacing

import "fmt"

// Params holds the design spacings and tolerance for a spacing check.
type Params struct {
	Component ComponentType `json:"component"`

	// TargetMm is the single design spacing for slab/wall members.
	TargetMm float64 `json:"target_mm"`

	// DenseTargetMm and SparseTargetMm are the stirrup spacings for
	// beam/column members near supports and at mid-span respectively.
	DenseTargetMm  float64 `json:"dense_target_mm"`
	SparseTargetMm float64 `json:"sparse_target_mm"`

	ToleranceMm float64 `json:"tolerance_mm"`
}

// DefaultParams returns the default spacing check parameters. The values
// match common slab spacing (150 mm) and beam/column stirrup zoning
// (100 mm dense, 200 mm sparse) with a 20 mm site tolerance.
func DefaultParams() Params {
	return Params{
		Component:      SlabWall,
		TargetMm:       150,
		DenseTargetMm:  100,
		SparseTargetMm: 200,
		ToleranceMm:    20,
	}
}

// WithComponent returns a copy of the params for the given component type.
func (p Params) WithComponent(c ComponentType) Params {
	p.Component = c
	return p
}

// WithTarget returns a copy with the single slab/wall target spacing.
func (p Params) WithTarget(mm float64) Params {
	p.TargetMm = mm
	return p
}

// WithZoneTargets returns a copy with beam/column dense and sparse targets.
func (p Params) WithZoneTargets(denseMm, sparseMm float64) Params {
	p.DenseTargetMm = denseMm
	p.SparseTargetMm = sparseMm
	return p
}

// WithTolerance returns a copy with the given tolerance.
func (p Params) WithTolerance(mm float64) Params {
	p.ToleranceMm = mm
	return p
}

// Validate checks that the applicable targets and tolerance are usable.
func (p Params) Validate() error {
	if p.ToleranceMm < 0 {
		return fmt.Errorf("tolerance must not be negative, got %.1f", p.ToleranceMm)
	}
	switch p.Component {
	case SlabWall:
		if p.TargetMm <= 0 {
			return fmt.Errorf("slab/wall target spacing must be positive, got %.1f", p.TargetMm)
		}
	case BeamColumn:
		if p.DenseTargetMm <= 0 || p.SparseTargetMm <= 0 {
			return fmt.Errorf("beam/column targets must be positive, got dense=%.1f sparse=%.1f",
				p.DenseTargetMm, p.SparseTargetMm)
		}
	default:
		return fmt.Errorf("unknown component type %d", p.Component)
	}
	return nil
}
