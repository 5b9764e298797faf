package rig

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/yunchaoli/cablerig/pkg/errors"
	"github.com/yunchaoli/cablerig/pkg/spatial"
)

// Stage default values.
const (
	DefaultMetersPerUnit = 0.01
)

// Stage describes the authoring target the assemblies are built for: which
// world axis points up and how large one stage unit is in meters. Builder
// output stays in the canonical Z-up frame; the stage's orientation is
// applied when assemblies are written out.
type Stage struct {
	UpAxis        spatial.UpAxis `toml:"up_axis" json:"up_axis" bson:"up_axis"`
	MetersPerUnit float64        `toml:"meters_per_unit" json:"meters_per_unit" bson:"meters_per_unit"`
}

// ValidateAndSetDefaults fills zero values and rejects unknown axes.
func (s *Stage) ValidateAndSetDefaults() error {
	if s.UpAxis == "" {
		s.UpAxis = spatial.UpZ
	}
	if !s.UpAxis.Valid() {
		return errors.New(errors.ErrCodeInvalidAxis, "unknown up axis %q", s.UpAxis)
	}
	if s.MetersPerUnit == 0 {
		s.MetersPerUnit = DefaultMetersPerUnit
	}
	if s.MetersPerUnit < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "meters_per_unit must be positive, got %g", s.MetersPerUnit)
	}
	return nil
}

// ScaleFactor returns the canonical-to-stage scale derived from the
// stage's meters-per-unit.
func (s Stage) ScaleFactor() float64 {
	return spatial.ScaleFactor(s.MetersPerUnit)
}

// Orientation returns the axis permutation for writing canonical
// coordinates into the stage's frame.
func (s Stage) Orientation() (spatial.Orientation, error) {
	return spatial.NewOrientation(s.UpAxis, s.ScaleFactor())
}

// BuildAssemblies validates the configuration once and builds every
// assembly concurrently, one goroutine per cable. Results are ordered by
// assembly index regardless of completion order; the first error cancels
// the remaining builds.
func BuildAssemblies(ctx context.Context, cfg *Config, stage Stage) ([]Assembly, error) {
	b, err := NewBuilder(cfg, stage)
	if err != nil {
		return nil, err
	}

	out := make([]Assembly, cfg.NumAssemblies)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.NumAssemblies; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, err := b.Build(i)
			if err != nil {
				return err
			}
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
