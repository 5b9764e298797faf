package rig

import (
	"math"

	"github.com/yunchaoli/cablerig/pkg/errors"
	"github.com/yunchaoli/cablerig/pkg/spatial"
)

// =============================================================================
// Layout - Vertical vs Radial
// =============================================================================

// LayoutKind identifies a link-pose layout strategy.
type LayoutKind string

// Layout kinds.
const (
	// LayoutVertical stacks a single assembly straight up from the payload
	// to a table. Parallel vertical assemblies are spaced laterally.
	LayoutVertical LayoutKind = "vertical"

	// LayoutRadial distributes assemblies evenly around the payload's
	// equator, each tilted from the horizontal plane by a shared elevation
	// angle and anchored to its own counterweight box.
	LayoutRadial LayoutKind = "radial"
)

// Layout is the resolved layout strategy for one build. It is decided once
// by ChooseLayout; each arm is a pure function from config to link poses,
// keeping the vertical/radial branch out of the builder.
type Layout struct {
	Kind      LayoutKind `json:"kind" bson:"kind"`
	Elevation float64    `json:"elevation,omitempty" bson:"elevation,omitempty"` // radians, radial only
}

// ChooseLayout resolves the layout from the assembly count: fewer than two
// assemblies take the vertical path, two or more the radial path.
func ChooseLayout(cfg *Config) Layout {
	if cfg.NumAssemblies < 2 {
		return Layout{Kind: LayoutVertical}
	}
	return Layout{Kind: LayoutRadial, Elevation: cfg.ElevationAngle}
}

// Axis returns the translation axis of the cable joints under this layout:
// the vertical stack slides along Z, radial assemblies along their local X.
func (l Layout) Axis() Axis {
	if l.Kind == LayoutRadial {
		return AxisX
	}
	return AxisZ
}

// IsRadial reports whether this is the radial layout.
func (l Layout) IsRadial() bool { return l.Kind == LayoutRadial }

// =============================================================================
// Link Poses
// =============================================================================

// LinkPose is the position and orientation of one rigid link, computed once
// at build time and immutable thereafter.
type LinkPose struct {
	Position    spatial.Vec3 `json:"position" bson:"position"`
	Orientation spatial.Quat `json:"orientation" bson:"orientation"`
}

// frame is the computed geometry of one assembly: everything the builder
// needs that depends on the assembly index.
type frame struct {
	links       []LinkPose
	orientation spatial.Quat // shared by every link of the assembly
	direction   spatial.Vec3 // unit vector from payload toward the anchor
	azimuth     float64      // radians, radial only
}

// computeFrame produces the link poses for assembly index i under the given
// layout. A non-positive link pitch is rejected before any pose is built.
func computeFrame(cfg *Config, layout Layout, i int) (frame, error) {
	pitch := cfg.LinkPitch()
	if pitch <= 0 || math.IsNaN(pitch) {
		return frame{}, errors.New(errors.ErrCodeInvalidPitch,
			"assembly %d: link pitch %v is not positive", i, pitch)
	}

	if layout.IsRadial() {
		return radialFrame(cfg, layout.Elevation, i), nil
	}
	return verticalFrame(cfg, i), nil
}

// verticalFrame stacks links along the vertical axis starting just above the
// payload's top face. Parallel assemblies are spaced along Y by the
// configured pitch, centered on the payload.
func verticalFrame(cfg *Config, i int) frame {
	pitch := cfg.LinkPitch()
	capsuleHalf := pitch / 2

	y := -float64(cfg.NumAssemblies/2)*cfg.Spacing + float64(i)*cfg.Spacing
	zStart := cfg.LoadHeight + cfg.PayloadHeight()/2 + capsuleHalf

	links := make([]LinkPose, cfg.NumLinks())
	for n := range links {
		links[n] = LinkPose{
			Position:    spatial.Vec3{Y: y, Z: zStart + float64(n)*pitch},
			Orientation: spatial.Identity(),
		}
	}

	return frame{
		links:       links,
		orientation: spatial.Identity(),
		direction:   spatial.Vec3{Z: 1},
	}
}

// radialFrame places links outward from the payload equator at azimuth
// 2πi/N, tilted by the elevation angle. The shared orientation composes the
// yaw about the vertical axis with the pitch about the yaw-rotated lateral
// axis; yaw first, pitch second, or the tilt axis is wrong for every
// assembly not at azimuth zero.
func radialFrame(cfg *Config, elevation float64, i int) frame {
	pitch := cfg.LinkPitch()
	capsuleHalf := pitch / 2

	azimuth := 2 * math.Pi * float64(i) / float64(cfg.NumAssemblies)
	cosA, sinA := math.Cos(azimuth), math.Sin(azimuth)
	cosE, sinE := math.Cos(elevation), math.Sin(elevation)

	direction := spatial.Vec3{X: cosA * cosE, Y: sinA * cosE, Z: sinE}

	yaw := spatial.FromAxisAngle(spatial.Vec3{Z: 1}, azimuth)
	tilt := spatial.FromAxisAngle(spatial.Vec3{Y: -1}, elevation)
	orientation := spatial.Mul(yaw, tilt)

	start := spatial.Vec3{
		X: (cfg.PayloadRadius + capsuleHalf*cosE) * cosA,
		Y: (cfg.PayloadRadius + capsuleHalf*cosE) * sinA,
		Z: cfg.LoadHeight + capsuleHalf*sinE,
	}

	links := make([]LinkPose, cfg.NumLinks())
	for n := range links {
		links[n] = LinkPose{
			Position:    start.Add(direction.Scale(float64(n) * pitch)),
			Orientation: orientation,
		}
	}

	return frame{
		links:       links,
		orientation: orientation,
		direction:   direction,
		azimuth:     azimuth,
	}
}
