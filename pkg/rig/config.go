package rig

import (
	"math"

	"github.com/yunchaoli/cablerig/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Worker
// =============================================================================

// Gravity is the gravitational acceleration used for force caps (m/s²).
const Gravity = 9.81

const (
	// DefaultLinkHalfLength is the capsule cylinder half-length of one link.
	DefaultLinkHalfLength = 0.06

	// DefaultLinkRadius is the capsule radius of one link.
	DefaultLinkRadius = 0.02

	// DefaultLinkMass is the mass of one link.
	DefaultLinkMass = 0.008

	// DefaultPayloadRadius is the payload cylinder radius.
	DefaultPayloadRadius = 0.24

	// DefaultLoadHeight is the initial height of the payload center.
	DefaultLoadHeight = 2.0

	// DefaultSpacing is the lateral pitch between parallel vertical cables.
	DefaultSpacing = 15.0

	// DefaultDriveStiffness is the spring stiffness of the sliding drive.
	DefaultDriveStiffness = 1e5

	// DefaultDriveDamping is the damper coefficient of the sliding drive.
	DefaultDriveDamping = 1e3

	// DefaultLimitStiffnessFactor scales drive stiffness into limit
	// stiffness. The limit must be materially stiffer than the drive so the
	// limit, not the drive, governs behavior at the range boundary.
	DefaultLimitStiffnessFactor = 11.0

	// DefaultConeAngleLimit bounds the two swing DOFs of the universal
	// joint, in degrees.
	DefaultConeAngleLimit = 160.0

	// DefaultMaxForceFactor scales payload weight into the drive force cap.
	DefaultMaxForceFactor = 10.0

	// DefaultContactDistance is the limit activation distance of the
	// compliant slide.
	DefaultContactDistance = 1e-4

	// DefaultTableThickness is the table-top thickness in authored units.
	DefaultTableThickness = 6.0

	// DefaultBoxSize is the counterweight box edge length in authored units.
	DefaultBoxSize = 12.0
)

// Default slide range of the compliant cable DOF: a compressive margin below
// zero and a hair of extension above, approximating inextensibility.
const (
	DefaultSlideRangeLow  = -1.0
	DefaultSlideRangeHigh = 0.01
)

// =============================================================================
// Config
// =============================================================================

// Config holds all parameters of one build request. The zero value is not
// usable directly: call ValidateAndSetDefaults (BuildAssemblies does) to
// apply defaults and reject degenerate geometry before anything is built.
//
// Lengths are in canonical stage units, angles in radians unless a field
// says otherwise.
type Config struct {
	// Assembly topology
	NumAssemblies  int     `toml:"num_assemblies" json:"num_assemblies"`
	AssemblyLength float64 `toml:"assembly_length" json:"assembly_length"`
	ElevationAngle float64 `toml:"elevation_angle" json:"elevation_angle,omitempty"`

	// Link geometry
	LinkHalfLength float64 `toml:"link_half_length" json:"link_half_length,omitempty"`
	LinkRadius     float64 `toml:"link_radius" json:"link_radius,omitempty"`
	LinkMass       float64 `toml:"link_mass" json:"link_mass,omitempty"`

	// Payload
	PayloadMass   float64 `toml:"payload_mass" json:"payload_mass"`
	PayloadRadius float64 `toml:"payload_radius" json:"payload_radius,omitempty"`
	LoadHeight    float64 `toml:"load_height" json:"load_height,omitempty"`

	// Vertical layout: lateral pitch between parallel cables
	Spacing float64 `toml:"spacing" json:"spacing,omitempty"`

	// Joint numeric policy
	DriveStiffness       float64 `toml:"drive_stiffness" json:"drive_stiffness,omitempty"`
	DriveDamping         float64 `toml:"drive_damping" json:"drive_damping,omitempty"`
	LimitStiffnessFactor float64 `toml:"limit_stiffness_factor" json:"limit_stiffness_factor,omitempty"`
	ConeAngleLimit       float64 `toml:"cone_angle_limit" json:"cone_angle_limit,omitempty"` // degrees
	SlideRangeLow        float64 `toml:"slide_range_low" json:"slide_range_low,omitempty"`
	SlideRangeHigh       float64 `toml:"slide_range_high" json:"slide_range_high,omitempty"`

	// Structural anchors
	TableThickness float64 `toml:"table_thickness" json:"table_thickness,omitempty"`
	BoxSize        float64 `toml:"box_size" json:"box_size,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `toml:"-" json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once. All configuration errors carry an INVALID_* code and
// name the offending parameter.
func (c *Config) ValidateAndSetDefaults() error {
	if c.validated {
		return nil
	}

	c.setDefaults()

	if c.NumAssemblies < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "num_assemblies must be at least 1, got %d", c.NumAssemblies)
	}
	for _, p := range []struct {
		name  string
		value float64
	}{
		{"assembly_length", c.AssemblyLength},
		{"link_half_length", c.LinkHalfLength},
		{"link_radius", c.LinkRadius},
		{"link_mass", c.LinkMass},
		{"payload_mass", c.PayloadMass},
		{"payload_radius", c.PayloadRadius},
		{"load_height", c.LoadHeight},
		{"spacing", c.Spacing},
		{"table_thickness", c.TableThickness},
		{"box_size", c.BoxSize},
	} {
		if err := errors.ValidatePositive(p.name, p.value); err != nil {
			return err
		}
	}

	if err := errors.ValidatePositive("drive_stiffness", c.DriveStiffness); err != nil {
		return errors.New(errors.ErrCodeInvalidStiffness, "%s", errors.UserMessage(err))
	}
	if err := errors.ValidatePositive("drive_damping", c.DriveDamping); err != nil {
		return errors.New(errors.ErrCodeInvalidStiffness, "%s", errors.UserMessage(err))
	}
	if c.LimitStiffnessFactor <= 1 {
		return errors.New(errors.ErrCodeInvalidStiffness,
			"limit_stiffness_factor must exceed 1 so the limit is stiffer than the drive, got %v", c.LimitStiffnessFactor)
	}
	if c.ConeAngleLimit <= 0 || c.ConeAngleLimit > 180 {
		return errors.New(errors.ErrCodeInvalidConfig, "cone_angle_limit must be in (0, 180] degrees, got %v", c.ConeAngleLimit)
	}
	if c.SlideRangeLow >= c.SlideRangeHigh {
		return errors.New(errors.ErrCodeInvalidRange,
			"slide range low %v must be below high %v", c.SlideRangeLow, c.SlideRangeHigh)
	}
	if c.ElevationAngle < 0 || c.ElevationAngle > math.Pi/2 {
		return errors.New(errors.ErrCodeInvalidConfig,
			"elevation_angle must be in [0, π/2] radians, got %v", c.ElevationAngle)
	}

	pitch := c.LinkPitch()
	if pitch <= 0 || math.IsNaN(pitch) {
		return errors.New(errors.ErrCodeInvalidPitch, "derived link pitch %v is not positive", pitch)
	}
	if c.NumLinks() < 1 {
		return errors.New(errors.ErrCodeInvalidPitch,
			"assembly_length %v holds no whole link at pitch %v", c.AssemblyLength, pitch)
	}

	c.validated = true
	return nil
}

func (c *Config) setDefaults() {
	if c.LinkHalfLength == 0 {
		c.LinkHalfLength = DefaultLinkHalfLength
	}
	if c.LinkRadius == 0 {
		c.LinkRadius = DefaultLinkRadius
	}
	if c.LinkMass == 0 {
		c.LinkMass = DefaultLinkMass
	}
	if c.PayloadRadius == 0 {
		c.PayloadRadius = DefaultPayloadRadius
	}
	if c.LoadHeight == 0 {
		c.LoadHeight = DefaultLoadHeight
	}
	if c.Spacing == 0 {
		c.Spacing = DefaultSpacing
	}
	if c.DriveStiffness == 0 {
		c.DriveStiffness = DefaultDriveStiffness
	}
	if c.DriveDamping == 0 {
		c.DriveDamping = DefaultDriveDamping
	}
	if c.LimitStiffnessFactor == 0 {
		c.LimitStiffnessFactor = DefaultLimitStiffnessFactor
	}
	if c.ConeAngleLimit == 0 {
		c.ConeAngleLimit = DefaultConeAngleLimit
	}
	if c.SlideRangeLow == 0 && c.SlideRangeHigh == 0 {
		c.SlideRangeLow = DefaultSlideRangeLow
		c.SlideRangeHigh = DefaultSlideRangeHigh
	}
	if c.TableThickness == 0 {
		c.TableThickness = DefaultTableThickness
	}
	if c.BoxSize == 0 {
		c.BoxSize = DefaultBoxSize
	}
}

// =============================================================================
// Derived Values
// =============================================================================

// LinkPitch returns the center-to-center distance between consecutive links:
// the capsule cylinder half-length plus one radius per capsule end.
func (c *Config) LinkPitch() float64 {
	return c.LinkHalfLength + 2*c.LinkRadius
}

// NumLinks returns the number of whole links that fit the assembly length.
func (c *Config) NumLinks() int {
	return int(math.Floor(c.AssemblyLength / c.LinkPitch()))
}

// PayloadHeight returns the payload cylinder height.
func (c *Config) PayloadHeight() float64 {
	return c.PayloadRadius / 4
}

// LimitStiffness returns the limit springback stiffness of the compliant
// slide. It always exceeds the drive stiffness for a valid config.
func (c *Config) LimitStiffness() float64 {
	return c.LimitStiffnessFactor * c.DriveStiffness
}

// MaxDriveForce returns the drive force cap, scaled from payload weight.
func (c *Config) MaxDriveForce() float64 {
	return DefaultMaxForceFactor * c.PayloadMass * Gravity
}

// CablePolicy returns the numeric policy of the compliant cable joint.
func (c *Config) CablePolicy() CablePolicy {
	return CablePolicy{
		DriveStiffness:  c.DriveStiffness,
		DriveDamping:    c.DriveDamping,
		LimitStiffness:  c.LimitStiffness(),
		LimitDamping:    c.DriveDamping,
		MaxForce:        c.MaxDriveForce(),
		SlideRange:      Range{Low: c.SlideRangeLow, High: c.SlideRangeHigh},
		ContactDistance: DefaultContactDistance,
	}
}
