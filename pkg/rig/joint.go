package rig

import (
	"github.com/yunchaoli/cablerig/pkg/errors"
)

// =============================================================================
// Constants - Joint Archetypes and Degrees of Freedom
// =============================================================================

// JointKind identifies a joint archetype.
type JointKind string

// Joint archetypes.
const (
	// JointCable is the compliant sliding joint used between chain links:
	// one bounded, spring-driven translation DOF along the cable axis, the
	// two lateral translations locked, all rotations free so the chain
	// bends like a cable.
	JointCable JointKind = "cable"

	// JointFixed locks all six DOFs.
	JointFixed JointKind = "fixed"

	// JointUniversal locks all translations and the twist rotation,
	// bounding the two swing rotations by a shared cone angle. Used where
	// a chain end meets a rigid anchor.
	JointUniversal JointKind = "universal"
)

// Axis selects the translation axis of a cable assembly.
type Axis string

// Translation axes.
const (
	AxisX Axis = "X"
	AxisY Axis = "Y"
	AxisZ Axis = "Z"
)

// Valid reports whether a is a supported translation axis.
func (a Axis) Valid() bool {
	return a == AxisX || a == AxisY || a == AxisZ
}

// DOF names one of the six degrees of freedom of a joint.
type DOF string

// Degrees of freedom, named after the host convention.
const (
	DOFTransX DOF = "transX"
	DOFTransY DOF = "transY"
	DOFTransZ DOF = "transZ"
	DOFRotX   DOF = "rotX"
	DOFRotY   DOF = "rotY"
	DOFRotZ   DOF = "rotZ"
)

// slideDOF returns the translation DOF along the given axis.
func slideDOF(a Axis) DOF {
	switch a {
	case AxisX:
		return DOFTransX
	case AxisY:
		return DOFTransY
	default:
		return DOFTransZ
	}
}

// twistDOF returns the rotation DOF about the given axis.
func twistDOF(a Axis) DOF {
	switch a {
	case AxisX:
		return DOFRotX
	case AxisY:
		return DOFRotY
	default:
		return DOFRotZ
	}
}

// lateralDOFs returns the two translation DOFs orthogonal to the axis.
func lateralDOFs(a Axis) [2]DOF {
	switch a {
	case AxisX:
		return [2]DOF{DOFTransY, DOFTransZ}
	case AxisY:
		return [2]DOF{DOFTransX, DOFTransZ}
	default:
		return [2]DOF{DOFTransX, DOFTransY}
	}
}

// swingDOFs returns the two rotation DOFs orthogonal to the axis.
func swingDOFs(a Axis) [2]DOF {
	switch a {
	case AxisX:
		return [2]DOF{DOFRotY, DOFRotZ}
	case AxisY:
		return [2]DOF{DOFRotX, DOFRotZ}
	default:
		return [2]DOF{DOFRotX, DOFRotY}
	}
}

// rotationDOFs are all three rotational DOFs.
var rotationDOFs = [3]DOF{DOFRotX, DOFRotY, DOFRotZ}

// =============================================================================
// Range, Limit and Drive Specs
// =============================================================================

// Range is a motion range for one DOF. Two degenerate encodings are
// meaningful and deliberately kept distinct on the wire:
//
//   - zero width (Low == High): the DOF is pinned at that value
//   - inverted (Low > High): the host-engine idiom for "no motion
//     permitted", used by the fixed joint
//
// Consumers targeting a physics backend that treats the two encodings
// identically should map both to that backend's fully-locked primitive.
type Range struct {
	Low  float64 `json:"low" bson:"low"`
	High float64 `json:"high" bson:"high"`
}

// Inverted reports whether the range uses the inverted locked idiom.
func (r Range) Inverted() bool { return r.Low > r.High }

// ZeroWidth reports whether the range pins the DOF at a single value.
func (r Range) ZeroWidth() bool { return r.Low == r.High }

// LockedRange returns the inverted range encoding "no motion permitted".
func LockedRange() Range { return Range{Low: 1, High: -1} }

// PinnedRange returns the zero-width range pinning a DOF at zero.
func PinnedRange() Range { return Range{} }

// LimitSpec bounds one DOF, optionally with a springback at the boundary.
type LimitSpec struct {
	Range           Range   `json:"range" bson:"range"`
	Stiffness       float64 `json:"stiffness,omitempty" bson:"stiffness,omitempty"`
	Damping         float64 `json:"damping,omitempty" bson:"damping,omitempty"`
	ContactDistance float64 `json:"contact_distance,omitempty" bson:"contact_distance,omitempty"`
}

// DriveSpec is a force-mode spring-damper driving one DOF toward its target.
type DriveSpec struct {
	Type      string  `json:"type" bson:"type"` // always "force"
	Stiffness float64 `json:"stiffness" bson:"stiffness"`
	Damping   float64 `json:"damping" bson:"damping"`
	MaxForce  float64 `json:"max_force" bson:"max_force"`
}

// DOFSpec configures one degree of freedom. A nil Limit means the DOF is
// explicitly unlimited (free); an absent map entry means the archetype does
// not constrain that DOF at all.
type DOFSpec struct {
	Limit *LimitSpec `json:"limit,omitempty" bson:"limit,omitempty"`
	Drive *DriveSpec `json:"drive,omitempty" bson:"drive,omitempty"`
}

// Locked reports whether the DOF permits no motion, under either the
// zero-width or the inverted-range encoding.
func (d DOFSpec) Locked() bool {
	if d.Limit == nil {
		return false
	}
	return d.Limit.Range.ZeroWidth() || d.Limit.Range.Inverted()
}

// Free reports whether the DOF is explicitly unlimited.
func (d DOFSpec) Free() bool { return d.Limit == nil && d.Drive == nil }

// =============================================================================
// CablePolicy
// =============================================================================

// CablePolicy is the numeric policy of the compliant slide DOF. The limit
// springback must be stiffer than the drive: once the joint approaches its
// range boundary the limit, not the drive, has to govern, or the cable turns
// globally soft and sags.
type CablePolicy struct {
	DriveStiffness  float64 `json:"drive_stiffness" bson:"drive_stiffness"`
	DriveDamping    float64 `json:"drive_damping" bson:"drive_damping"`
	LimitStiffness  float64 `json:"limit_stiffness" bson:"limit_stiffness"`
	LimitDamping    float64 `json:"limit_damping" bson:"limit_damping"`
	MaxForce        float64 `json:"max_force" bson:"max_force"`
	SlideRange      Range   `json:"slide_range" bson:"slide_range"`
	ContactDistance float64 `json:"contact_distance" bson:"contact_distance"`
}

// Validate checks the policy for physical soundness.
func (p CablePolicy) Validate() error {
	if p.DriveStiffness <= 0 {
		return errors.New(errors.ErrCodeInvalidStiffness, "drive stiffness must be positive, got %v", p.DriveStiffness)
	}
	if p.DriveDamping <= 0 {
		return errors.New(errors.ErrCodeInvalidStiffness, "drive damping must be positive, got %v", p.DriveDamping)
	}
	if p.LimitStiffness <= p.DriveStiffness {
		return errors.New(errors.ErrCodeInvalidStiffness,
			"limit stiffness %v must exceed drive stiffness %v", p.LimitStiffness, p.DriveStiffness)
	}
	if p.SlideRange.Low >= p.SlideRange.High {
		return errors.New(errors.ErrCodeInvalidRange,
			"slide range [%v, %v] is not a valid compliant range", p.SlideRange.Low, p.SlideRange.High)
	}
	if p.MaxForce <= 0 {
		return errors.New(errors.ErrCodeInvalidStiffness, "max drive force must be positive, got %v", p.MaxForce)
	}
	return nil
}

// =============================================================================
// JointArchetype
// =============================================================================

// JointArchetype is a reusable joint-configuration template. One archetype
// instance is shared by reference across every joint of a group - all
// interior chain joints of an assembly are physically identical, so the
// archetype is stored once and referenced by key, never duplicated.
type JointArchetype struct {
	Kind JointKind       `json:"kind" bson:"kind"`
	Axis Axis            `json:"axis,omitempty" bson:"axis,omitempty"`
	DOFs map[DOF]DOFSpec `json:"dofs" bson:"dofs"`
}

// NewCableArchetype builds the compliant sliding joint for the given
// translation axis: the slide DOF carries the bounded, spring-driven range
// of the policy, the lateral translations are pinned, and all rotations are
// declared free.
func NewCableArchetype(axis Axis, policy CablePolicy) (JointArchetype, error) {
	if !axis.Valid() {
		return JointArchetype{}, errors.New(errors.ErrCodeInvalidAxis, "unknown translation axis %q", axis)
	}
	if err := policy.Validate(); err != nil {
		return JointArchetype{}, err
	}

	dofs := make(map[DOF]DOFSpec, 6)
	dofs[slideDOF(axis)] = DOFSpec{
		Limit: &LimitSpec{
			Range:           policy.SlideRange,
			Stiffness:       policy.LimitStiffness,
			Damping:         policy.LimitDamping,
			ContactDistance: policy.ContactDistance,
		},
		Drive: &DriveSpec{
			Type:      "force",
			Stiffness: policy.DriveStiffness,
			Damping:   policy.DriveDamping,
			MaxForce:  policy.MaxForce,
		},
	}
	for _, d := range lateralDOFs(axis) {
		dofs[d] = DOFSpec{Limit: &LimitSpec{Range: PinnedRange()}}
	}
	for _, d := range rotationDOFs {
		dofs[d] = DOFSpec{} // explicitly free
	}

	return JointArchetype{Kind: JointCable, Axis: axis, DOFs: dofs}, nil
}

// NewFixedArchetype builds the joint locking all six DOFs via the inverted
// range idiom.
func NewFixedArchetype() JointArchetype {
	dofs := make(map[DOF]DOFSpec, 6)
	for _, d := range []DOF{DOFTransX, DOFTransY, DOFTransZ, DOFRotX, DOFRotY, DOFRotZ} {
		dofs[d] = DOFSpec{Limit: &LimitSpec{Range: LockedRange()}}
	}
	return JointArchetype{Kind: JointFixed, DOFs: dofs}
}

// NewUniversalArchetype builds the anchor joint for the given axis: all
// three translations and the twist rotation pinned, the two swing rotations
// bounded by ±coneAngle degrees.
func NewUniversalArchetype(axis Axis, coneAngle float64) (JointArchetype, error) {
	if !axis.Valid() {
		return JointArchetype{}, errors.New(errors.ErrCodeInvalidAxis, "unknown translation axis %q", axis)
	}
	if coneAngle <= 0 || coneAngle > 180 {
		return JointArchetype{}, errors.New(errors.ErrCodeInvalidRange,
			"cone angle must be in (0, 180] degrees, got %v", coneAngle)
	}

	dofs := make(map[DOF]DOFSpec, 6)
	for _, d := range []DOF{DOFTransX, DOFTransY, DOFTransZ, twistDOF(axis)} {
		dofs[d] = DOFSpec{Limit: &LimitSpec{Range: PinnedRange()}}
	}
	for _, d := range swingDOFs(axis) {
		dofs[d] = DOFSpec{Limit: &LimitSpec{Range: Range{Low: -coneAngle, High: coneAngle}}}
	}

	return JointArchetype{Kind: JointUniversal, Axis: axis, DOFs: dofs}, nil
}

// Validate checks the archetype's ranges. An inverted range is only legal on
// the fixed joint, where it is the intentional locked idiom; anywhere else
// it signals a configuration error.
func (a JointArchetype) Validate() error {
	for dof, spec := range a.DOFs {
		if spec.Limit == nil {
			continue
		}
		r := spec.Limit.Range
		if r.Inverted() && a.Kind != JointFixed {
			return errors.New(errors.ErrCodeInvalidRange,
				"%s joint: DOF %s has inverted range [%v, %v]", a.Kind, dof, r.Low, r.High)
		}
		if spec.Drive != nil && r.Low >= r.High {
			return errors.New(errors.ErrCodeInvalidRange,
				"%s joint: driven DOF %s has collapsed range [%v, %v]", a.Kind, dof, r.Low, r.High)
		}
	}
	return nil
}
