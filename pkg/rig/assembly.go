package rig

import (
	"math"

	"github.com/yunchaoli/cablerig/pkg/errors"
	"github.com/yunchaoli/cablerig/pkg/spatial"
)

// Authored table-top surface dimensions (canonical units before scaling).
const (
	tableSurfaceWidth = 200.0
	tableSurfaceDepth = 100.0
)

// =============================================================================
// Body References and Joint Groups
// =============================================================================

// BodyRef names the body collection a joint group's index arrays point
// into. A joint group references its collection by position, never owning
// it; the payload and structural anchors are external, pre-existing bodies
// the builder only computes attachment frames against.
type BodyRef string

// Body collections.
const (
	BodyLinks   BodyRef = "links"
	BodyPayload BodyRef = "payload"
	BodyAnchor  BodyRef = "anchor"
)

// JointGroup is a batch of joints sharing one archetype. The six slices are
// parallel arrays of equal length: entry i connects body collection Body0 at
// Body0Indices[i] to Body1 at Body1Indices[i], with the local anchor frames
// expressed in the respective body's own space.
type JointGroup struct {
	Name      string  `json:"name" bson:"name"`
	Archetype string  `json:"archetype" bson:"archetype"` // key into Assembly.Archetypes
	Body0     BodyRef `json:"body0" bson:"body0"`
	Body1     BodyRef `json:"body1" bson:"body1"`

	Body0Indices []int          `json:"body0_indices" bson:"body0_indices"`
	Body1Indices []int          `json:"body1_indices" bson:"body1_indices"`
	LocalPos0    []spatial.Vec3 `json:"local_pos0" bson:"local_pos0"`
	LocalPos1    []spatial.Vec3 `json:"local_pos1" bson:"local_pos1"`
	LocalRot0    []spatial.Quat `json:"local_rot0" bson:"local_rot0"`
	LocalRot1    []spatial.Quat `json:"local_rot1" bson:"local_rot1"`
}

// Len returns the number of joints in the group.
func (g *JointGroup) Len() int { return len(g.Body0Indices) }

// add appends one joint to the group's parallel arrays.
func (g *JointGroup) add(i0, i1 int, pos0, pos1 spatial.Vec3, rot0, rot1 spatial.Quat) {
	g.Body0Indices = append(g.Body0Indices, i0)
	g.Body1Indices = append(g.Body1Indices, i1)
	g.LocalPos0 = append(g.LocalPos0, pos0)
	g.LocalPos1 = append(g.LocalPos1, pos1)
	g.LocalRot0 = append(g.LocalRot0, rot0)
	g.LocalRot1 = append(g.LocalRot1, rot1)
}

// =============================================================================
// Descriptor Types
// =============================================================================

// CapsuleSpec is the single link-shape prototype of an assembly. Every link
// of every assembly reuses this one shape by index.
type CapsuleSpec struct {
	HalfLength float64 `json:"half_length" bson:"half_length"`
	Radius     float64 `json:"radius" bson:"radius"`
	Axis       Axis    `json:"axis" bson:"axis"`
	Mass       float64 `json:"mass" bson:"mass"`
}

// AnchorKind identifies a structural anchor flavor.
type AnchorKind string

// Structural anchor kinds.
const (
	AnchorTable AnchorKind = "table"
	AnchorBox   AnchorKind = "box"
)

// AnchorSpec is the pose and size of the structural anchor a cable's far
// end attaches to. Dimensions are authored units; the attachment frame
// accounts for the anchor's half-thickness along its attachment face.
type AnchorSpec struct {
	Kind        AnchorKind   `json:"kind" bson:"kind"`
	Position    spatial.Vec3 `json:"position" bson:"position"`
	Orientation spatial.Quat `json:"orientation" bson:"orientation"`
	Dimensions  spatial.Vec3 `json:"dimensions" bson:"dimensions"`
}

// Assembly is the emitted unit for one cable: ordered link poses, the
// capsule prototype, the archetype catalog, and the three joint groups
// (interior chain, payload attachment, structure attachment). Body indices
// in every group index into this assembly's own link collection, never
// across assemblies.
type Assembly struct {
	Index     int          `json:"index" bson:"index"`
	Azimuth   float64      `json:"azimuth,omitempty" bson:"azimuth,omitempty"`
	Direction spatial.Vec3 `json:"direction" bson:"direction"`

	Capsule CapsuleSpec `json:"capsule" bson:"capsule"`
	Links   []LinkPose  `json:"links" bson:"links"`

	Archetypes map[string]JointArchetype `json:"archetypes" bson:"archetypes"`

	Chain               JointGroup `json:"chain" bson:"chain"`
	PayloadAttachment   JointGroup `json:"payload_attachment" bson:"payload_attachment"`
	StructureAttachment JointGroup `json:"structure_attachment" bson:"structure_attachment"`

	Anchor AnchorSpec `json:"anchor" bson:"anchor"`
}

// NumLinks returns the link count of the assembly.
func (a *Assembly) NumLinks() int { return len(a.Links) }

// Groups returns the assembly's joint groups in emission order.
func (a *Assembly) Groups() []*JointGroup {
	return []*JointGroup{&a.Chain, &a.PayloadAttachment, &a.StructureAttachment}
}

// Archetype catalog keys.
const (
	ArchetypeChain     = "chain"
	ArchetypePayload   = "payload"
	ArchetypeStructure = "structure"
)

// =============================================================================
// Builder
// =============================================================================

// Builder constructs assemblies for one validated configuration. It holds
// only immutable inputs, so one Builder may serve concurrent Build calls
// for different assembly indices.
type Builder struct {
	cfg    *Config
	layout Layout
	scale  float64
}

// NewBuilder creates a builder for the configuration and stage. The config
// is validated (and defaulted) here; a degenerate geometry fails fast
// before any assembly is built.
func NewBuilder(cfg *Config, stage Stage) (*Builder, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := stage.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Builder{
		cfg:    cfg,
		layout: ChooseLayout(cfg),
		scale:  stage.ScaleFactor(),
	}, nil
}

// Layout returns the layout the builder resolved from the config.
func (b *Builder) Layout() Layout { return b.layout }

// Build constructs the descriptor for assembly index i.
func (b *Builder) Build(i int) (Assembly, error) {
	if i < 0 || i >= b.cfg.NumAssemblies {
		return Assembly{}, errors.New(errors.ErrCodeInternalIndex,
			"assembly index %d outside [0, %d)", i, b.cfg.NumAssemblies)
	}

	f, err := computeFrame(b.cfg, b.layout, i)
	if err != nil {
		return Assembly{}, err
	}

	axis := b.layout.Axis()

	chainArch, err := NewCableArchetype(axis, b.cfg.CablePolicy())
	if err != nil {
		return Assembly{}, errors.Wrap(errors.GetCode(err), err, "assembly %d: chain joint", i)
	}
	payloadArch, err := NewCableArchetype(axis, b.cfg.CablePolicy())
	if err != nil {
		return Assembly{}, errors.Wrap(errors.GetCode(err), err, "assembly %d: payload joint", i)
	}
	structureArch, err := NewUniversalArchetype(axis, b.cfg.ConeAngleLimit)
	if err != nil {
		return Assembly{}, errors.Wrap(errors.GetCode(err), err, "assembly %d: structure joint", i)
	}

	a := Assembly{
		Index:     i,
		Azimuth:   f.azimuth,
		Direction: f.direction,
		Capsule: CapsuleSpec{
			HalfLength: b.cfg.LinkHalfLength,
			Radius:     b.cfg.LinkRadius,
			Axis:       axis,
			Mass:       b.cfg.LinkMass,
		},
		Links: f.links,
		Archetypes: map[string]JointArchetype{
			ArchetypeChain:     chainArch,
			ArchetypePayload:   payloadArch,
			ArchetypeStructure: structureArch,
		},
		Chain:               b.chainGroup(f),
		PayloadAttachment:   b.payloadGroup(f),
		StructureAttachment: b.structureGroup(f),
		Anchor:              b.anchorSpec(f),
	}

	if err := a.validateIndexes(); err != nil {
		return Assembly{}, errors.Wrap(errors.ErrCodeInternalIndex, err, "assembly %d", i)
	}
	return a, nil
}

// axisVec returns the unit vector of the slide axis.
func axisVec(a Axis) spatial.Vec3 {
	switch a {
	case AxisX:
		return spatial.Vec3{X: 1}
	case AxisY:
		return spatial.Vec3{Y: 1}
	default:
		return spatial.Vec3{Z: 1}
	}
}

// chainGroup connects link n to link n+1 for n in [0, numLinks-1). Every
// interior joint carries identical local anchors: half a link pitch along
// the slide axis on either side, identity relative orientation.
func (b *Builder) chainGroup(f frame) JointGroup {
	half := axisVec(b.layout.Axis()).Scale(b.cfg.LinkPitch() / 2)

	g := JointGroup{
		Name:      "chain",
		Archetype: ArchetypeChain,
		Body0:     BodyLinks,
		Body1:     BodyLinks,
	}
	for n := 0; n < len(f.links)-1; n++ {
		g.add(n, n+1, half, half.Scale(-1), spatial.Identity(), spatial.Identity())
	}
	return g
}

// payloadGroup attaches the payload to the chain's first link. In the
// radial layout the payload keeps its identity orientation, so the anchor
// position walks the payload rim by azimuth and the anchor orientation
// itself carries the assembly rotation - the rotation cannot be offloaded
// onto the payload body.
func (b *Builder) payloadGroup(f frame) JointGroup {
	capsuleHalf := b.cfg.LinkPitch() / 2

	g := JointGroup{
		Name:      "payload",
		Archetype: ArchetypePayload,
		Body0:     BodyPayload,
		Body1:     BodyLinks,
	}

	if b.layout.IsRadial() {
		// The rim point depends on azimuth only; at full elevation the
		// cable still leaves the payload's side, not its top.
		rim := spatial.Vec3{
			X: b.cfg.PayloadRadius * math.Cos(f.azimuth),
			Y: b.cfg.PayloadRadius * math.Sin(f.azimuth),
		}
		g.add(0, 0,
			rim, spatial.Vec3{X: -capsuleHalf},
			f.orientation, spatial.Identity())
		return g
	}

	g.add(0, 0,
		spatial.Vec3{Z: b.cfg.PayloadHeight() / 2}, spatial.Vec3{Z: -capsuleHalf},
		spatial.Identity(), spatial.Identity())
	return g
}

// structureGroup attaches the chain's last link to the structural anchor.
// The anchor-side local position accounts for the anchor's half-thickness
// along its attachment face.
func (b *Builder) structureGroup(f frame) JointGroup {
	capsuleHalf := b.cfg.LinkPitch() / 2
	last := len(f.links) - 1

	g := JointGroup{
		Name:      "structure",
		Archetype: ArchetypeStructure,
		Body0:     BodyLinks,
		Body1:     BodyAnchor,
	}

	if b.layout.IsRadial() {
		g.add(last, 0,
			spatial.Vec3{X: capsuleHalf}, spatial.Vec3{X: -b.cfg.BoxSize * b.scale / 2},
			spatial.Identity(), spatial.Identity())
		return g
	}

	g.add(last, 0,
		spatial.Vec3{Z: capsuleHalf}, spatial.Vec3{Z: -b.cfg.TableThickness * b.scale / 2},
		spatial.Identity(), spatial.Identity())
	return g
}

// anchorSpec computes the structural anchor's pose and size: the shared
// table top for the vertical layout, a dedicated counterweight box placed
// at the chain's far end and oriented along the assembly for the radial
// layout.
func (b *Builder) anchorSpec(f frame) AnchorSpec {
	if b.layout.IsRadial() {
		capsuleHalf := b.cfg.LinkPitch() / 2
		end := f.links[len(f.links)-1].Position
		offset := capsuleHalf + b.cfg.BoxSize*b.scale/2
		return AnchorSpec{
			Kind:        AnchorBox,
			Position:    end.Add(f.direction.Scale(offset)),
			Orientation: f.orientation,
			Dimensions:  spatial.Vec3{X: b.cfg.BoxSize, Y: b.cfg.BoxSize, Z: b.cfg.BoxSize},
		}
	}

	height := b.TableHeight()
	return AnchorSpec{
		Kind:        AnchorTable,
		Position:    spatial.Vec3{Z: height - b.cfg.TableThickness*b.scale/2},
		Orientation: spatial.Identity(),
		Dimensions:  spatial.Vec3{X: tableSurfaceWidth, Y: tableSurfaceDepth, Z: b.cfg.TableThickness},
	}
}

// TableHeight returns the vertical-layout table height: payload top plus
// cable length plus the scaled table thickness.
func (b *Builder) TableHeight() float64 {
	return b.cfg.LoadHeight + b.cfg.PayloadHeight()/2 + b.cfg.AssemblyLength + b.cfg.TableThickness*b.scale
}

// validateIndexes verifies the builder's own output: parallel array lengths
// match and every link index is inside the assembly's link range. A failure
// here is an internal invariant violation, not a configuration error.
func (a *Assembly) validateIndexes() error {
	n := a.NumLinks()
	for _, g := range a.Groups() {
		if len(g.Body1Indices) != g.Len() || len(g.LocalPos0) != g.Len() ||
			len(g.LocalPos1) != g.Len() || len(g.LocalRot0) != g.Len() ||
			len(g.LocalRot1) != g.Len() {
			return errors.New(errors.ErrCodeInternalIndex, "group %s: parallel arrays diverge", g.Name)
		}
		for j := 0; j < g.Len(); j++ {
			if g.Body0 == BodyLinks && (g.Body0Indices[j] < 0 || g.Body0Indices[j] >= n) {
				return errors.New(errors.ErrCodeInternalIndex,
					"group %s joint %d: body0 index %d outside [0, %d)", g.Name, j, g.Body0Indices[j], n)
			}
			if g.Body1 == BodyLinks && (g.Body1Indices[j] < 0 || g.Body1Indices[j] >= n) {
				return errors.New(errors.ErrCodeInternalIndex,
					"group %s joint %d: body1 index %d outside [0, %d)", g.Name, j, g.Body1Indices[j], n)
			}
		}
	}
	return nil
}
