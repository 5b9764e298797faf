package scene

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yunchaoli/cablerig/pkg/rig"
	"github.com/yunchaoli/cablerig/pkg/spatial"
)

// =============================================================================
// Display and Body Defaults
// =============================================================================

// Color is an RGB triple with components in [0, 1].
type Color [3]float64

// Display colors of the authored bodies.
var (
	PayloadColor = Color{0.22, 0.43, 0.55}
	LinkColor    = Color{0.9, 0.57, 0.16}
	AnchorColor  = Color{168.0 / 255, 142.0 / 255, 119.0 / 255}
)

// DefaultPayloadLinearDamping is the linear damping applied to the payload
// body so the hanging rig settles instead of oscillating indefinitely.
const DefaultPayloadLinearDamping = 0.01

// =============================================================================
// Batch
// =============================================================================

// PayloadSpec is the shared payload body all assemblies of a batch hang
// from: a flat cylinder at the configured load height.
type PayloadSpec struct {
	Radius        float64      `json:"radius" bson:"radius"`
	Height        float64      `json:"height" bson:"height"`
	Mass          float64      `json:"mass" bson:"mass"`
	Position      spatial.Vec3 `json:"position" bson:"position"`
	LinearDamping float64      `json:"linear_damping" bson:"linear_damping"`
	Color         Color        `json:"color" bson:"color"`
}

// Batch is one complete build result. It is immutable once built and safe
// to share across goroutines.
type Batch struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	Config rig.Config `json:"config" bson:"config"`
	Stage  rig.Stage  `json:"stage" bson:"stage"`
	Layout rig.Layout `json:"layout" bson:"layout"`

	Payload    PayloadSpec    `json:"payload" bson:"payload"`
	Assemblies []rig.Assembly `json:"assemblies" bson:"assemblies"`

	// FloorOffset shifts the canonical vertical axis so the tallest anchor
	// surface lands at the stage origin.
	FloorOffset float64 `json:"floor_offset" bson:"floor_offset"`
}

// Build runs the rig builder and wraps the result in a batch descriptor.
// The config is validated (and defaulted) as part of the build.
func Build(ctx context.Context, cfg *rig.Config, stage rig.Stage) (*Batch, error) {
	if err := stage.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	assemblies, err := rig.BuildAssemblies(ctx, cfg, stage)
	if err != nil {
		return nil, err
	}

	tableHeight := cfg.LoadHeight + cfg.PayloadHeight()/2 + cfg.AssemblyLength +
		cfg.TableThickness*stage.ScaleFactor()

	return &Batch{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Config:    *cfg,
		Stage:     stage,
		Layout:    rig.ChooseLayout(cfg),
		Payload: PayloadSpec{
			Radius:        cfg.PayloadRadius,
			Height:        cfg.PayloadHeight(),
			Mass:          cfg.PayloadMass,
			Position:      spatial.Vec3{Z: cfg.LoadHeight},
			LinearDamping: DefaultPayloadLinearDamping,
			Color:         PayloadColor,
		},
		Assemblies:  assemblies,
		FloorOffset: -tableHeight,
	}, nil
}

// NumJoints returns the total joint count across all assemblies.
func (b *Batch) NumJoints() int {
	total := 0
	for i := range b.Assemblies {
		for _, g := range b.Assemblies[i].Groups() {
			total += g.Len()
		}
	}
	return total
}

// NumLinks returns the total link count across all assemblies.
func (b *Batch) NumLinks() int {
	total := 0
	for i := range b.Assemblies {
		total += b.Assemblies[i].NumLinks()
	}
	return total
}

// StagePosition maps a canonical Z-up position into the stage's axis
// convention, applying the batch's floor offset and distance scale.
func (b *Batch) StagePosition(v spatial.Vec3) (spatial.Vec3, error) {
	o, err := b.Stage.Orientation()
	if err != nil {
		return spatial.Vec3{}, err
	}
	return o.Pos(v, b.FloorOffset), nil
}
