package scene

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"github.com/yunchaoli/cablerig/pkg/errors"
	"github.com/yunchaoli/cablerig/pkg/rig"
	"github.com/yunchaoli/cablerig/pkg/spatial"
)

func testBatch(t *testing.T, cfg rig.Config, stage rig.Stage) *Batch {
	t.Helper()
	b, err := Build(context.Background(), &cfg, stage)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return b
}

func TestBuild(t *testing.T) {
	b := testBatch(t, rig.Config{NumAssemblies: 4, AssemblyLength: 1.0, PayloadMass: 10}, rig.Stage{})

	if b.ID == "" {
		t.Error("batch has no ID")
	}
	if b.CreatedAt.IsZero() {
		t.Error("batch has no creation time")
	}
	if len(b.Assemblies) != 4 {
		t.Fatalf("len(Assemblies) = %d, want 4", len(b.Assemblies))
	}
	if b.Layout.Kind != rig.LayoutRadial {
		t.Errorf("layout = %s, want radial", b.Layout.Kind)
	}

	if b.Payload.Radius != rig.DefaultPayloadRadius {
		t.Errorf("payload radius = %v, want %v", b.Payload.Radius, rig.DefaultPayloadRadius)
	}
	if b.Payload.Height != rig.DefaultPayloadRadius/4 {
		t.Errorf("payload height = %v, want %v", b.Payload.Height, rig.DefaultPayloadRadius/4)
	}
	if b.Payload.Position.Z != rig.DefaultLoadHeight {
		t.Errorf("payload z = %v, want %v", b.Payload.Position.Z, rig.DefaultLoadHeight)
	}
	if b.Payload.LinearDamping != DefaultPayloadLinearDamping {
		t.Errorf("payload damping = %v, want %v", b.Payload.LinearDamping, DefaultPayloadLinearDamping)
	}

	// 2 + 0.03 + 1 + 6 with unit scale
	if math.Abs(b.FloorOffset-(-9.03)) > 1e-9 {
		t.Errorf("FloorOffset = %v, want -9.03", b.FloorOffset)
	}

	// 10 links per assembly; per assembly 9 chain + 2 attachments.
	if got := b.NumLinks(); got != 40 {
		t.Errorf("NumLinks() = %d, want 40", got)
	}
	if got := b.NumJoints(); got != 44 {
		t.Errorf("NumJoints() = %d, want 44", got)
	}
}

func TestBuildInvalidConfig(t *testing.T) {
	cfg := rig.Config{NumAssemblies: 0}
	if _, err := Build(context.Background(), &cfg, rig.Stage{}); !errors.IsConfiguration(err) {
		t.Errorf("got %v, want configuration error", err)
	}
}

func TestStagePosition(t *testing.T) {
	b := testBatch(t, rig.Config{NumAssemblies: 1, AssemblyLength: 1.0, PayloadMass: 10},
		rig.Stage{UpAxis: spatial.UpY})

	// Y-up permutation [1,2,0]: (x, y, z) -> (y, z+offset, x), unit scale.
	got, err := b.StagePosition(spatial.Vec3{X: 1, Y: 2, Z: 3})
	if err != nil {
		t.Fatalf("StagePosition: %v", err)
	}
	want := spatial.Vec3{X: 2, Y: 3 + b.FloorOffset, Z: 1}
	if math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 || math.Abs(got.Z-want.Z) > 1e-9 {
		t.Errorf("StagePosition = %+v, want %+v", got, want)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	b := testBatch(t, rig.Config{NumAssemblies: 2, AssemblyLength: 0.5, PayloadMass: 5}, rig.Stage{})

	var buf bytes.Buffer
	if err := WriteJSON(b, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.ID != b.ID {
		t.Errorf("ID = %q, want %q", got.ID, b.ID)
	}
	if len(got.Assemblies) != 2 {
		t.Fatalf("len(Assemblies) = %d, want 2", len(got.Assemblies))
	}
	if got.Assemblies[1].Chain.Len() != b.Assemblies[1].Chain.Len() {
		t.Errorf("chain length changed across round trip")
	}

	slide := got.Assemblies[0].Archetypes[rig.ArchetypeChain].DOFs[rig.DOFTransX]
	if slide.Limit == nil || slide.Drive == nil {
		t.Error("slide DOF lost its limit or drive across round trip")
	}
}

func TestReadJSONRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not JSON", "{nope"},
		{"no assemblies", `{"id": "x", "assemblies": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("got %v, want %s", err, errors.ErrCodeInvalidFormat)
			}
		})
	}
}

func TestExportJSONRejectsBadPath(t *testing.T) {
	b := testBatch(t, rig.Config{NumAssemblies: 1, AssemblyLength: 0.5, PayloadMass: 5}, rig.Stage{})
	if err := ExportJSON(b, "../escape.json"); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("got %v, want %s", err, errors.ErrCodeInvalidPath)
	}
}
