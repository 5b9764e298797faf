package rig

import (
	"context"
	"math"
	"testing"

	"github.com/yunchaoli/cablerig/pkg/errors"
	"github.com/yunchaoli/cablerig/pkg/spatial"
)

func TestStageValidateAndSetDefaults(t *testing.T) {
	var s Stage
	if err := s.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.UpAxis != spatial.UpZ {
		t.Errorf("UpAxis = %s, want Z", s.UpAxis)
	}
	if s.MetersPerUnit != DefaultMetersPerUnit {
		t.Errorf("MetersPerUnit = %v, want %v", s.MetersPerUnit, DefaultMetersPerUnit)
	}
	// 1 / (0.01 * 100)
	if s.ScaleFactor() != 1 {
		t.Errorf("ScaleFactor() = %v, want 1", s.ScaleFactor())
	}

	bad := Stage{UpAxis: "W"}
	if err := bad.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidAxis) {
		t.Errorf("got %v, want %s", err, errors.ErrCodeInvalidAxis)
	}
}

func TestBuildAssemblies(t *testing.T) {
	cfg := Config{NumAssemblies: 6, AssemblyLength: 1.0, PayloadMass: 10, ElevationAngle: math.Pi / 6}
	got, err := BuildAssemblies(context.Background(), &cfg, Stage{})
	if err != nil {
		t.Fatalf("BuildAssemblies: %v", err)
	}

	if len(got) != 6 {
		t.Fatalf("len = %d, want 6", len(got))
	}
	for i, a := range got {
		if a.Index != i {
			t.Errorf("assembly at slot %d has index %d", i, a.Index)
		}
		wantAz := 2 * math.Pi * float64(i) / 6
		if math.Abs(a.Azimuth-wantAz) > 1e-12 {
			t.Errorf("assembly %d: azimuth = %v, want %v", i, a.Azimuth, wantAz)
		}
		if a.NumLinks() != 10 {
			t.Errorf("assembly %d: NumLinks() = %d, want 10", i, a.NumLinks())
		}
	}
}

func TestBuildAssembliesSingle(t *testing.T) {
	cfg := Config{NumAssemblies: 1, AssemblyLength: 1.0, PayloadMass: 10}
	got, err := BuildAssemblies(context.Background(), &cfg, Stage{})
	if err != nil {
		t.Fatalf("BuildAssemblies: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Anchor.Kind != AnchorTable {
		t.Errorf("anchor kind = %s, want table", got[0].Anchor.Kind)
	}
}

func TestBuildAssembliesInvalidConfig(t *testing.T) {
	cfg := Config{NumAssemblies: 1, AssemblyLength: -1, PayloadMass: 10}
	if _, err := BuildAssemblies(context.Background(), &cfg, Stage{}); !errors.IsConfiguration(err) {
		t.Errorf("got %v, want a configuration error", err)
	}
}

func TestBuildAssembliesCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{NumAssemblies: 4, AssemblyLength: 1.0, PayloadMass: 10}
	if _, err := BuildAssemblies(ctx, &cfg, Stage{}); err == nil {
		t.Fatal("expected error from canceled context")
	}
}
