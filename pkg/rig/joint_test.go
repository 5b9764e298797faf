package rig

import (
	"testing"

	"github.com/yunchaoli/cablerig/pkg/errors"
)

func testPolicy() CablePolicy {
	return CablePolicy{
		DriveStiffness:  1e5,
		DriveDamping:    1e3,
		LimitStiffness:  1.1e6,
		LimitDamping:    1e3,
		MaxForce:        981,
		SlideRange:      Range{Low: -1, High: 0.01},
		ContactDistance: 1e-4,
	}
}

func TestNewCableArchetype(t *testing.T) {
	arch, err := NewCableArchetype(AxisZ, testPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if arch.Kind != JointCable {
		t.Errorf("Kind = %s, want %s", arch.Kind, JointCable)
	}
	if len(arch.DOFs) != 6 {
		t.Fatalf("len(DOFs) = %d, want 6", len(arch.DOFs))
	}

	slide := arch.DOFs[DOFTransZ]
	if slide.Limit == nil || slide.Drive == nil {
		t.Fatal("slide DOF must carry both limit and drive")
	}
	if slide.Limit.Range != (Range{Low: -1, High: 0.01}) {
		t.Errorf("slide range = %+v", slide.Limit.Range)
	}
	if slide.Limit.Stiffness != 1.1e6 {
		t.Errorf("limit stiffness = %v, want 1.1e6", slide.Limit.Stiffness)
	}
	if slide.Drive.Type != "force" {
		t.Errorf("drive type = %q, want force", slide.Drive.Type)
	}
	if slide.Drive.MaxForce != 981 {
		t.Errorf("drive max force = %v, want 981", slide.Drive.MaxForce)
	}

	for _, d := range []DOF{DOFTransX, DOFTransY} {
		if !arch.DOFs[d].Locked() {
			t.Errorf("lateral DOF %s not locked", d)
		}
	}
	for _, d := range []DOF{DOFRotX, DOFRotY, DOFRotZ} {
		spec, ok := arch.DOFs[d]
		if !ok {
			t.Errorf("rotation DOF %s missing from archetype", d)
			continue
		}
		if !spec.Free() {
			t.Errorf("rotation DOF %s should be explicitly free", d)
		}
	}

	if err := arch.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestNewCableArchetypeAxisX(t *testing.T) {
	arch, err := NewCableArchetype(AxisX, testPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if arch.DOFs[DOFTransX].Drive == nil {
		t.Error("transX should carry the drive for an X-axis cable")
	}
	if !arch.DOFs[DOFTransY].Locked() || !arch.DOFs[DOFTransZ].Locked() {
		t.Error("lateral translations should be locked")
	}
}

func TestNewCableArchetypeErrors(t *testing.T) {
	if _, err := NewCableArchetype(Axis("W"), testPolicy()); !errors.Is(err, errors.ErrCodeInvalidAxis) {
		t.Errorf("bad axis: got %v, want %s", err, errors.ErrCodeInvalidAxis)
	}

	soft := testPolicy()
	soft.LimitStiffness = soft.DriveStiffness // limit must be stiffer
	if _, err := NewCableArchetype(AxisZ, soft); !errors.Is(err, errors.ErrCodeInvalidStiffness) {
		t.Errorf("soft limit: got %v, want %s", err, errors.ErrCodeInvalidStiffness)
	}

	collapsed := testPolicy()
	collapsed.SlideRange = Range{Low: 0.5, High: 0.5}
	if _, err := NewCableArchetype(AxisZ, collapsed); !errors.Is(err, errors.ErrCodeInvalidRange) {
		t.Errorf("collapsed range: got %v, want %s", err, errors.ErrCodeInvalidRange)
	}
}

func TestNewFixedArchetype(t *testing.T) {
	arch := NewFixedArchetype()
	if arch.Kind != JointFixed {
		t.Errorf("Kind = %s, want %s", arch.Kind, JointFixed)
	}
	if len(arch.DOFs) != 6 {
		t.Fatalf("len(DOFs) = %d, want 6", len(arch.DOFs))
	}
	for d, spec := range arch.DOFs {
		if !spec.Locked() {
			t.Errorf("DOF %s not locked", d)
		}
		if !spec.Limit.Range.Inverted() {
			t.Errorf("DOF %s should use the inverted locked encoding", d)
		}
	}
	if err := arch.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestNewUniversalArchetype(t *testing.T) {
	arch, err := NewUniversalArchetype(AxisX, 160)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if arch.Kind != JointUniversal {
		t.Errorf("Kind = %s, want %s", arch.Kind, JointUniversal)
	}

	for _, d := range []DOF{DOFTransX, DOFTransY, DOFTransZ, DOFRotX} {
		spec := arch.DOFs[d]
		if !spec.Locked() || !spec.Limit.Range.ZeroWidth() {
			t.Errorf("DOF %s should be pinned at zero", d)
		}
	}
	for _, d := range []DOF{DOFRotY, DOFRotZ} {
		spec := arch.DOFs[d]
		if spec.Limit == nil {
			t.Fatalf("swing DOF %s has no limit", d)
		}
		if spec.Limit.Range != (Range{Low: -160, High: 160}) {
			t.Errorf("swing DOF %s range = %+v, want ±160", d, spec.Limit.Range)
		}
	}
	if err := arch.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestNewUniversalArchetypeErrors(t *testing.T) {
	tests := []struct {
		name     string
		axis     Axis
		cone     float64
		wantCode errors.Code
	}{
		{"bad axis", Axis("Q"), 160, errors.ErrCodeInvalidAxis},
		{"zero cone", AxisX, 0, errors.ErrCodeInvalidRange},
		{"cone above 180", AxisX, 200, errors.ErrCodeInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUniversalArchetype(tt.axis, tt.cone)
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("got %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestRangeEncodings(t *testing.T) {
	if !LockedRange().Inverted() {
		t.Error("LockedRange() should be inverted")
	}
	if !PinnedRange().ZeroWidth() {
		t.Error("PinnedRange() should be zero width")
	}
	if LockedRange().ZeroWidth() || PinnedRange().Inverted() {
		t.Error("the two locked encodings must stay distinct")
	}
}

func TestArchetypeValidateRejectsStrayInvertedRange(t *testing.T) {
	arch, err := NewCableArchetype(AxisZ, testPolicy())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arch.DOFs[DOFTransX] = DOFSpec{Limit: &LimitSpec{Range: LockedRange()}}
	if err := arch.Validate(); !errors.Is(err, errors.ErrCodeInvalidRange) {
		t.Errorf("got %v, want %s", err, errors.ErrCodeInvalidRange)
	}
}
