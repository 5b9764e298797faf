package spatial

import (
	"math"
	"testing"
)

const tol = 1e-9

func vecsClose(a, b Vec3) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}

func TestFromAxisAngle(t *testing.T) {
	tests := []struct {
		name  string
		axis  Vec3
		angle float64
		in    Vec3
		want  Vec3
	}{
		{
			name:  "QuarterTurnAboutZ",
			axis:  Vec3{Z: 1},
			angle: math.Pi / 2,
			in:    Vec3{X: 1},
			want:  Vec3{Y: 1},
		},
		{
			name:  "HalfTurnAboutZ",
			axis:  Vec3{Z: 1},
			angle: math.Pi,
			in:    Vec3{X: 1},
			want:  Vec3{X: -1},
		},
		{
			name:  "PitchAboutNegY",
			axis:  Vec3{Y: -1},
			angle: math.Pi / 2,
			in:    Vec3{X: 1},
			want:  Vec3{Z: 1},
		},
		{
			name:  "ZeroAngleIsIdentity",
			axis:  Vec3{X: 1, Y: 2, Z: 3},
			angle: 0,
			in:    Vec3{X: 0.3, Y: -0.4, Z: 0.5},
			want:  Vec3{X: 0.3, Y: -0.4, Z: 0.5},
		},
		{
			name:  "UnnormalizedAxis",
			axis:  Vec3{Z: 10},
			angle: math.Pi / 2,
			in:    Vec3{X: 1},
			want:  Vec3{Y: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromAxisAngle(tt.axis, tt.angle).Rotate(tt.in)
			if !vecsClose(got, tt.want) {
				t.Errorf("rotate = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMulAppliesRightOperandFirst(t *testing.T) {
	yaw := FromAxisAngle(Vec3{Z: 1}, math.Pi/2)
	pitch := FromAxisAngle(Vec3{Y: -1}, math.Pi/2)

	// pitch lifts +X to +Z, then yaw about Z leaves +Z in place
	got := Mul(yaw, pitch).Rotate(Vec3{X: 1})
	if !vecsClose(got, Vec3{Z: 1}) {
		t.Errorf("yaw∘pitch(+X) = %+v, want +Z", got)
	}

	// the opposite order yaws +X to +Y first, then pitch leaves +Y in place
	got = Mul(pitch, yaw).Rotate(Vec3{X: 1})
	if !vecsClose(got, Vec3{Y: 1}) {
		t.Errorf("pitch∘yaw(+X) = %+v, want +Y", got)
	}
}

func TestQuatNormalized(t *testing.T) {
	q := Quat{W: 2, X: 0, Y: 0, Z: 0}.Normalized()
	if q != Identity() {
		t.Errorf("normalized = %+v, want identity", q)
	}
	if got := (Quat{}).Normalized(); got != Identity() {
		t.Errorf("zero quat normalized = %+v, want identity", got)
	}
}

func TestOrientationDim(t *testing.T) {
	tests := []struct {
		name string
		up   UpAxis
		in   Vec3
		want Vec3
	}{
		{name: "ZUp", up: UpZ, in: Vec3{1, 2, 3}, want: Vec3{1, 2, 3}},
		{name: "YUp", up: UpY, in: Vec3{1, 2, 3}, want: Vec3{2, 3, 1}},
		{name: "XUp", up: UpX, in: Vec3{1, 2, 3}, want: Vec3{3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := NewOrientation(tt.up, 1)
			if err != nil {
				t.Fatalf("NewOrientation: %v", err)
			}
			if got := o.Dim(tt.in); !vecsClose(got, tt.want) {
				t.Errorf("Dim = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOrientationPosAppliesFloorOffset(t *testing.T) {
	o, err := NewOrientation(UpY, 2)
	if err != nil {
		t.Fatalf("NewOrientation: %v", err)
	}
	// Y-up remaps (x, y, z) → (y, z, x); the canonical vertical component
	// (index 2) picks up the floor offset before scaling.
	got := o.Pos(Vec3{1, 2, 3}, 10)
	want := Vec3{2 * 2, (3 + 10) * 2, 1 * 2}
	if !vecsClose(got, want) {
		t.Errorf("Pos = %+v, want %+v", got, want)
	}
}

func TestNewOrientationRejectsBadInput(t *testing.T) {
	if _, err := NewOrientation("W", 1); err == nil {
		t.Error("expected error for unknown up axis")
	}
	if _, err := NewOrientation(UpZ, 0); err == nil {
		t.Error("expected error for zero scale")
	}
}

func TestScaleFactor(t *testing.T) {
	if got := ScaleFactor(0.01); math.Abs(got-1.0) > tol {
		t.Errorf("ScaleFactor(0.01) = %v, want 1", got)
	}
	if got := ScaleFactor(1.0); math.Abs(got-0.01) > tol {
		t.Errorf("ScaleFactor(1) = %v, want 0.01", got)
	}
	if got := ScaleFactor(0); got != 1 {
		t.Errorf("ScaleFactor(0) = %v, want 1", got)
	}
}
