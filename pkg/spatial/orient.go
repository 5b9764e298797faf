package spatial

import "fmt"

// =============================================================================
// Stage Orientation
// =============================================================================

// UpAxis identifies which stage axis points up.
type UpAxis string

// Supported stage up-axis conventions.
const (
	UpZ UpAxis = "Z"
	UpY UpAxis = "Y"
	UpX UpAxis = "X"
)

// permutation returns the component remapping for the up axis. Each entry
// names which canonical (Z-up) component lands in that slot.
func (a UpAxis) permutation() ([3]int, error) {
	switch a {
	case UpZ:
		return [3]int{0, 1, 2}, nil
	case UpY:
		return [3]int{1, 2, 0}, nil
	case UpX:
		return [3]int{2, 1, 0}, nil
	default:
		return [3]int{}, fmt.Errorf("unknown up axis %q", a)
	}
}

// Valid reports whether a is a supported up axis.
func (a UpAxis) Valid() bool {
	_, err := a.permutation()
	return err == nil
}

// Orientation remaps canonical Z-up coordinates into a stage's own axis
// convention and distance scale. Construct one with NewOrientation.
type Orientation struct {
	perm  [3]int
	scale float64
}

// NewOrientation builds an Orientation for the given up axis and scale
// factor. The scale factor converts canonical units into stage units.
func NewOrientation(up UpAxis, scale float64) (Orientation, error) {
	perm, err := up.permutation()
	if err != nil {
		return Orientation{}, err
	}
	if scale <= 0 {
		return Orientation{}, fmt.Errorf("scale factor must be positive, got %v", scale)
	}
	return Orientation{perm: perm, scale: scale}, nil
}

// Dim remaps and scales a dimensions vector.
func (o Orientation) Dim(v Vec3) Vec3 {
	c := [3]float64{v.X, v.Y, v.Z}
	return Vec3{
		c[o.perm[0]] * o.scale,
		c[o.perm[1]] * o.scale,
		c[o.perm[2]] * o.scale,
	}
}

// Pos remaps and scales a position vector, shifting the canonical vertical
// component by floorOffset before scaling.
func (o Orientation) Pos(v Vec3, floorOffset float64) Vec3 {
	c := [3]float64{v.X, v.Y, v.Z}
	var out [3]float64
	for i, src := range o.perm {
		out[i] = c[src]
		if src == 2 {
			out[i] += floorOffset
		}
		out[i] *= o.scale
	}
	return Vec3{out[0], out[1], out[2]}
}

// ScaleFactor converts a stage's meters-per-unit metadata into the scale
// factor used for authored dimensions (centimeter-based assets).
func ScaleFactor(metersPerUnit float64) float64 {
	if metersPerUnit <= 0 {
		return 1
	}
	return 1 / (metersPerUnit * 100)
}
