// Package utils provides pixel-space geometry and image helpers shared by
// the region locator, the layout analyzer and the OCR adapters.
package utils

import (
	"encoding/json"
	"fmt"
	"image"
)

// Box is an axis-aligned rectangle in absolute pixel coordinates with
// width/height semantics. It serializes as the JSON array [x, y, w, h].
type Box struct {
	X int
	Y int
	W int
	H int
}

// NewBox constructs a box from origin and size.
func NewBox(x, y, w, h int) Box {
	return Box{X: x, Y: y, W: w, H: h}
}

// FromRect converts an image.Rectangle into a Box.
func FromRect(r image.Rectangle) Box {
	return Box{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// ToRect converts the box to an image.Rectangle.
func (b Box) ToRect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

// Area returns the pixel area of the box.
func (b Box) Area() int { return b.W * b.H }

// Empty reports whether the box has no area.
func (b Box) Empty() bool { return b.W <= 0 || b.H <= 0 }

// Offset returns the box translated by dx, dy.
func (b Box) Offset(dx, dy int) Box {
	return Box{X: b.X + dx, Y: b.Y + dy, W: b.W, H: b.H}
}

// Overlaps reports whether two boxes intersect with positive area. Edge
// contact does not count, and a zero-area box overlaps nothing.
func (b Box) Overlaps(o Box) bool {
	return b.X < o.X+o.W && b.X+b.W > o.X && b.Y < o.Y+o.H && b.Y+b.H > o.Y
}

// MarshalJSON emits the box as [x, y, w, h].
func (b Box) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{b.X, b.Y, b.W, b.H})
}

// UnmarshalJSON accepts the [x, y, w, h] array form.
func (b *Box) UnmarshalJSON(data []byte) error {
	var a []int
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if len(a) != 4 {
		return fmt.Errorf("bbox must have 4 elements, got %d", len(a))
	}
	*b = Box{X: a[0], Y: a[1], W: a[2], H: a[3]}
	return nil
}

func (b Box) String() string {
	return fmt.Sprintf("[%d %d %d %d]", b.X, b.Y, b.W, b.H)
}

// ClampInt bounds v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
