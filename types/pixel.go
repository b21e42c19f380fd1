package types

// Pixel is one computed pixel of the rendered image.
//
// X is the column and Y is the row. Color channels are not clamped to 255;
// the escape-time palette deliberately produces values above the nominal
// maximum and the output format carries them through unchanged.
type Pixel struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Red   int `json:"red"`
	Green int `json:"green"`
	Blue  int `json:"blue"`
}

// Compare orders pixels row-major: by Y, then by X.
//
// Returns:
//   - int: -1 if p sorts before q, 0 if they share coordinates, +1 otherwise
func (p Pixel) Compare(q Pixel) int {
	switch {
	case p.Y < q.Y:
		return -1
	case p.Y > q.Y:
		return 1
	case p.X < q.X:
		return -1
	case p.X > q.X:
		return 1
	default:
		return 0
	}
}

// Viewport is the rectangle of the complex plane mapped onto the pixel grid.
type Viewport struct {
	MinReal float64 `yaml:"minReal" json:"minReal"`
	MaxReal float64 `yaml:"maxReal" json:"maxReal"`
	MinImag float64 `yaml:"minImag" json:"minImag"`
	MaxImag float64 `yaml:"maxImag" json:"maxImag"`
}
