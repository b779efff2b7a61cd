package raster

// Box is an inclusive pixel rectangle: both (Left, Top) and (Right, Bottom)
// name pixels inside the box.
type Box struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// AbsBox builds a box from two corner points in any order.
func AbsBox(x1 int, y1 int, x2 int, y2 int) Box {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	return Box{Left: x1, Top: y1, Right: x2, Bottom: y2}
}

func (b Box) Width() int {
	return b.Right - b.Left + 1
}

func (b Box) Height() int {
	return b.Bottom - b.Top + 1
}

func (b Box) Area() int {
	return b.Width() * b.Height()
}

func (b Box) Contains(x int, y int) bool {
	return x >= b.Left && x <= b.Right && y >= b.Top && y <= b.Bottom
}

// Fit grows the box by grow pixels on every side and clamps it to a
// width×height raster.
func (b Box) Fit(grow int, width int, height int) Box {
	b.Left -= grow
	b.Top -= grow
	b.Right += grow
	b.Bottom += grow

	if b.Left < 0 {
		b.Left = 0
	}
	if b.Top < 0 {
		b.Top = 0
	}
	if b.Right > width-1 {
		b.Right = width - 1
	}
	if b.Bottom > height-1 {
		b.Bottom = height - 1
	}
	return b
}

// Expand grows the box by n pixels on every side without clamping.
func (b Box) Expand(n int) Box {
	return Box{Left: b.Left - n, Top: b.Top - n, Right: b.Right + n, Bottom: b.Bottom + n}
}

// Intersect reports inclusive overlap; boxes sharing only an edge or a
// corner pixel still intersect.
func Intersect(a Box, b Box) bool {
	return a.Left <= b.Right && b.Left <= a.Right && a.Top <= b.Bottom && b.Top <= a.Bottom
}

// Union returns the smallest box containing both a and b.
func Union(a Box, b Box) Box {
	if b.Left < a.Left {
		a.Left = b.Left
	}
	if b.Top < a.Top {
		a.Top = b.Top
	}
	if b.Right > a.Right {
		a.Right = b.Right
	}
	if b.Bottom > a.Bottom {
		a.Bottom = b.Bottom
	}
	return a
}
