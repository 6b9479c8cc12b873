package universe

//Color is the render color of a visible cell, there are exactly two of them
type Color int

const (
	ColorDead Color = iota //transparent
	ColorLive
)

//Axis selects the scroll direction
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

//Viewport maps the visible grid onto the plane
//Scroll is the world coordinate of the visible origin cell
type Viewport struct {
	ScrollX  int32
	ScrollY  int32
	Columns  int
	Rows     int
	CellSize int
}

//Point is the position in the window space (pixels or terminal chars)
type Point struct {
	X int
	Y int
}

//WorldToWindow returns the window position of the cell's top left corner
func (vp Viewport) WorldToWindow(c Coord) Point {
	return Point{
		X: int(int64(c.X)-int64(vp.ScrollX)) * vp.CellSize,
		Y: int(int64(c.Y)-int64(vp.ScrollY)) * vp.CellSize,
	}
}

//WindowToWorld returns the world coordinate of the cell under the window position p
//ok is false if p lies outside the visible grid
func (vp Viewport) WindowToWorld(p Point) (c Coord, ok bool) {
	if vp.CellSize <= 0 || vp.Columns <= 0 || vp.Rows <= 0 {
		return Coord{}, false
	}
	if p.X < 0 || p.Y < 0 || p.X >= vp.Columns*vp.CellSize || p.Y >= vp.Rows*vp.CellSize {
		return Coord{}, false
	}
	col := p.X / vp.CellSize % vp.Columns
	row := p.Y / vp.CellSize % vp.Rows
	return vp.VisibleToWorld(col, row), true
}

//VisibleToWorld returns the world coordinate of the visible cell column, row
func (vp Viewport) VisibleToWorld(col int, row int) Coord {
	//wraps at the int32 edges, as scrolling does
	return Coord{vp.ScrollX + int32(col), vp.ScrollY + int32(row)}
}

//ColorAt returns the color of the visible cell column, row
func (vp Viewport) ColorAt(col int, row int, s *CellSet) Color {
	if s.Contains(vp.VisibleToWorld(col, row).Key()) {
		return ColorLive
	}
	return ColorDead
}

//Scroll moves the viewport by delta cells along the axis
func (vp *Viewport) Scroll(delta int32, axis Axis) {
	switch axis {
	case AxisX:
		vp.ScrollX += delta
	case AxisY:
		vp.ScrollY += delta
	}
}
