package canvas

import (
	"image"
	"image/color"

	"cutout/internal/selection"
	"cutout/internal/viewport"
	"cutout/pkg/colorutil"
	"cutout/pkg/geometry"
)

var (
	backgroundColor = color.RGBA{R: 32, G: 32, B: 36, A: 255}
	outlineColor    = color.RGBA{R: 64, G: 160, B: 255, A: 255}
	handleColor     = colorutil.White
	firstHandle     = color.RGBA{R: 255, G: 200, B: 0, A: 255}
	bandColor       = colorutil.Yellow
	checkerLight    = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	checkerDark     = color.RGBA{R: 150, G: 150, B: 150, A: 255}
)

const (
	handleSize  = 4 // half-extent of a vertex handle square
	checkerCell = 8
)

func fillBackground(output *image.RGBA) {
	b := output.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			output.SetRGBA(x, y, backgroundColor)
		}
	}
}

func drawCheckerboard(output *image.RGBA) {
	b := output.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if (x/checkerCell+y/checkerCell)%2 == 0 {
				output.SetRGBA(x, y, checkerLight)
			} else {
				output.SetRGBA(x, y, checkerDark)
			}
		}
	}
}

// compositeImage maps src through the viewport onto the output using
// nearest-neighbor sampling. Transparent source pixels leave the backdrop
// visible.
func compositeImage(output *image.RGBA, src *image.RGBA, view *viewport.Viewport) {
	ob := output.Bounds()
	sb := src.Bounds()

	for y := ob.Min.Y; y < ob.Max.Y; y++ {
		for x := ob.Min.X; x < ob.Max.X; x++ {
			p := view.ToImageSpace(geometry.Point2D{X: float64(x), Y: float64(y)})
			sx, sy := sb.Min.X+int(p.X), sb.Min.Y+int(p.Y)
			if p.X < 0 || p.Y < 0 || sx >= sb.Max.X || sy >= sb.Max.Y {
				continue
			}
			c := src.RGBAAt(sx, sy)
			if c.A == 0 {
				continue
			}
			if c.A == 255 {
				output.SetRGBA(x, y, c)
				continue
			}
			// Source pixels are alpha-premultiplied; composite over the
			// backdrop.
			d := output.RGBAAt(x, y)
			na := uint32(255 - c.A)
			output.SetRGBA(x, y, color.RGBA{
				R: uint8(uint32(c.R) + uint32(d.R)*na/255),
				G: uint8(uint32(c.G) + uint32(d.G)*na/255),
				B: uint8(uint32(c.B) + uint32(d.B)*na/255),
				A: 255,
			})
		}
	}
}

// drawPolygonOverlay renders the selection outline and vertex handles in
// screen space. The first vertex of an open polygon is highlighted as the
// closing target.
func drawPolygonOverlay(output *image.RGBA, poly *selection.Polygon, view *viewport.Viewport) {
	if poly == nil || len(poly.Points) == 0 {
		return
	}

	screen := make([]geometry.Point2D, len(poly.Points))
	for i, p := range poly.Points {
		screen[i] = view.ToScreenSpace(p)
	}

	n := len(screen)
	for i := 0; i+1 < n; i++ {
		drawLine(output, screen[i], screen[i+1], outlineColor, 2)
	}
	if poly.Closed && n >= 3 {
		drawLine(output, screen[n-1], screen[0], outlineColor, 2)
	}

	for i, p := range screen {
		col := handleColor
		if i == 0 && !poly.Closed {
			col = firstHandle
		}
		drawHandle(output, p, col)
	}
}

// drawRubberBand renders the smart-box drag as a dashed rectangle. The box
// is in image coordinates.
func drawRubberBand(output *image.RGBA, box geometry.Rect, view *viewport.Viewport) {
	tl := view.ToScreenSpace(geometry.Point2D{X: box.X, Y: box.Y})
	br := view.ToScreenSpace(geometry.Point2D{X: box.X + box.Width, Y: box.Y + box.Height})

	x1, y1 := int(tl.X), int(tl.Y)
	x2, y2 := int(br.X), int(br.Y)
	bounds := output.Bounds()

	set := func(x, y int) {
		if (x+y)%4 < 2 && x >= bounds.Min.X && x < bounds.Max.X &&
			y >= bounds.Min.Y && y < bounds.Max.Y {
			output.SetRGBA(x, y, bandColor)
		}
	}
	for x := x1; x <= x2; x++ {
		set(x, y1)
		set(x, y2)
	}
	for y := y1; y <= y2; y++ {
		set(x1, y)
		set(x2, y)
	}
}

func drawHandle(output *image.RGBA, p geometry.Point2D, col color.RGBA) {
	cx, cy := int(p.X), int(p.Y)
	bounds := output.Bounds()
	for dy := -handleSize; dy <= handleSize; dy++ {
		for dx := -handleSize; dx <= handleSize; dx++ {
			x, y := cx+dx, cy+dy
			if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
				output.SetRGBA(x, y, col)
			}
		}
	}
}

func drawLine(output *image.RGBA, a, b geometry.Point2D, col color.RGBA, thickness int) {
	x1, y1 := int(a.X), int(a.Y)
	x2, y2 := int(b.X), int(b.Y)
	bounds := output.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				px, py := x1+s, y1+t
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					output.SetRGBA(px, py, col)
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}
