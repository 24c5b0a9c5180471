package export

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/vinodismyname/leadlens/internal/analysis"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	cellPadX    = 8
	rowHeight   = 20
	margin      = 12
	charWidth   = 7 // glyph advance of basicfont.Face7x13
	maxCellRune = 40
)

var (
	gridColor  = color.RGBA{R: 0xc8, G: 0xc8, B: 0xc8, A: 0xff}
	headerFill = color.RGBA{R: 0xe8, G: 0xee, B: 0xf7, A: 0xff}
	titleColor = color.RGBA{R: 0x1f, G: 0x3a, B: 0x68, A: 0xff}
	bodyColor  = color.Black
	background = color.White
)

// WritePNG renders t as a bordered grid with a title line and encodes it as PNG.
func WritePNG(w io.Writer, t analysis.Table) error {
	cols := len(t.Columns)
	widths := make([]int, cols)
	tableWidth := 0
	for i := range widths {
		widths[i] = min(columnChars(t, i), maxCellRune)*charWidth + 2*cellPadX
		tableWidth += widths[i]
	}
	titleWidth := len(t.Name) * charWidth
	width := max(tableWidth, titleWidth) + 2*margin
	top := margin + rowHeight
	height := top + (len(t.Rows)+1)*rowHeight + margin + len(t.Notes)*rowHeight

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(margin, top, margin+tableWidth, top+rowHeight), image.NewUniform(headerFill), image.Point{}, draw.Src)

	d := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	text := func(s string, x, y int, c color.Color) {
		d.Src = image.NewUniform(c)
		d.Dot = fixed.P(x, y)
		d.DrawString(s)
	}
	baseline := func(row int) int { return top + row*rowHeight + 14 }

	text(t.Name, margin, margin+13, titleColor)

	x := margin
	for i, c := range t.Columns {
		label := clip(c)
		// faux bold
		text(label, x+cellPadX, baseline(0), bodyColor)
		text(label, x+cellPadX+1, baseline(0), bodyColor)
		x += widths[i]
	}
	for r, row := range t.Rows {
		x = margin
		for i := range t.Columns {
			if i < len(row) {
				text(clip(analysis.FormatCell(row[i])), x+cellPadX, baseline(r+1), bodyColor)
			}
			x += widths[i]
		}
	}

	bottom := top + (len(t.Rows)+1)*rowHeight
	for r := 0; r <= len(t.Rows)+1; r++ {
		hline(img, margin, margin+tableWidth, top+r*rowHeight)
	}
	x = margin
	vline(img, x, top, bottom)
	for _, w := range widths {
		x += w
		vline(img, x, top, bottom)
	}

	for i, n := range t.Notes {
		text(n, margin, bottom+(i+1)*rowHeight-4, titleColor)
	}
	return png.Encode(w, img)
}

func clip(s string) string {
	r := []rune(s)
	if len(r) <= maxCellRune {
		return s
	}
	return string(r[:maxCellRune-3]) + "..."
}

func hline(img *image.RGBA, x0, x1, y int) {
	for x := x0; x <= x1; x++ {
		img.Set(x, y, gridColor)
	}
}

func vline(img *image.RGBA, x, y0, y1 int) {
	for y := y0; y <= y1; y++ {
		img.Set(x, y, gridColor)
	}
}
