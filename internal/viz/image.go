package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"os"
)

// Palette returns the paletted-image colors for a lattice family in
// States order.
func Palette(epidemic bool, theme Theme) color.Palette {
	states := States(epidemic)
	p := make(color.Palette, len(states))
	for i, v := range states {
		p[i] = rgba(theme.Color(epidemic, v))
	}
	return p
}

// GridImage draws every site as a cell x cell square. Row i of rows is
// drawn at y = i*cell.
func GridImage(rows [][]int, epidemic bool, theme Theme, cell int) *image.Paletted {
	cell = max(cell, 1)
	h := len(rows)
	w := 0
	if h > 0 {
		w = len(rows[0])
	}

	index := make(map[int]uint8)
	for i, v := range States(epidemic) {
		index[v] = uint8(i)
	}

	img := image.NewPaletted(image.Rect(0, 0, w*cell, h*cell), Palette(epidemic, theme))
	for i, row := range rows {
		for j, v := range row {
			idx := index[v]
			for y := i * cell; y < (i+1)*cell; y++ {
				for x := j * cell; x < (j+1)*cell; x++ {
					img.SetColorIndex(x, y, idx)
				}
			}
		}
	}
	return img
}

// SavePNG writes img to path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// Recorder collects lattice frames for a GIF animation.
type Recorder struct {
	// Delay between frames in hundredths of a second.
	Delay  int
	frames []*image.Paletted
}

func NewRecorder(delay int) *Recorder {
	return &Recorder{Delay: max(delay, 1)}
}

func (r *Recorder) Add(frame *image.Paletted) { r.frames = append(r.frames, frame) }

func (r *Recorder) Len() int { return len(r.frames) }

func (r *Recorder) Reset() { r.frames = nil }

// WriteGIF encodes the recorded frames as a looping animation.
func (r *Recorder) WriteGIF(w io.Writer) error {
	if len(r.frames) == 0 {
		return fmt.Errorf("no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.Delay)
	}
	return gif.EncodeAll(w, &anim)
}

// Save writes the animation to path.
func (r *Recorder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.WriteGIF(f); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
