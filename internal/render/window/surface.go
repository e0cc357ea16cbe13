package window

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Surface is a field.Surface backed by an offscreen ebiten image. The image
// is created lazily on the first non-empty Resize.
type Surface struct {
	img  *ebiten.Image
	w, h int
}

func (s *Surface) Size() (int, int) { return s.w, s.h }

func (s *Surface) Resize(w, h int) {
	if w == s.w && h == s.h && s.img != nil {
		s.img.Clear()
		return
	}
	if s.img != nil {
		s.img.Deallocate()
		s.img = nil
	}
	s.w, s.h = w, h
	if w > 0 && h > 0 {
		s.img = ebiten.NewImage(w, h)
	}
}

func (s *Surface) Clear() {
	if s.img != nil {
		s.img.Clear()
	}
}

// Fill composites c over the buffer; ebiten's Image.Fill would replace it.
func (s *Surface) Fill(c color.NRGBA) {
	if s.img != nil {
		vector.FillRect(s.img, 0, 0, float32(s.w), float32(s.h), c, false)
	}
}

func (s *Surface) FillCircle(x, y, r float64, c color.NRGBA) {
	if s.img != nil {
		vector.FillCircle(s.img, float32(x), float32(y), float32(r), c, true)
	}
}

// Image returns the buffer, or nil before the first Resize.
func (s *Surface) Image() *ebiten.Image { return s.img }
