package render

import "image"

// Fit computes the aspect-preserving letterbox placement of a source inside
// a destination: scaled so the source's larger relative dimension exactly
// fills the destination, centered on both axes.
func Fit(src, dst image.Rectangle) image.Rectangle {
	sw, sh := float64(src.Dx()), float64(src.Dy())
	dw, dh := float64(dst.Dx()), float64(dst.Dy())
	if sw <= 0 || sh <= 0 {
		return image.Rectangle{}
	}

	scale := dw / sw
	if s := dh / sh; s < scale {
		scale = s
	}

	w := sw * scale
	h := sh * scale
	x := dst.Min.X + int((dw-w)/2+0.5)
	y := dst.Min.Y + int((dh-h)/2+0.5)
	return image.Rect(x, y, x+int(w+0.5), y+int(h+0.5))
}
