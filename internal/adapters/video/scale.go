package video

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/flexflow/flexflow/internal/domain/model"
)

// Downscale returns f scaled so its width does not exceed maxWidth,
// preserving the aspect ratio. Frames already within the limit (or a
// non-positive limit) pass through untouched. Estimators run faster on
// smaller frames and pose accuracy is insensitive to resolution well
// below capture size.
func Downscale(f model.Frame, maxWidth int) model.Frame {
	if maxWidth <= 0 || f.Width <= maxWidth || !f.Complete() {
		return f
	}

	ratio := float64(maxWidth) / float64(f.Width)
	targetW := maxWidth
	targetH := int(float64(f.Height) * ratio)
	if targetH < 1 {
		targetH = 1
	}

	src := rgbToImage(f)
	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	// CatmullRom gives Lanczos-like quality on downscale.
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	out := model.Frame{
		Data:        make([]byte, targetW*targetH*3),
		Width:       targetW,
		Height:      targetH,
		TimestampUS: f.TimestampUS,
		Seq:         f.Seq,
	}
	di := 0
	for y := 0; y < targetH; y++ {
		row := dst.PixOffset(0, y)
		for x := 0; x < targetW; x++ {
			si := row + x*4
			out.Data[di] = dst.Pix[si]
			out.Data[di+1] = dst.Pix[si+1]
			out.Data[di+2] = dst.Pix[si+2]
			di += 3
		}
	}
	return out
}

// rgbToImage wraps a packed RGB frame in an image.RGBA without alpha data
// loss (alpha is fixed at 255).
func rgbToImage(f model.Frame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	si := 0
	for y := 0; y < f.Height; y++ {
		row := img.PixOffset(0, y)
		for x := 0; x < f.Width; x++ {
			di := row + x*4
			img.Pix[di] = f.Data[si]
			img.Pix[di+1] = f.Data[si+1]
			img.Pix[di+2] = f.Data[si+2]
			img.Pix[di+3] = 0xff
			si += 3
		}
	}
	return img
}
