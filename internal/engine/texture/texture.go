// Package texture decodes embedded container payloads into RGBA images
// ready for GPU upload. The codec layer never touches image bytes; this is
// the collaborator that interprets them.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	"github.com/vnbformat/vnb-go/pkg/vnb"
)

// Decode interprets an embedded payload according to its mime tag and
// returns an RGBA image.
func Decode(mime vnb.MimeType, data []byte) (*image.RGBA, error) {
	var (
		img image.Image
		err error
	)
	switch mime {
	case vnb.MimePNG:
		img, err = png.Decode(bytes.NewReader(data))
	case vnb.MimeJPEG:
		img, err = jpeg.Decode(bytes.NewReader(data))
	case vnb.MimeTGA:
		img, err = DecodeTGA(data)
	default:
		return nil, fmt.Errorf("texture: unsupported mime tag %d", mime)
	}
	if err != nil {
		return nil, fmt.Errorf("texture: decoding %s payload: %w", mime.ContentType(), err)
	}
	return ToRGBA(img), nil
}

// ToRGBA converts any image.Image into the packed RGBA layout OpenGL
// expects. Images already in that layout are returned as-is.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			rgba.SetRGBA(x, y, color.RGBA{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: uint8(a >> 8),
			})
		}
	}
	return rgba
}
