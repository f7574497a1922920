package texture

import (
	"fmt"
	"image"
	"image/color"
)

// TGA image types handled by DecodeTGA.
const (
	tgaTypeTrueColor    = 2  // uncompressed true-color
	tgaTypeTrueColorRLE = 10 // RLE-compressed true-color
)

// DecodeTGA decodes an uncompressed or RLE-compressed true-color TGA
// payload. Color-mapped and grayscale variants are rejected.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("tga: header truncated")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("tga: color-mapped images not supported")
	}
	if imageType != tgaTypeTrueColor && imageType != tgaTypeTrueColorRLE {
		return nil, fmt.Errorf("tga: unsupported image type %d", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("tga: unsupported bit depth %d", bpp)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("tga: id field truncated")
	}
	pixels := data[offset:]

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	bytesPerPixel := bpp / 8
	// Descriptor bit 5: rows stored top-to-bottom instead of the TGA
	// default bottom-to-top.
	topToBottom := descriptor&0x20 != 0

	if imageType == tgaTypeTrueColor {
		if len(pixels) < width*height*bytesPerPixel {
			return nil, fmt.Errorf("tga: pixel data truncated")
		}
		for y := 0; y < height; y++ {
			destY := y
			if !topToBottom {
				destY = height - 1 - y
			}
			for x := 0; x < width; x++ {
				img.SetRGBA(x, destY, readBGRA(pixels[(y*width+x)*bytesPerPixel:], bytesPerPixel))
			}
		}
		return img, nil
	}

	if err := decodeRLE(img, pixels, width, height, bytesPerPixel, topToBottom); err != nil {
		return nil, err
	}
	return img, nil
}

func readBGRA(p []byte, bytesPerPixel int) color.RGBA {
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if bytesPerPixel == 4 {
		c.A = p[3]
	}
	return c
}

func decodeRLE(img *image.RGBA, pixels []byte, width, height, bytesPerPixel int, topToBottom bool) error {
	total := width * height
	pixel := 0
	off := 0

	set := func(c color.RGBA) {
		x := pixel % width
		y := pixel / width
		if !topToBottom {
			y = height - 1 - y
		}
		img.SetRGBA(x, y, c)
		pixel++
	}

	for pixel < total {
		if off >= len(pixels) {
			return fmt.Errorf("tga: rle stream truncated")
		}
		packet := pixels[off]
		off++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// Run packet: one pixel value repeated count times.
			if off+bytesPerPixel > len(pixels) {
				return fmt.Errorf("tga: rle run truncated")
			}
			c := readBGRA(pixels[off:], bytesPerPixel)
			off += bytesPerPixel
			for i := 0; i < count && pixel < total; i++ {
				set(c)
			}
			continue
		}

		// Raw packet: count literal pixels.
		for i := 0; i < count && pixel < total; i++ {
			if off+bytesPerPixel > len(pixels) {
				return fmt.Errorf("tga: raw packet truncated")
			}
			set(readBGRA(pixels[off:], bytesPerPixel))
			off += bytesPerPixel
		}
	}
	return nil
}
