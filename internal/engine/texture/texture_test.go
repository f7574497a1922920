package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/vnbformat/vnb-go/pkg/vnb"
)

// makeTGA builds a 24-bit true-color TGA with the given pixel rows in
// top-to-bottom order, stored bottom-to-top as the format defaults to.
func makeTGA(width, height int, rows [][]color.RGBA) []byte {
	var buf bytes.Buffer
	header := make([]byte, 18)
	header[2] = tgaTypeTrueColor
	header[12] = byte(width)
	header[13] = byte(width >> 8)
	header[14] = byte(height)
	header[15] = byte(height >> 8)
	header[16] = 24
	buf.Write(header)

	for y := height - 1; y >= 0; y-- {
		for x := 0; x < width; x++ {
			c := rows[y][x]
			buf.Write([]byte{c.B, c.G, c.R})
		}
	}
	return buf.Bytes()
}

func TestDecodeTGA_Uncompressed(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	green := color.RGBA{0, 255, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}
	white := color.RGBA{255, 255, 255, 255}

	data := makeTGA(2, 2, [][]color.RGBA{
		{red, green},
		{blue, white},
	})

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA failed: %v", err)
	}

	rgba := ToRGBA(img)
	for _, tt := range []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, red}, {1, 0, green}, {0, 1, blue}, {1, 1, white},
	} {
		if got := rgba.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestDecodeTGA_RLE(t *testing.T) {
	// 4x1 image: a run of three red pixels followed by one literal blue.
	header := make([]byte, 18)
	header[2] = tgaTypeTrueColorRLE
	header[12] = 4
	header[14] = 1
	header[16] = 24

	data := append(header,
		0x82, 0, 0, 255, // run of 3 red (BGR)
		0x00, 255, 0, 0, // 1 raw blue
	)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA failed: %v", err)
	}

	rgba := ToRGBA(img)
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}
	for x := 0; x < 3; x++ {
		if got := rgba.RGBAAt(x, 0); got != red {
			t.Errorf("pixel %d = %v, want red", x, got)
		}
	}
	if got := rgba.RGBAAt(3, 0); got != blue {
		t.Errorf("pixel 3 = %v, want blue", got)
	}
}

func TestDecodeTGA_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{0, 0, 2}},
		{"color mapped", func() []byte {
			h := make([]byte, 18)
			h[1] = 1
			h[2] = 1
			return h
		}()},
		{"grayscale", func() []byte {
			h := make([]byte, 18)
			h[2] = 3
			return h
		}()},
		{"truncated pixels", func() []byte {
			h := make([]byte, 18)
			h[2] = tgaTypeTrueColor
			h[12] = 4
			h[14] = 4
			h[16] = 24
			return append(h, 1, 2, 3)
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTGA(tt.data); err == nil {
				t.Error("DecodeTGA accepted invalid input")
			}
		})
	}
}

func TestDecode_MimeDispatch(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.NRGBA{10, 20, 30, 255})
	src.Set(1, 1, color.NRGBA{200, 100, 50, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("png encode: %v", err)
	}

	img, err := Decode(vnb.MimePNG, buf.Bytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("pixel (0,0) = %v", got)
	}

	if _, err := Decode(vnb.MimeType(42), buf.Bytes()); err == nil {
		t.Error("unknown mime tag accepted")
	}
	if _, err := Decode(vnb.MimePNG, []byte{1, 2, 3}); err == nil {
		t.Error("garbage png accepted")
	}
}
