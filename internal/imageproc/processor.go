package imageproc

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"
)

const (
	AvatarSize    = 400
	ThumbnailSize = 150

	defaultQuality = 85
)

// Thumbnail decodes an uploaded image, scales it down to fit maxDim and
// re-encodes it as webp.
func Thumbnail(r io.Reader, maxDim int) (io.Reader, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	resized := scaleToFit(img, maxDim)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, resized, &webp.Options{Quality: defaultQuality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return &buf, nil
}

func scaleToFit(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	var nw, nh int
	if w > h {
		nw = maxDim
		nh = h * maxDim / w
	} else {
		nh = maxDim
		nw = w * maxDim / h
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
