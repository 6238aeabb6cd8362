package service

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// DefaultThumbnailSize bounds the longest side of a generated thumbnail.
const DefaultThumbnailSize = 128

// ThumbnailExtension is the fixed output format of the pipeline. Thumbnails
// are always re-encoded as PNG no matter what the original was.
const ThumbnailExtension = ".png"

// scaleToFit shrinks src preserving aspect ratio so that neither dimension
// exceeds maxSize. Images already inside the bound are returned unchanged;
// thumbnails never upscale.
func scaleToFit(src image.Image, maxSize int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxSize && h <= maxSize {
		return src
	}

	var dw, dh int
	if w >= h {
		dw = maxSize
		dh = h * maxSize / w
	} else {
		dh = maxSize
		dw = w * maxSize / h
	}
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

// encodeThumbnail renders the bounded preview for src in the pipeline's
// fixed output format.
func encodeThumbnail(src image.Image, maxSize int) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaleToFit(src, maxSize)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
