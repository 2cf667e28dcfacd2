package utils

import (
	"bytes"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

// MaxProofImageSide bounds the longest side of stored JPEG proofs of payment.
const MaxProofImageSide = 1600

// NormalizeJPEG decodes a JPEG, applies its EXIF orientation and downsizes it so neither
// side exceeds maxSide. Images already within bounds are returned unchanged.
func NormalizeJPEG(data []byte, maxSide int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	if bounds.Dx() <= maxSide && bounds.Dy() <= maxSide {
		return data, nil
	}
	if bounds.Dx() >= bounds.Dy() {
		img = imaging.Resize(img, maxSide, 0, imaging.Lanczos)
	} else {
		img = imaging.Resize(img, 0, maxSide, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpeg.DefaultQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
