package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"wxhm/internal/models"
	"wxhm/internal/structures"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

type NormalizerInterface interface {
	// Normalize decodes raw image bytes and re-encodes them, returning the
	// encoded bytes and the file extension to store them under.
	Normalize(raw []byte) ([]byte, string, error)
}

// ImageNormalizer flattens uploads onto white and stores them as WebP,
// falling back to PNG when the WebP encoder refuses the image.
type ImageNormalizer struct {
	maxDimension int
	lossy        bool
	quality      float32
}

func NewImageNormalizer(conf *structures.Config) NormalizerInterface {
	quality := conf.Storage.Quality
	if quality <= 0 || quality > 100 {
		quality = 90
	}
	return &ImageNormalizer{
		maxDimension: conf.Storage.MaxDimension,
		lossy:        conf.Storage.Lossy,
		quality:      quality,
	}
}

func (n *ImageNormalizer) Normalize(raw []byte) ([]byte, string, error) {
	if len(raw) == 0 {
		return nil, "", fmt.Errorf("%w: empty image", models.ErrValidation)
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("%w: cannot decode image: %v", models.ErrValidation, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, "", fmt.Errorf("%w: empty image bounds", models.ErrValidation)
	}

	var src *image.NRGBA
	if n.maxDimension > 0 && (b.Dx() > n.maxDimension || b.Dy() > n.maxDimension) {
		src = imaging.Fit(img, n.maxDimension, n.maxDimension, imaging.Lanczos)
	} else {
		src = imaging.Clone(img)
	}

	// RGBA and paletted uploads lose their transparency against white.
	flat := imaging.New(src.Bounds().Dx(), src.Bounds().Dy(), color.White)
	flat = imaging.Overlay(flat, src, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	err = webp.Encode(&buf, flat, &webp.Options{Lossless: !n.lossy, Quality: n.quality})
	if err == nil {
		return buf.Bytes(), ".webp", nil
	}

	buf.Reset()
	if err := imaging.Encode(&buf, flat, imaging.PNG); err != nil {
		return nil, "", fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), ".png", nil
}
