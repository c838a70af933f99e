package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// ErrInvalidImage is returned for uploads that are not an accepted image.
var ErrInvalidImage = errors.New("invalid image")

const (
	maxDimension  = 1600
	maxPixels     = 40_000_000 // decoded size is about 4 bytes per pixel
	previewWidth  = 250
	previewHeight = 200
	jpegQuality   = 90
)

type ImageProcessor struct {
	MaxSize int64 // bytes
}

func NewImageProcessor(maxSize int64) *ImageProcessor {
	if maxSize <= 0 {
		maxSize = 5 * 1024 * 1024
	}
	return &ImageProcessor{MaxSize: maxSize}
}

// ValidateImage accepts JPEG and PNG within MaxSize and maxPixels. Only the
// header is read, so oversized images are rejected before decoding.
func (p *ImageProcessor) ValidateImage(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty file", ErrInvalidImage)
	}
	if int64(len(data)) > p.MaxSize {
		return fmt.Errorf("%w: exceeds %dMB", ErrInvalidImage, p.MaxSize/(1024*1024))
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: not an image", ErrInvalidImage)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return fmt.Errorf("%w: %dx%d exceeds %d megapixels", ErrInvalidImage, cfg.Width, cfg.Height, maxPixels/1_000_000)
	}
	switch format {
	case "jpeg", "png":
		return nil
	default:
		return fmt.Errorf("%w: format %s not allowed (only jpeg/png)", ErrInvalidImage, format)
	}
}

// Process decodes data once and returns the stored original (bounded to
// maxDimension) plus the fixed-size preview used by the edit form.
func (p *ImageProcessor) Process(data []byte) (original, preview []byte, err error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: cannot decode: %v", ErrInvalidImage, err)
	}

	bounded := img
	b := img.Bounds()
	if b.Dx() > maxDimension || b.Dy() > maxDimension {
		bounded = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}

	original, err = encodeJPEG(bounded)
	if err != nil {
		return nil, nil, err
	}

	preview, err = encodeJPEG(imaging.Fill(img, previewWidth, previewHeight, imaging.Center, imaging.Lanczos))
	if err != nil {
		return nil, nil, err
	}

	return original, preview, nil
}

func encodeJPEG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("cannot encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
