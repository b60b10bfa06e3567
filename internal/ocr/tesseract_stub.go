//go:build !tesseract

package ocr

import "context"

// TesseractEngine needs libtesseract through cgo; build with -tags tesseract
// to enable it.
type TesseractEngine struct {
	Language   string
	Preprocess bool
}

func (e *TesseractEngine) Text(ctx context.Context, image []byte) (string, error) {
	return "", ErrUnavailable
}
