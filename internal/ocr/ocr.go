// Package ocr turns a card image into raw text for the text extraction mode.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/agenthands/cardmatch/internal/config"
)

var ErrUnavailable = errors.New("OCR engine not available in this build")

type Engine interface {
	Text(ctx context.Context, image []byte) (string, error)
}

// minHeight is the height below which card scans are upscaled; Tesseract
// misreads the small effect text on phone-sized crops.
const (
	minHeight    = 800
	targetHeight = 1300
)

// Preprocess converts an encoded image to a sharpened, higher-contrast
// grayscale PNG, upscaled when it is too small to read.
func Preprocess(image []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(image), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	gray := imaging.Grayscale(img)
	gray = imaging.AdjustContrast(gray, 15)
	gray = imaging.Sharpen(gray, 0.7)
	if gray.Bounds().Dy() < minHeight {
		gray = imaging.Resize(gray, 0, targetHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, gray, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// New returns the Tesseract engine for cfg. Without the tesseract build tag
// the engine reports ErrUnavailable.
func New(cfg config.OCRConfig) Engine {
	lang := cfg.Language
	if lang == "" {
		lang = "eng"
	}
	return &TesseractEngine{Language: lang, Preprocess: cfg.Preprocess}
}
