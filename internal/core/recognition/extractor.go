package recognition

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agenthands/cardmatch/internal/config"
	"github.com/agenthands/cardmatch/internal/core/model"
	"github.com/agenthands/cardmatch/internal/llm"
	"github.com/agenthands/cardmatch/internal/ocr"
)

const (
	ModeVision = "vision"
	ModeOCR    = "ocr"
)

var (
	ErrNoGenerator = errors.New("no text model configured")
	ErrNoVision    = errors.New("no vision model configured")
	ErrNoOCR       = errors.New("no OCR engine configured")
	ErrNoText      = errors.New("no text to extract from")
	ErrUnknownMode = errors.New("unknown recognition mode")
)

// Extractor turns card pictures or OCR text into an ExtractedCard with the
// help of a generative model. Any of the clients may be nil; the modes that
// need a missing client fail with the matching error.
type Extractor struct {
	LLM     llm.LLMClient
	Vision  llm.VisionClient
	OCR     ocr.Engine
	Prompts config.RecognitionPrompts
}

func NewExtractor(llmClient llm.LLMClient, vision llm.VisionClient, engine ocr.Engine, prompts config.RecognitionPrompts) *Extractor {
	defaults := config.DefaultPrompts()
	if prompts.Text == "" {
		prompts.Text = defaults.Text
	}
	if prompts.Vision == "" {
		prompts.Vision = defaults.Vision
	}
	return &Extractor{
		LLM:     llmClient,
		Vision:  vision,
		OCR:     engine,
		Prompts: prompts,
	}
}

// FromText asks the model to structure text previously read off a card.
func (e *Extractor) FromText(ctx context.Context, text string) (model.ExtractedCard, error) {
	if e.LLM == nil {
		return model.ExtractedCard{}, ErrNoGenerator
	}
	if strings.TrimSpace(text) == "" {
		return model.ExtractedCard{}, ErrNoText
	}

	prompt := fmt.Sprintf(e.Prompts.Text, text)
	response, err := e.LLM.Generate(ctx, prompt)
	if err != nil {
		return model.ExtractedCard{}, fmt.Errorf("failed to generate card fields: %w", err)
	}

	card, err := ParseCard(response)
	if err != nil {
		return model.ExtractedCard{}, fmt.Errorf("failed to extract card fields: %w", err)
	}
	return card, nil
}

// FromImage sends the picture itself to a vision model.
func (e *Extractor) FromImage(ctx context.Context, image []byte, mimeType string) (model.ExtractedCard, error) {
	if e.Vision == nil {
		return model.ExtractedCard{}, ErrNoVision
	}

	response, err := e.Vision.GenerateWithImage(ctx, e.Prompts.Vision, image, mimeType)
	if err != nil {
		return model.ExtractedCard{}, fmt.Errorf("failed to read card image: %w", err)
	}

	card, err := ParseCard(response)
	if err != nil {
		return model.ExtractedCard{}, fmt.Errorf("failed to extract card fields: %w", err)
	}
	return card, nil
}

// FromImageOCR reads the picture with the OCR engine and structures the
// text with FromText. The raw OCR text is returned alongside.
func (e *Extractor) FromImageOCR(ctx context.Context, image []byte) (model.ExtractedCard, string, error) {
	if e.OCR == nil {
		return model.ExtractedCard{}, "", ErrNoOCR
	}

	text, err := e.OCR.Text(ctx, image)
	if err != nil {
		return model.ExtractedCard{}, "", fmt.Errorf("failed to read card text: %w", err)
	}

	card, err := e.FromText(ctx, text)
	return card, text, err
}

// Extract dispatches on mode. RawText is only set for ModeOCR.
func (e *Extractor) Extract(ctx context.Context, mode string, image []byte, mimeType string) (card model.ExtractedCard, rawText string, err error) {
	switch strings.ToLower(mode) {
	case "", ModeVision:
		card, err = e.FromImage(ctx, image, mimeType)
		return card, "", err
	case ModeOCR:
		return e.FromImageOCR(ctx, image)
	default:
		return model.ExtractedCard{}, "", fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
}
