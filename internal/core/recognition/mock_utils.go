package recognition

import (
	"context"
)

type MockLLMClient struct {
	Response   string
	Err        error
	LastPrompt string
}

func (m *MockLLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.LastPrompt = prompt
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

type MockVisionClient struct {
	Response     string
	Err          error
	LastMIMEType string
	LastImage    []byte
}

func (m *MockVisionClient) GenerateWithImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	m.LastImage = image
	m.LastMIMEType = mimeType
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

type MockOCREngine struct {
	Output string
	Err    error
}

func (m *MockOCREngine) Text(ctx context.Context, image []byte) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return m.Output, nil
}
