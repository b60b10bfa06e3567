package model

import "strings"

// ExtractedQuery is the noisy description of a card produced by OCR or an
// LLM. Every field may be empty. The JSON names are the contract with the
// extraction side.
type ExtractedQuery struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Tribe       string `json:"tribe,omitempty"`
	Type        string `json:"type,omitempty"`
}

func (q ExtractedQuery) IsEmpty() bool {
	return strings.TrimSpace(q.Name) == "" &&
		strings.TrimSpace(q.Description) == "" &&
		strings.TrimSpace(q.Tribe) == "" &&
		strings.TrimSpace(q.Type) == ""
}

// ExtractedCard is the full field set an extractor asks the model for.
type ExtractedCard struct {
	Life        *int   `json:"life,omitempty"`
	Attack      *int   `json:"attack,omitempty"`
	Cost        *int   `json:"cost,omitempty"`
	Counter     *int   `json:"counter,omitempty"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Tribe       string `json:"tribe"`
	Description string `json:"description"`
	Trigger     string `json:"trigger,omitempty"`
}

func (e ExtractedCard) Query() ExtractedQuery {
	return ExtractedQuery{
		Name:        e.Name,
		Description: e.Description,
		Tribe:       e.Tribe,
		Type:        e.Type,
	}
}
