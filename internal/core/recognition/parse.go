package recognition

import (
	"github.com/agenthands/cardmatch/internal/core/common"
	"github.com/agenthands/cardmatch/internal/core/model"
)

// ParseCard reads the model's JSON answer. Numeric fields may come back as
// numbers, strings or null, and text fields occasionally as numbers; both
// are accepted.
func ParseCard(response string) (model.ExtractedCard, error) {
	raw, err := common.ParseJSON[map[string]any](response)
	if err != nil {
		return model.ExtractedCard{}, err
	}

	return model.ExtractedCard{
		Life:        common.ParseInt(raw["life"]),
		Attack:      common.ParseInt(raw["attack"]),
		Cost:        common.ParseInt(raw["cost"]),
		Counter:     common.ParseInt(raw["counter"]),
		Type:        common.ParseString(raw["type"]),
		Name:        common.ParseString(raw["name"]),
		Tribe:       common.ParseString(raw["tribe"]),
		Description: common.ParseString(raw["description"]),
		Trigger:     common.ParseString(raw["trigger"]),
	}, nil
}
