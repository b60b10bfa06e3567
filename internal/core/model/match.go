package model

type Candidate struct {
	Card       *Card   `json:"card"`
	Similarity float64 `json:"similarity"`
}

type MatchResult struct {
	RequestID  string         `json:"request_id"`
	Query      ExtractedQuery `json:"query"`
	Best       Candidate      `json:"best"`
	Candidates []Candidate    `json:"candidates,omitempty"`
	Reranked   bool           `json:"reranked"`
}

type Recognition struct {
	RequestID string        `json:"request_id"`
	Mode      string        `json:"mode"`
	RawText   string        `json:"raw_text,omitempty"`
	Extracted ExtractedCard `json:"extracted_data"`
	Result    *MatchResult  `json:"search_result"`
}
