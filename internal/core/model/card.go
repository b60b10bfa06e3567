package model

type Crew struct {
	Name string `json:"name"`
}

type Illustration struct {
	ExternalLink string `json:"external_link"`
}

// Card is one reference card from the dataset dump. It is loaded once and
// never mutated.
type Card struct {
	Slug          string         `json:"slug"`
	Name          string         `json:"name"`
	Effect        string         `json:"effect"`
	Power         *int           `json:"power"`
	Cost          *int           `json:"cost"`
	Type          string         `json:"type"`
	Crew          []Crew         `json:"crew"`
	Rare          string         `json:"rare,omitempty"`
	APIURL        string         `json:"api_url"`
	Illustrations []Illustration `json:"illustrations"`
}

func (c Card) CrewNames() []string {
	names := make([]string, len(c.Crew))
	for i, cr := range c.Crew {
		names[i] = cr.Name
	}
	return names
}

func (c Card) IllustrationLinks() []string {
	links := make([]string, 0, len(c.Illustrations))
	for _, il := range c.Illustrations {
		links = append(links, il.ExternalLink)
	}
	return links
}
