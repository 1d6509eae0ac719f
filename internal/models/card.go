package models

// Card is the normalized shape every upstream source is mapped into.
// Fields the upstream did not send stay empty (or nil for HP and Pricing).
type Card struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Images      CardImages  `json:"images"`
	Set         SetRef      `json:"set"`
	Number      string      `json:"number,omitempty"`
	Rarity      string      `json:"rarity,omitempty"`
	Types       []string    `json:"types,omitempty"`
	HP          *int        `json:"hp,omitempty"`
	Attacks     []Attack    `json:"attacks,omitempty"`
	Weaknesses  []TypeValue `json:"weaknesses,omitempty"`
	Resistances []TypeValue `json:"resistances,omitempty"`
	RetreatCost []string    `json:"retreatCost,omitempty"`
	Pricing     *RawPricing `json:"pricing,omitempty"`
	Source      string      `json:"source"`
}

type CardImages struct {
	Small string `json:"small,omitempty"`
	Large string `json:"large,omitempty"`
}

type SetRef struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Series string `json:"series,omitempty"`
}

type Attack struct {
	Name   string   `json:"name"`
	Cost   []string `json:"cost,omitempty"`
	Damage string   `json:"damage,omitempty"`
	Text   string   `json:"text,omitempty"`
}

type TypeValue struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"`
}

type CardSet struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Series       string    `json:"series,omitempty"`
	PrintedTotal int       `json:"printedTotal,omitempty"`
	Total        int       `json:"total,omitempty"`
	ReleaseDate  string    `json:"releaseDate,omitempty"`
	Images       SetImages `json:"images"`
	Source       string    `json:"source"`
}

type SetImages struct {
	Symbol string `json:"symbol,omitempty"`
	Logo   string `json:"logo,omitempty"`
}

// CardPage is one page of a filtered card listing.
type CardPage struct {
	Cards      []Card `json:"cards"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalCount int    `json:"totalCount"`
	Source     string `json:"source,omitempty"`
}

// DedupeCards drops repeated ids, keeping the first occurrence.
func DedupeCards(cards []Card) []Card {
	seen := make(map[string]bool, len(cards))
	out := cards[:0:0]
	for _, c := range cards {
		if c.ID == "" || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

// CardFilter narrows a card listing. The zero value matches everything.
type CardFilter struct {
	Name   string `json:"name,omitempty"`
	Set    string `json:"set,omitempty"`
	Type   string `json:"type,omitempty"`
	Rarity string `json:"rarity,omitempty"`
}

func (f CardFilter) IsZero() bool {
	return f.Name == "" && f.Set == "" && f.Type == "" && f.Rarity == ""
}
