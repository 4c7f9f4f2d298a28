package models

// Requests for the discovery HTTP endpoints. Defined in domain for
// consistency and reuse.

type NarrativesRequest struct {
	Window string `query:"window" json:"window" default:"24h"`
}

type ParentsRequest struct {
	Window string `query:"window" json:"window" default:"24h"`
	Limit  int    `query:"limit" json:"limit" default:"25" validate:"gte=1,lte=100"`
	Cursor string `query:"cursor" json:"cursor"`
}

type RefreshRequest struct {
	Window string `query:"window" json:"window" default:"24h"`
}
