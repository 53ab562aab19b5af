package http

import "github.com/fyrsmithlabs/wikibot/internal/catalog"

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Prefixes int    `json:"prefixes"`
	Recipes  int    `json:"recipes"`
}

// ResolveResponse is the response body for GET /api/v1/guilds/:guild/:purpose.
// Result is one of exact, fuzzy, empty, not_found.
type ResolveResponse struct {
	Result     string `json:"result"`
	Key        string `json:"key,omitempty"`
	Body       string `json:"body,omitempty"`
	Attachment string `json:"attachment,omitempty"`
	Distance   int    `json:"distance,omitempty"`
}

// KeysResponse is the response body for GET /api/v1/guilds/:guild/:purpose/keys.
type KeysResponse struct {
	Keys []string `json:"keys"`
}

// EntryRequest is the request body for creating or replacing an entry. Key
// is taken from the path on PUT.
type EntryRequest struct {
	Key        string `json:"key"`
	Body       string `json:"body"`
	Attachment string `json:"attachment"`
}

// EntryResponse echoes the stored entry.
type EntryResponse struct {
	Key        string `json:"key"`
	Body       string `json:"body"`
	Attachment string `json:"attachment,omitempty"`
}

// PrefixRequest is the request body for PUT /api/v1/guilds/:guild/prefix.
type PrefixRequest struct {
	Prefix string `json:"prefix"`
}

// PrefixResponse reports the current prefix and, after a change, the
// previous one.
type PrefixResponse struct {
	Prefix   string `json:"prefix"`
	Previous string `json:"previous,omitempty"`
	Existed  bool   `json:"existed"`
}

// RecipeResponse is the response body for GET /api/v1/recipes.
type RecipeResponse struct {
	Result   string               `json:"result"`
	Key      string               `json:"key"`
	Name     string               `json:"name"`
	Cost     float64              `json:"cost"`
	Distance int                  `json:"distance,omitempty"`
	Inputs   []catalog.Ingredient `json:"inputs"`
	Outputs  []catalog.Ingredient `json:"outputs"`
}

// ModResponse is the response body for POST /api/v1/mods/resolve.
type ModResponse struct {
	Result  string `json:"result"`
	Name    string `json:"name,omitempty"`
	Title   string `json:"title,omitempty"`
	Owner   string `json:"owner,omitempty"`
	Summary string `json:"summary,omitempty"`
	Link    string `json:"link,omitempty"`
	Results int    `json:"results"`
	// Listing is set when no mod matched closely enough.
	Listing string `json:"listing,omitempty"`
}

// ErrorResponse is the body of every non-2xx response produced by a handler.
type ErrorResponse struct {
	Error  string `json:"error"`
	Result string `json:"result,omitempty"`
}
