package domain

import "time"

// ContentItem is one record of a named content collection, without
// persistence concerns. Fields carries the collection-specific payload; Tags
// is the shared list-valued slot (skill items, keywords, tech stack).
type ContentItem struct {
	ID         string         `json:"id"`
	Collection string         `json:"collection"`
	Fields     map[string]any `json:"fields"`
	Tags       []string       `json:"tags,omitempty"`
	Position   int            `json:"position"`
	IsActive   bool           `json:"isActive"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// ContentPatch is a partial update. Nil members are left untouched.
type ContentPatch struct {
	Fields map[string]any
	Tags   *[]string
}
