package folio

import (
	"time"
)

const (
	// SingletonIDPrefix prefixes the fixed identifier of singleton rows.
	SingletonIDPrefix = "singleton:"

	EventTypeContentCreated = "content.created"
	EventTypeContentUpdated = "content.updated"
	EventTypeContentToggled = "content.toggled"
	EventTypeContentDeleted = "content.deleted"
	EventTypeContactCreated = "contact.created"
)

// Event is the wire format of a change notification, published on the
// realtime channel after every mutation.
type Event struct {
	Type       string    `json:"type"`
	Collection string    `json:"collection"`
	ItemID     string    `json:"itemID,omitempty"`
	Paths      []string  `json:"paths,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// ContentEnvelope is the public JSON shape of one content item.
type ContentEnvelope struct {
	ID         string         `json:"id"`
	Collection string         `json:"collection"`
	Fields     map[string]any `json:"fields"`
	Tags       []string       `json:"tags,omitempty"`
	Position   int            `json:"position"`
	IsActive   bool           `json:"isActive"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// VisitStats is the visit counter read model.
type VisitStats struct {
	TotalVisits int64 `json:"totalVisits"`
	TodayVisits int64 `json:"todayVisits"`
}

// RevalidateRequest is the payload POSTed to the front-end webhook when
// public paths go stale.
type RevalidateRequest struct {
	Paths  []string `json:"paths"`
	Secret string   `json:"secret,omitempty"`
}

// SingletonID returns the well-known fixed identifier for a singleton
// collection row.
func SingletonID(collection string) string {
	return SingletonIDPrefix + collection
}
