package domain

import "time"

// NewsItem one entry of the news feed. Items are never updated in place:
// editing is remove + add, which yields a new ID and CreatedAt.
type NewsItem struct {
	ID             string    `json:"id"`
	Content        string    `json:"content"`
	Link           string    `json:"link,omitempty"`
	LinkText       string    `json:"linkText,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	CreatedBy      string    `json:"createdBy"`
	CreatedByEmail string    `json:"-"`
}
