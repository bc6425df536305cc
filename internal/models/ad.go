package models

import "time"

const DefaultAdWeight = 1

// Ad is a creative assigned to a zone. Weight is the static selection weight;
// the serving path scales it by recent performance.
type Ad struct {
	ID        int64     `json:"id"`
	ZoneID    int64     `json:"zone_id"`
	HTML      string    `json:"html"`
	URL       string    `json:"url"`
	Weight    int       `json:"weight"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Snippet returns the creative truncated to n bytes with a trailing ellipsis.
func (a Ad) Snippet(n int) string {
	if len(a.HTML) > n {
		return a.HTML[:n] + "..."
	}
	return a.HTML
}
