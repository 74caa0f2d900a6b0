package models

import "time"

// Post is a playtest announcement created by a Dev account. Full post
// content lives with the content collaborator; the identity service only
// records authorship for the role-gated creation path.
type Post struct {
	ID          string
	AuthorID    string
	Title       string
	Genre       string
	Description string
	CreatedAt   time.Time
}
