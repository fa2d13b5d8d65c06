package models

import (
	"time"

	"github.com/google/uuid"
)

// Story groups a tree of chapters under a title. LastUpdated advances
// whenever a descendant chapter is newly published.
type Story struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	AuthorID    uuid.UUID `db:"author_id" json:"authorId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	LastUpdated time.Time `db:"last_updated" json:"lastUpdated"`
}
