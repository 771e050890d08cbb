// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Post represents a blog article. CreateBy records the user who created the
// post and never changes afterwards; ownership checks on update and delete
// compare against it.
type Post struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Author     string     `json:"author"` // Free-text display name shown on the frontend
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	CreateBy   uuid.UUID  `json:"create_by"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// PostPatch carries a partial update for a post. Nil fields keep their
// stored value; the owner and timestamps are never patchable.
type PostPatch struct {
	Title      *string    `json:"title"`
	Content    *string    `json:"content"`
	Author     *string    `json:"author"`
	CategoryID *uuid.UUID `json:"category_id"`
}
