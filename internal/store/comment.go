// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"pressroom/internal/models"
)

// CommentStore manages comments in the database. Comments are append-only:
// there are no update or delete operations.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore returns a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

// Create inserts a new comment and returns it with the generated id and
// timestamp. The caller is responsible for verifying the post exists first.
func (s *CommentStore) Create(content string, postID, authorID uuid.UUID) (*models.Comment, error) {
	c := &models.Comment{}
	err := s.db.QueryRow(`
		INSERT INTO comments (content, post_id, author_id)
		VALUES ($1, $2, $3)
		RETURNING id, content, post_id, author_id, created_at
	`, content, postID, authorID).Scan(
		&c.ID, &c.Content, &c.PostID, &c.AuthorID, &c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

// ListByPost returns all comments on a post, oldest first, with the
// author's display name joined in for rendering.
func (s *CommentStore) ListByPost(postID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.content, c.post_id, c.author_id, c.created_at,
		       COALESCE(u.name, '') AS author_name
		FROM comments c
		LEFT JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments by post: %w", err)
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(
			&c.ID, &c.Content, &c.PostID, &c.AuthorID, &c.CreatedAt, &c.AuthorName,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
