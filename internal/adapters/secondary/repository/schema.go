package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema crée les tables et index au démarrage (idempotent).
// Quatre tables métier + replies (lue uniquement en COUNT(*) par le feed).
//
// Deux contraintes portent la correction du design d'origine :
//   - UNIQUE (post_id, user_id) sur likes : l'original faisait
//     lookup-then-insert sans contrainte, deux toggles concurrents
//     pouvaient créer un doublon.
//   - PRIMARY KEY (follower_id, following_id) sur follows : la paire EST
//     l'identité, pas de surrogate.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id         text PRIMARY KEY,
			username   text UNIQUE,
			name       text,
			image      text,
			created_at timestamptz NOT NULL,
			updated_at timestamptz NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS posts (
			id         uuid PRIMARY KEY,
			author_id  text NOT NULL REFERENCES users(id),
			content    text NOT NULL CHECK (char_length(content) BETWEEN 1 AND 140),
			created_at timestamptz NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_author_created
			ON posts (author_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS likes (
			id         uuid PRIMARY KEY,
			post_id    uuid NOT NULL REFERENCES posts(id),
			user_id    text NOT NULL REFERENCES users(id),
			created_at timestamptz NOT NULL,
			UNIQUE (post_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS follows (
			follower_id  text NOT NULL REFERENCES users(id),
			following_id text NOT NULL REFERENCES users(id),
			created_at   timestamptz NOT NULL,
			PRIMARY KEY (follower_id, following_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_follows_following
			ON follows (following_id)`,
		`CREATE TABLE IF NOT EXISTS replies (
			id         uuid PRIMARY KEY,
			post_id    uuid NOT NULL REFERENCES posts(id),
			author_id  text NOT NULL REFERENCES users(id),
			content    text NOT NULL,
			created_at timestamptz NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
