package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jupiterclapton/murmur/internal/core/domain"
	"github.com/jupiterclapton/murmur/internal/core/ports"
)

type GraphRepo struct {
	db *pgxpool.Pool
}

func NewGraphRepo(db *pgxpool.Pool) ports.GraphRepository {
	return &GraphRepo{db: db}
}

// ToggleFollow : même bascule atomique que pour les likes, mais la clé
// composée (follower_id, following_id) EST l'identité — le DELETE vise
// directement la paire, pas besoin de retrouver un surrogate d'abord.
func (r *GraphRepo) ToggleFollow(ctx context.Context, follow *domain.Follow) (bool, error) {
	q := `
		WITH removed AS (
			DELETE FROM follows
			WHERE follower_id = @follower_id AND following_id = @following_id
			RETURNING follower_id
		)
		INSERT INTO follows (follower_id, following_id, created_at)
		SELECT @follower_id, @following_id, @created_at
		WHERE NOT EXISTS (SELECT 1 FROM removed)
		ON CONFLICT (follower_id, following_id) DO NOTHING
		RETURNING follower_id
	`
	args := pgx.NamedArgs{
		"follower_id":  follow.FollowerID,
		"following_id": follow.FollowingID,
		"created_at":   follow.CreatedAt,
	}

	var inserted string
	err := r.db.QueryRow(ctx, q, args).Scan(&inserted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil // le DELETE a gagné : unfollowed
		}
		// Violation de FK = cible inconnue (le service a déjà vérifié, mais
		// la cible peut disparaître entre temps — jamais ici, pas de delete user)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return false, domain.ErrUserNotFound
		}
		return false, fmt.Errorf("db: toggle follow: %w", err)
	}
	return true, nil
}

// ListFollowingIDs : qui le follower suit (pour composer S = {soi} ∪ suivis).
func (r *GraphRepo) ListFollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	q := `SELECT following_id FROM follows WHERE follower_id = $1`

	rows, err := r.db.Query(ctx, q, followerID)
	if err != nil {
		return nil, fmt.Errorf("db: list following: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db: scan following id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// StreamFollowerIDs : qui suit userID, livré par paquets via 'yield'.
// On streame le curseur pgx au lieu de tout charger : le fan-out
// d'invalidation peut toucher beaucoup de monde.
func (r *GraphRepo) StreamFollowerIDs(ctx context.Context, userID string, batchSize int, yield func([]string) error) error {
	q := `SELECT follower_id FROM follows WHERE following_id = $1`

	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return fmt.Errorf("db: stream followers: %w", err)
	}
	defer rows.Close()

	batch := make([]string, 0, batchSize)

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("db: scan follower id: %w", err)
		}
		batch = append(batch, id)

		if len(batch) >= batchSize {
			if err := yield(batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := yield(batch); err != nil {
			return err
		}
	}

	return rows.Err()
}
