package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jupiterclapton/murmur/internal/core/domain"
	"github.com/jupiterclapton/murmur/internal/core/ports"
)

// timelineSelect hydrate chaque post avec son auteur, la liste complète des
// userIDs qui l'aiment et le nombre de réponses. Le tri départage les égalités
// de created_at par id (déterministe, l'original ne le garantissait pas).
const timelineSelect = `
	SELECT p.id, p.author_id, p.content, p.created_at,
	       u.username, u.name, u.image, u.created_at, u.updated_at,
	       COALESCE((SELECT array_agg(l.user_id ORDER BY l.created_at) FROM likes l WHERE l.post_id = p.id), '{}'),
	       (SELECT count(*) FROM replies rp WHERE rp.post_id = p.id)
	FROM posts p
	JOIN users u ON u.id = p.author_id
`

type PostRepo struct {
	db *pgxpool.Pool
}

func NewPostRepo(db *pgxpool.Pool) ports.PostRepository {
	return &PostRepo{db: db}
}

// Save : insertion simple, l'ID est généré par le domaine.
func (r *PostRepo) Save(ctx context.Context, post *domain.Post) error {
	q := `
		INSERT INTO posts (id, author_id, content, created_at)
		VALUES (@id, @author_id, @content, @created_at)
	`
	args := pgx.NamedArgs{
		"id":         post.ID,
		"author_id":  post.AuthorID,
		"content":    post.Content,
		"created_at": post.CreatedAt,
	}

	_, err := r.db.Exec(ctx, q, args)
	return err
}

func (r *PostRepo) FindByID(ctx context.Context, postID string) (*domain.Post, error) {
	q := `SELECT id, author_id, content, created_at FROM posts WHERE id = $1`

	var p domain.Post
	err := r.db.QueryRow(ctx, q, postID).Scan(&p.ID, &p.AuthorID, &p.Content, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("db: find post: %w", err)
	}
	return &p, nil
}

// ToggleLike : bascule en UNE requête atomique. La CTE supprime le like s'il
// existe ; l'INSERT ne s'exécute que si rien n'a été supprimé. Deux exécutions
// concurrentes se sérialisent sur la contrainte UNIQUE (post_id, user_id) et
// le conflit est traité comme un succès (DO NOTHING), pas comme une panne.
func (r *PostRepo) ToggleLike(ctx context.Context, like *domain.Like) (bool, error) {
	q := `
		WITH removed AS (
			DELETE FROM likes
			WHERE post_id = @post_id AND user_id = @user_id
			RETURNING id
		)
		INSERT INTO likes (id, post_id, user_id, created_at)
		SELECT @id, @post_id, @user_id, @created_at
		WHERE NOT EXISTS (SELECT 1 FROM removed)
		ON CONFLICT (post_id, user_id) DO NOTHING
		RETURNING id
	`
	args := pgx.NamedArgs{
		"id":         like.ID,
		"post_id":    like.PostID,
		"user_id":    like.UserID,
		"created_at": like.CreatedAt,
	}

	var insertedID string
	err := r.db.QueryRow(ctx, q, args).Scan(&insertedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Pas de ligne retournée = le DELETE a gagné (ou conflit) : unliked
			return false, nil
		}
		return false, fmt.Errorf("db: toggle like: %w", err)
	}
	return true, nil
}

// ListByAuthors : hydratation batch avec ANY($1), une seule requête SQL.
func (r *PostRepo) ListByAuthors(ctx context.Context, authorIDs []string) ([]*domain.TimelinePost, error) {
	q := timelineSelect + `
		WHERE p.author_id = ANY($1)
		ORDER BY p.created_at DESC, p.id DESC
	`
	rows, err := r.db.Query(ctx, q, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("db: list by authors: %w", err)
	}
	defer rows.Close()

	return r.collectTimeline(rows)
}

// ListByUsername : match EXACT (sensible à la casse, collation du store).
func (r *PostRepo) ListByUsername(ctx context.Context, username string) ([]*domain.TimelinePost, error) {
	q := timelineSelect + `
		WHERE u.username = $1
		ORDER BY p.created_at DESC, p.id DESC
	`
	rows, err := r.db.Query(ctx, q, username)
	if err != nil {
		return nil, fmt.Errorf("db: list by username: %w", err)
	}
	defer rows.Close()

	return r.collectTimeline(rows)
}

// --- HELPERS ---

func (r *PostRepo) collectTimeline(rows pgx.Rows) ([]*domain.TimelinePost, error) {
	timeline := []*domain.TimelinePost{}
	for rows.Next() {
		var t domain.TimelinePost
		err := rows.Scan(
			&t.Post.ID, &t.Post.AuthorID, &t.Post.Content, &t.Post.CreatedAt,
			&t.Author.Username, &t.Author.Name, &t.Author.Image, &t.Author.CreatedAt, &t.Author.UpdatedAt,
			&t.LikeUserIDs, &t.ReplyCount,
		)
		if err != nil {
			return nil, fmt.Errorf("db: scan timeline row: %w", err)
		}
		t.Author.ID = t.Post.AuthorID
		timeline = append(timeline, &t)
	}
	return timeline, rows.Err()
}
