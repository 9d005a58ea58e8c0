package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jupiterclapton/murmur/internal/core/domain"
	"github.com/jupiterclapton/murmur/internal/core/ports"
)

type postService struct {
	repo      ports.PostRepository
	publisher ports.EventPublisher
}

func NewPostService(repo ports.PostRepository, pub ports.EventPublisher) ports.PostService {
	return &postService{repo: repo, publisher: pub}
}

// CreatePost valide (1..140 runes après trim) puis insère.
// Les erreurs de validation sortent en sentinelles domain.* : la couche HTTP
// les convertit en {success:false, error} — jamais de panic, jamais de throw.
func (s *postService) CreatePost(ctx context.Context, authorID, content string) (*domain.Post, error) {
	post, err := domain.NewPost(authorID, content)
	if err != nil {
		return nil, err
	}

	// 1. Sauvegarde DB (Source of Truth)
	if err := s.repo.Save(ctx, post); err != nil {
		return nil, fmt.Errorf("post: save: %w", err)
	}

	// 2. Publication de l'événement (déclenche l'invalidation des feeds).
	// Best effort : la donnée est sauvée, les vues expireront par TTL au pire.
	if err := s.publisher.PublishPostCreated(ctx, post); err != nil {
		slog.Warn("⚠️ post.created event not published", "post_id", post.ID, "error", err)
	}

	return post, nil
}

// ToggleLike bascule la relation like en UNE requête atomique côté store :
// pas de fenêtre lookup-then-write, deux toggles concurrents ne peuvent pas
// créer de doublon (contrainte UNIQUE (post_id, user_id) en dernier rempart).
func (s *postService) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	if userID == "" {
		return false, domain.ErrUnauthenticated
	}

	// 1. Le post doit exister (le FK l'attraperait aussi, mais on veut un
	// ErrPostNotFound propre plutôt qu'une violation de contrainte).
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return false, err
	}

	// 2. Bascule atomique
	liked, err := s.repo.ToggleLike(ctx, domain.NewLike(postID, userID))
	if err != nil {
		// Contrairement à l'original, on REMONTE l'erreur : le caller sait
		// que son action n'a pas pris, au lieu d'un drift silencieux.
		return false, fmt.Errorf("post: toggle like: %w", err)
	}

	// 3. Invalidation des vues home via event (fan-out asynchrone)
	if err := s.publisher.PublishPostLiked(ctx, post.ID, post.AuthorID); err != nil {
		slog.Warn("⚠️ post.liked event not published", "post_id", post.ID, "error", err)
	}

	return liked, nil
}
