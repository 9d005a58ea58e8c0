package ports

import (
	"context"

	"github.com/jupiterclapton/murmur/internal/core/domain"
)

// --- DRIVING (Ce que le core expose) ---

// UserEvent est le payload vérifié d'un webhook "user.created" / "user.updated".
// La vérification de signature a déjà eu lieu dans l'adapter HTTP : ici on
// ne reçoit que du contenu de confiance.
type UserEvent struct {
	ID       string
	Username *string
	ImageURL *string
}

// DirectoryService synchronise l'annuaire local avec l'Identity Provider.
type DirectoryService interface {
	SyncUserCreated(ctx context.Context, evt UserEvent) error
	SyncUserUpdated(ctx context.Context, evt UserEvent) error
}

// PostService porte les écritures liées aux posts.
type PostService interface {
	CreatePost(ctx context.Context, authorID, content string) (*domain.Post, error)

	// ToggleLike bascule la relation (postID, userID) et renvoie l'état final :
	// true = liké, false = retiré.
	ToggleLike(ctx context.Context, postID, userID string) (bool, error)
}

// GraphService porte les écritures du graphe social.
type GraphService interface {
	// ToggleFollow bascule (followerID → targetID) et renvoie l'état final.
	ToggleFollow(ctx context.Context, followerID, targetID string) (bool, error)
}

// FeedService porte les lectures de timeline + l'invalidation des vues.
type FeedService interface {
	// HomeTimeline : posts du viewer + des comptes suivis, du plus récent au plus ancien.
	HomeTimeline(ctx context.Context, viewerID string) ([]*domain.TimelinePost, error)

	// ProfileTimeline : posts de l'utilisateur dont le username matche exactement.
	ProfileTimeline(ctx context.Context, username string) ([]*domain.TimelinePost, error)

	// InvalidateAuthorViews est appelé quand un event post.created / post.liked
	// arrive : fan-out de suppression des vues en cache des followers.
	InvalidateAuthorViews(ctx context.Context, authorID string) error
}
