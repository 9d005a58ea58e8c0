package ports

import (
	"context"

	"github.com/jupiterclapton/murmur/internal/core/domain"
)

// --- DRIVEN (Ce dont le core a besoin) ---

type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type PostRepository interface {
	Save(ctx context.Context, post *domain.Post) error
	FindByID(ctx context.Context, postID string) (*domain.Post, error)

	// ToggleLike est la primitive atomique "delete si présent, sinon insert"
	// (un seul aller-retour SQL). Renvoie l'état final : true = le like existe.
	ToggleLike(ctx context.Context, like *domain.Like) (bool, error)

	// Lectures hydratées (auteur + likers + reply count), triées
	// created_at DESC avec id DESC en départage.
	ListByAuthors(ctx context.Context, authorIDs []string) ([]*domain.TimelinePost, error)
	ListByUsername(ctx context.Context, username string) ([]*domain.TimelinePost, error)
}

type GraphRepository interface {
	// ToggleFollow : même primitive atomique que ToggleLike, sur la clé
	// composée (follower_id, following_id).
	ToggleFollow(ctx context.Context, follow *domain.Follow) (bool, error)

	ListFollowingIDs(ctx context.Context, followerID string) ([]string, error)

	// StreamFollowerIDs renvoie les followers par paquets via 'yield'
	// (fan-out d'invalidation sans tout charger en RAM).
	StreamFollowerIDs(ctx context.Context, userID string, batchSize int, yield func([]string) error) error
}

// FeedCache est la vue matérialisée des timelines. Un miss renvoie (nil, nil).
type FeedCache interface {
	GetHome(ctx context.Context, viewerID string) ([]*domain.TimelinePost, error)
	SetHome(ctx context.Context, viewerID string, posts []*domain.TimelinePost) error
	GetProfile(ctx context.Context, username string) ([]*domain.TimelinePost, error)
	SetProfile(ctx context.Context, username string, posts []*domain.TimelinePost) error

	// DropHome supprime les vues home d'un paquet de viewers (pipeline).
	DropHome(ctx context.Context, viewerIDs []string) error
	DropProfile(ctx context.Context, username string) error
}

type EventPublisher interface {
	PublishPostCreated(ctx context.Context, post *domain.Post) error
	PublishPostLiked(ctx context.Context, postID, authorID string) error

	// PublishUserSynced notifie le reste du monde qu'un miroir local a bougé
	// (best effort, jamais bloquant pour le webhook).
	PublishUserSynced(ctx context.Context, userID string, created bool) error
}
