package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jupiterclapton/murmur/internal/core/domain"
	"github.com/jupiterclapton/murmur/internal/core/ports"
)

const BatchSize = 1000 // Taille des paquets pour le fan-out d'invalidation Redis

// FeedService sert les timelines (home + profil) et pilote l'invalidation
// des vues en cache quand le contenu bouge.
type FeedService struct {
	posts ports.PostRepository
	graph ports.GraphRepository
	users ports.UserRepository
	cache ports.FeedCache
}

func NewFeedService(posts ports.PostRepository, graph ports.GraphRepository, users ports.UserRepository, cache ports.FeedCache) *FeedService {
	return &FeedService{
		posts: posts,
		graph: graph,
		users: users,
		cache: cache,
	}
}

// HomeTimeline : S = {viewer} ∪ {comptes suivis}, posts de S du plus récent
// au plus ancien. Un viewer absent est une erreur explicite (401 côté HTTP),
// pas un feed vide — la distinction de l'original est normalisée ici.
func (s *FeedService) HomeTimeline(ctx context.Context, viewerID string) ([]*domain.TimelinePost, error) {
	if viewerID == "" {
		return nil, domain.ErrUnauthenticated
	}

	// 1. Vue en cache ?
	if cached, err := s.cache.GetHome(ctx, viewerID); err != nil {
		slog.Warn("⚠️ home view cache read failed", "viewer_id", viewerID, "error", err)
	} else if cached != nil {
		return cached, nil
	}

	// 2. Recalcul : comptes suivis + soi-même
	followingIDs, err := s.graph.ListFollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("feed: list following: %w", err)
	}
	authorIDs := append([]string{viewerID}, followingIDs...)

	timeline, err := s.posts.ListByAuthors(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("feed: list by authors: %w", err)
	}

	// 3. Dépôt en cache (best effort)
	if err := s.cache.SetHome(ctx, viewerID, timeline); err != nil {
		slog.Warn("⚠️ home view not cached", "viewer_id", viewerID, "error", err)
	}

	return timeline, nil
}

// ProfileTimeline : posts de l'utilisateur au username EXACT (sensible à la
// casse). Un username inconnu donne une liste vide, pas une erreur.
func (s *FeedService) ProfileTimeline(ctx context.Context, username string) ([]*domain.TimelinePost, error) {
	if cached, err := s.cache.GetProfile(ctx, username); err != nil {
		slog.Warn("⚠️ profile view cache read failed", "username", username, "error", err)
	} else if cached != nil {
		return cached, nil
	}

	timeline, err := s.posts.ListByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("feed: list by username: %w", err)
	}

	if err := s.cache.SetProfile(ctx, username, timeline); err != nil {
		slog.Warn("⚠️ profile view not cached", "username", username, "error", err)
	}

	return timeline, nil
}

// InvalidateAuthorViews recalcule "la home doit être refaite à la prochaine
// lecture" pour tous ceux qui voient les posts de l'auteur : ses followers
// et lui-même. Fan-out par paquets pour ne pas saturer Redis.
func (s *FeedService) InvalidateAuthorViews(ctx context.Context, authorID string) error {
	slog.Info("📢 View invalidation fan-out starting", "author_id", authorID)

	// 1. La home de l'auteur + sa vue profil
	if err := s.cache.DropHome(ctx, []string{authorID}); err != nil {
		return fmt.Errorf("feed: drop author home: %w", err)
	}
	if author, err := s.users.GetByID(ctx, authorID); err == nil && author.Username != nil {
		if err := s.cache.DropProfile(ctx, *author.Username); err != nil {
			slog.Warn("⚠️ profile view not invalidated", "username", *author.Username, "error", err)
		}
	}

	// 2. Les homes des followers, par paquets
	count := 0
	err := s.graph.StreamFollowerIDs(ctx, authorID, BatchSize, func(batch []string) error {
		count += len(batch)
		return s.cache.DropHome(ctx, batch)
	})
	if err != nil {
		return fmt.Errorf("feed: follower fan-out: %w", err)
	}

	slog.Info("✅ View invalidation complete", "author_id", authorID, "followers", count)
	return nil
}
