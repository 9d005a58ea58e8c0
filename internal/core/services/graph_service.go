package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jupiterclapton/murmur/internal/core/domain"
	"github.com/jupiterclapton/murmur/internal/core/ports"
)

type graphService struct {
	users ports.UserRepository
	repo  ports.GraphRepository
	cache ports.FeedCache
}

func NewGraphService(users ports.UserRepository, repo ports.GraphRepository, cache ports.FeedCache) ports.GraphService {
	return &graphService{users: users, repo: repo, cache: cache}
}

// ToggleFollow bascule (follower → target) atomiquement. Le self-follow est
// refusé ici même si l'UI désactive déjà le bouton : un user dans son propre
// fan-out de followers n'a aucun sens.
func (s *graphService) ToggleFollow(ctx context.Context, followerID, targetID string) (bool, error) {
	follow, err := domain.NewFollow(followerID, targetID)
	if err != nil {
		return false, err
	}

	// 1. La cible doit exister (et on a besoin de son username pour la vue profil)
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return false, err
	}

	// 2. Bascule atomique sur la clé composée
	following, err := s.repo.ToggleFollow(ctx, follow)
	if err != nil {
		return false, fmt.Errorf("graph: toggle follow: %w", err)
	}

	// 3. Invalidation synchrone : la home du follower change de composition,
	// la vue profil de la cible change d'état de bouton. Best effort.
	if err := s.cache.DropHome(ctx, []string{followerID}); err != nil {
		slog.Warn("⚠️ home view not invalidated", "viewer_id", followerID, "error", err)
	}
	if target.Username != nil {
		if err := s.cache.DropProfile(ctx, *target.Username); err != nil {
			slog.Warn("⚠️ profile view not invalidated", "username", *target.Username, "error", err)
		}
	}

	return following, nil
}
