package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jupiterclapton/murmur/internal/core/domain"
	"github.com/jupiterclapton/murmur/internal/core/ports"
)

// DirectoryService maintient le miroir local des comptes de l'Identity Provider.
// Il ne consomme que des événements déjà vérifiés (signature contrôlée en amont).
type DirectoryService struct {
	repo   ports.UserRepository
	broker ports.EventPublisher
}

func NewDirectoryService(repo ports.UserRepository, broker ports.EventPublisher) ports.DirectoryService {
	return &DirectoryService{repo: repo, broker: broker}
}

// SyncUserCreated insère le miroir d'un compte fraîchement créé.
// Un ID déjà présent remonte domain.ErrUserAlreadyExists (le webhook répondra
// 500, le provider ne rejoue pas — comportement d'origine conservé).
func (s *DirectoryService) SyncUserCreated(ctx context.Context, evt ports.UserEvent) error {
	// 1. Domaine : construction de l'entité (name reflète le username)
	user, err := domain.NewUser(evt.ID, evt.Username, evt.ImageURL)
	if err != nil {
		return err
	}

	// 2. Persistance (la contrainte PK attrape le doublon)
	if err := s.repo.Save(ctx, user); err != nil {
		return fmt.Errorf("directory: save user: %w", err)
	}

	// 3. Publication best effort — la donnée est sauvée, on ne fait pas
	// échouer le webhook si le broker tousse.
	if err := s.broker.PublishUserSynced(ctx, user.ID, true); err != nil {
		slog.Warn("⚠️ user.created event not published", "user_id", user.ID, "error", err)
	}

	return nil
}

// SyncUserUpdated rejoue un "user.updated" : name et image uniquement.
// Un ID inconnu remonte domain.ErrUserNotFound (pas de création implicite).
func (s *DirectoryService) SyncUserUpdated(ctx context.Context, evt ports.UserEvent) error {
	user, err := s.repo.GetByID(ctx, evt.ID)
	if err != nil {
		return err
	}

	user.ApplyProviderUpdate(evt.Username, evt.ImageURL)

	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("directory: update user: %w", err)
	}

	if err := s.broker.PublishUserSynced(ctx, user.ID, false); err != nil {
		slog.Warn("⚠️ user.updated event not published", "user_id", user.ID, "error", err)
	}

	return nil
}
