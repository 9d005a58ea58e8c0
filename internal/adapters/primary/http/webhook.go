package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/jupiterclapton/murmur/internal/core/domain"
	"github.com/jupiterclapton/murmur/internal/core/ports"
)

// maxWebhookBody borne la taille des payloads provider (largement suffisant
// pour un événement utilisateur).
const maxWebhookBody = 1 << 20

// webhookEnvelope : enveloppe des événements de l'Identity Provider.
type webhookEnvelope struct {
	Type string `json:"type"`
	Data struct {
		ID       string  `json:"id"`
		Username *string `json:"username"`
		ImageURL *string `json:"image_url"`
	} `json:"data"`
}

// handleIdentityWebhook : POST /api/callback/clerk.
// Ordre strict : headers → signature → dispatch. Tout échec de vérification
// est un 400 SANS effet de bord ; un type inconnu est un 200 sans action
// (compatibilité ascendante avec les événements futurs du provider).
func (s *Server) handleIdentityWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("unreadable payload"))
		return
	}

	// 1. Vérification de signature (schéma svix)
	if err := s.webhooks.Verify(body,
		r.Header.Get("svix-id"),
		r.Header.Get("svix-timestamp"),
		r.Header.Get("svix-signature"),
	); err != nil {
		slog.Warn("⚠️ Webhook rejected", "error", err)
		writeError(w, http.StatusBadRequest, errors.New("webhook verification failed"))
		return
	}

	// 2. Payload désormais de confiance
	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid payload"))
		return
	}

	evt := ports.UserEvent{
		ID:       envelope.Data.ID,
		Username: envelope.Data.Username,
		ImageURL: envelope.Data.ImageURL,
	}

	// 3. Dispatch
	switch envelope.Type {
	case "user.created":
		if err := s.directory.SyncUserCreated(r.Context(), evt); err != nil {
			slog.Error("❌ User sync failed", "type", envelope.Type, "user_id", evt.ID, "error", err)
			writeError(w, http.StatusInternalServerError, errors.New("user creation failed"))
			return
		}
		writeJSON(w, http.StatusOK, mutationResponse{Success: true})

	case "user.updated":
		if err := s.directory.SyncUserUpdated(r.Context(), evt); err != nil {
			slog.Error("❌ User sync failed", "type", envelope.Type, "user_id", evt.ID, "error", err)
			status := http.StatusInternalServerError
			if errors.Is(err, domain.ErrUserNotFound) {
				status = http.StatusNotFound
			}
			writeError(w, status, errors.New("user update failed"))
			return
		}
		writeJSON(w, http.StatusOK, mutationResponse{Success: true})

	default:
		// No-op volontaire : on acquitte sans agir
		slog.Debug("📨 Ignoring webhook event", "type", envelope.Type)
		writeJSON(w, http.StatusOK, mutationResponse{Success: true})
	}
}
