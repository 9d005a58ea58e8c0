package http

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/jupiterclapton/murmur/internal/core/domain"
)

// Formes JSON de l'API. Le contrat {success, error} est UNIFORME sur toutes
// les mutations — l'original renvoyait un state structuré pour la création de
// post mais levait des exceptions pour like/follow, c'est corrigé ici.

type mutationResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type authorResponse struct {
	ID       string  `json:"id"`
	Username *string `json:"username"`
	Name     *string `json:"name"`
	Image    *string `json:"image"`
}

type timelinePostResponse struct {
	ID          string         `json:"id"`
	Content     string         `json:"content"`
	CreatedAt   time.Time      `json:"createdAt"`
	Author      authorResponse `json:"author"`
	LikeUserIDs []string       `json:"likeUserIds"`
	LikeCount   int            `json:"likeCount"`
	IsLiked     bool           `json:"isLiked"`
	ReplyCount  int            `json:"replyCount"`
}

// toTimelineResponse dérive likeCount / isLiked de la liste des likers,
// côté serveur, pour épargner le calcul au client.
func toTimelineResponse(timeline []*domain.TimelinePost, viewerID string) []timelinePostResponse {
	out := make([]timelinePostResponse, len(timeline))
	for i, t := range timeline {
		likeUserIDs := t.LikeUserIDs
		if likeUserIDs == nil {
			likeUserIDs = []string{}
		}
		out[i] = timelinePostResponse{
			ID:        t.Post.ID,
			Content:   t.Post.Content,
			CreatedAt: t.Post.CreatedAt,
			Author: authorResponse{
				ID:       t.Author.ID,
				Username: t.Author.Username,
				Name:     t.Author.Name,
				Image:    t.Author.Image,
			},
			LikeUserIDs: likeUserIDs,
			LikeCount:   t.LikeCount(),
			IsLiked:     t.IsLikedBy(viewerID),
			ReplyCount:  t.ReplyCount,
		}
	}
	return out
}

// --- HELPERS D'ÉCRITURE ---

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, mutationResponse{Success: false, Error: err.Error()})
}
