package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/jupiterclapton/murmur/internal/core/domain"
)

// handleCreatePost : POST /api/posts, body {"post": "..."}.
// Les erreurs de validation reviennent dans le contrat {success:false, error}
// (affichées telles quelles dans le formulaire), jamais en exception.
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Post string `json:"post"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	post, err := s.posts.CreatePost(r.Context(), ForContext(r.Context()), body.Post)
	if err != nil {
		s.writeMutationError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		mutationResponse
		ID        string    `json:"id"`
		Content   string    `json:"content"`
		CreatedAt time.Time `json:"createdAt"`
	}{
		mutationResponse: mutationResponse{Success: true},
		ID:               post.ID,
		Content:          post.Content,
		CreatedAt:        post.CreatedAt,
	})
}

// handleToggleLike : POST /api/posts/{postID}/like. Renvoie l'état final —
// le client réconcilie son état optimiste dessus.
func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	liked, err := s.posts.ToggleLike(r.Context(), postID, ForContext(r.Context()))
	if err != nil {
		s.writeMutationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		mutationResponse
		Liked bool `json:"liked"`
	}{mutationResponse{Success: true}, liked})
}

// handleToggleFollow : POST /api/users/{userID}/follow.
func (s *Server) handleToggleFollow(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "userID")

	following, err := s.graph.ToggleFollow(r.Context(), ForContext(r.Context()), targetID)
	if err != nil {
		s.writeMutationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		mutationResponse
		Following bool `json:"following"`
	}{mutationResponse{Success: true}, following})
}

// handleHomeFeed : GET /api/feed (authentifié).
func (s *Server) handleHomeFeed(w http.ResponseWriter, r *http.Request) {
	viewerID := ForContext(r.Context())

	timeline, err := s.feed.HomeTimeline(r.Context(), viewerID)
	if err != nil {
		s.writeMutationError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTimelineResponse(timeline, viewerID))
}

// handleProfileFeed : GET /api/users/{username}/posts (lecture publique).
// Un username inconnu donne une liste vide, comme la requête d'origine.
func (s *Server) handleProfileFeed(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	timeline, err := s.feed.ProfileTimeline(r.Context(), username)
	if err != nil {
		s.writeMutationError(w, err)
		return
	}

	// isLiked reste calculé pour le viewer courant s'il y en a un
	writeJSON(w, http.StatusOK, toTimelineResponse(timeline, ForContext(r.Context())))
}

// writeMutationError traduit les sentinelles du domaine en statut + contrat
// {success:false, error}.
func (s *Server) writeMutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, domain.ErrUnauthenticated)
	case domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrSelfFollow):
		writeError(w, http.StatusBadRequest, domain.ErrSelfFollow)
	case errors.Is(err, domain.ErrPostNotFound), errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrUserAlreadyExists):
		writeError(w, http.StatusConflict, err)
	default:
		// Panne store / broker : on ne cache plus rien au caller, mais on ne
		// fuite pas le détail technique non plus.
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}
