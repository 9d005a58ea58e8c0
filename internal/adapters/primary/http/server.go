package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jupiterclapton/murmur/internal/adapters/secondary/security"
	"github.com/jupiterclapton/murmur/internal/core/ports"
)

// Server est l'adapter primaire HTTP : webhook provider, mutations de type
// "form action" et lectures de feed. Toute la logique vit dans le core, ici
// on ne fait que décoder, authentifier et traduire les erreurs.
type Server struct {
	directory ports.DirectoryService
	posts     ports.PostService
	graph     ports.GraphService
	feed      ports.FeedService

	tokens   *security.TokenVerifier
	webhooks *security.WebhookVerifier

	corsOrigins []string
}

func NewServer(
	directory ports.DirectoryService,
	posts ports.PostService,
	graph ports.GraphService,
	feed ports.FeedService,
	tokens *security.TokenVerifier,
	webhooks *security.WebhookVerifier,
	corsOrigins []string,
) *Server {
	return &Server{
		directory:   directory,
		posts:       posts,
		graph:       graph,
		feed:        feed,
		tokens:      tokens,
		webhooks:    webhooks,
		corsOrigins: corsOrigins,
	}
}

// Handler assemble le routeur et la chaîne de middlewares :
// otelhttp (racine) → CORS → session.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Webhook provider : signature svix, pas de session
	r.Post("/api/callback/clerk", s.handleIdentityWebhook)

	r.Group(func(r chi.Router) {
		r.Use(WithSession(s.tokens))

		// Lecture publique (isLiked calculé si une session traîne)
		r.Get("/api/users/{username}/posts", s.handleProfileFeed)

		// Tout le reste exige un principal authentifié
		r.Group(func(r chi.Router) {
			r.Use(RequireSession)

			r.Get("/api/feed", s.handleHomeFeed)
			r.Post("/api/posts", s.handleCreatePost)
			r.Post("/api/posts/{postID}/like", s.handleToggleLike)
			r.Post("/api/users/{userID}/follow", s.handleToggleFollow)
		})
	})

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "baggage", "sentry-trace"},
		AllowCredentials: true,
	})
	var h http.Handler = c.Handler(r)

	// OTEL HTTP (racine)
	h = otelhttp.NewHandler(h, "murmur", otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
		return fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path)
	}))

	return h
}
