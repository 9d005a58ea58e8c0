package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jupiterclapton/murmur/internal/core/ports"
)

// EventHandler consomme post.created / post.liked et déclenche le fan-out
// d'invalidation des vues. C'est le "revalidate" asynchrone du système.
type EventHandler struct {
	feed ports.FeedService
}

func NewEventHandler(feed ports.FeedService) *EventHandler {
	return &EventHandler{feed: feed}
}

// Subscribe branche le handler sur les sujets post.*.
func (h *EventHandler) Subscribe(nc *nats.Conn) error {
	if _, err := nc.Subscribe("post.created", h.HandlePostCreated); err != nil {
		return err
	}
	if _, err := nc.Subscribe("post.liked", h.HandlePostLiked); err != nil {
		return err
	}
	return nil
}

func (h *EventHandler) HandlePostCreated(msg *nats.Msg) {
	type postCreatedEvent struct {
		ID       string `json:"id"`
		AuthorID string `json:"author_id"`
	}

	ctx, span := h.startSpan(msg, "process_post_created")
	defer span.End()

	var event postCreatedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		span.RecordError(err)
		slog.Error("❌ Invalid event format", "subject", msg.Subject, "error", err)
		return
	}

	slog.Info("📨 Received event", "subject", msg.Subject, "post_id", event.ID)
	h.invalidateAsync(ctx, event.AuthorID)
}

func (h *EventHandler) HandlePostLiked(msg *nats.Msg) {
	type postLikedEvent struct {
		PostID   string `json:"post_id"`
		AuthorID string `json:"author_id"`
	}

	ctx, span := h.startSpan(msg, "process_post_liked")
	defer span.End()

	var event postLikedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		span.RecordError(err)
		slog.Error("❌ Invalid event format", "subject", msg.Subject, "error", err)
		return
	}

	h.invalidateAsync(ctx, event.AuthorID)
}

// --- HELPERS ---

// startSpan extrait le contexte de trace des headers NATS (posé par le
// publisher) et ouvre un span consumer.
func (h *EventHandler) startSpan(msg *nats.Msg, name string) (context.Context, trace.Span) {
	ctx := context.Background()
	ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(msg.Header))

	tracer := otel.Tracer("murmur-events")
	return tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindConsumer))
}

// invalidateAsync lance le fan-out en background : le handler NATS ne doit
// pas bloquer le dispatcher de la connexion.
func (h *EventHandler) invalidateAsync(ctx context.Context, authorID string) {
	go func() {
		childCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		if err := h.feed.InvalidateAuthorViews(childCtx, authorID); err != nil {
			slog.Error("❌ View invalidation failed", "author_id", authorID, "error", err)
		}
	}()
}
