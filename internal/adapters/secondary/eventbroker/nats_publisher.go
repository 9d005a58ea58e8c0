package eventbroker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jupiterclapton/murmur/internal/core/domain"
	"github.com/jupiterclapton/murmur/internal/core/ports"
)

const (
	StreamName     = "IDENTITY"
	SubjectPattern = "identity.>" // tous les events identity.*
)

// NatsPublisher publie les événements du service :
//   - post.created / post.liked en NATS core (consommés en interne pour
//     l'invalidation des vues, perdre un message coûte au pire un TTL) ;
//   - identity.user.* sur JetStream (persisté : le miroir d'annuaire est
//     une donnée d'intégration que d'autres consommateurs peuvent rejouer).
type NatsPublisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// NewNatsPublisher s'assure que le Stream IDENTITY existe (idempotent).
func NewNatsPublisher(nc *nats.Conn) (*NatsPublisher, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{SubjectPattern},
		Storage:  jetstream.FileStorage,
		Replicas: 1, // Mettre 3 en cluster
	})
	if err != nil {
		return nil, fmt.Errorf("create stream: %w", err)
	}

	return &NatsPublisher{nc: nc, js: js}, nil
}

// Contrats implicites avec le consumer d'invalidation.
type PostCreatedEvent struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type PostLikedEvent struct {
	PostID   string `json:"post_id"`
	AuthorID string `json:"author_id"`
}

type UserSyncedEvent struct {
	UserID string `json:"user_id"`
}

func (p *NatsPublisher) PublishPostCreated(ctx context.Context, post *domain.Post) error {
	event := PostCreatedEvent{
		ID:        post.ID,
		AuthorID:  post.AuthorID,
		Content:   post.Content,
		CreatedAt: post.CreatedAt,
	}

	slog.Info("📢 Publishing event", "subject", "post.created", "post_id", post.ID)
	return p.publishTraced(ctx, "post.created", event)
}

func (p *NatsPublisher) PublishPostLiked(ctx context.Context, postID, authorID string) error {
	return p.publishTraced(ctx, "post.liked", PostLikedEvent{PostID: postID, AuthorID: authorID})
}

func (p *NatsPublisher) PublishUserSynced(ctx context.Context, userID string, created bool) error {
	subject := "identity.user.updated"
	if created {
		subject = "identity.user.created"
	}

	data, err := json.Marshal(UserSyncedEvent{UserID: userID})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	// JetStream confirme que le serveur a bien persisté le message
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}

// publishTraced injecte le contexte de trace dans les headers NATS pour que
// le consumer hérite du TraceID de la requête HTTP d'origine.
func (p *NatsPublisher) publishTraced(ctx context.Context, subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header:  nats.Header{},
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))

	return p.nc.PublishMsg(msg)
}

// Vérification statique : le publisher remplit bien le port.
var _ ports.EventPublisher = (*NatsPublisher)(nil)
