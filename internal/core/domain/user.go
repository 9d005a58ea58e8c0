package domain

import (
	"strings"
	"time"
)

// --- ENTITÉ ---

// User est un miroir local minimal du compte chez l'Identity Provider.
// L'ID vient du provider (pas de génération locale) : c'est lui la clé
// étrangère de tout le reste (posts, likes, follows).
type User struct {
	ID        string
	Username  *string // optionnel côté provider, unique quand présent
	Name      *string // nom affiché ; le provider ne fournit que le username, donc Name le reflète
	Image     *string // URL d'avatar
	CreatedAt time.Time
	UpdatedAt time.Time
}

// --- FACTORY (CONSTRUCTEUR) ---

// NewUser construit le miroir local à partir d'un événement "user.created".
// C'est le SEUL moyen de créer un user proprement (invariants + timestamps).
func NewUser(id string, username, imageURL *string) (*User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrUserNotFound
	}

	now := time.Now().UTC() // Toujours UTC
	return &User{
		ID:        strings.TrimSpace(id),
		Username:  normalize(username),
		Name:      normalize(username), // le display name suit le username du provider
		Image:     normalize(imageURL),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// --- COMPORTEMENTS ---

// ApplyProviderUpdate rejoue un événement "user.updated" sur le miroir local.
// Seuls name et image bougent ; l'ID et le username d'origine restent.
func (u *User) ApplyProviderUpdate(username, imageURL *string) {
	u.Name = normalize(username)
	u.Image = normalize(imageURL)
	u.touch()
}

// DisplayName retourne ce que l'UI affiche (fallback sur l'ID opaque).
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.ID
}

func (u *User) touch() {
	u.UpdatedAt = time.Now().UTC()
}

// normalize transforme les chaînes vides en NULL (le provider envoie parfois "").
func normalize(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
