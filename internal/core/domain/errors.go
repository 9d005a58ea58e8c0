package domain

import "errors"

// --- ERREURS DU DOMAINE ---
// Les adapters traduisent les erreurs techniques (pgx, redis...) vers ces
// sentinelles ; la couche HTTP les traduit en statuts + payload {success, error}.
var (
	ErrUnauthenticated   = errors.New("user is not authenticated")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrPostNotFound      = errors.New("post not found")
	ErrSelfFollow        = errors.New("cannot follow yourself")

	// Erreurs de validation du contenu (affichées telles quelles dans le formulaire)
	ErrEmptyPost   = errors.New("post content is empty")
	ErrPostTooLong = errors.New("post must be 140 characters or fewer")
)

// IsValidation permet à la couche HTTP de distinguer "mauvaise saisie"
// (montrée à l'utilisateur) d'une vraie panne.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyPost) || errors.Is(err, ErrPostTooLong)
}
