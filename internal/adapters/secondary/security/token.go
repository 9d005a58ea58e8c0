package security

import (
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jupiterclapton/murmur/internal/core/domain"
)

// TokenVerifier valide les jetons de session émis par l'Identity Provider.
// On ne fait QUE vérifier : la clé privée vit chez le provider, nous n'avons
// que sa clé publique.
type TokenVerifier struct {
	publicKey *rsa.PublicKey
}

func NewTokenVerifier(publicKeyPEM []byte) (*TokenVerifier, error) {
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session public key: %w", err)
	}
	return &TokenVerifier{publicKey: pubKey}, nil
}

// Verify contrôle la signature et renvoie l'identifiant utilisateur (Subject).
func (v *TokenVerifier) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Sécurité critique : épingler l'algo RS256.
		// Empêche les attaques où l'attaquant force l'algo à "None" ou "HS256".
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.publicKey, nil
	})
	if err != nil {
		return "", domain.ErrUnauthenticated // expiré ou signature invalide
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", domain.ErrUnauthenticated
	}

	return claims.Subject, nil
}
