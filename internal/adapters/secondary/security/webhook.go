package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Erreurs de vérification : toutes finissent en 400 côté HTTP, sans effet de bord.
var (
	ErrMissingHeaders     = errors.New("missing webhook headers")
	ErrInvalidSignature   = errors.New("webhook signature verification failed")
	ErrTimestampTolerance = errors.New("webhook timestamp outside tolerance")
)

// timestampTolerance : fenêtre anti-rejeu du schéma svix.
const timestampTolerance = 5 * time.Minute

// WebhookVerifier implémente le schéma de signature svix utilisé par
// l'Identity Provider :
//
//	secret  : "whsec_" + base64(clé)
//	signé   : HMAC-SHA256("<id>.<timestamp>.<body>")
//	header  : "v1,<base64(sig)>" (plusieurs candidats séparés par des espaces,
//	          pour la rotation de secret)
type WebhookVerifier struct {
	key []byte
	now func() time.Time // injectable pour les tests
}

func NewWebhookVerifier(secret string) (*WebhookVerifier, error) {
	raw := strings.TrimPrefix(secret, "whsec_")
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook secret: %w", err)
	}
	return &WebhookVerifier{key: key, now: time.Now}, nil
}

// Verify contrôle timestamp puis signature. Tout échec est terminal :
// le payload ne doit jamais être traité.
func (v *WebhookVerifier) Verify(body []byte, msgID, timestamp, signature string) error {
	if msgID == "" || timestamp == "" || signature == "" {
		return ErrMissingHeaders
	}

	// 1. Fenêtre anti-rejeu
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	drift := v.now().UTC().Sub(time.Unix(ts, 0))
	if drift > timestampTolerance || drift < -timestampTolerance {
		return ErrTimestampTolerance
	}

	// 2. Signature attendue sur "<id>.<timestamp>.<body>"
	mac := hmac.New(sha256.New, v.key)
	fmt.Fprintf(mac, "%s.%s.", msgID, timestamp)
	mac.Write(body)
	expected := mac.Sum(nil)

	// 3. Comparaison en temps constant contre chaque candidat "v1,<sig>"
	for _, candidate := range strings.Fields(signature) {
		version, sig, found := strings.Cut(candidate, ",")
		if !found || version != "v1" {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}

	return ErrInvalidSignature
}

// Sign produit les valeurs d'en-tête pour un payload donné. Utilisé par les
// tests pour fabriquer des webhooks valides ; l'app en prod ne signe jamais.
func (v *WebhookVerifier) Sign(body []byte, msgID string, at time.Time) (timestamp, signature string) {
	timestamp = strconv.FormatInt(at.Unix(), 10)

	mac := hmac.New(sha256.New, v.key)
	fmt.Fprintf(mac, "%s.%s.", msgID, timestamp)
	mac.Write(body)

	signature = "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return timestamp, signature
}
