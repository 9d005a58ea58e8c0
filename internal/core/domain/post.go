package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxPostLength : 140 caractères (des runes, pas des octets — l'UI d'origine
// est japonaise, un kanji compte pour un).
const MaxPostLength = 140

type Post struct {
	ID        string
	AuthorID  string
	Content   string
	CreatedAt time.Time
}

// NewPost valide et construit un post. 140 runes passent, 141 non.
func NewPost(authorID, content string) (*Post, error) {
	if authorID == "" {
		return nil, ErrUnauthenticated
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrEmptyPost
	}
	if utf8.RuneCountInString(trimmed) > MaxPostLength {
		return nil, ErrPostTooLong
	}

	return &Post{
		ID:        uuid.NewString(), // L'identité est générée ICI, pas en DB
		AuthorID:  authorID,
		Content:   trimmed,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Like : "userID aime postID". L'unicité (post_id, user_id) est garantie
// par la contrainte en base, l'ID n'est qu'un surrogate.
type Like struct {
	ID        string
	PostID    string
	UserID    string
	CreatedAt time.Time
}

func NewLike(postID, userID string) *Like {
	return &Like{
		ID:        uuid.NewString(),
		PostID:    postID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}

// Follow : relation (follower → following), identifiée par la paire elle-même.
type Follow struct {
	FollowerID  string
	FollowingID string
	CreatedAt   time.Time
}

func NewFollow(followerID, followingID string) (*Follow, error) {
	if followerID == "" {
		return nil, ErrUnauthenticated
	}
	if followerID == followingID {
		return nil, ErrSelfFollow
	}
	return &Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
