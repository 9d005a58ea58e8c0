package domain

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNewPost_ContentBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"empty", "", ErrEmptyPost},
		{"whitespace only", "   \n\t ", ErrEmptyPost},
		{"one char", "a", nil},
		{"hello", "hello", nil},
		{"exactly 140", strings.Repeat("x", 140), nil},
		{"141 is too long", strings.Repeat("x", 141), ErrPostTooLong},
		{"140 kanji pass (runes, not bytes)", strings.Repeat("桜", 140), nil},
		{"141 kanji fail", strings.Repeat("桜", 141), ErrPostTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post, err := NewPost("user_1", tt.content)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewPost(%q) error = %v, want %v", tt.content, err, tt.wantErr)
				}
				if post != nil {
					t.Error("no post should be created on validation failure")
				}
				return
			}

			if err != nil {
				t.Fatalf("NewPost(%q) unexpected error: %v", tt.content, err)
			}
			if post.Content != strings.TrimSpace(tt.content) {
				t.Errorf("Content = %q, want %q", post.Content, strings.TrimSpace(tt.content))
			}
			if post.ID == "" {
				t.Error("ID should be generated")
			}
			if post.CreatedAt.IsZero() {
				t.Error("CreatedAt should be set")
			}
		})
	}
}

func TestNewPost_TrimsBeforeCounting(t *testing.T) {
	// 140 runes entourées d'espaces : valide après trim
	content := "  " + strings.Repeat("x", 140) + "  "
	post, err := NewPost("user_1", content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := utf8.RuneCountInString(post.Content); got != 140 {
		t.Errorf("stored length = %d, want 140", got)
	}
}

func TestNewPost_RequiresAuthor(t *testing.T) {
	_, err := NewPost("", "hello")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("error = %v, want ErrUnauthenticated", err)
	}
}

func TestNewFollow_RejectsSelfFollow(t *testing.T) {
	_, err := NewFollow("user_1", "user_1")
	if !errors.Is(err, ErrSelfFollow) {
		t.Fatalf("error = %v, want ErrSelfFollow", err)
	}
}

func TestNewFollow_RequiresFollower(t *testing.T) {
	_, err := NewFollow("", "user_2")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("error = %v, want ErrUnauthenticated", err)
	}
}

func TestTimelinePost_LikeHelpers(t *testing.T) {
	post := &TimelinePost{LikeUserIDs: []string{"u1", "u2", "u3"}}

	if got := post.LikeCount(); got != 3 {
		t.Errorf("LikeCount = %d, want 3", got)
	}
	if !post.IsLikedBy("u2") {
		t.Error("IsLikedBy(u2) should be true")
	}
	if post.IsLikedBy("u4") {
		t.Error("IsLikedBy(u4) should be false")
	}
	if post.IsLikedBy("") {
		t.Error("IsLikedBy(\"\") should be false for anonymous viewers")
	}
}
