package domain

import (
	"errors"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestNewUser(t *testing.T) {
	user, err := NewUser("user_2abc", strPtr("yasu"), strPtr("https://img.example/a.png"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.ID != "user_2abc" {
		t.Errorf("ID = %q", user.ID)
	}
	if user.Username == nil || *user.Username != "yasu" {
		t.Errorf("Username = %v, want yasu", user.Username)
	}
	// Le display name reflète le username fourni par le provider
	if user.Name == nil || *user.Name != "yasu" {
		t.Errorf("Name = %v, want yasu", user.Name)
	}
	if user.CreatedAt.IsZero() || !user.CreatedAt.Equal(user.UpdatedAt) {
		t.Error("timestamps should be set and equal at creation")
	}
}

func TestNewUser_EmptyFieldsBecomeNil(t *testing.T) {
	user, err := NewUser("user_1", strPtr("  "), strPtr(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Username != nil {
		t.Errorf("blank username should normalize to nil, got %q", *user.Username)
	}
	if user.Image != nil {
		t.Errorf("blank image should normalize to nil, got %q", *user.Image)
	}
}

func TestNewUser_RequiresID(t *testing.T) {
	if _, err := NewUser("  ", nil, nil); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("error = %v, want ErrUserNotFound", err)
	}
}

func TestApplyProviderUpdate(t *testing.T) {
	user, _ := NewUser("user_1", strPtr("old"), strPtr("old.png"))
	before := user.UpdatedAt

	user.ApplyProviderUpdate(strPtr("new"), strPtr("new.png"))

	if user.Name == nil || *user.Name != "new" {
		t.Errorf("Name = %v, want new", user.Name)
	}
	if user.Image == nil || *user.Image != "new.png" {
		t.Errorf("Image = %v, want new.png", user.Image)
	}
	// L'identité ne bouge jamais sur un update provider
	if user.ID != "user_1" {
		t.Errorf("ID changed: %q", user.ID)
	}
	if user.Username == nil || *user.Username != "old" {
		t.Errorf("Username should keep original value, got %v", user.Username)
	}
	if user.UpdatedAt.Before(before) {
		t.Error("UpdatedAt should advance")
	}
}

func TestDisplayName_FallsBackToID(t *testing.T) {
	user, _ := NewUser("user_1", nil, nil)
	if got := user.DisplayName(); got != "user_1" {
		t.Errorf("DisplayName = %q, want user_1", got)
	}

	user.Name = strPtr("yasu")
	if got := user.DisplayName(); got != "yasu" {
		t.Errorf("DisplayName = %q, want yasu", got)
	}
}
