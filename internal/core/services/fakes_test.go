package services

import (
	"context"
	"sort"

	"github.com/jupiterclapton/murmur/internal/core/domain"
	"github.com/jupiterclapton/murmur/internal/core/ports"
)

// Fakes en mémoire des ports secondaires. Ils reproduisent le CONTRAT des
// adapters réels (sentinelles, toggle atomique, miss de cache = nil) sans
// Postgres ni Redis.

// --- UserRepository ---

type fakeUserRepo struct {
	users   map[string]*domain.User
	saveErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Save(_ context.Context, user *domain.User) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, exists := f.users[user.ID]; exists {
		return domain.ErrUserAlreadyExists
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	f.users[user.ID] = user
	return nil
}

// --- PostRepository ---

type fakePostRepo struct {
	posts     []*domain.Post
	likes     map[string][]string // postID → likers, ordre d'arrivée
	usernames map[string]string   // username → userID

	saveErr   error
	toggleErr error
	listErr   error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		likes:     make(map[string][]string),
		usernames: make(map[string]string),
	}
}

func (f *fakePostRepo) Save(_ context.Context, post *domain.Post) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.posts = append(f.posts, post)
	return nil
}

func (f *fakePostRepo) FindByID(_ context.Context, postID string) (*domain.Post, error) {
	for _, p := range f.posts {
		if p.ID == postID {
			return p, nil
		}
	}
	return nil, domain.ErrPostNotFound
}

func (f *fakePostRepo) ToggleLike(_ context.Context, like *domain.Like) (bool, error) {
	if f.toggleErr != nil {
		return false, f.toggleErr
	}
	likers := f.likes[like.PostID]
	for i, id := range likers {
		if id == like.UserID {
			f.likes[like.PostID] = append(likers[:i:i], likers[i+1:]...)
			return false, nil
		}
	}
	f.likes[like.PostID] = append(likers, like.UserID)
	return true, nil
}

func (f *fakePostRepo) ListByAuthors(_ context.Context, authorIDs []string) ([]*domain.TimelinePost, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	wanted := make(map[string]bool, len(authorIDs))
	for _, id := range authorIDs {
		wanted[id] = true
	}

	out := []*domain.TimelinePost{}
	for _, p := range f.posts {
		if !wanted[p.AuthorID] {
			continue
		}
		out = append(out, &domain.TimelinePost{
			Post:        *p,
			Author:      domain.User{ID: p.AuthorID},
			LikeUserIDs: append([]string{}, f.likes[p.ID]...),
		})
	}

	// Même tri que le store réel : created_at DESC, id DESC en départage
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakePostRepo) ListByUsername(ctx context.Context, username string) ([]*domain.TimelinePost, error) {
	authorID, ok := f.usernames[username]
	if !ok {
		return []*domain.TimelinePost{}, nil
	}
	return f.ListByAuthors(ctx, []string{authorID})
}

// --- GraphRepository ---

type fakeGraphRepo struct {
	follows   map[string]map[string]bool // followerID → set(followingID)
	toggleErr error
}

func newFakeGraphRepo() *fakeGraphRepo {
	return &fakeGraphRepo{follows: make(map[string]map[string]bool)}
}

func (f *fakeGraphRepo) ToggleFollow(_ context.Context, follow *domain.Follow) (bool, error) {
	if f.toggleErr != nil {
		return false, f.toggleErr
	}
	set := f.follows[follow.FollowerID]
	if set == nil {
		set = make(map[string]bool)
		f.follows[follow.FollowerID] = set
	}
	if set[follow.FollowingID] {
		delete(set, follow.FollowingID)
		return false, nil
	}
	set[follow.FollowingID] = true
	return true, nil
}

func (f *fakeGraphRepo) ListFollowingIDs(_ context.Context, followerID string) ([]string, error) {
	ids := []string{}
	for id := range f.follows[followerID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeGraphRepo) StreamFollowerIDs(_ context.Context, userID string, batchSize int, yield func([]string) error) error {
	followers := []string{}
	for follower, set := range f.follows {
		if set[userID] {
			followers = append(followers, follower)
		}
	}
	sort.Strings(followers)

	for start := 0; start < len(followers); start += batchSize {
		end := start + batchSize
		if end > len(followers) {
			end = len(followers)
		}
		if err := yield(followers[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// --- FeedCache ---

type fakeFeedCache struct {
	home    map[string][]*domain.TimelinePost
	profile map[string][]*domain.TimelinePost

	droppedHome    []string
	droppedProfile []string

	getErr  error
	setErr  error
	dropErr error
}

func newFakeFeedCache() *fakeFeedCache {
	return &fakeFeedCache{
		home:    make(map[string][]*domain.TimelinePost),
		profile: make(map[string][]*domain.TimelinePost),
	}
}

func (f *fakeFeedCache) GetHome(_ context.Context, viewerID string) ([]*domain.TimelinePost, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.home[viewerID], nil // absent → (nil, nil), comme Redis
}

func (f *fakeFeedCache) SetHome(_ context.Context, viewerID string, posts []*domain.TimelinePost) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.home[viewerID] = posts
	return nil
}

func (f *fakeFeedCache) GetProfile(_ context.Context, username string) ([]*domain.TimelinePost, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.profile[username], nil
}

func (f *fakeFeedCache) SetProfile(_ context.Context, username string, posts []*domain.TimelinePost) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.profile[username] = posts
	return nil
}

func (f *fakeFeedCache) DropHome(_ context.Context, viewerIDs []string) error {
	if f.dropErr != nil {
		return f.dropErr
	}
	for _, id := range viewerIDs {
		delete(f.home, id)
		f.droppedHome = append(f.droppedHome, id)
	}
	return nil
}

func (f *fakeFeedCache) DropProfile(_ context.Context, username string) error {
	if f.dropErr != nil {
		return f.dropErr
	}
	delete(f.profile, username)
	f.droppedProfile = append(f.droppedProfile, username)
	return nil
}

// --- EventPublisher ---

type fakePublisher struct {
	createdPosts []string
	likedPosts   []string
	syncedUsers  []string
	err          error
}

func (f *fakePublisher) PublishPostCreated(_ context.Context, post *domain.Post) error {
	if f.err != nil {
		return f.err
	}
	f.createdPosts = append(f.createdPosts, post.ID)
	return nil
}

func (f *fakePublisher) PublishPostLiked(_ context.Context, postID, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.likedPosts = append(f.likedPosts, postID)
	return nil
}

func (f *fakePublisher) PublishUserSynced(_ context.Context, userID string, _ bool) error {
	if f.err != nil {
		return f.err
	}
	f.syncedUsers = append(f.syncedUsers, userID)
	return nil
}

// Vérifications de conformité aux ports
var (
	_ ports.UserRepository  = (*fakeUserRepo)(nil)
	_ ports.PostRepository  = (*fakePostRepo)(nil)
	_ ports.GraphRepository = (*fakeGraphRepo)(nil)
	_ ports.FeedCache       = (*fakeFeedCache)(nil)
	_ ports.EventPublisher  = (*fakePublisher)(nil)
)
