package domain

// TimelinePost est le modèle de lecture des feeds : un post hydraté avec son
// auteur, la liste des userIDs qui l'aiment et le nombre de réponses.
// On transporte la liste complète des likers (pas juste le count) : le caller
// en dérive "isLiked" pour le viewer courant. O(likes) par post, assumé à
// cette échelle.
type TimelinePost struct {
	Post
	Author      User
	LikeUserIDs []string
	ReplyCount  int
}

func (t *TimelinePost) LikeCount() int {
	return len(t.LikeUserIDs)
}

func (t *TimelinePost) IsLikedBy(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range t.LikeUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
