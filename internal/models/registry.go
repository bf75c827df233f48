package models

// AllModels lists every persisted model in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Goal{},
		&Community{},
		&CommunityMember{},
		&Discussion{},
		&DiscussionLike{},
		&Comment{},
		&CommentLike{},
	}
}
