package models

import "time"

// Views are per-request projections returned by the service layer. They carry
// viewer-relative fields and are never persisted.

// DiscussionView is the outward shape of a discussion.
type DiscussionView struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	ContentHTML    string    `json:"content_html,omitempty"`
	AuthorID       uint      `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	CommunityID    uint      `json:"community_id"`
	CommunityName  string    `json:"community_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	CommentCount   int64     `json:"comment_count"`
	LikeCount      int64     `json:"like_count"`
	UserHasLiked   bool      `json:"user_has_liked"`
}

// CommentNode is one node of a discussion's reply tree. Replies is never nil.
type CommentNode struct {
	ID             uint           `json:"id"`
	Content        string         `json:"content"`
	AuthorID       uint           `json:"author_id"`
	AuthorUsername string         `json:"author_username"`
	DiscussionID   uint           `json:"discussion_id"`
	ParentID       *uint          `json:"parent_id,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	LikeCount      int64          `json:"like_count"`
	UserHasLiked   bool           `json:"user_has_liked"`
	Replies        []*CommentNode `json:"replies"`
}

// Size returns the number of nodes in the subtree rooted at n.
func (n *CommentNode) Size() int {
	total := 1
	for _, r := range n.Replies {
		total += r.Size()
	}
	return total
}

// CommunityView is the outward shape of a community.
type CommunityView struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	ImageURL        string    `json:"image_url"`
	IsPrivate       bool      `json:"is_private"`
	CreatorID       uint      `json:"creator_id"`
	CreatorUsername string    `json:"creator_username"`
	MemberIDs       []uint    `json:"member_ids"`
	MemberCount     int       `json:"member_count"`
	DiscussionCount int64     `json:"discussion_count"`
	Member          bool      `json:"member"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UserView is the public projection of a user.
type UserView struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	IsPublic  bool      `json:"is_public"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserView projects a user. Email is included only when withEmail is set.
func NewUserView(u *User, withEmail bool) UserView {
	v := UserView{
		ID:        u.ID,
		Username:  u.Username,
		IsPublic:  u.IsPublic,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
	if withEmail {
		v.Email = u.Email
	}
	return v
}

// LikeState is a subject's like count together with the viewer's own like.
type LikeState struct {
	Kind         LikeKind `json:"kind"`
	SubjectID    uint     `json:"subject_id"`
	LikeCount    int64    `json:"like_count"`
	UserHasLiked bool     `json:"user_has_liked"`
}

// GoalView is the outward shape of a goal. Dates use DateLayout.
type GoalView struct {
	ID           uint       `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	TargetValue  float64    `json:"target_value"`
	CurrentValue float64    `json:"current_value"`
	Unit         string     `json:"unit"`
	Status       GoalStatus `json:"status"`
	StartDate    string     `json:"start_date"`
	EndDate      *string    `json:"end_date,omitempty"`
}

func NewGoalView(g *Goal) *GoalView {
	v := &GoalView{
		ID:           g.ID,
		Title:        g.Title,
		Description:  g.Description,
		TargetValue:  g.TargetValue,
		CurrentValue: g.CurrentValue,
		Unit:         g.Unit,
		Status:       g.Status,
		StartDate:    g.StartDate.Format(DateLayout),
	}
	if g.EndDate != nil {
		end := g.EndDate.Format(DateLayout)
		v.EndDate = &end
	}
	return v
}
