package post

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"xiaoyuclone/pkg/user"
)

type Comment struct {
	Created  time.Time `json:"created" bson:"created"`
	Author   user.User `json:"author" bson:"author"`
	Body     string    `json:"body" bson:"body"`
	ID       string    `json:"id" bson:"id"`
	ParentID string    `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
}

type Voting struct {
	User int64 `json:"user"`
	Vote int8  `json:"vote"`
}

type Post struct {
	MongoID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Score            int                `json:"score"`
	Views            int                `json:"views"`
	Type             string             `json:"type"`
	Title            string             `json:"title"`
	Author           user.User          `json:"author"`
	Category         string             `json:"category"`
	Text             string             `json:"text,omitempty" bson:"text,omitempty"`
	Votes            []Voting           `json:"votes"`
	Comments         []Comment          `json:"comments"`
	Created          time.Time          `json:"created"`
	UpvotePercentage int                `json:"upvotePercentage"`
	ID               string             `json:"id" bson:"-"`
	URL              *string            `json:"url,omitempty" bson:"url,omitempty"`
}

// FindComment returns the embedded comment with the given id, or nil.
func (p *Post) FindComment(commentID string) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}

type Repository interface {
	Create(post *Post) error
	GetByID(id string) (*Post, error)
	GetAll() []*Post
	GetByUser(username string) []*Post
	GetByCategory(category string) []*Post
	Delete(postID string) error
	AddComment(postID string, comment Comment) (*Post, error)
	RemoveComment(postID string, commentID string) (*Post, error)
	AddVote(postID string, vote Voting) (*Post, error)
	CancelVote(postID string, userID int64) (*Post, error)
}
