package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"xiaoyuclone/pkg/claims"
	"xiaoyuclone/pkg/notification"
	"xiaoyuclone/pkg/user"
)

type ServicePost interface {
	GetAll() []*Post
	CreatePost(post *Post, username string, id int64) error
	GetByID(id string) (*Post, error)
	AddComment(postID, comment, parentID string, claims *claims.Claims) (*Post, error)
	RemoveComment(postID, commID string) (*Post, error)
	Delete(postID string) error
	AddVote(postID, action string, claims *claims.Claims) (*Post, error)
	GetByUser(username string) []*Post
	GetByCategory(category string) []*Post
}

// Notifier is the producer hook invoked after a comment or vote has
// been persisted.
type Notifier interface {
	Notify(ctx context.Context, n *notification.Notification) error
}

type PostService struct {
	Repo     Repository
	Notifier Notifier
	Logger   *slog.Logger
}

func NewService(repo Repository, notifier Notifier, logger *slog.Logger) *PostService {
	return &PostService{Repo: repo, Notifier: notifier, Logger: logger}
}

func (s *PostService) GetAll() []*Post {
	return s.Repo.GetAll()
}

func (s *PostService) CreatePost(post *Post, username string, id int64) error {
	post.Score = 1
	post.Views = 0
	post.Author = user.User{
		Username: username,
		ID:       id,
	}
	post.Votes = []Voting{{User: id, Vote: 1}}
	post.Created = time.Now()
	post.UpvotePercentage = 100
	/* mongo rejects a nil comments field, which would make the first
	comment impossible to add */
	post.Comments = make([]Comment, 0, 1)

	return s.Repo.Create(post)
}

func (s *PostService) GetByID(id string) (*Post, error) {
	return s.Repo.GetByID(id)
}

func (s *PostService) AddComment(postID, comment, parentID string, claims *claims.Claims) (*Post, error) {
	readyComment := Comment{
		Created: time.Now(),
		Author: user.User{
			Username: claims.User.Username,
			ID:       claims.User.ID,
		},
		Body:     comment,
		ParentID: parentID,
	}

	updated, err := s.Repo.AddComment(postID, readyComment)
	if err != nil {
		return nil, err
	}

	s.notifyComment(updated, readyComment)

	return updated, nil
}

// notifyComment notifies the post author, and for threaded replies
// additionally the replied-to comment's author when that is a third
// party. The actor never gets notified about their own action, and a
// notification failure never fails the comment.
func (s *PostService) notifyComment(post *Post, comment Comment) {
	ctx := context.Background()
	actor := comment.Author

	content := fmt.Sprintf("%s commented on your post", actor.Username)
	if comment.ParentID != "" {
		content = fmt.Sprintf("%s replied to your post", actor.Username)

		if parent := post.FindComment(comment.ParentID); parent != nil &&
			parent.Author.ID != post.Author.ID && parent.Author.ID != actor.ID {
			s.notify(ctx, &notification.Notification{
				UserID:  parent.Author.ID,
				Type:    notification.TypeComment,
				Title:   "New reply",
				Content: fmt.Sprintf("%s replied to your comment", actor.Username),
				RefID:   post.ID,
				RefType: notification.RefTypePost,
			})
		}
	}

	if post.Author.ID == actor.ID {
		return
	}
	s.notify(ctx, &notification.Notification{
		UserID:  post.Author.ID,
		Type:    notification.TypeComment,
		Title:   "New comment",
		Content: content,
		RefID:   post.ID,
		RefType: notification.RefTypePost,
	})
}

func (s *PostService) notify(ctx context.Context, n *notification.Notification) {
	if err := s.Notifier.Notify(ctx, n); err != nil {
		s.Logger.Error("notification create", "error", err, "user", n.UserID, "ref", n.RefID)
	}
}

func (s *PostService) RemoveComment(postID, commID string) (*Post, error) {
	return s.Repo.RemoveComment(postID, commID)
}

func (s *PostService) Delete(postID string) error {
	return s.Repo.Delete(postID)
}

func (s *PostService) AddVote(postID, action string, claims *claims.Claims) (post *Post, err error) {
	if claims == nil || claims.User.ID == 0 {
		return nil, errors.New("missing user")
	}
	userID := claims.User.ID

	switch action {
	case "upvote":
		post, err = s.Repo.AddVote(postID, Voting{User: userID, Vote: 1})
	case "downvote":
		post, err = s.Repo.AddVote(postID, Voting{User: userID, Vote: -1})
	case "unvote":
		post, err = s.Repo.CancelVote(postID, userID)
	default:
		return nil, errors.New("invalid action")
	}
	if err != nil {
		return nil, err
	}

	if action == "upvote" && post.Author.ID != userID {
		s.notify(context.Background(), &notification.Notification{
			UserID:  post.Author.ID,
			Type:    notification.TypeLike,
			Title:   "New like",
			Content: fmt.Sprintf("%s liked your post", claims.User.Username),
			RefID:   post.ID,
			RefType: notification.RefTypePost,
		})
	}

	return post, nil
}

func (s *PostService) GetByUser(username string) []*Post {
	return s.Repo.GetByUser(username)
}

func (s *PostService) GetByCategory(category string) []*Post {
	return s.Repo.GetByCategory(category)
}
