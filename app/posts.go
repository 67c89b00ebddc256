package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/cppla/arz/models"
	"github.com/cppla/arz/store"
)

// LikePost adds a like and pushes the new count to the remote. A second like on the same post
// inside the disable window returns ErrThrottled.
func (a *App) LikePost(id int64) (models.Post, error) {
	if !a.allow("like", id) {
		return models.Post{}, ErrThrottled
	}
	p, err := a.store.LikePost(id)
	if err != nil {
		return models.Post{}, a.fail(err)
	}
	likes := p.Likes
	a.sync("update post", func(ctx context.Context) error {
		return a.api.UpdatePost(ctx, id, models.PostPatch{Likes: &likes})
	})
	a.notify(models.NotifySuccess, "Liked the post!")
	return p, nil
}

// DislikePost is LikePost for dislikes.
func (a *App) DislikePost(id int64) (models.Post, error) {
	if !a.allow("dislike", id) {
		return models.Post{}, ErrThrottled
	}
	p, err := a.store.DislikePost(id)
	if err != nil {
		return models.Post{}, a.fail(err)
	}
	dislikes := p.Dislikes
	a.sync("update post", func(ctx context.Context) error {
		return a.api.UpdatePost(ctx, id, models.PostPatch{Dislikes: &dislikes})
	})
	return p, nil
}

// ViewPost counts a view of the post and returns it.
func (a *App) ViewPost(id int64) (models.Post, error) {
	p, err := a.store.IncrementViews(id)
	if err != nil {
		return models.Post{}, a.fail(err)
	}
	views := p.Views
	a.sync("update post", func(ctx context.Context) error {
		return a.api.UpdatePost(ctx, id, models.PostPatch{Views: &views})
	})
	return p, nil
}

// SubmitPost stores a draft locally, then offers it to the remote. When the remote accepts it the
// server copy replaces the draft; otherwise the draft stays.
func (a *App) SubmitPost(ctx context.Context, in models.PostInput) (models.Post, error) {
	draft, err := a.store.AddPost(in)
	if err != nil {
		return models.Post{}, a.fail(err)
	}
	result := draft
	created, err := a.api.CreatePost(ctx, draft)
	if err != nil {
		a.remoteFailed("create post", err)
	} else if err := a.store.ReplacePost(draft.ID, created); err != nil {
		a.log.Warn("server copy not adopted", zap.Int64("draft", draft.ID), zap.Error(err))
	} else {
		result, _ = a.store.Post(created.ID)
	}
	a.store.ResetPage()
	a.notify(models.NotifySuccess, "Post created successfully!")
	return result, nil
}

// AddComment appends a comment and pushes the post's comment list to the remote.
func (a *App) AddComment(postID int64, text string) (models.Comment, error) {
	c, err := a.store.AddComment(postID, text)
	if err != nil {
		return models.Comment{}, a.fail(err)
	}
	a.syncComments(postID)
	a.notify(models.NotifySuccess, "💬 Comment added successfully!")
	return c, nil
}

// AddReply appends a reply to a comment and pushes the post's comment list to the remote.
func (a *App) AddReply(postID, commentID int64, text string) (models.Reply, error) {
	r, err := a.store.AddReply(postID, commentID, text)
	if err != nil {
		return models.Reply{}, a.fail(err)
	}
	a.syncComments(postID)
	a.notify(models.NotifySuccess, "💬 Reply added successfully!")
	return r, nil
}

func (a *App) syncComments(postID int64) {
	p, ok := a.store.Post(postID)
	if !ok {
		return
	}
	comments := p.Comments
	a.sync("update post", func(ctx context.Context) error {
		return a.api.UpdatePost(ctx, postID, models.PostPatch{Comments: &comments})
	})
}

// ToggleBookmark flips the bookmark on a post. Bookmarks are local to the client.
func (a *App) ToggleBookmark(postID int64) (bool, error) {
	if _, ok := a.store.Post(postID); !ok {
		return false, a.fail(store.ErrPostNotFound)
	}
	on, err := a.store.ToggleBookmark(postID)
	if err != nil {
		return on, a.fail(err)
	}
	if on {
		a.notify(models.NotifySuccess, "🔖 Post bookmarked!")
	} else {
		a.notify(models.NotifyInfo, "📑 Bookmark removed")
	}
	return on, nil
}

// ToggleFollow flips whether the current user follows username.
func (a *App) ToggleFollow(username string) (bool, error) {
	on, err := a.store.ToggleFollow(username)
	if err != nil {
		return on, a.fail(err)
	}
	if on {
		a.notify(models.NotifySuccess, "Following "+username)
	} else {
		a.notify(models.NotifyInfo, "Unfollowed "+username)
	}
	return on, nil
}

// ToggleTheme flips between dark and light.
func (a *App) ToggleTheme() (string, error) {
	theme, err := a.store.ToggleTheme()
	if err != nil {
		return theme, err
	}
	a.notify(models.NotifySuccess, "Theme changed to "+theme+" mode")
	return theme, nil
}

// Ping checks that the remote answers.
func (a *App) Ping(ctx context.Context) error {
	if err := a.api.Ping(ctx); err != nil {
		a.remoteFailed("ping", err)
		a.notify(models.NotifyInfo, "Backend unreachable, working offline")
		return err
	}
	a.notify(models.NotifySuccess, "Backend reachable")
	return nil
}
