package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/arz/kvstore"
	"github.com/cppla/arz/utils"
)

// StatsController provides community statistics such as post, comment and account counts.
type StatsController struct {
	kv    kvstore.Store
	posts *PostController
}

// NewStatsController creates a new StatsController reading through posts.
func NewStatsController(kv kvstore.Store, posts *PostController) *StatsController {
	return &StatsController{kv: kv, posts: posts}
}

// GetStats returns aggregate statistics for the community.
func (s *StatsController) GetStats(ctx *gin.Context) {
	c, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	posts, err := s.posts.loadAll(c)
	if err != nil {
		utils.Sugar.Errorf("stats: load posts: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load stats")
		return
	}
	var comments, replies, likes, views int
	for _, p := range posts {
		comments += len(p.Comments)
		for _, cm := range p.Comments {
			replies += len(cm.Replies)
		}
		likes += p.Likes
		views += p.Views
	}

	// Fallback to 0 instead of failing the whole endpoint
	accounts := 0
	if keys, err := s.kv.Keys(c, accountKeyPrefix); err == nil {
		accounts = len(keys)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"account_count": accounts,
		"post_count":    len(posts),
		"comment_count": comments,
		"reply_count":   replies,
		"total_likes":   likes,
		"total_views":   views,
	})
}

// GetPostStats returns counters for a single post.
func (s *StatsController) GetPostStats(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	c, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	post, err := s.posts.load(c, id)
	if errors.Is(err, errPostNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40402, "post not found")
		return
	}
	if err != nil {
		utils.Sugar.Errorf("stats: load post %d: %v", id, err)
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to load stats")
		return
	}
	replies := 0
	for _, cm := range post.Comments {
		replies += len(cm.Replies)
	}
	ctx.JSON(http.StatusOK, gin.H{
		"likes":          post.Likes,
		"dislikes":       post.Dislikes,
		"views":          post.Views,
		"comments_count": len(post.Comments),
		"replies_count":  replies,
	})
}
