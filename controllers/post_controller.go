package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/arz/idgen"
	"github.com/cppla/arz/kvstore"
	"github.com/cppla/arz/models"
	"github.com/cppla/arz/utils"
)

const (
	postKeyPrefix    = "post:"
	postsCacheKey    = "cache:posts:list"
	postsCachePrefix = "cache:posts:"
	storeTimeout     = 5 * time.Second
)

var errPostNotFound = errors.New("post not found")

// PostController serves the feed. Posts are JSON documents under post:<id>.
type PostController struct {
	kv    kvstore.Store
	ids   *idgen.Generator
	cache *utils.Cache
	now   func() time.Time

	// mu serialises read-modify-write updates of a post.
	mu sync.Mutex
}

// NewPostController creates a PostController and raises the ID floor above every stored post.
func NewPostController(kv kvstore.Store, cache *utils.Cache) *PostController {
	p := &PostController{kv: kv, ids: idgen.New(), cache: cache, now: time.Now}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	keys, err := kv.Keys(ctx, postKeyPrefix)
	if err != nil {
		utils.Sugar.Warnf("post id scan failed: %v", err)
		return p
	}
	for _, k := range keys {
		if id, err := strconv.ParseInt(strings.TrimPrefix(k, postKeyPrefix), 10, 64); err == nil {
			p.ids.Observe(id)
		}
	}
	return p
}

func postKey(id int64) string {
	return postKeyPrefix + strconv.FormatInt(id, 10)
}

// ListPosts returns every post, newest first.
func (p *PostController) ListPosts(ctx *gin.Context) {
	if b, ok := p.cache.GetBytes(postsCacheKey); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
		return
	}

	c, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()
	posts, err := p.loadAll(c)
	if err != nil {
		utils.Sugar.Errorf("list posts: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list posts")
		return
	}

	b, err := json.Marshal(gin.H{"posts": posts})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to encode posts")
		return
	}
	p.cache.SetBytes(postsCacheKey, b)
	ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
}

// GetPost returns one post.
func (p *PostController) GetPost(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	c, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()
	post, err := p.load(c, id)
	if errors.Is(err, errPostNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load post")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"post": post})
}

// CreatePost stores a post. A missing or already used ID is replaced by a fresh one, text fields
// are stripped of markup, and the stored copy is returned.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req models.Post
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	req.Title = utils.SanitizeText(req.Title)
	req.Content = utils.SanitizeText(req.Content)
	req.Category = utils.SanitizeText(req.Category)
	req.Author = utils.SanitizeText(req.Author)
	if req.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return
	}
	if req.Author == "" {
		req.Author = models.GuestUsername
	}
	sanitizeComments(req.Comments)
	if req.Timestamp.IsZero() {
		req.Timestamp = p.now().UTC()
	}
	req.Normalize()

	c, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	if req.ID <= 0 {
		req.ID = p.ids.Next()
	} else {
		p.ids.Observe(req.ID)
	}
	for {
		b, err := json.Marshal(req)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
			return
		}
		stored, err := p.kv.SetIfAbsent(c, postKey(req.ID), string(b))
		if err != nil {
			utils.Sugar.Errorf("create post: %v", err)
			utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
			return
		}
		if stored {
			break
		}
		req.ID = p.ids.Next()
	}

	p.cache.InvalidateByPrefix(postsCachePrefix)
	ctx.JSON(http.StatusOK, gin.H{"post": req})
}

// UpdatePost merges a partial post into the stored one.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	var patch models.PostPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}
	sanitizePatch(&patch)

	c, cancel := context.WithTimeout(ctx.Request.Context(), storeTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	post, err := p.load(c, id)
	if errors.Is(err, errPostNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load post")
		return
	}
	patch.Apply(&post)
	post.ID = id

	b, err := json.Marshal(post)
	if err == nil {
		err = p.kv.Set(c, postKey(id), string(b))
	}
	if err != nil {
		utils.Sugar.Errorf("update post %d: %v", id, err)
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to update post")
		return
	}
	p.cache.InvalidateByPrefix(postsCachePrefix)
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (p *PostController) load(ctx context.Context, id int64) (models.Post, error) {
	raw, ok, err := p.kv.Get(ctx, postKey(id))
	if err != nil {
		return models.Post{}, err
	}
	if !ok {
		return models.Post{}, errPostNotFound
	}
	var post models.Post
	if err := json.Unmarshal([]byte(raw), &post); err != nil {
		return models.Post{}, err
	}
	post.Normalize()
	return post, nil
}

func (p *PostController) loadAll(ctx context.Context) ([]models.Post, error) {
	keys, err := p.kv.Keys(ctx, postKeyPrefix)
	if err != nil {
		return nil, err
	}
	vals, err := p.kv.GetMany(ctx, keys)
	if err != nil {
		return nil, err
	}
	posts := make([]models.Post, 0, len(vals))
	for k, raw := range vals {
		var post models.Post
		if err := json.Unmarshal([]byte(raw), &post); err != nil {
			utils.Sugar.Warnf("skipping corrupt post %s: %v", k, err)
			continue
		}
		post.Normalize()
		posts = append(posts, post)
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].Timestamp.Equal(posts[j].Timestamp) {
			return posts[i].Timestamp.After(posts[j].Timestamp)
		}
		return posts[i].ID > posts[j].ID
	})
	return posts, nil
}

func parseID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid post id")
		return 0, false
	}
	return id, true
}

func sanitizeComments(comments []models.Comment) {
	for i := range comments {
		c := &comments[i]
		c.Username = utils.SanitizeText(c.Username)
		c.Text = utils.SanitizeText(c.Text)
		for j := range c.Replies {
			c.Replies[j].Username = utils.SanitizeText(c.Replies[j].Username)
			c.Replies[j].Text = utils.SanitizeText(c.Replies[j].Text)
		}
	}
}

func sanitizePatch(pp *models.PostPatch) {
	for _, s := range []*string{pp.Title, pp.Content, pp.Category, pp.Author} {
		if s != nil {
			*s = utils.SanitizeText(*s)
		}
	}
	if pp.Comments != nil {
		sanitizeComments(*pp.Comments)
	}
}
