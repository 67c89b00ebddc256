package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/arz/models"
)

func addSunset(t *testing.T, s *Store) models.Post {
	t.Helper()
	p, err := s.AddPost(models.PostInput{Title: "Sunset", Category: "Photography", Content: "golden hour", Image: "data:image/png;base64,AA"})
	require.NoError(t, err)
	return p
}

func TestAddPostPrependsWithUniqueIDs(t *testing.T) {
	s, _ := newTestStore(t)
	first := addSunset(t, s)
	second := addSunset(t, s)

	assert.NotEqual(t, first.ID, second.ID)
	posts := s.Posts()
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, models.GuestUsername, posts[0].Author)
	assert.Equal(t, fixedNow, posts[0].Timestamp)
	assert.NotNil(t, posts[0].Comments)
}

func TestAddPostValidation(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.AddPost(models.PostInput{Title: "x", Category: "y"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "Please fill all fields!")

	_, err = s.AddPost(models.PostInput{Title: "x", Category: "y", Content: "z"})
	assert.EqualError(t, err, "Please select an image!")
	assert.Empty(t, s.Posts())
}

func TestLikeDislikeViews(t *testing.T) {
	s, _ := newTestStore(t)
	p := addSunset(t, s)

	liked, err := s.LikePost(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, liked.Likes)

	liked, err = s.LikePost(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, liked.Likes)

	disliked, err := s.DislikePost(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, disliked.Dislikes)

	viewed, err := s.IncrementViews(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, viewed.Views)

	_, err = s.LikePost(12345)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestAddCommentToMissingPostIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	p := addSunset(t, s)
	before := s.Posts()

	_, err := s.AddComment(999, "Nice!")
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.Equal(t, before, s.Posts())

	c, err := s.AddComment(p.ID, "  Nice!  ")
	require.NoError(t, err)
	assert.Equal(t, "Nice!", c.Text)
	got, _ := s.Post(p.ID)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, c.ID, got.Comments[0].ID)
}

func TestAddReply(t *testing.T) {
	s, _ := newTestStore(t)
	p := addSunset(t, s)
	c, err := s.AddComment(p.ID, "first")
	require.NoError(t, err)

	r, err := s.AddReply(p.ID, c.ID, "second")
	require.NoError(t, err)
	assert.Equal(t, "second", r.Text)

	_, err = s.AddReply(p.ID, c.ID+1000, "lost")
	assert.ErrorIs(t, err, ErrCommentNotFound)
	_, err = s.AddReply(999, c.ID, "lost")
	assert.ErrorIs(t, err, ErrPostNotFound)

	got, _ := s.Post(p.ID)
	require.Len(t, got.Comments[0].Replies, 1)
	assert.Equal(t, "second", got.Comments[0].Replies[0].Text)
}

func TestRenameUserPropagatesToPostsAndComments(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.SavePosts([]models.Post{
		{ID: 1, Author: "alice", AuthorPic: "old.png", Comments: []models.Comment{
			{ID: 10, Username: "alice", ProfilePic: "old.png", Replies: []models.Reply{{Username: "alice", ProfilePic: "old.png"}}},
			{ID: 11, Username: "bob", ProfilePic: "bob.png"},
		}},
		{ID: 2, Author: "bob", AuthorPic: "bob.png", Comments: []models.Comment{
			{ID: 12, Username: "alice", ProfilePic: "old.png"},
		}},
		{ID: 3, Author: "carol"},
	}))

	touched, err := s.RenameUser("alice", "alice2", "new.png")
	require.NoError(t, err)
	assert.Equal(t, 2, touched)

	posts := s.Posts()
	assert.Equal(t, "alice2", posts[0].Author)
	assert.Equal(t, "new.png", posts[0].AuthorPic)
	assert.Equal(t, "alice2", posts[0].Comments[0].Username)
	assert.Equal(t, "new.png", posts[0].Comments[0].ProfilePic)
	assert.Equal(t, "alice2", posts[0].Comments[0].Replies[0].Username)
	assert.Equal(t, "bob", posts[0].Comments[1].Username)
	assert.Equal(t, "bob", posts[1].Author)
	assert.Equal(t, "alice2", posts[1].Comments[0].Username)
	assert.Equal(t, "new.png", posts[1].Comments[0].ProfilePic)
}

func TestRenameUserIsAllOrNothing(t *testing.T) {
	fs := &failingStorage{MemoryStorage: NewMemoryStorage()}
	s := New(fs)
	s.Load()
	require.NoError(t, s.SavePosts([]models.Post{
		{ID: 1, Author: "alice"},
		{ID: 2, Author: "alice"},
	}))

	fs.failWrites = true
	_, err := s.RenameUser("alice", "alice2", "pic")
	require.Error(t, err)

	for _, p := range s.Posts() {
		assert.Equal(t, "alice", p.Author)
	}
	fresh := New(fs.MemoryStorage)
	for _, p := range fresh.LoadPosts() {
		assert.Equal(t, "alice", p.Author)
	}
}

func TestSeedSamplesOnlyWhenEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	seeded, err := s.SeedSamples()
	require.NoError(t, err)
	assert.True(t, seeded)
	assert.Len(t, s.Posts(), 2)

	seeded, err = s.SeedSamples()
	require.NoError(t, err)
	assert.False(t, seeded)

	p := addSunset(t, s)
	assert.Greater(t, p.ID, int64(2))
}

func TestReplacePost(t *testing.T) {
	s, _ := newTestStore(t)
	draft := addSunset(t, s)
	server := draft
	server.ID = draft.ID + 500
	server.Title = "Sunset (synced)"

	require.NoError(t, s.ReplacePost(draft.ID, server))
	_, ok := s.Post(draft.ID)
	assert.False(t, ok)
	got, ok := s.Post(server.ID)
	require.True(t, ok)
	assert.Equal(t, "Sunset (synced)", got.Title)

	assert.ErrorIs(t, s.ReplacePost(42, server), ErrPostNotFound)
}

func TestFilterPosts(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.SeedSamples()
	require.NoError(t, err)

	assert.Len(t, s.FilterPosts("", ""), 2)
	assert.Len(t, s.FilterPosts("SUNSET", ""), 1)
	assert.Len(t, s.FilterPosts("weaver", ""), 1)
	assert.Len(t, s.FilterPosts("", "Poetry"), 1)
	assert.Empty(t, s.FilterPosts("sunset", "Poetry"))
}

func TestPagination(t *testing.T) {
	s, _ := newTestStore(t, WithPostsPerPage(2))
	for i := 0; i < 5; i++ {
		addSunset(t, s)
	}

	assert.Len(t, s.VisiblePosts(), 2)
	assert.True(t, s.HasMore())
	assert.True(t, s.LoadMore())
	assert.Len(t, s.VisiblePosts(), 4)
	assert.True(t, s.LoadMore())
	assert.Len(t, s.VisiblePosts(), 5)
	assert.False(t, s.HasMore())
	assert.False(t, s.LoadMore())
	assert.Equal(t, 3, s.CurrentPage())

	s.ResetPage()
	assert.Len(t, s.VisiblePosts(), 2)
}
