package store

import (
	"strings"

	"github.com/cppla/arz/models"
)

// Posts returns a copy of every post, newest first.
func (s *Store) Posts() []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.ClonePosts(s.posts)
}

// Post returns the post with id.
func (s *Store) Post(id int64) (models.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Post{}, false
	}
	return s.posts[i].Clone(), true
}

// AddPost builds a post authored by the current user, prepends it and persists the list.
func (s *Store) AddPost(in models.PostInput) (models.Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.Content = strings.TrimSpace(in.Content)
	if in.Title == "" || in.Category == "" || in.Content == "" {
		return models.Post{}, invalid("Please fill all fields!")
	}
	if in.Image == "" {
		return models.Post{}, invalid("Please select an image!")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	post := models.Post{
		ID:        s.ids.Next(),
		Title:     in.Title,
		Content:   in.Content,
		Category:  in.Category,
		Image:     in.Image,
		Author:    s.user.Username,
		AuthorPic: s.user.ProfilePic,
		Comments:  []models.Comment{},
		Timestamp: s.now().UTC(),
	}
	next := make([]models.Post, 0, len(s.posts)+1)
	next = append(next, post)
	next = append(next, models.ClonePosts(s.posts)...)
	if err := s.commitPosts(next); err != nil {
		return models.Post{}, err
	}
	return post.Clone(), nil
}

// ReplacePosts swaps the whole list, as done when the remote feed arrives.
func (s *Store) ReplacePosts(posts []models.Post) error {
	return s.SavePosts(posts)
}

// ReplacePost swaps the post with oldID for p, keeping its position. It is used to adopt the
// server's copy of a freshly created draft.
func (s *Store) ReplacePost(oldID int64, p models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(oldID)
	if i < 0 {
		return ErrPostNotFound
	}
	next := models.ClonePosts(s.posts)
	repl := p.Clone()
	repl.Normalize()
	next[i] = repl
	s.ids.Observe(repl.ID)
	return s.commitPosts(next)
}

// SeedSamples installs the sample feed when there are no posts. It reports whether it seeded.
func (s *Store) SeedSamples() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.posts) > 0 {
		return false, nil
	}
	samples := samplePosts(s.now().UTC())
	if err := s.commitPosts(samples); err != nil {
		return false, err
	}
	s.observeIDs(samples)
	return true, nil
}

// LikePost adds one like to the post.
func (s *Store) LikePost(id int64) (models.Post, error) {
	return s.updatePost(id, func(p *models.Post) error {
		p.Likes++
		return nil
	})
}

// DislikePost adds one dislike to the post.
func (s *Store) DislikePost(id int64) (models.Post, error) {
	return s.updatePost(id, func(p *models.Post) error {
		p.Dislikes++
		return nil
	})
}

// IncrementViews adds one view to the post.
func (s *Store) IncrementViews(id int64) (models.Post, error) {
	return s.updatePost(id, func(p *models.Post) error {
		p.Views++
		return nil
	})
}

// AddComment appends a comment by the current user. A missing post returns ErrPostNotFound and
// leaves every post untouched.
func (s *Store) AddComment(postID int64, text string) (models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Comment{}, invalid("Please write a comment first!")
	}
	var added models.Comment
	_, err := s.updatePost(postID, func(p *models.Post) error {
		added = models.Comment{
			ID:         s.ids.Next(),
			Username:   s.user.Username,
			ProfilePic: s.user.ProfilePic,
			Text:       text,
			Time:       s.now().UTC(),
			Replies:    []models.Reply{},
		}
		p.Comments = append(p.Comments, added)
		return nil
	})
	if err != nil {
		return models.Comment{}, err
	}
	return added, nil
}

// AddReply appends a reply to a comment. Missing post or comment leaves everything untouched.
func (s *Store) AddReply(postID, commentID int64, text string) (models.Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Reply{}, invalid("Please write a reply first!")
	}
	var added models.Reply
	_, err := s.updatePost(postID, func(p *models.Post) error {
		ci := p.FindComment(commentID)
		if ci < 0 {
			return ErrCommentNotFound
		}
		added = models.Reply{
			Username:   s.user.Username,
			ProfilePic: s.user.ProfilePic,
			Text:       text,
		}
		p.Comments[ci].Replies = append(p.Comments[ci].Replies, added)
		return nil
	})
	if err != nil {
		return models.Reply{}, err
	}
	return added, nil
}

// RenameUser rewrites every author, comment and reply snapshot that names oldName. The whole
// collection is rewritten and persisted as one unit; on failure nothing changes. It returns the
// number of posts touched.
func (s *Store) RenameUser(oldName, newName, newPic string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, touched := renamePosts(s.posts, oldName, newName, newPic)
	if touched == 0 {
		return 0, nil
	}
	if err := s.commitPosts(next); err != nil {
		return 0, err
	}
	return touched, nil
}

func renamePosts(posts []models.Post, oldName, newName, newPic string) ([]models.Post, int) {
	next := models.ClonePosts(posts)
	touched := 0
	for i := range next {
		p := &next[i]
		changed := false
		if p.Author == oldName {
			p.Author = newName
			p.AuthorPic = newPic
			changed = true
		}
		for ci := range p.Comments {
			c := &p.Comments[ci]
			if c.Username == oldName {
				c.Username = newName
				c.ProfilePic = newPic
				changed = true
			}
			for ri := range c.Replies {
				r := &c.Replies[ri]
				if r.Username == oldName {
					r.Username = newName
					r.ProfilePic = newPic
					changed = true
				}
			}
		}
		if changed {
			touched++
		}
	}
	return next, touched
}

// FilterPosts returns posts whose title, content or author contains term (case-insensitive) and
// whose category equals category. Empty filters match everything.
func (s *Store) FilterPosts(term, category string) []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	term = strings.ToLower(strings.TrimSpace(term))
	category = strings.TrimSpace(category)
	out := []models.Post{}
	for _, p := range s.posts {
		if category != "" && p.Category != category {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Title), term) &&
			!strings.Contains(strings.ToLower(p.Content), term) &&
			!strings.Contains(strings.ToLower(p.Author), term) {
			continue
		}
		out = append(out, p.Clone())
	}
	return out
}

// VisiblePosts returns the first CurrentPage()*perPage posts.
func (s *Store) VisiblePosts() []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := min(s.currentPage*s.perPage, len(s.posts))
	return models.ClonePosts(s.posts[:n])
}

// HasMore reports whether LoadMore would reveal more posts.
func (s *Store) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage*s.perPage < len(s.posts)
}

// LoadMore advances to the next page when more posts exist.
func (s *Store) LoadMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentPage*s.perPage >= len(s.posts) {
		return false
	}
	s.currentPage++
	return true
}

// CurrentPage returns the number of pages revealed so far.
func (s *Store) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPage
}

// ResetPage goes back to the first page.
func (s *Store) ResetPage() {
	s.mu.Lock()
	s.currentPage = 1
	s.mu.Unlock()
}

// BookmarkedPosts returns the bookmarked posts that still exist, in bookmark order.
func (s *Store) BookmarkedPosts() []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Post{}
	for _, id := range s.user.Bookmarks {
		if i := s.indexOf(id); i >= 0 {
			out = append(out, s.posts[i].Clone())
		}
	}
	return out
}

func (s *Store) updatePost(id int64, mutate func(*models.Post) error) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return models.Post{}, ErrPostNotFound
	}
	next := models.ClonePosts(s.posts)
	if err := mutate(&next[i]); err != nil {
		return models.Post{}, err
	}
	if err := s.commitPosts(next); err != nil {
		return models.Post{}, err
	}
	return next[i].Clone(), nil
}

func (s *Store) indexOf(id int64) int {
	for i, p := range s.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}
