package models

import "time"

// Post is an image post. Author and AuthorPic are snapshots of the creator, not references.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Image     string    `json:"image"`
	Author    string    `json:"author"`
	AuthorPic string    `json:"authorPic"`
	Likes     int       `json:"likes"`
	Dislikes  int       `json:"dislikes"`
	Views     int       `json:"views"`
	Comments  []Comment `json:"comments"`
	Timestamp time.Time `json:"timestamp"`
}

// Clone returns a deep copy of the post including its comments and replies.
func (p Post) Clone() Post {
	out := p
	out.Comments = make([]Comment, len(p.Comments))
	for i, c := range p.Comments {
		out.Comments[i] = c.clone()
	}
	return out
}

// FindComment returns the index of the comment with id, or -1.
func (p Post) FindComment(id int64) int {
	for i, c := range p.Comments {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Normalize clamps counters to zero and replaces nil slices.
func (p *Post) Normalize() {
	if p.Likes < 0 {
		p.Likes = 0
	}
	if p.Dislikes < 0 {
		p.Dislikes = 0
	}
	if p.Views < 0 {
		p.Views = 0
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
	for i := range p.Comments {
		if p.Comments[i].Replies == nil {
			p.Comments[i].Replies = []Reply{}
		}
	}
}

// ClonePosts deep-copies a post list.
func ClonePosts(posts []Post) []Post {
	out := make([]Post, len(posts))
	for i, p := range posts {
		out[i] = p.Clone()
	}
	return out
}

// PostInput is what the upload form collects.
type PostInput struct {
	Title    string
	Content  string
	Category string
	Image    string
}

// PostPatch is the partial update body of PUT /posts/{id}. Nil fields are left untouched.
type PostPatch struct {
	Title     *string    `json:"title,omitempty"`
	Content   *string    `json:"content,omitempty"`
	Category  *string    `json:"category,omitempty"`
	Image     *string    `json:"image,omitempty"`
	Author    *string    `json:"author,omitempty"`
	AuthorPic *string    `json:"authorPic,omitempty"`
	Likes     *int       `json:"likes,omitempty"`
	Dislikes  *int       `json:"dislikes,omitempty"`
	Views     *int       `json:"views,omitempty"`
	Comments  *[]Comment `json:"comments,omitempty"`
}

// Apply merges the patch into p.
func (pp PostPatch) Apply(p *Post) {
	if pp.Title != nil {
		p.Title = *pp.Title
	}
	if pp.Content != nil {
		p.Content = *pp.Content
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.Image != nil {
		p.Image = *pp.Image
	}
	if pp.Author != nil {
		p.Author = *pp.Author
	}
	if pp.AuthorPic != nil {
		p.AuthorPic = *pp.AuthorPic
	}
	if pp.Likes != nil {
		p.Likes = *pp.Likes
	}
	if pp.Dislikes != nil {
		p.Dislikes = *pp.Dislikes
	}
	if pp.Views != nil {
		p.Views = *pp.Views
	}
	if pp.Comments != nil {
		p.Comments = append([]Comment{}, (*pp.Comments)...)
	}
	p.Normalize()
}
