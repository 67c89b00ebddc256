package models

import "time"

// Comment is a top-level remark on a post. Username and ProfilePic are snapshots of the author
// taken when the comment was written.
type Comment struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	ProfilePic string    `json:"profilePic"`
	Text       string    `json:"text"`
	Time       time.Time `json:"time"`
	Replies    []Reply   `json:"replies"`
}

// Reply answers a comment. Replies carry no ID of their own.
type Reply struct {
	Username   string `json:"username"`
	ProfilePic string `json:"profilePic"`
	Text       string `json:"text"`
}

func (c Comment) clone() Comment {
	out := c
	out.Replies = append([]Reply{}, c.Replies...)
	return out
}
