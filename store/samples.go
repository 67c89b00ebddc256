package store

import (
	"time"

	"github.com/cppla/arz/models"
)

// samplePosts is the feed shown when neither storage nor the server has any posts.
func samplePosts(now time.Time) []models.Post {
	return []models.Post{
		{
			ID:       1,
			Title:    "Sunset Dreams",
			Content:  "The beauty of nature always inspires me to create beautiful artwork that captures the essence of peace and tranquility.",
			Category: "Photography",
			Likes:    12,
			Dislikes: 1,
			Views:    45,
			Comments: []models.Comment{{
				ID:         1,
				Username:   "ArtLover",
				ProfilePic: "https://via.placeholder.com/35x35/ff4081/ffffff?text=A",
				Text:       "Amazing capture! The colors are breathtaking.",
				Time:       now,
				Replies:    []models.Reply{},
			}},
			Author:    "NatureLover",
			AuthorPic: "https://via.placeholder.com/40x40/ff4081/ffffff?text=N",
			Timestamp: now,
		},
		{
			ID:       2,
			Title:    "Whispers of Night",
			Content:  "The stars whisper secrets to the night, while the moon listens silently. In the darkness, creativity finds its light.",
			Category: "Poetry",
			Likes:    25,
			Dislikes: 2,
			Views:    89,
			Comments: []models.Comment{{
				ID:         1,
				Username:   "Ali",
				ProfilePic: "https://via.placeholder.com/35x35/00bcd4/ffffff?text=A",
				Text:       "Beautiful lines! This really touched my heart.",
				Time:       now,
				Replies:    []models.Reply{},
			}},
			Author:    "WordWeaver",
			AuthorPic: "https://via.placeholder.com/40x40/00bcd4/ffffff?text=W",
			Timestamp: now,
		},
	}
}
