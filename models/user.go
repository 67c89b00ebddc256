package models

import "slices"

// GuestUsername is the display name of the signed-out user.
const GuestUsername = "Guest"

// DefaultGuestPic is the avatar shown for the Guest user and for snapshots without a picture.
const DefaultGuestPic = "https://via.placeholder.com/40x40/00bcd4/ffffff?text=G"

// User is the account held by the client. Username doubles as the foreign key used by posts and
// comments, so it is not a stable identifier. Password is kept in plaintext on the client.
type User struct {
	Username   string   `json:"username"`
	ProfilePic string   `json:"profilePic"`
	Email      string   `json:"email"`
	Password   string   `json:"password,omitempty"`
	Following  []string `json:"following"`
	Bookmarks  []int64  `json:"bookmarks"`
}

// Guest returns a fresh default user.
func Guest() User {
	return User{
		Username:   GuestUsername,
		ProfilePic: DefaultGuestPic,
		Following:  []string{},
		Bookmarks:  []int64{},
	}
}

// IsGuest reports whether u is the signed-out placeholder.
func (u User) IsGuest() bool {
	return u.Username == GuestUsername && u.Email == ""
}

// HasBookmark reports whether postID is in the bookmark set.
func (u User) HasBookmark(postID int64) bool {
	return slices.Contains(u.Bookmarks, postID)
}

// IsFollowing reports whether username is in the following set.
func (u User) IsFollowing(username string) bool {
	return slices.Contains(u.Following, username)
}

// Clone returns a deep copy so callers can't alias the store's slices.
func (u User) Clone() User {
	out := u
	out.Following = append([]string{}, u.Following...)
	out.Bookmarks = append([]int64{}, u.Bookmarks...)
	return out
}

// Normalize replaces nil sets with empty ones so the serialized form is stable.
func (u *User) Normalize() {
	if u.Following == nil {
		u.Following = []string{}
	}
	if u.Bookmarks == nil {
		u.Bookmarks = []int64{}
	}
}

// UserDraft is the registration payload.
type UserDraft struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	ProfilePic string `json:"profilePic"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileInput carries the editable profile fields. Empty fields are left unchanged.
type ProfileInput struct {
	Username   string
	ProfilePic string
	Email      string
	Password   string
}
