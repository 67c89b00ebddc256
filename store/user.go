package store

import (
	"slices"
	"strings"

	"github.com/cppla/arz/models"
)

// ToggleBookmark adds or removes postID from the bookmark set and reports whether it is now
// bookmarked.
func (s *Store) ToggleBookmark(postID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.user.Clone()
	bookmarked := false
	if i := slices.Index(next.Bookmarks, postID); i >= 0 {
		next.Bookmarks = slices.Delete(next.Bookmarks, i, i+1)
	} else {
		next.Bookmarks = append(next.Bookmarks, postID)
		bookmarked = true
	}
	if err := s.commitUser(next); err != nil {
		return s.user.HasBookmark(postID), err
	}
	return bookmarked, nil
}

// IsBookmarked reports whether postID is bookmarked by the current user.
func (s *Store) IsBookmarked(postID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.HasBookmark(postID)
}

// ToggleFollow adds or removes username from the following set and reports whether the user is
// now followed.
func (s *Store) ToggleFollow(username string) (bool, error) {
	username = strings.TrimSpace(username)
	s.mu.Lock()
	defer s.mu.Unlock()
	if username == "" {
		return false, invalid("Please choose someone to follow!")
	}
	if username == s.user.Username {
		return false, invalid("You cannot follow yourself!")
	}
	next := s.user.Clone()
	following := false
	if i := slices.Index(next.Following, username); i >= 0 {
		next.Following = slices.Delete(next.Following, i, i+1)
	} else {
		next.Following = append(next.Following, username)
		following = true
	}
	if err := s.commitUser(next); err != nil {
		return s.user.IsFollowing(username), err
	}
	return following, nil
}

// Register creates a local-only account and makes it the current user.
func (s *Store) Register(d models.UserDraft) (models.User, error) {
	if err := ValidateDraft(d); err != nil {
		return models.User{}, err
	}
	u := models.User{
		Username:   strings.TrimSpace(d.Username),
		Email:      strings.TrimSpace(d.Email),
		Password:   d.Password,
		ProfilePic: d.ProfilePic,
		Following:  []string{},
		Bookmarks:  []int64{},
	}
	return s.ReplaceUser(u)
}

// ValidateDraft checks the registration form.
func ValidateDraft(d models.UserDraft) error {
	if strings.TrimSpace(d.Username) == "" || strings.TrimSpace(d.Email) == "" || d.Password == "" {
		return invalid("Please fill all fields!")
	}
	if d.ProfilePic == "" {
		return invalid("Please upload a profile picture!")
	}
	return nil
}

// ValidateCredentials checks the login form.
func ValidateCredentials(c models.Credentials) error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return invalid("Please fill all fields!")
	}
	return nil
}

// ReplaceUser makes u the current user and remembers it as the local account.
func (s *Store) ReplaceUser(u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := u.Clone()
	next.Normalize()
	if err := s.writeJSON(KeyAccount, next); err != nil {
		return models.User{}, err
	}
	if err := s.commitUser(next); err != nil {
		return models.User{}, err
	}
	return next.Clone(), nil
}

// LoginLocal compares the credentials with the remembered account and, on a match, makes that
// account current again.
func (s *Store) LoginLocal(c models.Credentials) (models.User, error) {
	if err := ValidateCredentials(c); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var acct models.User
	if !s.readJSON(KeyAccount, &acct) {
		// Older data only has the user key.
		if !s.readJSON(KeyUser, &acct) {
			return models.User{}, ErrNoAccount
		}
	}
	if acct.IsGuest() || acct.Email == "" {
		return models.User{}, ErrNoAccount
	}
	if acct.Email != strings.TrimSpace(c.Email) || acct.Password != c.Password {
		return models.User{}, ErrInvalidCredentials
	}
	acct.Normalize()
	if err := s.commitUser(acct); err != nil {
		return models.User{}, err
	}
	return acct.Clone(), nil
}

// Logout remembers the current account and resets the user to Guest.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.user.IsGuest() {
		if err := s.writeJSON(KeyAccount, s.user); err != nil {
			return err
		}
	}
	return s.commitUser(models.Guest())
}

// UpdateProfile applies the non-empty fields of in to the current user. A new username or picture
// is propagated to every post, comment and reply snapshot; posts and user are written together
// and the posts are restored if the user write fails.
func (s *Store) UpdateProfile(in models.ProfileInput) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user.IsGuest() {
		return models.User{}, invalid("Please log in to edit your profile!")
	}
	next := s.user.Clone()
	if v := strings.TrimSpace(in.Username); v != "" {
		if v == models.GuestUsername {
			return models.User{}, invalid("That username is reserved!")
		}
		next.Username = v
	}
	if in.ProfilePic != "" {
		next.ProfilePic = in.ProfilePic
	}
	if v := strings.TrimSpace(in.Email); v != "" {
		next.Email = v
	}
	if in.Password != "" {
		next.Password = in.Password
	}

	prevPosts := s.posts
	renamed := false
	if next.Username != s.user.Username || next.ProfilePic != s.user.ProfilePic {
		posts, touched := renamePosts(s.posts, s.user.Username, next.Username, next.ProfilePic)
		if touched > 0 {
			if err := s.commitPosts(posts); err != nil {
				return models.User{}, err
			}
			renamed = true
		}
	}
	err := s.writeJSON(KeyAccount, next)
	if err == nil {
		err = s.commitUser(next)
	}
	if err != nil {
		if renamed {
			_ = s.commitPosts(prevPosts)
		}
		return models.User{}, err
	}
	return next.Clone(), nil
}

// Profile summarizes a user's posts.
type Profile struct {
	Username   string
	ProfilePic string
	Posts      []models.Post
	TotalLikes int
	TotalViews int
	Comments   int
}

// Profile collects the posts authored by username. The picture comes from the newest post, or
// from the current user when it is the same person.
func (s *Store) Profile(username string) Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	pr := Profile{Username: username, Posts: []models.Post{}}
	if username == s.user.Username {
		pr.ProfilePic = s.user.ProfilePic
	}
	for _, p := range s.posts {
		if p.Author != username {
			continue
		}
		if pr.ProfilePic == "" {
			pr.ProfilePic = p.AuthorPic
		}
		pr.Posts = append(pr.Posts, p.Clone())
		pr.TotalLikes += p.Likes
		pr.TotalViews += p.Views
		pr.Comments += len(p.Comments)
	}
	return pr
}
