package app

import (
	"context"
	"reflect"

	"github.com/cppla/arz/models"
	"github.com/cppla/arz/store"
)

// SubmitLogin signs in against the remote and falls back to the locally remembered account when
// the remote is unavailable or rejects the credentials.
func (a *App) SubmitLogin(ctx context.Context, creds models.Credentials) (models.User, error) {
	if err := store.ValidateCredentials(creds); err != nil {
		return models.User{}, a.fail(err)
	}
	u, err := a.api.Login(ctx, creds)
	if err == nil {
		u.Password = creds.Password
		if u.Email == "" {
			u.Email = creds.Email
		}
		if u, err = a.store.ReplaceUser(u); err != nil {
			return models.User{}, err
		}
	} else {
		a.remoteFailed("login", err)
		if u, err = a.store.LoginLocal(creds); err != nil {
			return models.User{}, a.fail(err)
		}
	}
	a.notify(models.NotifySuccess, "Login successful!")
	return u, nil
}

// SubmitRegistration creates the account on the remote, or locally when that fails.
func (a *App) SubmitRegistration(ctx context.Context, d models.UserDraft) (models.User, error) {
	if err := store.ValidateDraft(d); err != nil {
		return models.User{}, a.fail(err)
	}
	u, err := a.api.Register(ctx, d)
	if err == nil {
		u.Password = d.Password
		if u.ProfilePic == "" {
			u.ProfilePic = d.ProfilePic
		}
		if u.Email == "" {
			u.Email = d.Email
		}
		if u, err = a.store.ReplaceUser(u); err != nil {
			return models.User{}, err
		}
	} else {
		a.remoteFailed("register", err)
		if u, err = a.store.Register(d); err != nil {
			return models.User{}, a.fail(err)
		}
	}
	a.notify(models.NotifySuccess, "Account created successfully! Welcome to Arz!")
	return u, nil
}

// Logout returns to the Guest user.
func (a *App) Logout() error {
	if err := a.store.Logout(); err != nil {
		return err
	}
	a.notify(models.NotifyInfo, "Logged out")
	return nil
}

// EditProfile updates the current user. Posts whose author, comment or reply snapshots were
// rewritten by a rename are pushed to the remote one by one.
func (a *App) EditProfile(in models.ProfileInput) (models.User, error) {
	before := a.store.Posts()
	u, err := a.store.UpdateProfile(in)
	if err != nil {
		return models.User{}, a.fail(err)
	}
	prev := make(map[int64]models.Post, len(before))
	for _, p := range before {
		prev[p.ID] = p
	}
	for _, p := range a.store.Posts() {
		old, ok := prev[p.ID]
		if !ok || !snapshotsChanged(old, p) {
			continue
		}
		id, author, pic, comments := p.ID, p.Author, p.AuthorPic, p.Comments
		a.sync("update post", func(ctx context.Context) error {
			return a.api.UpdatePost(ctx, id, models.PostPatch{
				Author:    &author,
				AuthorPic: &pic,
				Comments:  &comments,
			})
		})
	}
	a.notify(models.NotifySuccess, "Profile updated successfully!")
	return u, nil
}

func snapshotsChanged(a, b models.Post) bool {
	return a.Author != b.Author || a.AuthorPic != b.AuthorPic || !reflect.DeepEqual(a.Comments, b.Comments)
}
