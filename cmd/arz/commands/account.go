package commands

import (
	"github.com/spf13/cobra"

	"github.com/cppla/arz/models"
)

func (c *cli) registerCmd() *cobra.Command {
	var (
		draft   models.UserDraft
		picPath string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an account on the API, or locally when the API is unavailable.

Examples:
  arz register --username ann --email ann@example.com --password secret --pic me.jpg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if picPath != "" {
				pic, err := loadImage(picPath, c.cfg.MaxFileSizeMB)
				if err != nil {
					return err
				}
				draft.ProfilePic = pic
			}
			u, err := c.app.SubmitRegistration(cmd.Context(), draft)
			if err != nil {
				return err
			}
			c.view.User(u)
			return nil
		},
	}
	cmd.Flags().StringVar(&draft.Username, "username", "", "Display name")
	cmd.Flags().StringVar(&draft.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&draft.Password, "password", "", "Password")
	cmd.Flags().StringVar(&picPath, "pic", "", "Profile picture file or URL")
	return cmd
}

func (c *cli) loginCmd() *cobra.Command {
	var creds models.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := c.app.SubmitLogin(cmd.Context(), creds)
			if err != nil {
				return err
			}
			c.view.User(u)
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Password")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and continue as Guest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Logout()
		},
	}
}

func (c *cli) profileCmd() *cobra.Command {
	var (
		edit    models.ProfileInput
		picPath string
	)
	cmd := &cobra.Command{
		Use:   "profile [username]",
		Short: "Show or edit a profile",
		Long: `Show a user's posts and totals. Without a username the signed-in user is shown.
Any of the --set-* flags edits the signed-in user's profile instead; a new name or picture
is applied to every post and comment they wrote.

Examples:
  arz profile                     # Your profile
  arz profile NatureLover         # Someone else's
  arz profile --set-username ann2 --set-pic new.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			editing := edit != (models.ProfileInput{}) || picPath != ""
			if editing {
				if len(args) > 0 {
					return errEditOther
				}
				if picPath != "" {
					pic, err := loadImage(picPath, c.cfg.MaxFileSizeMB)
					if err != nil {
						return err
					}
					edit.ProfilePic = pic
				}
				if _, err := c.app.EditProfile(edit); err != nil {
					return err
				}
			}

			me := c.store.User()
			name := me.Username
			if len(args) > 0 {
				name = args[0]
			}
			if name == me.Username {
				c.view.User(me)
			}
			c.view.Profile(c.store.Profile(name), me.IsFollowing(name))
			return nil
		},
	}
	cmd.Flags().StringVar(&edit.Username, "set-username", "", "New display name")
	cmd.Flags().StringVar(&picPath, "set-pic", "", "New profile picture file or URL")
	cmd.Flags().StringVar(&edit.Email, "set-email", "", "New email address")
	cmd.Flags().StringVar(&edit.Password, "set-password", "", "New password")
	return cmd
}

func (c *cli) followCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "follow <username>",
		Short: "Follow or unfollow a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.app.ToggleFollow(args[0])
			return err
		},
	}
}
