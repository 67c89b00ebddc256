package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cppla/arz/store"
)

var errEditOther = errors.New("only your own profile can be edited")

func (c *cli) themeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light]",
		Short:     "Toggle or set the color theme",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{store.ThemeDark, store.ThemeLight},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && args[0] == c.store.Theme() {
				c.view.Info("Theme is already %s", args[0])
				return nil
			}
			_, err := c.app.ToggleTheme()
			return err
		},
	}
}

func (c *cli) notificationsCmd() *cobra.Command {
	var (
		markRead bool
		clearAll bool
	)
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show notification history",
		Long: `Show past notifications, newest first.

Examples:
  arz notifications               # List with unread count
  arz notifications --read        # List, then mark everything read
  arz notifications --clear       # Delete the history`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearAll {
				if err := c.store.ClearNotifications(); err != nil {
					return fmt.Errorf("failed to clear notifications: %w", err)
				}
				c.view.Success("Notifications cleared")
				return nil
			}
			c.view.Notifications(c.store.Notifications(), c.store.UnreadCount())
			if markRead {
				if err := c.store.MarkAllRead(); err != nil {
					return fmt.Errorf("failed to mark notifications read: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&markRead, "read", false, "Mark all notifications as read")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete all notifications")
	return cmd
}

func (c *cli) pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the API answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.cfg.EnableBackend {
				c.view.Warning("Backend disabled, working offline")
				return nil
			}
			if err := c.app.Ping(cmd.Context()); err != nil {
				c.view.Warning("%s did not answer: %v", c.cfg.APIBaseURL, err)
			}
			return nil
		},
	}
}
