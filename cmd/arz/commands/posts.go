package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cppla/arz/models"
)

func (c *cli) feedCmd() *cobra.Command {
	var (
		search   string
		category string
		pages    int
	)
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the post feed",
		Long: `Show posts, newest first. Without filters the feed is paged; --pages reveals more.

Examples:
  arz feed                        # First page
  arz feed --pages 3              # First three pages
  arz feed --search sunset        # Title, content or author contains "sunset"
  arz feed --category Nature`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if search != "" || category != "" {
				c.view.Feed(c.store.FilterPosts(search, category), false)
				return nil
			}
			c.store.ResetPage()
			for i := 1; i < pages; i++ {
				if !c.store.LoadMore() {
					break
				}
			}
			c.view.Feed(c.store.VisiblePosts(), c.store.HasMore())
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter by text in title, content or author")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Filter by exact category")
	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "Number of pages to show")
	return cmd
}

func (c *cli) postCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Create or show posts",
	}
	cmd.AddCommand(c.postAddCmd(), c.postShowCmd())
	return cmd
}

func (c *cli) postAddCmd() *cobra.Command {
	var (
		in        models.PostInput
		imagePath string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Upload a new post",
		Long: `Upload a new post as the signed-in user. The image may be a local file, which is
embedded as a data URI, or an http(s) URL.

Examples:
  arz post add --title "Dusk" --category Nature --content "Last light" --image dusk.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if imagePath != "" {
				img, err := loadImage(imagePath, c.cfg.MaxFileSizeMB)
				if err != nil {
					return err
				}
				in.Image = img
			}
			p, err := c.app.SubmitPost(cmd.Context(), in)
			if err != nil {
				return err
			}
			c.view.Post(p, false)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "Post title")
	cmd.Flags().StringVar(&in.Category, "category", "", "Post category")
	cmd.Flags().StringVar(&in.Content, "content", "", "Post text")
	cmd.Flags().StringVar(&imagePath, "image", "", "Image file or URL")
	return cmd
}

func (c *cli) postShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <post-id>",
		Short: "Show a post with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := c.app.ViewPost(id)
			if err != nil {
				return err
			}
			c.view.Post(p, c.store.IsBookmarked(id))
			return nil
		},
	}
}

func (c *cli) likeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like <post-id>",
		Short: "Like a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := c.app.LikePost(id)
			if err != nil {
				return err
			}
			c.view.Info("%q now has %d likes", p.Title, p.Likes)
			return nil
		},
	}
}

func (c *cli) dislikeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dislike <post-id>",
		Short: "Dislike a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := c.app.DislikePost(id)
			if err != nil {
				return err
			}
			c.view.Info("%q now has %d dislikes", p.Title, p.Dislikes)
			return nil
		},
	}
}

func (c *cli) commentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <post-id> <text>...",
		Short: "Comment on a post",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			cm, err := c.app.AddComment(id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			c.view.Info("Comment #%d added", cm.ID)
			return nil
		},
	}
}

func (c *cli) replyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reply <post-id> <comment-id> <text>...",
		Short: "Reply to a comment",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			postID, err := parseID(args[0])
			if err != nil {
				return err
			}
			commentID, err := parseID(args[1])
			if err != nil {
				return err
			}
			_, err = c.app.AddReply(postID, commentID, strings.Join(args[2:], " "))
			return err
		},
	}
}

func (c *cli) bookmarkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bookmark <post-id>",
		Short: "Toggle a bookmark on a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			_, err = c.app.ToggleBookmark(id)
			return err
		},
	}
}

func (c *cli) bookmarksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bookmarks",
		Short: "List bookmarked posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.view.Feed(c.store.BookmarkedPosts(), false)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
