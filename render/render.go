// Package render draws the client's views (feed, post detail, profile, notifications) as themed
// terminal text.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/cppla/arz/models"
	"github.com/cppla/arz/store"
)

// Palette is the color set of one theme.
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Danger    lipgloss.Color
	Info      lipgloss.Color
	Muted     lipgloss.Color
	Text      lipgloss.Color
	Border    lipgloss.Color
}

var (
	darkPalette = Palette{
		Primary:   lipgloss.Color("#00BCD4"),
		Secondary: lipgloss.Color("#EC4899"),
		Success:   lipgloss.Color("#10B981"),
		Warning:   lipgloss.Color("#F59E0B"),
		Danger:    lipgloss.Color("#EF4444"),
		Info:      lipgloss.Color("#3B82F6"),
		Muted:     lipgloss.Color("#6B7280"),
		Text:      lipgloss.Color("#F3F4F6"),
		Border:    lipgloss.Color("#4B5563"),
	}

	lightPalette = Palette{
		Primary:   lipgloss.Color("#0E7490"),
		Secondary: lipgloss.Color("#BE185D"),
		Success:   lipgloss.Color("#047857"),
		Warning:   lipgloss.Color("#B45309"),
		Danger:    lipgloss.Color("#B91C1C"),
		Info:      lipgloss.Color("#1D4ED8"),
		Muted:     lipgloss.Color("#6B7280"),
		Text:      lipgloss.Color("#111827"),
		Border:    lipgloss.Color("#D1D5DB"),
	}
)

// PaletteFor returns the palette of theme. Unknown themes get the dark palette.
func PaletteFor(theme string) Palette {
	if theme == store.ThemeLight {
		return lightPalette
	}
	return darkPalette
}

// Renderer writes views to one output.
type Renderer struct {
	w     io.Writer
	theme string
	now   func() time.Time

	title    lipgloss.Style
	subtitle lipgloss.Style
	text     lipgloss.Style
	muted    lipgloss.Style
	accent   lipgloss.Style
	success  lipgloss.Style
	warning  lipgloss.Style
	danger   lipgloss.Style
	info     lipgloss.Style
	card     lipgloss.Style
	badge    lipgloss.Style
}

// New builds a Renderer for w using the named theme.
func New(w io.Writer, theme string) *Renderer {
	lr := lipgloss.NewRenderer(w)
	p := PaletteFor(theme)
	if theme != store.ThemeLight {
		theme = store.ThemeDark
	}
	return &Renderer{
		w:     w,
		theme: theme,
		now:   time.Now,

		title:    lr.NewStyle().Bold(true).Foreground(p.Primary),
		subtitle: lr.NewStyle().Foreground(p.Muted).Italic(true),
		text:     lr.NewStyle().Foreground(p.Text),
		muted:    lr.NewStyle().Foreground(p.Muted),
		accent:   lr.NewStyle().Foreground(p.Secondary).Bold(true),
		success:  lr.NewStyle().Foreground(p.Success).Bold(true),
		warning:  lr.NewStyle().Foreground(p.Warning).Bold(true),
		danger:   lr.NewStyle().Foreground(p.Danger).Bold(true),
		info:     lr.NewStyle().Foreground(p.Info),
		card: lr.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
		badge: lr.NewStyle().
			Foreground(p.Primary).
			Bold(true),
	}
}

// Theme returns the theme the renderer draws with.
func (r *Renderer) Theme() string { return r.theme }

// Feed draws a list of post cards followed by a load-more hint.
func (r *Renderer) Feed(posts []models.Post, hasMore bool) {
	if len(posts) == 0 {
		fmt.Fprintln(r.w, r.muted.Render("No posts yet. Be the first to share something!"))
		return
	}
	for _, p := range posts {
		fmt.Fprintln(r.w, r.card.Render(r.postSummary(p)))
	}
	if hasMore {
		fmt.Fprintln(r.w, r.muted.Render("More posts available, use --pages to load more."))
	}
}

// Post draws one post with its comments and replies.
func (r *Renderer) Post(p models.Post, bookmarked bool) {
	var b strings.Builder
	b.WriteString(r.postSummary(p))
	if bookmarked {
		b.WriteString("\n" + r.badge.Render("🔖 Bookmarked"))
	}
	b.WriteString("\n\n" + r.title.Render(fmt.Sprintf("Comments (%d)", len(p.Comments))))
	if len(p.Comments) == 0 {
		b.WriteString("\n" + r.muted.Render("No comments yet."))
	}
	for _, c := range p.Comments {
		b.WriteString("\n" + r.comment(c))
	}
	fmt.Fprintln(r.w, r.card.Render(b.String()))
}

func (r *Renderer) postSummary(p models.Post) string {
	lines := []string{
		r.title.Render(p.Title) + " " + r.muted.Render(fmt.Sprintf("#%d", p.ID)),
		r.subtitle.Render("By: "+p.Author) + "  " + r.badge.Render(p.Category),
	}
	if p.Image != "" {
		lines = append(lines, r.muted.Render(ImageLabel(p.Image)))
	}
	lines = append(lines,
		r.text.Render(p.Content),
		r.info.Render(fmt.Sprintf("👁️ %d views  ⭐ %d likes  👎 %d dislikes  💬 %d comments",
			p.Views, p.Likes, p.Dislikes, len(p.Comments))),
		r.muted.Render(FormatTime(p.Timestamp, r.now())),
	)
	return strings.Join(lines, "\n")
}

func (r *Renderer) comment(c models.Comment) string {
	var b strings.Builder
	b.WriteString(r.accent.Render(c.Username) + " " +
		r.muted.Render(fmt.Sprintf("#%d · %s", c.ID, c.Time.Local().Format("2006-01-02"))))
	b.WriteString("\n  " + r.text.Render(c.Text))
	for _, rep := range c.Replies {
		b.WriteString("\n    ↳ " + r.accent.Render(rep.Username) + " " + r.text.Render(rep.Text))
	}
	return b.String()
}

// Profile draws a user's header, stats and posts.
func (r *Renderer) Profile(pr store.Profile, following bool) {
	header := r.title.Render(pr.Username)
	if following {
		header += " " + r.badge.Render("Following")
	}
	stats := r.info.Render(fmt.Sprintf("%d posts  ⭐ %d likes  👁️ %d views  💬 %d comments",
		len(pr.Posts), pr.TotalLikes, pr.TotalViews, pr.Comments))
	fmt.Fprintln(r.w, r.card.Render(header+"\n"+stats))
	r.Feed(pr.Posts, false)
}

// User draws the signed-in account.
func (r *Renderer) User(u models.User) {
	if u.IsGuest() {
		fmt.Fprintln(r.w, r.muted.Render("Signed in as Guest."))
		return
	}
	lines := []string{
		r.title.Render(u.Username),
		r.subtitle.Render(u.Email),
		r.info.Render(fmt.Sprintf("Following %d · %d bookmarks", len(u.Following), len(u.Bookmarks))),
	}
	fmt.Fprintln(r.w, r.card.Render(strings.Join(lines, "\n")))
}

// Notifications draws the toast history, newest first.
func (r *Renderer) Notifications(notes []models.Notification, unread int) {
	fmt.Fprintln(r.w, r.title.Render(fmt.Sprintf("Notifications (%d unread)", unread)))
	if len(notes) == 0 {
		fmt.Fprintln(r.w, r.muted.Render("Nothing here yet."))
		return
	}
	for _, n := range notes {
		mark := " "
		if !n.Read {
			mark = r.badge.Render("●")
		}
		fmt.Fprintf(r.w, "%s %s %s\n", mark, r.Toast(n.Type, n.Message), r.muted.Render(FormatTime(n.Timestamp, r.now())))
	}
}

// Toast formats a message the way its notification type is shown.
func (r *Renderer) Toast(kind, message string) string {
	switch kind {
	case models.NotifySuccess:
		return r.success.Render("✓ ") + message
	case models.NotifyError:
		return r.danger.Render("✗ ") + message
	default:
		return r.info.Render("ℹ ") + message
	}
}

// Success prints a success line.
func (r *Renderer) Success(format string, args ...any) {
	fmt.Fprintln(r.w, r.Toast(models.NotifySuccess, fmt.Sprintf(format, args...)))
}

// Info prints an informational line.
func (r *Renderer) Info(format string, args ...any) {
	fmt.Fprintln(r.w, r.Toast(models.NotifyInfo, fmt.Sprintf(format, args...)))
}

// Error prints an error line.
func (r *Renderer) Error(format string, args ...any) {
	fmt.Fprintln(r.w, r.Toast(models.NotifyError, fmt.Sprintf(format, args...)))
}

// Warning prints a warning line.
func (r *Renderer) Warning(format string, args ...any) {
	fmt.Fprintln(r.w, r.warning.Render("⚠ ")+fmt.Sprintf(format, args...))
}

// ImageLabel shortens an image reference for terminal output. Data URIs are summarized by media
// type and approximate size.
func ImageLabel(src string) string {
	if !strings.HasPrefix(src, "data:") {
		return "🖼 " + src
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return "🖼 inline image"
	}
	mediaType, _, _ := strings.Cut(meta, ";")
	if mediaType == "" {
		mediaType = "image"
	}
	size := len(payload)
	if strings.HasSuffix(meta, ";base64") {
		size = len(payload) * 3 / 4
	}
	return fmt.Sprintf("🖼 %s, %s", mediaType, formatBytes(size))
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%d KB", n>>10)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// FormatTime renders t relative to now for recent times and as a date otherwise.
func FormatTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < 0:
		return t.Local().Format("2006-01-02 15:04")
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	default:
		return t.Local().Format("2006-01-02")
	}
}
