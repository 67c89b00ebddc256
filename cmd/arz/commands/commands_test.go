package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type runResult struct {
	code   int
	out    string
	errOut string
}

func runCLI(t *testing.T, dir string, args ...string) runResult {
	t.Helper()
	var out, errOut bytes.Buffer
	base := []string{
		"--offline",
		"--config", filepath.Join(dir, "missing.json"),
		"--data", filepath.Join(dir, "arz.db"),
	}
	code := newCLI(&out, &errOut).run(append(base, args...))
	return runResult{code: code, out: out.String(), errOut: errOut.String()}
}

func TestDataURI(t *testing.T) {
	uri, err := dataURI(pngHeader)
	require.NoError(t, err)
	assert.Contains(t, uri, "data:image/png;base64,")

	_, err = dataURI([]byte("just some text"))
	assert.ErrorContains(t, err, "please select an image")
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()

	url := "https://example.com/pic.jpg"
	got, err := loadImage(url, 1)
	require.NoError(t, err)
	assert.Equal(t, url, got)

	small := filepath.Join(dir, "small.png")
	require.NoError(t, os.WriteFile(small, pngHeader, 0o644))
	got, err = loadImage(small, 1)
	require.NoError(t, err)
	assert.Contains(t, got, "data:image/png;base64,")

	big := filepath.Join(dir, "big.png")
	require.NoError(t, os.WriteFile(big, append(pngHeader, make([]byte, 1<<20)...), 0o644))
	_, err = loadImage(big, 1)
	assert.ErrorContains(t, err, "larger than 1 MB")

	_, err = loadImage(filepath.Join(dir, "nope.png"), 1)
	assert.Error(t, err)
	_, err = loadImage(dir, 1)
	assert.ErrorContains(t, err, "is a directory")
}

func TestParseID(t *testing.T) {
	id, err := parseID("#42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "abc", "0", "-3"} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestFeedSeedsSamplesOffline(t *testing.T) {
	dir := t.TempDir()
	res := runCLI(t, dir, "feed")
	require.Equal(t, 0, res.code, res.errOut)
	assert.Contains(t, res.out, "Sunset Dreams")
	assert.Contains(t, res.out, "Whispers of Night")

	res = runCLI(t, dir, "feed", "--search", "whispers")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.out, "Whispers of Night")
	assert.NotContains(t, res.out, "Sunset Dreams")
}

func TestLikePrintsToast(t *testing.T) {
	dir := t.TempDir()
	res := runCLI(t, dir, "like", "1")
	require.Equal(t, 0, res.code, res.errOut)
	assert.Contains(t, res.out, "Liked the post!")

	// Earlier toasts are history and are not printed again.
	res = runCLI(t, dir, "bookmarks")
	require.Equal(t, 0, res.code)
	assert.NotContains(t, res.out, "Liked the post!")

	res = runCLI(t, dir, "notifications", "--read")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.out, "(1 unread)")
	res = runCLI(t, dir, "notifications")
	assert.Contains(t, res.out, "(0 unread)")
}

func TestCommentOnMissingPostFails(t *testing.T) {
	dir := t.TempDir()
	res := runCLI(t, dir, "comment", "999", "hello")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.out, "Post not found!")
	assert.Empty(t, res.errOut)

	res = runCLI(t, dir, "like", "nope")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.errOut, `invalid id "nope"`)
}

func TestLocalAccountFlow(t *testing.T) {
	dir := t.TempDir()
	res := runCLI(t, dir, "login", "--email", "ann@example.com", "--password", "pw")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.out, "No user found")

	res = runCLI(t, dir, "register",
		"--username", "ann", "--email", "ann@example.com", "--password", "pw",
		"--pic", "https://example.com/ann.png")
	require.Equal(t, 0, res.code, res.errOut)
	assert.Contains(t, res.out, "Account created successfully!")

	res = runCLI(t, dir, "logout")
	require.Equal(t, 0, res.code)

	res = runCLI(t, dir, "login", "--email", "ann@example.com", "--password", "pw")
	require.Equal(t, 0, res.code, res.errOut)
	assert.Contains(t, res.out, "Login successful!")

	res = runCLI(t, dir, "profile", "--set-username", "ann2")
	require.Equal(t, 0, res.code, res.errOut)
	assert.Contains(t, res.out, "Profile updated successfully!")
	assert.Contains(t, res.out, "ann2")
}

func TestThemeToggle(t *testing.T) {
	dir := t.TempDir()
	res := runCLI(t, dir, "theme")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.out, "Theme changed to light mode")

	res = runCLI(t, dir, "theme", "light")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.out, "already light")

	res = runCLI(t, dir, "theme", "sepia")
	assert.Equal(t, 1, res.code)
}

func TestPingOffline(t *testing.T) {
	res := runCLI(t, t.TempDir(), "ping")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.out, "working offline")
}
