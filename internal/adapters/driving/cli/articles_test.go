package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wallapocket/internal/core/domain"
)

func TestListCmd_ForcesReloadAndShowsVisible(t *testing.T) {
	env, cleanup := setupTest()
	defer cleanup()

	env.sync.articles = []domain.Article{
		{ID: 2, Title: "Second", Domain: "example.org", CreatedAt: time.Now()},
		{ID: 1, Title: "First", Domain: "example.org", IsStarred: true},
	}
	env.sync.visible = env.sync.articles[:1]

	out, err := execute("list")

	require.NoError(t, err)
	assert.Equal(t, []bool{true}, env.sync.refreshes)
	assert.Contains(t, out, "Second")
	assert.NotContains(t, out, "First")
}

func TestListCmd_All(t *testing.T) {
	env, cleanup := setupTest()
	defer cleanup()

	env.sync.articles = []domain.Article{{ID: 2, Title: "Second"}, {ID: 1, Title: "First"}}
	env.sync.visible = env.sync.articles[:1]

	out, err := execute("list", "--all")

	require.NoError(t, err)
	assert.Contains(t, out, "Second")
	assert.Contains(t, out, "First")
}

func TestListCmd_Empty(t *testing.T) {
	_, cleanup := setupTest()
	defer cleanup()

	out, err := execute("list")

	require.NoError(t, err)
	assert.Contains(t, out, "No articles found.")
}

func TestListCmd_RefreshError(t *testing.T) {
	env, cleanup := setupTest()
	defer cleanup()
	env.sync.err = errBoom

	_, err := execute("list")

	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "failed to load articles")
}

func TestListCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTest()
	defer cleanup()
	SetServices(nil)

	_, err := execute("list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync service not configured")
}

func TestSaveCmd(t *testing.T) {
	env, cleanup := setupTest()
	defer cleanup()

	out, err := execute("save", "https://example.org/a", "--title", "A title")

	require.NoError(t, err)
	assert.Equal(t, []string{"save:https://example.org/a|A title"}, env.actions.calls)
	assert.Contains(t, out, "[OK] Saved article 42: A title")
}

func TestSaveCmd_UntitledShowsURL(t *testing.T) {
	_, cleanup := setupTest()
	defer cleanup()

	out, err := execute("save", "https://example.org/a")

	require.NoError(t, err)
	assert.Contains(t, out, "Saved article 42: https://example.org/a")
}

func TestSaveCmd_Failure(t *testing.T) {
	env, cleanup := setupTest()
	defer cleanup()
	env.actions.err = errBoom

	_, err := execute("save", "https://example.org/a")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save article")
}

func TestArticleActionCmds(t *testing.T) {
	tests := []struct {
		args []string
		call string
		out  string
	}{
		{[]string{"archive", "5"}, "archive:5", "[OK] Archived article 5"},
		{[]string{"unarchive", "5"}, "unarchive:5", "[OK] Unarchived article 5"},
		{[]string{"star", "6"}, "star:6", "[OK] Starred article 6"},
		{[]string{"unstar", "6"}, "unstar:6", "[OK] Unstarred article 6"},
		{[]string{"delete", "7"}, "delete:7", "[OK] Deleted article 7"},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			env, cleanup := setupTest()
			defer cleanup()

			out, err := execute(tt.args...)

			require.NoError(t, err)
			assert.Equal(t, []string{tt.call}, env.actions.calls)
			assert.Contains(t, out, tt.out)
		})
	}
}

func TestArticleActionCmds_InvalidID(t *testing.T) {
	for _, arg := range []string{"abc", "0", "-3"} {
		t.Run(arg, func(t *testing.T) {
			env, cleanup := setupTest()
			defer cleanup()

			_, err := execute("archive", "--", arg)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, env.actions.calls)
		})
	}
}

func TestArticleActionCmds_Failure(t *testing.T) {
	env, cleanup := setupTest()
	defer cleanup()
	env.actions.err = errBoom

	out, err := execute("star", "3")

	assert.ErrorIs(t, err, errBoom)
	assert.NotContains(t, out, "[OK]")
}

func TestRenameCmd_JoinsWords(t *testing.T) {
	env, cleanup := setupTest()
	defer cleanup()

	out, err := execute("rename", "9", "A", "new", "title")

	require.NoError(t, err)
	assert.Equal(t, []string{"rename:9:A new title"}, env.actions.calls)
	assert.Contains(t, out, `Renamed article 9 to "A new title"`)
}

func TestRenameCmd_RequiresTitle(t *testing.T) {
	_, cleanup := setupTest()
	defer cleanup()

	_, err := execute("rename", "9")

	assert.Error(t, err)
}

func TestCopyCmd(t *testing.T) {
	env, cleanup := setupTest()
	defer cleanup()

	_, err := execute("copy", "4")

	require.NoError(t, err)
	assert.Equal(t, []string{"copy:https://example.org/post"}, env.actions.calls)
}

func TestOpenCmd(t *testing.T) {
	env, cleanup := setupTest()
	defer cleanup()

	_, err := execute("open", "4")

	require.NoError(t, err)
	assert.Equal(t, []string{"open:https://example.org/post"}, env.actions.calls)
}

func TestOpenCmd_LookupFailure(t *testing.T) {
	env, cleanup := setupTest()
	defer cleanup()
	env.articles.err = &domain.TransportError{Status: 404, Body: `{"error":{"code":404}}`}

	_, err := execute("open", "4")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorContains(t, err, "no article with id 4")
	assert.Empty(t, env.actions.calls)
}

func TestArticleActionCmds_ButtonDisabled(t *testing.T) {
	tests := []struct {
		args []string
		off  func(*domain.ButtonSettings)
		key  string
	}{
		{[]string{"archive", "5"}, func(b *domain.ButtonSettings) { b.Archive = false }, "display.show_archive_button"},
		{[]string{"unstar", "5"}, func(b *domain.ButtonSettings) { b.Star = false }, "display.show_star_button"},
		{[]string{"delete", "5"}, func(b *domain.ButtonSettings) { b.Delete = false }, "display.show_delete_button"},
		{[]string{"rename", "5", "New"}, func(b *domain.ButtonSettings) { b.EditTitle = false }, "display.show_edit_title_button"},
		{[]string{"copy", "5"}, func(b *domain.ButtonSettings) { b.Copy = false }, "display.show_copy_button"},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			env, cleanup := setupTest()
			defer cleanup()
			tt.off(&env.sync.settings.Buttons)

			_, err := execute(tt.args...)

			assert.ErrorIs(t, err, errActionDisabled)
			assert.ErrorContains(t, err, tt.key)
			assert.Empty(t, env.actions.calls)
		})
	}
}

func TestParseID(t *testing.T) {
	id, err := parseID(" 12 ")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	_, err = parseID("x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
