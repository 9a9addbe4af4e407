package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billyloki/module-shop-admin/internal/sqlite"
	"github.com/billyloki/module-shop-admin/internal/stubapi"
	"github.com/billyloki/module-shop-admin/pkg/shopadmin"
	"github.com/billyloki/module-shop-admin/pkg/types"
)

// env is one test's API server and config directory.
type env struct {
	apiURL    string
	configDir string
}

func newEnv(t *testing.T) env {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(t.TempDir()))
	t.Cleanup(func() { b.Detach() })

	srv := httptest.NewServer(stubapi.New(b))
	t.Cleanup(srv.Close)
	return env{apiURL: srv.URL + stubapi.DefaultPrefix, configDir: t.TempDir()}
}

// exec runs shopadmin with args against e and returns stdout, stderr and
// the exit code.
func (e env) exec(args ...string) (string, string, int) {
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	full := append([]string{"--config-dir", e.configDir, "--api-url", e.apiURL, "--log-level", "error"}, args...)
	code := run(root, full, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestVersion(t *testing.T) {
	e := newEnv(t)
	out, _, code := e.exec("version")
	assert.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "shopadmin v"+shopadmin.Version)
}

func TestInitWritesConfigOnce(t *testing.T) {
	e := newEnv(t)
	path := filepath.Join(e.configDir, "config.yaml")

	out, _, code := e.exec("init")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "Wrote "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "api_base_url:")
	assert.Contains(t, string(data), "timeout: 10s")

	require.NoError(t, os.WriteFile(path, []byte("page_size: 4\n"), 0o644))
	out, _, code = e.exec("init")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "Kept existing")
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "page_size: 4\n", string(data))
}

func TestConfigPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		env    map[string]string
		expect func(t *testing.T, cfg types.Config, code int)
	}{
		{
			name: "defaults without a file",
			expect: func(t *testing.T, cfg types.Config, code int) {
				require.Equal(t, exitSuccess, code)
				assert.Equal(t, types.DefaultPageSize, cfg.PageSize)
				assert.Equal(t, types.DefaultSortPredicate, cfg.SortPredicate)
			},
		},
		{
			name: "file overrides defaults",
			file: "page_size: 5\nsort_predicate: name\ntimeout: 3s\n",
			expect: func(t *testing.T, cfg types.Config, code int) {
				require.Equal(t, exitSuccess, code)
				assert.Equal(t, 5, cfg.PageSize)
				assert.Equal(t, "name", cfg.SortPredicate)
				assert.Equal(t, "3s", cfg.Timeout.String())
			},
		},
		{
			name: "environment overrides file",
			file: "page_size: 5\n",
			env:  map[string]string{"SHOPADMIN_PAGE_SIZE": "7"},
			expect: func(t *testing.T, cfg types.Config, code int) {
				require.Equal(t, exitSuccess, code)
				assert.Equal(t, 7, cfg.PageSize)
			},
		},
		{
			name: "invalid file is a user error",
			file: "log_format: xml\n",
			expect: func(t *testing.T, cfg types.Config, code int) {
				assert.Equal(t, exitUserError, code)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			if tt.file != "" {
				require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte(tt.file), 0o644))
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			out, _, code := e.exec("--json", "config")
			var cfg types.Config
			if code == exitSuccess {
				require.NoError(t, json.Unmarshal([]byte(out), &cfg))
				assert.Equal(t, e.apiURL, cfg.APIBaseURL, "--api-url wins over everything")
			}
			tt.expect(t, cfg, code)
		})
	}
}

func TestCategoryList(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		code  int
		check func(t *testing.T, out string)
	}{
		{
			name: "first page by id descending",
			args: []string{"category", "list"},
			check: func(t *testing.T, out string) {
				lines := strings.Split(strings.TrimSpace(out), "\n")
				require.Len(t, lines, 13)
				assert.True(t, strings.HasPrefix(lines[0], "ID"))
				assert.True(t, strings.HasPrefix(lines[1], "--"))
				assert.True(t, strings.HasPrefix(lines[2], "12  Sports"))
				assert.Equal(t, "Page 1/2  1-10 of 12", lines[12])
				for _, l := range lines {
					assert.Equal(t, strings.TrimRight(l, " "), l)
				}
			},
		},
		{
			name: "second page",
			args: []string{"category", "list", "--page", "2"},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "Electronics")
				assert.Contains(t, out, "Phones")
				assert.NotContains(t, out, "Sports")
				assert.Contains(t, out, "Page 2/2  11-12 of 12")
			},
		},
		{
			name: "keyword filter",
			args: []string{"category", "list", "--keyword", "cam"},
			check: func(t *testing.T, out string) {
				assert.Contains(t, out, "Cameras")
				assert.Contains(t, out, "1-1 of 1")
			},
		},
		{
			name: "sort by name ascending",
			args: []string{"category", "list", "--sort", "name", "--size", "3"},
			check: func(t *testing.T, out string) {
				lines := strings.Split(strings.TrimSpace(out), "\n")
				require.Len(t, lines, 6)
				assert.Contains(t, lines[2], "Audio")
				assert.Contains(t, lines[3], "Books")
				assert.Equal(t, "Page 1/4  1-3 of 12", lines[5])
			},
		},
		{
			name: "unknown sort field",
			args: []string{"category", "list", "--sort", "colour"},
			code: exitUserError,
		},
		{
			name: "page zero",
			args: []string{"category", "list", "--page", "0"},
			code: exitUserError,
		},
		{
			name: "json page",
			args: []string{"--json", "category", "list", "--size", "5"},
			check: func(t *testing.T, out string) {
				var page pageJSON[types.Category]
				require.NoError(t, json.Unmarshal([]byte(out), &page))
				assert.Equal(t, 12, page.Total)
				assert.Equal(t, 3, page.PageCount)
				assert.Len(t, page.Items, 5)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			out, stderr, code := e.exec(tt.args...)
			require.Equal(t, tt.code, code, stderr)
			if tt.check != nil {
				tt.check(t, out)
			}
		})
	}
}

func TestCategoryToggleAndDelete(t *testing.T) {
	e := newEnv(t)

	out, stderr, code := e.exec("category", "toggle", "12")
	require.Equal(t, exitSuccess, code, stderr)
	assert.Equal(t, "Category 12 (Sports): includeInMenu=false\n", out)

	out, _, code = e.exec("--json", "category", "toggle", "4")
	require.Equal(t, exitSuccess, code)
	var rec types.Category
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.True(t, rec.IncludeInMenu, "Cameras starts out of the menu")

	_, stderr, code = e.exec("category", "toggle", "99")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr, types.ErrNotFound.Error())

	_, _, code = e.exec("category", "toggle", "12", "--field", "isPublished")
	assert.Equal(t, exitUserError, code)

	out, _, code = e.exec("category", "delete", "12")
	require.Equal(t, exitSuccess, code)
	assert.Equal(t, "Deleted category 12\n", out)

	_, stderr, code = e.exec("category", "delete", "12")
	assert.Equal(t, exitUserError, code)
	assert.NotEmpty(t, stderr)

	out, _, code = e.exec("category", "list")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "1-10 of 11")
}

func TestFreightCommands(t *testing.T) {
	e := newEnv(t)

	out, _, code := e.exec("freight", "list", "1")
	require.Equal(t, exitSuccess, code)
	assert.Equal(t, "No destinations found.\n", out)

	out, stderr, code := e.exec("freight", "add", "1", "--country", "2", "--province", "100", "--price", "12.5", "--note", "west coast")
	require.Equal(t, exitSuccess, code, stderr)
	assert.Equal(t, "Added destination price of template 1 (1 total)\n", out)

	_, stderr, code = e.exec("freight", "add", "1", "--country", "2", "--province", "100")
	assert.Equal(t, exitUserError, code, "one price per region")
	assert.Contains(t, stderr, "already exists")

	_, stderr, code = e.exec("freight", "add", "1", "--country", "2", "--province", "10")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr, "is not a region of country 2")

	_, _, code = e.exec("freight", "add", "1", "--country", "2", "--price", "cheap")
	assert.Equal(t, exitUserError, code)

	_, _, code = e.exec("freight", "add", "0", "--country", "2")
	assert.Equal(t, exitUserError, code)

	out, _, code = e.exec("--json", "freight", "list", "1")
	require.Equal(t, exitSuccess, code)
	var page pageJSON[types.PriceDestination]
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Items, 1)
	d := page.Items[0]
	assert.Equal(t, "California", d.StateOrProvinceName)
	assert.Equal(t, "12.5", d.ShippingPrice.String())
	assert.True(t, d.IsEnabled)
	id := d.Key()

	out, stderr, code = e.exec("freight", "edit", "1", id, "--country", "1", "--province", "30", "--enabled=false")
	require.Equal(t, exitSuccess, code, stderr)
	assert.Contains(t, out, "Updated")

	out, _, code = e.exec("freight", "list", "1")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "北京市")
	assert.Contains(t, out, "12.50")
	assert.Contains(t, out, "west coast")
	assert.NotContains(t, out, "California")

	_, _, code = e.exec("freight", "edit", "1", "999", "--note", "x")
	assert.Equal(t, exitUserError, code)

	out, _, code = e.exec("freight", "delete", "1", id)
	require.Equal(t, exitSuccess, code)
	assert.Equal(t, fmt.Sprintf("Deleted destination price %s\n", id), out)
}

func TestLookup(t *testing.T) {
	e := newEnv(t)

	out, _, code := e.exec("lookup", "countries")
	require.Equal(t, exitSuccess, code)
	assert.Equal(t, "1  中国\n2  United States\n", out)

	out, _, code = e.exec("lookup", "provinces", "1")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, out, "10  广东省 (province)\n  11  深圳市 (city)\n    12  南山区 (district)\n")

	_, _, code = e.exec("lookup", "provinces", "99")
	assert.Equal(t, exitUserError, code)

	_, _, code = e.exec("lookup", "provinces", "x")
	assert.Equal(t, exitUserError, code)
}

func TestUnreachableAPIIsSystemError(t *testing.T) {
	e := newEnv(t)
	e.apiURL = "http://127.0.0.1:1/api"
	_, stderr, code := e.exec("category", "list")
	assert.Equal(t, exitSysError, code)
	assert.Contains(t, stderr, "Error:")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"validation", types.NewValidationError("page", types.ErrInvalidPage), exitUserError},
		{"remote", &types.RemoteFailure{Message: "nope"}, exitUserError},
		{"transport", &types.TransportError{Op: "/x", Err: errors.New("refused")}, exitSysError},
		{"system", systemError("attach: %w", sqlite.ErrDataDirEmpty), exitSysError},
		{"shown remote", &shownError{msg: "nope", err: &types.RemoteFailure{Message: "nope"}}, exitUserError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	printTable(&buf, []string{"ID", "NAME"}, [][]string{{"1", "a"}, {"22", "bb"}})
	assert.Equal(t, "ID  NAME\n--  ----\n1   a\n22  bb\n", buf.String())
}
