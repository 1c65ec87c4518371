package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Batman1190/Spirify/internal/shared"
	tu "github.com/Batman1190/Spirify/internal/testing"
	"github.com/urfave/cli/v3"
)

// newTestRunner builds a Runner over an in-memory database with its API
// pointed at baseURL. The returned buffer captures command output.
func newTestRunner(t *testing.T, baseURL string) (*Runner, *bytes.Buffer) {
	t.Helper()

	config := shared.DefaultConfig()
	config.Database.Path = ":memory:"
	// one connection so every statement sees the same in-memory database
	config.Database.MaxOpenConns = 1
	config.Database.MaxIdleConns = 1
	config.Library.Path = t.TempDir()
	if baseURL != "" {
		config.YouTube.BaseURL = baseURL
	}

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: shared.NewLogger(nil),
		Output: output,
	})
	t.Cleanup(runner.Close)

	return runner, output
}

// run executes a CLI invocation against the runner's command tree.
func run(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()
	cmd := &cli.Command{
		Name:     "spirify",
		Commands: runner.register(),
	}
	return cmd.Run(context.Background(), append([]string{"spirify"}, args...))
}

// searchResponse mimics the /search payload for a single result.
const searchResponse = `{
	"items": [
		{
			"id": {"videoId": "vid_1"},
			"snippet": {
				"title": "Amazing Grace",
				"channelTitle": "Grace Choir",
				"thumbnails": {"high": {"url": "https://img.example/hi.jpg"}}
			}
		}
	]
}`

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.queries == nil {
				t.Error("expected query builder to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			if err := runner.writeJSON(data, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			if err := runner.writeJSON(data, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})
}

func TestKeysCommands(t *testing.T) {
	t.Run("add lists and removes a key", func(t *testing.T) {
		runner, output := newTestRunner(t, "")

		if err := run(t, runner, "keys", "add", "AIzaSyTestKey0123456789"); err != nil {
			t.Fatalf("keys add failed: %v", err)
		}
		if !strings.Contains(output.String(), "✓ Key added (1 in pool)") {
			t.Errorf("expected add confirmation, got %q", output.String())
		}

		output.Reset()
		if err := run(t, runner, "keys", "list"); err != nil {
			t.Fatalf("keys list failed: %v", err)
		}
		listing := output.String()
		if !strings.Contains(listing, "▶") {
			t.Error("expected active key marker in listing")
		}
		if strings.Contains(listing, "AIzaSyTestKey0123456789") {
			t.Error("expected key to be masked in listing")
		}
		if !strings.Contains(listing, "AIza") {
			t.Errorf("expected masked key prefix, got %q", listing)
		}

		output.Reset()
		if err := run(t, runner, "keys", "remove", "AIzaSyTestKey0123456789"); err != nil {
			t.Fatalf("keys remove failed: %v", err)
		}
		if !strings.Contains(output.String(), "✓ Key removed (0 in pool)") {
			t.Errorf("expected remove confirmation, got %q", output.String())
		}

		output.Reset()
		if err := run(t, runner, "keys", "list"); err != nil {
			t.Fatalf("keys list failed: %v", err)
		}
		if !strings.Contains(output.String(), "No API keys configured") {
			t.Errorf("expected empty pool message, got %q", output.String())
		}
	})

	t.Run("rejects blank key", func(t *testing.T) {
		runner, _ := newTestRunner(t, "")

		err := run(t, runner, "keys", "add", "  ")

		if err == nil {
			t.Fatal("expected error for blank key")
		}
	})
}

func TestSearchCommand(t *testing.T) {
	t.Run("prints search results", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !strings.HasPrefix(req.URL.Path, "/search") {
				t.Errorf("unexpected path %s", req.URL.Path)
			}
			w.Write([]byte(searchResponse))
		}))
		defer server.Close()

		runner, output := newTestRunner(t, server.URL)
		if err := run(t, runner, "keys", "add", "AIzaSyTestKey0123456789"); err != nil {
			t.Fatalf("keys add failed: %v", err)
		}
		output.Reset()

		if err := run(t, runner, "search", "amazing grace"); err != nil {
			t.Fatalf("search failed: %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Amazing Grace") {
			t.Errorf("expected track title in output, got %q", result)
		}
		if !strings.Contains(result, "Grace Choir") {
			t.Errorf("expected artist in output, got %q", result)
		}
		if !strings.Contains(result, "[vid_1]") {
			t.Errorf("expected track ID in output, got %q", result)
		}
	})

	t.Run("fails without a query", func(t *testing.T) {
		runner, _ := newTestRunner(t, "")

		err := run(t, runner, "search")

		if err == nil {
			t.Fatal("expected error for missing query")
		}
	})

	t.Run("fails without API keys", func(t *testing.T) {
		runner, _ := newTestRunner(t, "")

		err := run(t, runner, "search", "hymn")

		if err == nil {
			t.Fatal("expected error with empty key pool")
		}
	})
}

func TestPlaylistsCommands(t *testing.T) {
	t.Run("list shows presets first", func(t *testing.T) {
		runner, output := newTestRunner(t, "")

		if err := run(t, runner, "playlists", "list"); err != nil {
			t.Fatalf("playlists list failed: %v", err)
		}

		listing := output.String()
		for _, name := range []string{"Worship & Adoration", "Praise & Celebration", "Gospel Classics", "Contemporary Christian", "Bukas Palad & Tagalog"} {
			if !strings.Contains(listing, name) {
				t.Errorf("expected preset %q in listing, got %q", name, listing)
			}
		}
		if !strings.Contains(listing, "(preset)") {
			t.Error("expected preset marker in listing")
		}
	})

	t.Run("create show rename delete", func(t *testing.T) {
		runner, output := newTestRunner(t, "")

		if err := run(t, runner, "playlists", "create", "--name", "Morning Devotion"); err != nil {
			t.Fatalf("playlists create failed: %v", err)
		}
		created := output.String()
		if !strings.Contains(created, `✓ Created "Morning Devotion"`) {
			t.Fatalf("expected create confirmation, got %q", created)
		}

		start := strings.Index(created, "[")
		end := strings.Index(created, "]")
		if start < 0 || end <= start {
			t.Fatalf("expected playlist ID in output, got %q", created)
		}
		id := created[start+1 : end]

		output.Reset()
		if err := run(t, runner, "playlists", "show", id); err != nil {
			t.Fatalf("playlists show failed: %v", err)
		}
		if !strings.Contains(output.String(), "No tracks yet") {
			t.Errorf("expected empty playlist message, got %q", output.String())
		}

		output.Reset()
		if err := run(t, runner, "playlists", "rename", id, "--name", "Evening Devotion"); err != nil {
			t.Fatalf("playlists rename failed: %v", err)
		}

		output.Reset()
		if err := run(t, runner, "playlists", "show", id); err != nil {
			t.Fatalf("playlists show failed: %v", err)
		}
		if !strings.Contains(output.String(), "Evening Devotion") {
			t.Errorf("expected renamed playlist, got %q", output.String())
		}

		if err := run(t, runner, "playlists", "delete", id); err != nil {
			t.Fatalf("playlists delete failed: %v", err)
		}
		if err := run(t, runner, "playlists", "show", id); err == nil {
			t.Fatal("expected error showing deleted playlist")
		}
	})

	t.Run("preset cannot be deleted", func(t *testing.T) {
		runner, _ := newTestRunner(t, "")

		err := run(t, runner, "playlists", "delete", "preset_worship_adoration")

		if err == nil {
			t.Fatal("expected error deleting preset")
		}
	})

	t.Run("add puts the top search result into a playlist", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Write([]byte(searchResponse))
		}))
		defer server.Close()

		runner, output := newTestRunner(t, server.URL)
		if err := run(t, runner, "keys", "add", "AIzaSyTestKey0123456789"); err != nil {
			t.Fatalf("keys add failed: %v", err)
		}

		output.Reset()
		if err := run(t, runner, "playlists", "add", "preset_gospel_classics", "amazing grace"); err != nil {
			t.Fatalf("playlists add failed: %v", err)
		}
		if !strings.Contains(output.String(), `✓ Added "Amazing Grace"`) {
			t.Errorf("expected add confirmation, got %q", output.String())
		}

		output.Reset()
		if err := run(t, runner, "playlists", "show", "preset_gospel_classics"); err != nil {
			t.Fatalf("playlists show failed: %v", err)
		}
		if !strings.Contains(output.String(), "Amazing Grace") {
			t.Errorf("expected added track in playlist, got %q", output.String())
		}
	})
}

func TestLocalCommands(t *testing.T) {
	t.Run("import list and remove", func(t *testing.T) {
		runner, output := newTestRunner(t, "")

		src := filepath.Join(t.TempDir(), "evening hymn.mp3")
		if err := os.WriteFile(src, []byte("not really audio"), 0o644); err != nil {
			t.Fatalf("failed to write source file: %v", err)
		}

		if err := run(t, runner, "local", "import", src); err != nil {
			t.Fatalf("local import failed: %v", err)
		}
		imported := output.String()
		if !strings.Contains(imported, `✓ Imported "evening hymn"`) {
			t.Fatalf("expected import confirmation, got %q", imported)
		}

		start := strings.LastIndex(imported, "[")
		end := strings.LastIndex(imported, "]")
		if start < 0 || end <= start {
			t.Fatalf("expected file ID in output, got %q", imported)
		}
		id := imported[start+1 : end]

		tu.AssertFileExists(t, filepath.Join(runner.config.Library.Path, id+".mp3"))

		output.Reset()
		if err := run(t, runner, "local", "list"); err != nil {
			t.Fatalf("local list failed: %v", err)
		}
		if !strings.Contains(output.String(), "evening hymn.mp3") {
			t.Errorf("expected file name in listing, got %q", output.String())
		}

		output.Reset()
		if err := run(t, runner, "local", "remove", id); err != nil {
			t.Fatalf("local remove failed: %v", err)
		}

		output.Reset()
		if err := run(t, runner, "local", "list"); err != nil {
			t.Fatalf("local list failed: %v", err)
		}
		if !strings.Contains(output.String(), "No imported files") {
			t.Errorf("expected empty listing, got %q", output.String())
		}
	})

	t.Run("rejects missing source file", func(t *testing.T) {
		runner, _ := newTestRunner(t, "")

		err := run(t, runner, "local", "import", filepath.Join(t.TempDir(), "missing.mp3"))

		if err == nil {
			t.Fatal("expected error for missing source file")
		}
	})
}

func TestRecentCommand(t *testing.T) {
	t.Run("starts empty", func(t *testing.T) {
		runner, output := newTestRunner(t, "")

		if err := run(t, runner, "recent"); err != nil {
			t.Fatalf("recent failed: %v", err)
		}
		if !strings.Contains(output.String(), "No tracks found") {
			t.Errorf("expected empty history message, got %q", output.String())
		}
	})
}

func TestSetupCommand(t *testing.T) {
	t.Run("creates config database and library directory", func(t *testing.T) {
		wd := tu.MustGetwd(t)
		tmpDir := t.TempDir()
		tu.MustChdir(t, tmpDir)
		defer tu.MustChdir(t, wd)

		runner, output := newTestRunner(t, "")
		runner.config = nil
		runner.db = nil

		if err := run(t, runner, "setup"); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(tmpDir, "config.toml"))
		tu.AssertFileExists(t, filepath.Join(tmpDir, "spirify.db"))
		tu.AssertDirExists(t, filepath.Join(tmpDir, "library"))

		config := tu.MustReadFile(t, filepath.Join(tmpDir, "config.toml"))
		if !strings.Contains(config, "[youtube]") {
			t.Error("expected youtube section in generated config")
		}
		if !strings.Contains(output.String(), "✓ Spirify initialized") {
			t.Errorf("expected setup confirmation, got %q", output.String())
		}
	})
}

func TestParseRepeatMode(t *testing.T) {
	cases := []struct {
		input   string
		wantErr bool
	}{
		{"off", false},
		{"all", false},
		{"one", false},
		{"ALL", false},
		{"", false},
		{"twice", true},
	}
	for _, tc := range cases {
		_, err := parseRepeatMode(tc.input)
		if tc.wantErr && err == nil {
			t.Errorf("parseRepeatMode(%q): expected error", tc.input)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("parseRepeatMode(%q): unexpected error %v", tc.input, err)
		}
	}
}

func TestMaskKey(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"AIzaSyTestKey0123456789", "AIza***************6789"},
		{"short", "*****"},
		{"12345678", "********"},
	}
	for _, tc := range cases {
		if got := maskKey(tc.input); got != tc.expected {
			t.Errorf("maskKey(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}
