package main

import (
	"bytes"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"karaoke/internal/catalog"
	"karaoke/internal/config"
	"karaoke/internal/daemon"
	"karaoke/internal/logging"
	"karaoke/internal/notifications"
	"karaoke/internal/queue"
	"karaoke/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	engine     *queue.Engine
	catalog    *catalog.Service
	songs      []catalog.Song
	server     string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("KARAOKE_API_TOKEN", "")

	cfg := testsupport.NewConfig(t, testsupport.WithDriver(config.DriverMemory))
	configPath := filepath.Join(homeDir, ".config", "karaoke", "config.toml")
	writeTestConfig(t, configPath, cfg)

	store, db := testsupport.MustOpenQueueStore(t, cfg)
	songs := testsupport.MustNewCatalog(t, db)
	notifier := notifications.New(logging.NewNop())
	t.Cleanup(func() { _ = notifier.Close() })

	engine, err := queue.NewEngine(store,
		queue.WithSongLookup(songs),
		queue.WithNotifier(notifier),
		queue.WithLogger(logging.NewNop()),
	)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	handler, err := daemon.NewHandler(daemon.HandlerConfig{
		Engine:  engine,
		Catalog: songs,
		Hub:     notifier.Hub(),
		Logger:  logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	seeded := testsupport.SeedSongs(t, songs,
		"Africa", "Toto",
		"Dancing Queen", "ABBA",
		"Wonderwall", "Oasis",
	)

	return &cliTestEnv{
		cfg:        cfg,
		engine:     engine,
		catalog:    songs,
		songs:      seeded,
		server:     srv.URL,
		configPath: configPath,
	}
}

func runCLI(t *testing.T, args []string, server, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if server != "" {
		flags = append(flags, "--server", server)
	}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\napi_bind = %q\n\n[storage]\ndriver = %q\n",
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Paths.APIBind,
		cfg.Storage.Driver,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
