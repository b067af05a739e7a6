package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileRepository(t *testing.T) {
	// happy path
	repo, err := NewFileRepository("local", "testdata/webclient.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(repo.Path) {
		t.Errorf("expected absolute path, got %q", repo.Path)
	}
	if repo.GetURL().Scheme != "file" {
		t.Errorf("expected file url, got %q", repo.GetURL().String())
	}
	if _, ok := repo.GetConfig(); ok {
		t.Fatal("expected no config before refresh")
	}
	if err := repo.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	assertFixture(t, repo)

	// sad path
	repo, err = NewFileRepository("missing", "/tmp/does-not-exist.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestFileRepositoryKeepsLastGoodConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webclient.yaml")
	if err := os.WriteFile(path, []byte("SALTYRTC_PORT: 9000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	repo, err := NewFileRepository("local", path)
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("SALTYRTC_PORT: [broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := repo.Refresh(context.Background()); err == nil {
		t.Fatal("expected error for invalid yaml")
	}

	cfg, ok := repo.GetConfig()
	if !ok {
		t.Fatal("expected previous config to survive")
	}
	if cfg.SaltyRTCPort != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.SaltyRTCPort)
	}
}
