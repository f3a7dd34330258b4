package config

import (
	"testing"

	"github.com/oxhq/fshc/internal/model"
)

func TestBuildRootCommandParsesFlags(t *testing.T) {
	cfg := &model.Config{OutDir: "output"}
	var exitCode int
	var gotPaths []string

	cmd := BuildRootCommand(cfg, &exitCode, func(cfg *model.Config) int {
		gotPaths = cfg.Paths
		return 0
	})
	cmd.SetArgs([]string{"--out", "dist", "--workers", "2", "--json", "a.fsh", "b.fsh"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if cfg.OutDir != "dist" {
		t.Errorf("OutDir = %q, want %q", cfg.OutDir, "dist")
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Workers)
	}
	if !cfg.JSONOutput {
		t.Error("JSONOutput = false, want true")
	}
	if len(gotPaths) != 2 || gotPaths[0] != "a.fsh" || gotPaths[1] != "b.fsh" {
		t.Errorf("Paths = %v, want [a.fsh b.fsh]", gotPaths)
	}
	if exitCode != 0 {
		t.Errorf("exitCode = %d, want 0", exitCode)
	}
}
