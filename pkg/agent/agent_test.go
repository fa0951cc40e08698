package agent

import (
	"testing"
	"time"

	"github.com/vapagentmedia/vap-agent/pkg/bridge"
)

func testDescriptor() bridge.ConnectionDescriptor {
	return bridge.ConnectionDescriptor{
		Command: "python",
		Args:    []string{"/tmp/proxy.py"},
		Env:     map[string]string{"VAP_API_URL": "https://api.vapagent.com/mcp"},
		Timeout: 300 * time.Second,
	}
}

func TestNew(t *testing.T) {
	cfg, err := New("vap_media_assistant",
		WithModel("gemini-2.5-flash"),
		WithInstructions("You generate media."),
		WithToolset(testDescriptor()),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if cfg.Name() != "vap_media_assistant" {
		t.Errorf("unexpected name %q", cfg.Name())
	}
	if cfg.Model() != "gemini-2.5-flash" {
		t.Errorf("unexpected model %q", cfg.Model())
	}
	if cfg.Instructions() != "You generate media." {
		t.Errorf("unexpected instructions %q", cfg.Instructions())
	}
	if len(cfg.Toolsets()) != 1 {
		t.Fatalf("expected 1 toolset, got %d", len(cfg.Toolsets()))
	}
}

func TestNewRequiresName(t *testing.T) {
	if _, err := New("", WithModel("gemini-2.5-flash")); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestNewRequiresModel(t *testing.T) {
	if _, err := New("assistant"); err == nil {
		t.Fatal("expected error for missing model")
	}
}

func TestWithToolsetRejectsInvalidDescriptor(t *testing.T) {
	bad := testDescriptor()
	bad.Timeout = 0
	if _, err := New("assistant", WithModel("m"), WithToolset(bad)); err == nil {
		t.Fatal("expected error for non-positive timeout")
	}

	bad = testDescriptor()
	bad.Command = ""
	if _, err := New("assistant", WithModel("m"), WithToolset(bad)); err == nil {
		t.Fatal("expected error for empty command")
	}
}

func TestToolsetsAreCopies(t *testing.T) {
	cfg, err := New("assistant", WithModel("m"), WithToolset(testDescriptor()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got := cfg.Toolsets()
	got[0].Env["VAP_API_KEY"] = "injected"
	got[0].Args[0] = "/evil/path"

	fresh := cfg.Toolsets()
	if _, ok := fresh[0].Env["VAP_API_KEY"]; ok {
		t.Error("mutating a returned toolset leaked into the config env")
	}
	if fresh[0].Args[0] != "/tmp/proxy.py" {
		t.Error("mutating a returned toolset leaked into the config args")
	}
}

func TestEqual(t *testing.T) {
	build := func() *Config {
		cfg, err := New("assistant",
			WithModel("gemini-2.5-flash"),
			WithInstructions("policy"),
			WithToolset(testDescriptor()),
		)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		return cfg
	}

	a, b := build(), build()
	if !a.Equal(b) {
		t.Error("expected configs built from identical inputs to be equal")
	}

	c, err := New("assistant", WithModel("gemini-2.5-pro"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if a.Equal(c) {
		t.Error("expected configs with different models to differ")
	}
}
