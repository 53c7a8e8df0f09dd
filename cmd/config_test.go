package cmd

import (
	"strings"
	"testing"

	"github.com/xmazu/envtable/internal/config"
)

func TestRunConfig(t *testing.T) {
	t.Setenv("ENVTABLE_CONFIG_DIR", t.TempDir())

	t.Run("shows defaults", func(t *testing.T) {
		c, buf := bufferedCmd()
		if err := runConfigShow(c, nil); err != nil {
			t.Fatalf("runConfigShow() error = %v", err)
		}
		for _, name := range config.Names() {
			if !strings.Contains(buf.String(), name) {
				t.Errorf("output missing %q", name)
			}
		}
	})

	t.Run("set persists", func(t *testing.T) {
		if err := runConfigSet(nil, []string{"view", "raw"}); err != nil {
			t.Fatalf("runConfigSet() error = %v", err)
		}
		s, err := config.LoadSettings()
		if err != nil {
			t.Fatalf("LoadSettings() error = %v", err)
		}
		if s.View != config.ViewRaw {
			t.Errorf("View = %q, want raw", s.View)
		}
	})

	t.Run("set rejects bad values", func(t *testing.T) {
		if err := runConfigSet(nil, []string{"view", "grid"}); err == nil {
			t.Error("runConfigSet() should reject unknown views")
		}
		if err := runConfigSet(nil, []string{"nope", "1"}); err == nil {
			t.Error("runConfigSet() should reject unknown settings")
		}
	})
}
