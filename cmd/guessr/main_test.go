package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/verte-zerg/guessr/internal/config"
	"github.com/verte-zerg/guessr/internal/model"
)

func TestValidateConfig(t *testing.T) {
	valid := model.Config{Min: 1, Max: 10, ExitToken: "q"}
	cases := []struct {
		name string
		cfg  model.Config
		ok   bool
	}{
		{"valid", valid, true},
		{"single value range", model.Config{Min: 5, Max: 5, ExitToken: "q"}, true},
		{"inverted range", model.Config{Min: 10, Max: 1, ExitToken: "q"}, false},
		{"negative attempts", model.Config{Min: 1, Max: 10, ExitToken: "q", MaxAttempts: -1}, false},
		{"empty exit", model.Config{Min: 1, Max: 10}, false},
		{"multi word exit", model.Config{Min: 1, Max: 10, ExitToken: "good bye"}, false},
		{"tui with input", model.Config{Min: 1, Max: 10, ExitToken: "q", TUI: true, InputPath: "x"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateConfig(tc.cfg)
			if tc.ok && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected error for %+v", tc.cfg)
			}
		})
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.Game.Min != nil || cfg.Stats.CurveWindow != nil {
		t.Fatalf("expected commented template to set nothing, got %+v", cfg)
	}

	var lines []string
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		if strings.Contains(line, " = ") {
			line = strings.TrimPrefix(line, "# ")
		}
		lines = append(lines, line)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("write uncommented template: %v", err)
	}
	cfg, err = config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load uncommented template: %v", err)
	}
	if cfg.Game.Min == nil || *cfg.Game.Min != defaultMin {
		t.Fatalf("expected min %d, got %v", defaultMin, cfg.Game.Min)
	}
	if cfg.Game.Max == nil || *cfg.Game.Max != defaultMax {
		t.Fatalf("expected max %d, got %v", defaultMax, cfg.Game.Max)
	}
	if cfg.Game.ExitToken == nil || *cfg.Game.ExitToken != defaultExit {
		t.Fatalf("expected exit %q, got %v", defaultExit, cfg.Game.ExitToken)
	}
	if cfg.Stats.CurveWindow == nil || *cfg.Stats.CurveWindow != defaultCurveWindow {
		t.Fatalf("expected curve window %d, got %v", defaultCurveWindow, cfg.Stats.CurveWindow)
	}
}

func setupHome(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(t.TempDir(), "data"))
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestPlayFromFileAndHistory(t *testing.T) {
	setupHome(t)
	path := filepath.Join(t.TempDir(), "guesses.txt")
	if err := os.WriteFile(path, []byte("0 11\nabc Q\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	out, errOut, err := execute(t, "--input", path, "--seed", "7")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	for _, want := range []string{
		"Enter between 1 and 10 (q to exit):",
		"> 0",
		"You have entered: 0 which is smaller than 1.",
		"You have entered: 11 which is larger than 10.",
		"Thanks for playing",
		"It took you 2 guesses to guess 0 numbers: 0.0 guesses average.",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if !strings.Contains(errOut, "Invalid input! You have typed abc") {
		t.Fatalf("expected invalid token on stderr, got %q", errOut)
	}

	out, _, err = execute(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "Games: 1") || !strings.Contains(out, "Guesses: 2") {
		t.Fatalf("unexpected history output:\n%s", out)
	}
}

func TestPlayNoSaveAndMissingInput(t *testing.T) {
	setupHome(t)
	missing := filepath.Join(t.TempDir(), "missing.txt")

	out, errOut, err := execute(t, "--input", missing, "--no-save")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !strings.Contains(errOut, "input file not found: "+missing+"; reading from stdin") {
		t.Fatalf("expected fallback warning, got %q", errOut)
	}
	if !strings.Contains(out, "Thanks for playing") {
		t.Fatalf("expected summary on end of input, got:\n%s", out)
	}

	out, _, err = execute(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No games found.") {
		t.Fatalf("expected empty history, got:\n%s", out)
	}
}

func TestConfigFileOverriddenByFlags(t *testing.T) {
	setupHome(t)
	cfgPath := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	content := "[game]\nmin = 20\nmax = 30\nexit = \"stop\"\nsave = false\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	input := filepath.Join(t.TempDir(), "guesses.txt")
	if err := os.WriteFile(input, []byte("STOP\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	out, _, err := execute(t, "--input", input, "--max", "40")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !strings.Contains(out, "Enter between 20 and 40 (stop to exit):") {
		t.Fatalf("expected config and flag values in prompt, got:\n%s", out)
	}
}

func TestPlayRejectsInvalidRange(t *testing.T) {
	setupHome(t)
	if _, _, err := execute(t, "--min", "10", "--max", "1", "--no-save"); err == nil {
		t.Fatalf("expected invalid range error")
	}
}

func TestPlayAcceptsWidestRange(t *testing.T) {
	setupHome(t)
	out, _, err := executeWithInput(t, "q\n", "--min", "-5", "--max", strconv.Itoa(math.MaxInt), "--no-save")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if !strings.Contains(out, "Thanks for playing") {
		t.Fatalf("expected clean exit, got:\n%s", out)
	}
}
