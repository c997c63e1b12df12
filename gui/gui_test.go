package gui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"

	"screenshader-gui/config"
)

// newTestConfig はテスト用の setup 一式 (シェーダーディレクトリと
// コラボレーターの代役) を持つ設定を作成します。
func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()

	// クローズ時の設定保存が実際のユーザー設定を汚さないようにする
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "xdg-config"))

	shadersDir := filepath.Join(base, "shaders")
	if err := os.Mkdir(shadersDir, 0755); err != nil {
		t.Fatalf("failed to create shaders dir: %v", err)
	}
	for _, name := range []string{"a.frag", "b.frag", "composite.frag"} {
		if err := os.WriteFile(filepath.Join(shadersDir, name), []byte("void main() {}\n"), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	previewBin := filepath.Join(base, "screenshader-preview")
	if err := os.WriteFile(previewBin, []byte("#!/bin/sh\nsleep 60\n"), 0755); err != nil {
		t.Fatalf("failed to write preview stub: %v", err)
	}
	launcherPath := filepath.Join(base, "screenshader.sh")
	if err := os.WriteFile(launcherPath, []byte("#!/bin/sh\nexit 0\n"), 0755); err != nil {
		t.Fatalf("failed to write launcher stub: %v", err)
	}

	cfg := config.NewDefaultConfig()
	cfg.ResolvePaths(base)
	cfg.ConfirmDelayMs = 50
	cfg.StopTimeoutMs = 1000
	cfg.PreviewGraceMs = 500
	return cfg
}

func TestShaderListPopulation(t *testing.T) {
	ac := newApp(test.NewApp(), newTestConfig(t))
	defer ac.Supervisor.Stop()

	if ac.fatal {
		t.Fatal("fatal = true with preview binary present")
	}
	// composite は合成パスなので一覧に含まれない
	if len(ac.shaders) != 2 {
		t.Fatalf("loaded %d shaders, want 2", len(ac.shaders))
	}
	if ac.shaders[0].Name != "a" || ac.shaders[1].Name != "b" {
		t.Errorf("shader names = [%s %s], want [a b]", ac.shaders[0].Name, ac.shaders[1].Name)
	}
	if got := ac.statusLabel.Text; got != "Select a shader to preview" {
		t.Errorf("initial status = %q", got)
	}
}

func TestApplyWithoutSelection(t *testing.T) {
	ac := newApp(test.NewApp(), newTestConfig(t))
	defer ac.Supervisor.Stop()

	ac.applyShader()

	if got := ac.statusLabel.Text; got != "Select a shader first." {
		t.Errorf("status = %q, want prompt to select a shader", got)
	}
	if ac.Supervisor.IsRunning() {
		t.Error("apply without selection spawned a process")
	}
}

func TestSelectStartsPreview(t *testing.T) {
	ac := newApp(test.NewApp(), newTestConfig(t))
	defer ac.Supervisor.Stop()

	ac.shaderList.OnSelected(0)

	if !ac.Supervisor.IsRunning() {
		t.Fatal("preview not running after selection")
	}
	if got := ac.Supervisor.Current(); got != "a" {
		t.Errorf("Current() = %q, want %q", got, "a")
	}
	if got := ac.statusLabel.Text; got != "Preview: a" {
		t.Errorf("status = %q, want %q", got, "Preview: a")
	}

	// 別のシェーダーを選択すると古いプレビューは置き換えられる
	ac.shaderList.OnSelected(1)
	if got := ac.Supervisor.Current(); got != "b" {
		t.Errorf("Current() = %q after reselect, want %q", got, "b")
	}
}

func TestStopWithoutPreview(t *testing.T) {
	ac := newApp(test.NewApp(), newTestConfig(t))

	ac.stopShader()

	if got := ac.statusLabel.Text; got != "Stopped." {
		t.Errorf("status = %q, want %q", got, "Stopped.")
	}
	if ac.Supervisor.IsRunning() {
		t.Error("supervisor running after stop")
	}
}

func TestFatalWhenPreviewBinaryMissing(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.PreviewBin = filepath.Join(t.TempDir(), "no-such-binary")

	ac := newApp(test.NewApp(), cfg)

	if !ac.fatal {
		t.Fatal("fatal = false with missing preview binary")
	}
	// 致命的エラー時は一覧も操作も配線されない
	if ac.shaderList != nil {
		t.Error("shader list wired in fatal mode")
	}
	if len(ac.shaders) != 0 {
		t.Errorf("loaded %d shaders in fatal mode, want 0", len(ac.shaders))
	}
}

func TestCloseTerminatesPreview(t *testing.T) {
	ac := newApp(test.NewApp(), newTestConfig(t))

	ac.shaderList.OnSelected(0)
	if !ac.Supervisor.IsRunning() {
		t.Fatal("preview not running after selection")
	}

	// ウィンドウクローズでプレビューが孤児にならないこと
	ac.Window.Close()

	deadline := time.Now().Add(3 * time.Second)
	for ac.Supervisor.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if ac.Supervisor.IsRunning() {
		t.Error("preview still running after window close")
	}
}
