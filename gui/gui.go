package gui

import (
	"fmt"
	"log"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"screenshader-gui/config"
	"screenshader-gui/launcher"
	"screenshader-gui/preview"
	"screenshader-gui/shader"
)

// AppContext はアプリケーションの状態と設定、Fyneのウィンドウなどを保持します。
type AppContext struct {
	App        fyne.App
	Window     fyne.Window
	Config     *config.Config      // アプリケーション設定
	Supervisor *preview.Supervisor // ライブプレビュープロセスの管理
	Launcher   *launcher.Launcher  // 外部ランチャーとの境界

	shaders  []shader.Shader // 起動時に一度だけスキャンした一覧 (再スキャンなし)
	selected *shader.Shader  // 現在選択中のシェーダー (未選択時は nil)
	fatal    bool            // 起動時の前提条件を満たしていない場合 true

	// GUI Widgets
	shaderList  *widget.List
	applyButton *widget.Button
	stopButton  *widget.Button
	statusLabel *widget.Label
}

// NewApp は新しいアプリケーションコンテキストを作成し、GUIを初期化します。
func NewApp(cfg *config.Config) *AppContext {
	return newApp(app.New(), cfg)
}

// newApp は NewApp の本体です。テストから Fyne アプリを差し替えられるように
// 分離しています。
func newApp(a fyne.App, cfg *config.Config) *AppContext {
	w := a.NewWindow("screenshader")

	appCtx := &AppContext{
		App:        a,
		Window:     w,
		Config:     cfg,
		Supervisor: preview.New(cfg.PreviewBin, cfg.PreviewFPS, cfg.GetPreviewGrace()),
	}

	appCtx.Launcher = launcher.New(cfg.LauncherPath)
	appCtx.Launcher.ConfirmDelay = cfg.GetConfirmDelay()
	appCtx.Launcher.StopTimeout = cfg.GetStopTimeout()

	w.Resize(fyne.NewSize(280, 600)) // ウィンドウの初期サイズ

	// 前提条件: プレビューバイナリが存在しなければ致命的エラー表示のみを行い、
	// 一覧の読み込みも操作の配線も行わない
	if _, err := os.Stat(cfg.PreviewBin); err != nil {
		appCtx.fatal = true
		appCtx.showFatal("screenshader-preview not found. Run 'make' first.")
		return appCtx
	}

	appCtx.createUI()    // UIコンポーネントを構築
	appCtx.loadShaders() // シェーダー一覧をロード

	// キーボードショートカット: Enter で適用、Escape で停止
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyReturn, fyne.KeyEnter:
			appCtx.applyShader()
		case fyne.KeyEscape:
			appCtx.stopShader()
		}
	})

	// ウィンドウが閉じられたときの処理
	w.SetOnClosed(func() {
		// プレビュープロセスを必ず終了させてから閉じる (孤児プロセスを残さない)
		appCtx.Supervisor.Stop()
		// アプリケーション終了時に設定を保存
		if err := config.SaveConfig(appCtx.Config); err != nil {
			log.Printf("Failed to save config on exit: %v", err)
		}
	})

	return appCtx
}

// showFatal は起動時の致命的エラーをウィンドウに表示します。
// この状態ではそれ以外の UI は一切配線されません。
func (ac *AppContext) showFatal(msg string) {
	label := widget.NewLabel(msg)
	label.TextStyle = fyne.TextStyle{Bold: true}
	label.Wrapping = fyne.TextWrapWord
	ac.Window.SetContent(container.NewPadded(label))
}

// createUI はGUIコンポーネントを構築し、ウィンドウに配置します。
func (ac *AppContext) createUI() {
	// --- シェーダー一覧 ---
	ac.shaderList = widget.NewList(
		func() int { return len(ac.shaders) },
		func() fyne.CanvasObject { return widget.NewLabel("template") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(ac.shaders[id].Name)
		},
	)

	// 選択されたときの処理: ライブプレビューを開始する
	ac.shaderList.OnSelected = func(id widget.ListItemID) {
		if id < 0 || id >= len(ac.shaders) {
			return
		}
		sh := ac.shaders[id]
		ac.selected = &sh
		ac.startLive(sh)
	}

	// --- コントロールボタン ---
	ac.applyButton = widget.NewButton("Apply", ac.applyShader)
	ac.applyButton.Importance = widget.HighImportance
	ac.stopButton = widget.NewButton("Stop", ac.stopShader)

	// --- ステータス表示 ---
	ac.statusLabel = widget.NewLabel("Select a shader to preview")
	ac.statusLabel.Wrapping = fyne.TextWrapWord

	// --- レイアウト ---
	title := widget.NewLabel("Shaders:")
	title.TextStyle = fyne.TextStyle{Bold: true}

	bottom := container.NewVBox(
		ac.applyButton,
		ac.stopButton,
		ac.statusLabel,
	)

	content := container.NewBorder(title, bottom, nil, nil, ac.shaderList)
	ac.Window.SetContent(content)
}

// loadShaders は設定されたディレクトリからシェーダー一覧を読み込みます。
// 一覧は起動時に一度だけ構築され、以後再スキャンされません。
func (ac *AppContext) loadShaders() {
	shaders, err := shader.List(ac.Config.ShadersDir)
	if err != nil {
		ac.statusLabel.SetText(fmt.Sprintf("Error: %v", err))
		return
	}
	ac.shaders = shaders
	ac.shaderList.Refresh()
}

// startLive は指定シェーダーのライブプレビューを開始します。
// 同じシェーダーが既にプレビュー中の場合、Supervisor 側で no-op になります。
func (ac *AppContext) startLive(sh shader.Shader) {
	ac.statusLabel.SetText(fmt.Sprintf("Preview: %s", sh.Name))
	if err := ac.Supervisor.Start(sh); err != nil {
		ac.statusLabel.SetText(fmt.Sprintf("Error: %v", err))
	}
}

// applyShader は選択中のシェーダーを外部ランチャー経由で画面に適用します。
// ランチャーとのやり取りは確認までの待ち時間を含むため、UI をブロック
// しないよう別 goroutine で実行し、結果のステータス更新だけを UI ループに
// 戻します。多重クリックの調停は行いません。
func (ac *AppContext) applyShader() {
	if ac.selected == nil {
		ac.statusLabel.SetText("Select a shader first.")
		return
	}

	// プレビューが適用の邪魔にならないよう先に終了させる
	ac.Supervisor.Stop()

	name := ac.selected.Name
	path := ac.selected.Path
	ac.statusLabel.SetText(fmt.Sprintf("Applying: %s...", name))

	go func() {
		err := ac.Launcher.Apply(path)
		// UI ウィジェットには background goroutine から直接触らない
		fyne.Do(func() {
			if err != nil {
				ac.statusLabel.SetText(fmt.Sprintf("Error: %v", err))
				return
			}
			ac.statusLabel.SetText(fmt.Sprintf("Active: %s", name))
		})
	}()
}

// stopShader はライブプレビューを終了し、適用中のエフェクトを解除します。
// ランチャーの --stop はタイムアウト付きで同期的に待ちます。
func (ac *AppContext) stopShader() {
	ac.Supervisor.Stop()
	ac.statusLabel.SetText("Stopping...")
	if err := ac.Launcher.Stop(); err != nil {
		ac.statusLabel.SetText(fmt.Sprintf("Error stopping: %v", err))
		return
	}
	ac.statusLabel.SetText("Stopped.")
}

// Run はFyneアプリケーションを実行します。
func (ac *AppContext) Run() {
	ac.Window.ShowAndRun()
}
