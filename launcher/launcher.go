package launcher

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Launcher は外部のランチャースクリプト (screenshader.sh) との境界を担います。
// シェーダーの適用と解除はこのプログラム自身では行わず、すべてランチャーに
// 委譲します。適用結果の状態管理もランチャー側の責務です。
type Launcher struct {
	Path         string        // ランチャースクリプトへのパス
	ConfirmDelay time.Duration // 適用確認の1バイトを書き込むまでの待ち時間
	StopTimeout  time.Duration // --stop の完了を待つ上限
}

// New は既定のタイミング設定で Launcher を作成します。
func New(path string) *Launcher {
	return &Launcher{
		Path:         path,
		ConfirmDelay: 2 * time.Second,
		StopTimeout:  5 * time.Second,
	}
}

// Apply はランチャーを起動してシェーダーを画面に適用します。
// ランチャーは起動後に対話的な確認プロンプトで待機する想定のため、
// ConfirmDelay だけ待ってから標準入力に確認の1バイト ("c") を書き込みます。
// これは同期プロトコルではなくタイミングヒューリスティックです。プロンプトに
// 到達したことの確認応答は読み取りません。書き込みの失敗 (パイプが既に
// 閉じている、プロセスが既に終了している等) はエラーとしては扱いません。
// 呼び出しはブロックするため、GUI 側は別 goroutine から呼び出します。
func (l *Launcher) Apply(shaderPath string) error {
	cmd := exec.Command(l.Path, shaderPath)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open launcher stdin: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start launcher: %w", err)
	}

	// ランチャーが確認プロンプトに到達するのを待ってから自動確認する
	time.Sleep(l.ConfirmDelay)
	stdin.Write([]byte("c"))
	stdin.Close()

	// ランチャーは適用後も背後で動き続けるため、終了は待たない。
	// ゾンビプロセスの回収だけ goroutine に任せる。
	go cmd.Wait()

	return nil
}

// Stop は現在適用中のエフェクトを解除します。
// ランチャーを --stop フラグ付きで起動し、StopTimeout を上限として同期的に
// 完了を待ちます。出力は取得しますが内容は解析しません。
func (l *Launcher) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), l.StopTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, l.Path, "--stop")
	// ランチャーの子プロセスが出力パイプを握ったままでも待ちを打ち切れるようにする
	cmd.WaitDelay = l.StopTimeout
	if _, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("launcher --stop failed: %w", err)
	}
	return nil
}
