package preview

import (
	"fmt"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"

	"screenshader-gui/shader"
)

// Supervisor はライブプレビュー用のレンダラープロセスを管理します。
// 同時に生存するプレビュープロセスは常に最大1つです。新しいプレビューの開始や
// 停止の前に、必ず既存のプロセスを終了させます。
type Supervisor struct {
	binPath string        // screenshader-preview バイナリへのパス
	fps     int           // ライブプレビューのフレームレート
	grace   time.Duration // SIGTERM 後に SIGKILL へ移行するまでの猶予

	mu      sync.Mutex
	cmd     *exec.Cmd
	current string // プレビュー中のシェーダー名 (未プレビュー時は空)
	done    chan struct{}
}

// New は新しい Supervisor を作成します。
func New(binPath string, fps int, grace time.Duration) *Supervisor {
	return &Supervisor{
		binPath: binPath,
		fps:     fps,
		grace:   grace,
	}
}

// Start は指定シェーダーのライブプレビューを開始します。
// 同じシェーダーが既にプレビュー中であれば何もしません。別のシェーダーが
// プレビュー中の場合は、先にそのプロセスを終了させてから起動します。
func (s *Supervisor) Start(sh shader.Shader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == sh.Name && s.aliveLocked() {
		return nil // 既に同じシェーダーを表示中
	}

	s.stopLocked()

	cmd := exec.Command(s.binPath, sh.Path, "--live", "--fps", strconv.Itoa(s.fps))
	// プレビューの出力は利用しないため破棄 (nil のままなら /dev/null に接続される)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start preview for %s: %w", sh.Name, err)
	}

	done := make(chan struct{})
	go func() {
		// Wait でゾンビプロセスを回収する。終了は done で通知するのみで、
		// 能動的な死活監視は行わない (次の操作時に遅延チェックされる)
		cmd.Wait()
		close(done)
	}()

	s.cmd = cmd
	s.current = sh.Name
	s.done = done
	return nil
}

// Stop は実行中のプレビュープロセスを終了させます。
// まず SIGTERM で正常終了を要求し、猶予時間内に終了しなければ SIGKILL で
// 強制終了します。プレビューが実行されていない場合は何もしません。
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// stopLocked は Stop の本体です。呼び出し側が s.mu を保持している必要があります。
func (s *Supervisor) stopLocked() {
	if s.cmd == nil {
		return
	}

	if s.aliveLocked() {
		// 自然終了と競合しても Signal/Kill はエラーを返すだけなので無視してよい
		s.cmd.Process.Signal(unix.SIGTERM)
		select {
		case <-s.done:
		case <-time.After(s.grace):
			s.cmd.Process.Kill()
			<-s.done
		}
	}

	s.cmd = nil
	s.current = ""
	s.done = nil
}

// IsRunning はプレビュープロセスが現在生存しているかどうかを返します。
// 外部要因によるプロセスの死は能動的に検出しないため、この問い合わせが
// 遅延チェックの役割を果たします。
func (s *Supervisor) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aliveLocked()
}

// Current はプレビュー中のシェーダー名を返します。プレビューが生存していない
// 場合は空文字列を返します。
func (s *Supervisor) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.aliveLocked() {
		return ""
	}
	return s.current
}

// aliveLocked は追跡中のプロセスの生存を確認します。
// 呼び出し側が s.mu を保持している必要があります。
func (s *Supervisor) aliveLocked() bool {
	if s.cmd == nil || s.cmd.Process == nil {
		return false
	}
	select {
	case <-s.done:
		return false // Wait が完了済み = プロセスは終了している
	default:
	}
	alive, err := process.PidExists(int32(s.cmd.Process.Pid))
	if err != nil {
		return false
	}
	return alive
}
