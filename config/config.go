// Copyright (c) 2025 SeeKT
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	ShadersDir     string `json:"shaders_dir"`      // シェーダーファイルのディレクトリ
	PreviewBin     string `json:"preview_bin"`      // screenshader-preview バイナリのパス
	LauncherPath   string `json:"launcher_path"`    // screenshader.sh ランチャーのパス
	PreviewFPS     int    `json:"preview_fps"`      // ライブプレビューのフレームレート
	ConfirmDelayMs int    `json:"confirm_delay_ms"` // 適用確認を書き込むまでの待ち時間（ミリ秒）
	StopTimeoutMs  int    `json:"stop_timeout_ms"`  // ランチャー --stop の待ち時間上限（ミリ秒）
	PreviewGraceMs int    `json:"preview_grace_ms"` // プレビュー終了の猶予時間（ミリ秒）
}

// NewDefaultConfig はデフォルトの設定値を返します。
// パス系のフィールドは空のままにしておき、ResolvePaths で実行ファイルからの
// 相対位置に解決します。
func NewDefaultConfig() *Config {
	return &Config{
		ShadersDir:     "",
		PreviewBin:     "",
		LauncherPath:   "",
		PreviewFPS:     30,   // ライブプレビューは 30fps 固定
		ConfirmDelayMs: 2000, // 2秒後にランチャーが確認プロンプトで待機している想定
		StopTimeoutMs:  5000,
		PreviewGraceMs: 2000, // SIGTERM から SIGKILL までの猶予
	}
}

// ConfigFilePath は設定ファイルのパスを返します。
func ConfigFilePath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	appConfigDir := filepath.Join(configDir, "screenshader-gui") // アプリケーション固有のディレクトリ
	if err := os.MkdirAll(appConfigDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory %s: %w", appConfigDir, err)
	}
	return filepath.Join(appConfigDir, "config.json"), nil
}

// LoadConfig は設定ファイルを読み込みます。ファイルが存在しない場合はデフォルト設定を返します。
func LoadConfig() (*Config, error) {
	cfgPath, err := ConfigFilePath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config file path: %w", err)
	}
	return LoadConfigFrom(cfgPath)
}

// LoadConfigFrom は指定パスから設定を読み込みます。
// ファイルが存在しない場合はデフォルト設定を返して正常終了します。
func LoadConfigFrom(path string) (*Config, error) {
	cfg := NewDefaultConfig() // まずデフォルト設定をロード

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// ファイルが存在しない場合はデフォルト設定を返して終了
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}
	return cfg, nil
}

// SaveConfig は現在の設定をファイルに保存します。
func SaveConfig(cfg *Config) error {
	cfgPath, err := ConfigFilePath()
	if err != nil {
		return fmt.Errorf("failed to get config file path: %w", err)
	}
	return SaveConfigTo(cfg, cfgPath)
}

// SaveConfigTo は現在の設定を指定パスに保存します。
func SaveConfigTo(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ") // JSONを整形して保存
	if err != nil {
		return fmt.Errorf("failed to marshal config data: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// ResolvePaths は未設定のパス系フィールドを baseDir からの相対位置で埋めます。
// シェーダーもコラボレーターも、既定では本体と同じディレクトリに置かれる構成です。
func (c *Config) ResolvePaths(baseDir string) {
	if c.ShadersDir == "" {
		c.ShadersDir = filepath.Join(baseDir, "shaders")
	}
	if c.PreviewBin == "" {
		c.PreviewBin = filepath.Join(baseDir, "screenshader-preview")
	}
	if c.LauncherPath == "" {
		c.LauncherPath = filepath.Join(baseDir, "screenshader.sh")
	}
}

// GetConfirmDelay はミリ秒単位の ConfirmDelayMs を time.Duration に変換して返します。
func (c *Config) GetConfirmDelay() time.Duration {
	return time.Duration(c.ConfirmDelayMs) * time.Millisecond
}

// GetStopTimeout はミリ秒単位の StopTimeoutMs を time.Duration に変換して返します。
func (c *Config) GetStopTimeout() time.Duration {
	return time.Duration(c.StopTimeoutMs) * time.Millisecond
}

// GetPreviewGrace はミリ秒単位の PreviewGraceMs を time.Duration に変換して返します。
func (c *Config) GetPreviewGrace() time.Duration {
	return time.Duration(c.PreviewGraceMs) * time.Millisecond
}
