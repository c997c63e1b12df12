// Copyright (c) 2025 SeeKT
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
package main

import (
	"log"
	"os"
	"path/filepath"

	"screenshader-gui/config"
	"screenshader-gui/gui"
)

func main() {
	// 設定のロード
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// 未設定のパスは実行ファイルと同じディレクトリを基準に解決する
	exePath, err := os.Executable()
	if err != nil {
		log.Fatalf("Failed to locate executable: %v", err)
	}
	cfg.ResolvePaths(filepath.Dir(exePath))

	// GUIアプリケーションの初期化と実行
	appCtx := gui.NewApp(cfg)
	appCtx.Run()

	// アプリケーションが終了すると、SetOnClosed でプレビューの後始末と設定保存が実行される
}
