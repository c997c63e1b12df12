package shader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// シェーダーファイルの拡張子
const Ext = ".frag"

// ReservedName はレンダラーが内部の合成パスとして使用する名前です。
// ユーザーが選択できるエフェクトではないため、一覧から除外します。
const ReservedName = "composite"

// Shader は選択可能なシェーダーアセットを表します。
// Name はファイル名から拡張子を除いたもの、Path はファイルへのフルパスです。
type Shader struct {
	Name string
	Path string
}

// List は指定ディレクトリをスキャンし、選択可能なシェーダーの一覧を返します。
// .frag 拡張子を持つファイルのみを対象とし、予約名 (composite) は除外、
// ファイル名順にソートして返します。起動時に一度だけ呼ばれ、再スキャンはしません。
func List(dir string) ([]Shader, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read shaders directory %s: %w", dir, err)
	}

	var shaders []Shader
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fileName := entry.Name()
		if !strings.HasSuffix(fileName, Ext) {
			continue
		}
		name := strings.TrimSuffix(fileName, Ext)
		if name == ReservedName {
			continue // 合成パスは選択対象外
		}
		shaders = append(shaders, Shader{
			Name: name,
			Path: filepath.Join(dir, fileName),
		})
	}

	// 一覧はファイル名順で表示する
	sort.Slice(shaders, func(i, j int) bool {
		return shaders[i].Name < shaders[j].Name
	})

	return shaders, nil
}
