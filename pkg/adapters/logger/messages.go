package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Opening %s":                                     "%s を開いています",
		"Sampling %d ms at %d fps":                       "%d ms を %d fps でサンプリングします",
		"Run cancelled":                                  "実行がキャンセルされました",
		"Run failed: %s":                                 "実行に失敗しました: %s",
		"Failed to open video: %s":                       "動画を開けませんでした: %s",
		"Failed to close video: %s":                      "動画を閉じられませんでした: %s",
		"Run completed: %d frames classified, %d resets": "実行完了: %d フレームを分類, リセット %d 回",

		// Sample stage
		"Sampling %d ms every %d ms (%d ticks), reset after %d ms":           "%d ms を %d ms 間隔でサンプリング (%d ティック), %d ms ごとにリセット",
		"Sampling done: %d frames classified, %d decode failures, %d resets": "サンプリング完了: %d フレームを分類, デコード失敗 %d 件, リセット %d 回",
		"Classifier reset at %d ms":                                          "%d ms で分類器をリセットしました",
		"Failed to decode frame at %d ms: %v":                                "%d ms のフレームをデコードできませんでした: %v",
		"Applying rotation of %d degrees":                                    "%d 度の回転を適用します",
		"Ignoring rotation hint of %d degrees":                               "%d 度の回転ヒントを無視します",

		// Sources
		"Video %s: %d ms, rotation %d":                   "動画 %s: %d ms, 回転 %d",
		"Container: codec %s, %dx%d, %d ms":              "コンテナ: コーデック %s, %dx%d, %d ms",
		"Keyframe seek: %d keyframes in %d frames":       "キーフレームシーク: キーフレーム %d 個 / 全 %d フレーム",
		"Container probe failed, relying on ffprobe: %v": "コンテナの解析に失敗しました。ffprobe を使用します: %v",

		// Worker classifier
		"Worker started with pid %d":      "ワーカーを起動しました (pid %d)",
		"Worker exited: %v":               "ワーカーが終了しました: %v",
		"Worker did not exit, killing it": "ワーカーが終了しないため強制終了します",
		"worker: %s":                      "ワーカー: %s",

		// Display
		"Preview at %s s: %s (%s)":              "%s 秒のプレビュー: %s (%s)",
		"Preview at %s s: no categories":        "%s 秒のプレビュー: カテゴリなし",
		"Dropping display update after close":   "終了後の表示更新を破棄します",
		"Failed to write preview at %d ms: %v":  "%d ms のプレビューを書き込めませんでした: %v",
		"Failed to append detections: %v":       "検出結果を追記できませんでした: %v",
		"Failed to create output directory: %v": "出力ディレクトリを作成できませんでした: %v",
		"Failed to write error: %v":             "エラーを書き込めませんでした: %v",
		"Error: %s":                             "エラー: %s",
	})
}
