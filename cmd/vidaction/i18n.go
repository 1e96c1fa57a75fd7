// Package main provides localization for the vidaction CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Classify human actions in videos with a streaming model.": "ストリーミングモデルで動画内の人の動作を分類します。",

		// Version command
		"vidaction version %s": "vidaction バージョン %s",

		// Runtime messages
		"Output saved to %s":             "出力を %s に保存しました",
		"Interrupted, shutting down...":  "中断されました。シャットダウン中...",
		"Failed to close classifier: %s": "分類器を閉じられませんでした: %s",

		// Summary output
		"Summary saved to %s":         "サマリーを %s に保存しました",
		"Failed to write summary: %s": "サマリーの書き込みに失敗しました: %s",

		// Summary content
		"Classification Summary": "分類サマリー",
		"Generated":              "生成日時",
		"Item":                   "項目",
		"Value":                  "値",

		// Video section
		"Video":         "動画",
		"Path":          "パス",
		"Duration":      "再生時間",
		"File Size":     "ファイルサイズ",
		"Rotation Hint": "回転ヒント",
		"Codec":         "コーデック",
		"Resolution":    "解像度",
		"Frames":        "フレーム数",
		"Keyframes":     "キーフレーム数",

		// Settings section
		"Settings":      "設定",
		"Sampling Rate": "サンプリングレート",
		"Reset After":   "リセット間隔",
		"Max Results":   "最大結果数",
		"Rotation":      "回転",
		"Classifier":    "分類器",
		"threads":       "スレッド",

		// Run section
		"Run":               "実行",
		"Ticks":             "ティック数",
		"Frames Classified": "分類したフレーム",
		"Decode Failures":   "デコード失敗",
		"Resets":            "リセット回数",
		"Elapsed":           "経過時間",
		"Status":            "状態",
		"Completed":         "完了",
		"Cancelled":         "キャンセル",

		// Detections section
		"Detections":    "検出結果",
		"No detections": "検出結果なし",
		"No results":    "結果なし",
		"Class":         "クラス",
		"Score":         "スコア",
	})
}
