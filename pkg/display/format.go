package display

import (
	"strconv"
	"strings"

	"github.com/user/vidaction/pkg/ports"
)

// FormatSeconds renders a timestamp in seconds, keeping one decimal for
// whole values ("15.0") and the shortest exact form otherwise ("15.2").
func FormatSeconds(ms int) string {
	if ms%1000 == 0 {
		return strconv.Itoa(ms/1000) + ".0"
	}
	return strconv.FormatFloat(float64(ms)/1000, 'f', -1, 64)
}

// FormatScore renders a score with the shortest float32 representation.
func FormatScore(score float32) string {
	return strconv.FormatFloat(float64(score), 'f', -1, 32)
}

// FormatDetections renders a detections log entry:
//
//	Detections at 15.0 :
//	Class : waving hand, score : 0.91
//
// It returns "" when no results were known.
func FormatDetections(d ports.Detections) string {
	if !d.Known() {
		return ""
	}

	var b strings.Builder
	b.WriteString("Detections at ")
	b.WriteString(FormatSeconds(d.TimestampMs))
	b.WriteString(" :\n")
	for _, c := range d.Categories {
		b.WriteString("Class : ")
		b.WriteString(c.Label)
		b.WriteString(", score : ")
		b.WriteString(FormatScore(c.Score))
		b.WriteByte('\n')
	}
	return b.String()
}
