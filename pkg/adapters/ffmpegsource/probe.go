package ffmpegsource

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// probeResult is the subset of `ffprobe -print_format json` output we read.
type probeResult struct {
	Streams []struct {
		CodecName    string            `json:"codec_name"`
		Width        int               `json:"width"`
		Height       int               `json:"height"`
		Duration     string            `json:"duration"`
		Tags         map[string]string `json:"tags"`
		SideDataList []struct {
			SideDataType string  `json:"side_data_type"`
			Rotation     float64 `json:"rotation"`
		} `json:"side_data_list"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// metadata is what a source needs from a probe.
type metadata struct {
	DurationMs int
	Rotation   int
	Codec      string
	Width      int
	Height     int
}

func probeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"-select_streams", "v:0",
		path,
	}
}

// parseProbe extracts duration and rotation from ffprobe JSON output.
func parseProbe(data []byte) (metadata, error) {
	var pr probeResult
	if err := json.Unmarshal(data, &pr); err != nil {
		return metadata{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(pr.Streams) == 0 {
		return metadata{}, fmt.Errorf("ffprobe: no video stream")
	}

	s := pr.Streams[0]
	md := metadata{
		Codec:  s.CodecName,
		Width:  s.Width,
		Height: s.Height,
	}

	duration := pr.Format.Duration
	if duration == "" {
		duration = s.Duration
	}
	if duration != "" {
		sec, err := strconv.ParseFloat(duration, 64)
		if err != nil {
			return metadata{}, fmt.Errorf("parse duration %q: %w", duration, err)
		}
		md.DurationMs = int(math.Round(sec * 1000))
	}

	// Older containers carry a clockwise "rotate" tag. Newer ffprobe reports
	// a display matrix whose rotation is counter-clockwise.
	if tag, ok := s.Tags["rotate"]; ok {
		deg, err := strconv.Atoi(tag)
		if err != nil {
			return metadata{}, fmt.Errorf("parse rotate tag %q: %w", tag, err)
		}
		md.Rotation = normalizeRotation(deg)
	} else {
		for _, sd := range s.SideDataList {
			if sd.SideDataType == "Display Matrix" {
				md.Rotation = normalizeRotation(-int(math.Round(sd.Rotation)))
				break
			}
		}
	}

	return md, nil
}

// normalizeRotation maps degrees into [0, 360) and snaps to a multiple of 90.
func normalizeRotation(deg int) int {
	deg = ((deg % 360) + 360) % 360
	return (deg + 45) / 90 * 90 % 360
}
