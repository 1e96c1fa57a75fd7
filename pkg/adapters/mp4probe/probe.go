// Package mp4probe reads video metadata from MP4 and MOV containers.
package mp4probe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/Eyevinn/mp4ff/mp4"
)

// ErrNoVideoTrack is returned when the container has no video track.
var ErrNoVideoTrack = errors.New("mp4probe: no video track found")

// Codec represents a video codec type.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecHEVC    Codec = "hevc"
	CodecAV1     Codec = "av1"
	CodecVP9     Codec = "vp9"
	CodecUnknown Codec = "unknown"
)

// Info describes the first video track of a file.
type Info struct {
	Codec      Codec
	DurationMs int // 0 when the container does not declare it
	Width      int
	Height     int
	Fragmented bool

	// Sample table data, progressive files only
	FrameCount  int
	KeyframesMs []int // Sync sample decode times; nil when every sample is a sync sample
}

// ProbeFile reads container metadata from the file at path.
func ProbeFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return ProbeReader(f)
}

// ProbeBytes reads container metadata from MP4 data.
func ProbeBytes(data []byte) (Info, error) {
	return ProbeReader(bytes.NewReader(data))
}

// ProbeReader reads container metadata and rewinds the reader. Sample data
// in mdat is skipped, not read.
func ProbeReader(reader io.ReadSeeker) (Info, error) {
	mp4File, err := mp4.DecodeFile(reader, mp4.WithDecodeMode(mp4.DecModeLazyMdat))
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}

	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return Info{}, fmt.Errorf("seek: %w", err)
	}

	return probeMP4File(mp4File)
}

func probeMP4File(mp4File *mp4.File) (Info, error) {
	var moov *mp4.MoovBox
	fragmented := mp4File.IsFragmented()
	if fragmented && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		moov = mp4File.Moov
	}
	if moov == nil {
		return Info{}, ErrNoVideoTrack
	}

	for _, trak := range moov.Traks {
		info, ok := probeTrack(trak)
		if !ok {
			continue
		}
		info.Fragmented = fragmented
		if info.DurationMs == 0 && moov.Mvhd != nil {
			info.DurationMs = toMs(moov.Mvhd.Duration, moov.Mvhd.Timescale)
		}
		return info, nil
	}

	return Info{}, ErrNoVideoTrack
}

func probeTrack(trak *mp4.TrakBox) (Info, bool) {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil {
		return Info{}, false
	}
	if trak.Mdia.Hdlr.HandlerType != "vide" {
		return Info{}, false
	}

	info := Info{Codec: CodecUnknown}
	if mdhd := trak.Mdia.Mdhd; mdhd != nil {
		info.DurationMs = toMs(mdhd.Duration, mdhd.Timescale)
	}

	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return info, true
	}

	readSampleTable(trak.Mdia.Minf.Stbl, trak.Mdia.Mdhd, &info)

	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		codec := codecFromSampleEntry(child.Type())
		if codec == CodecUnknown {
			continue
		}
		info.Codec = codec
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
			info.Width = int(vse.Width)
			info.Height = int(vse.Height)
		}
		break
	}
	return info, true
}

// readSampleTable fills the frame count and keyframe times. Sync sample
// numbers outside the stts table, or out of order, are skipped.
func readSampleTable(stbl *mp4.StblBox, mdhd *mp4.MdhdBox, info *Info) {
	if stbl.Stsz == nil {
		return
	}
	info.FrameCount = int(stbl.Stsz.SampleNumber)

	if stbl.Stss == nil || stbl.Stts == nil || mdhd == nil {
		return
	}
	if len(stbl.Stts.SampleCount) != len(stbl.Stts.SampleTimeDelta) {
		return
	}
	var timed uint64
	for _, count := range stbl.Stts.SampleCount {
		timed += uint64(count)
	}

	info.KeyframesMs = make([]int, 0, len(stbl.Stss.SampleNumber))
	var prev uint32
	for _, sampleNr := range stbl.Stss.SampleNumber {
		if sampleNr <= prev || uint64(sampleNr) > timed {
			continue
		}
		prev = sampleNr
		decodeTime, _ := stbl.Stts.GetDecodeTime(sampleNr)
		info.KeyframesMs = append(info.KeyframesMs, toMs(decodeTime, mdhd.Timescale))
	}
}

// KeyframeAtOrBefore returns the last keyframe time not after offsetMs.
// ok is false when the table is empty or offsetMs precedes every keyframe.
func (i Info) KeyframeAtOrBefore(offsetMs int) (ms int, ok bool) {
	n := sort.SearchInts(i.KeyframesMs, offsetMs+1)
	if n == 0 {
		return 0, false
	}
	return i.KeyframesMs[n-1], true
}

// codecFromSampleEntry maps an stsd sample entry type to a codec.
func codecFromSampleEntry(boxType string) Codec {
	switch boxType {
	case "avc1", "avc3":
		return CodecH264
	case "hvc1", "hev1":
		return CodecHEVC
	case "av01":
		return CodecAV1
	case "vp09":
		return CodecVP9
	default:
		return CodecUnknown
	}
}

func toMs(duration uint64, timescale uint32) int {
	if timescale == 0 {
		return 0
	}
	return int(duration * 1000 / uint64(timescale))
}
