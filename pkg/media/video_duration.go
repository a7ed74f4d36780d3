package media

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrDurationUnknown is returned when the container carries no readable movie header.
var ErrDurationUnknown = errors.New("media duration could not be determined")

// ErrTooLong is returned by CheckDuration when a clip exceeds the allowed length.
var ErrTooLong = errors.New("media exceeds maximum duration")

type box struct {
	kind      string
	start     int64
	size      int64
	headerLen int64
}

func (b box) payload() int64 { return b.size - b.headerLen }

// ProbeDuration reads the mvhd atom of an ISO Base Media (MP4/MOV) stream.
func ProbeDuration(r io.ReadSeeker) (time.Duration, error) {
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	moov, err := findBox(r, "moov", end)
	if err != nil {
		return 0, err
	}
	mvhd, err := findBox(r, "mvhd", moov.start+moov.size)
	if err != nil {
		return 0, err
	}
	return readMvhd(r, mvhd.payload())
}

// CheckDuration returns ErrTooLong when the clip is longer than max. Streams whose
// duration cannot be read pass; callers decide whether that is acceptable.
func CheckDuration(r io.ReadSeeker, max time.Duration) (time.Duration, error) {
	duration, err := ProbeDuration(r)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDurationUnknown, err)
	}
	if max > 0 && duration > max {
		return duration, fmt.Errorf("%w: %s > %s", ErrTooLong, duration.Round(time.Second), max)
	}
	return duration, nil
}

// findBox scans sibling boxes from the current offset until kind is found, leaving
// the reader positioned at the start of its payload.
func findBox(r io.ReadSeeker, kind string, limit int64) (box, error) {
	for {
		pos, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return box{}, err
		}
		if pos >= limit {
			return box{}, fmt.Errorf("%s box not found", kind)
		}

		b, err := readBox(r, limit)
		if err != nil {
			return box{}, err
		}
		if b.kind == kind {
			return b, nil
		}
		if _, err := r.Seek(b.payload(), io.SeekCurrent); err != nil {
			return box{}, err
		}
	}
}

func readBox(r io.ReadSeeker, limit int64) (box, error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return box{}, err
	}

	var head [8]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return box{}, err
	}

	b := box{kind: string(head[4:8]), start: start, headerLen: 8}

	switch size := binary.BigEndian.Uint32(head[:4]); size {
	case 0:
		b.size = limit - start
	case 1:
		var large [8]byte
		if _, err := io.ReadFull(r, large[:]); err != nil {
			return box{}, err
		}
		b.headerLen += 8
		b.size = int64(binary.BigEndian.Uint64(large[:]))
	default:
		b.size = int64(size)
	}

	if b.size < b.headerLen {
		return box{}, fmt.Errorf("invalid box size for %s", b.kind)
	}
	if b.start+b.size > limit {
		return box{}, fmt.Errorf("box %s exceeds parent bounds", b.kind)
	}
	return b, nil
}

func readMvhd(r io.Reader, payload int64) (time.Duration, error) {
	var version [4]byte
	if payload < int64(len(version)) {
		return 0, fmt.Errorf("mvhd box too small")
	}
	if _, err := io.ReadFull(r, version[:]); err != nil {
		return 0, err
	}

	var timescale, units uint64
	switch version[0] {
	case 0:
		var data [16]byte
		if payload-4 < int64(len(data)) {
			return 0, fmt.Errorf("mvhd payload too small for version 0")
		}
		if _, err := io.ReadFull(r, data[:]); err != nil {
			return 0, err
		}
		timescale = uint64(binary.BigEndian.Uint32(data[8:12]))
		units = uint64(binary.BigEndian.Uint32(data[12:16]))
	case 1:
		var data [28]byte
		if payload-4 < int64(len(data)) {
			return 0, fmt.Errorf("mvhd payload too small for version 1")
		}
		if _, err := io.ReadFull(r, data[:]); err != nil {
			return 0, err
		}
		timescale = uint64(binary.BigEndian.Uint32(data[16:20]))
		units = binary.BigEndian.Uint64(data[20:28])
	default:
		return 0, fmt.Errorf("unsupported mvhd version %d", version[0])
	}

	if timescale == 0 {
		return 0, fmt.Errorf("mvhd timescale is zero")
	}
	seconds := float64(units) / float64(timescale)
	return time.Duration(seconds * float64(time.Second)), nil
}
