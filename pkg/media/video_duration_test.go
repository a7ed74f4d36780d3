package media

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"
)

func TestProbeDurationVersion0(t *testing.T) {
	data := mp4With(mvhdV0(1000, 45*1000))

	got, err := ProbeDuration(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 45*time.Second {
		t.Fatalf("expected 45s, got %v", got)
	}
}

func TestProbeDurationVersion1(t *testing.T) {
	data := mp4With(mvhdV1(600, 90*600))

	got, err := ProbeDuration(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}
}

func TestProbeDurationSkipsSiblingBoxes(t *testing.T) {
	moov := append(makeBox("free", nil), makeBox("mvhd", mvhdV0(1000, 2000))...)
	data := append(makeBox("ftyp", []byte("isom")), makeBox("moov", moov)...)

	got, err := ProbeDuration(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 2*time.Second {
		t.Fatalf("expected 2s, got %v", got)
	}
}

func TestCheckDuration(t *testing.T) {
	data := mp4With(mvhdV0(1000, 400*1000))

	if _, err := CheckDuration(bytes.NewReader(data), 300*time.Second); !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}

	if d, err := CheckDuration(bytes.NewReader(data), 600*time.Second); err != nil || d != 400*time.Second {
		t.Fatalf("expected 400s without error, got %v, %v", d, err)
	}

	if _, err := CheckDuration(bytes.NewReader([]byte("not a movie")), time.Minute); !errors.Is(err, ErrDurationUnknown) {
		t.Fatalf("expected ErrDurationUnknown, got %v", err)
	}
}

func mp4With(mvhd []byte) []byte {
	return append(makeBox("ftyp", []byte("isom")), makeBox("moov", makeBox("mvhd", mvhd))...)
}

func makeBox(kind string, payload []byte) []byte {
	buf := make([]byte, 8, 8+len(payload))
	binary.BigEndian.PutUint32(buf[:4], uint32(8+len(payload)))
	copy(buf[4:8], kind)
	return append(buf, payload...)
}

func mvhdV0(timescale, duration uint32) []byte {
	payload := make([]byte, 4+16)
	binary.BigEndian.PutUint32(payload[12:16], timescale)
	binary.BigEndian.PutUint32(payload[16:20], duration)
	return payload
}

func mvhdV1(timescale uint32, duration uint64) []byte {
	payload := make([]byte, 4+28)
	payload[0] = 1
	binary.BigEndian.PutUint32(payload[20:24], timescale)
	binary.BigEndian.PutUint64(payload[24:32], duration)
	return payload
}
