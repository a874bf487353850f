package rolloutindex

import (
	"fmt"
	"testing"
	"time"
)

// memReader is an in-memory ReaderAt for exercising the backward scan
// without touching the filesystem.
type memReader struct {
	data []byte
}

func (m *memReader) ReadAt(p []byte, off int64) (int, error) {
	n := copy(p, m.data[off:])
	return n, nil
}

func (m *memReader) Size() (int64, error) {
	return int64(len(m.data)), nil
}

func lineFor(ts time.Time, kind string) string {
	return fmt.Sprintf(`{"timestamp":%q,"msg":{"type":%q}}`, ts.Format(time.RFC3339Nano), kind)
}

func TestScanStatusFromEnd_FindsMostRecentMatchingStatus(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var data string
	data += lineFor(t0, "running") + "\n"
	data += lineFor(t0.Add(time.Minute), "running") + "\n"
	data += lineFor(t0.Add(2*time.Minute), "completed") + "\n"

	r := &memReader{data: []byte(data)}
	result, err := ScanStatusFromEnd(r, "running", DefaultParser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.HasLatest || !result.LatestTimestamp.Equal(t0.Add(2*time.Minute)) {
		t.Fatalf("expected latest timestamp to be the last line, got %v", result.LatestTimestamp)
	}
	if !result.HasStatusTimestamp || !result.StatusTimestamp.Equal(t0.Add(time.Minute)) {
		t.Fatalf("expected status timestamp to be the most recent 'running' line, got %v", result.StatusTimestamp)
	}
}

func TestScanStatusFromEnd_EmptyFile(t *testing.T) {
	r := &memReader{data: []byte{}}
	result, err := ScanStatusFromEnd(r, "running", DefaultParser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.HasLatest || result.HasStatusTimestamp {
		t.Fatal("expected no results for an empty file")
	}
}

func TestScanStatusFromEnd_NoTrailingNewline(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	data := lineFor(t0, "completed") // no trailing \n
	r := &memReader{data: []byte(data)}
	result, err := ScanStatusFromEnd(r, "completed", DefaultParser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.HasStatusTimestamp || !result.StatusTimestamp.Equal(t0) {
		t.Fatalf("expected to recover the single line without a trailing newline, got %+v", result)
	}
}

func TestScanStatusFromEnd_OversizedSingleLineSpansMultipleChunks(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	padding := make([]byte, ScanChunkSize*3)
	for i := range padding {
		padding[i] = 'x'
	}
	line := fmt.Sprintf(`{"timestamp":%q,"msg":{"type":"running","padding":%q}}`, t0.Format(time.RFC3339Nano), padding)
	r := &memReader{data: []byte(line)}
	result, err := ScanStatusFromEnd(r, "running", DefaultParser)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.HasStatusTimestamp || !result.StatusTimestamp.Equal(t0) {
		t.Fatalf("expected to recover a line spanning more than one chunk, got %+v", result)
	}
}

func TestStatusDurationSecs_ClampsNegativeToZero(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	if d := StatusDurationSecs(now, future); d != 0 {
		t.Fatalf("expected clamp to zero, got %d", d)
	}
}

func TestStatusDurationSecs_Positive(t *testing.T) {
	now := time.Now()
	past := now.Add(-90 * time.Second)
	if d := StatusDurationSecs(now, past); d < 89 || d > 91 {
		t.Fatalf("expected ~90s, got %d", d)
	}
}
