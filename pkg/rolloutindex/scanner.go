// Package rolloutindex implements component I: querying thread names
// and notes by id, and scanning an append-only rollout log backward
// from EOF to recover the most recent status-transition timestamp
// without loading the whole file into memory.
package rolloutindex

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"time"
)

// ScanChunkSize is the backward-read chunk size: 16 KiB, large enough to
// cover a typical status-line run without re-reading the whole file.
const ScanChunkSize = 16 * 1024

// RolloutLine is the subset of a rollout's append-only JSON-lines
// schema this scanner needs: a timestamp and the event's status kind.
type RolloutLine struct {
	Timestamp time.Time
	StatusKind string // "" if the line is not a status-transition event
}

// LineParser decodes one raw JSON line into a RolloutLine. Returns
// ok=false for lines that don't carry a recognisable status transition
// (so they contribute to latest_timestamp scanning only if they at
// least parse as a timestamped event — callers may choose to treat
// unparseable lines as noise and skip them).
type LineParser func(line []byte) (RolloutLine, bool)

// ReaderAt is the minimal file interface this scanner needs, so tests
// can substitute an in-memory or mock implementation instead of a real
// os.File.
type ReaderAt interface {
	io.ReaderAt
	Size() (int64, error)
}

// ScanResult is the outcome of a backward scan: the most recent valid
// line's timestamp, and the timestamp of the most recent line whose
// status kind matches the query.
type ScanResult struct {
	LatestTimestamp  time.Time
	HasLatest        bool
	StatusTimestamp  time.Time
	HasStatusTimestamp bool
}

// ScanStatusFromEnd streams r from EOF backward in ScanChunkSize
// chunks, deserialising each recovered line with parse. The first line
// (scanning backward, i.e. the most recent) whose status kind matches
// currentStatusKind yields StatusTimestamp; the very last valid line's
// timestamp (the first one encountered scanning backward) yields
// LatestTimestamp.
func ScanStatusFromEnd(r ReaderAt, currentStatusKind string, parse LineParser) (ScanResult, error) {
	size, err := r.Size()
	if err != nil {
		return ScanResult{}, err
	}

	var result ScanResult
	var trailing []byte // partial line carried over from the previous (earlier) chunk
	pos := size

	for pos > 0 {
		chunkSize := int64(ScanChunkSize)
		if pos < chunkSize {
			chunkSize = pos
		}
		start := pos - chunkSize
		buf := make([]byte, chunkSize)
		if _, err := r.ReadAt(buf, start); err != nil && err != io.EOF {
			return result, err
		}
		pos = start

		combined := append(buf, trailing...)
		lines := bytes.Split(combined, []byte("\n"))

		// The first element may be a partial line continuing into the
		// previous (earlier) chunk; carry it forward unless we're at
		// the start of the file.
		if start > 0 {
			trailing = lines[0]
			lines = lines[1:]
		} else {
			trailing = nil
		}

		// Walk this chunk's lines in reverse (most-recent-first).
		for i := len(lines) - 1; i >= 0; i-- {
			line := bytes.TrimSpace(lines[i])
			if len(line) == 0 {
				continue
			}
			parsed, ok := parse(line)
			if !ok {
				continue
			}
			if !result.HasLatest {
				result.LatestTimestamp = parsed.Timestamp
				result.HasLatest = true
			}
			if !result.HasStatusTimestamp && parsed.StatusKind == currentStatusKind {
				result.StatusTimestamp = parsed.Timestamp
				result.HasStatusTimestamp = true
			}
			if result.HasLatest && result.HasStatusTimestamp {
				return result, nil
			}
		}
	}

	if len(trailing) > 0 {
		line := bytes.TrimSpace(trailing)
		if len(line) > 0 {
			if parsed, ok := parse(line); ok {
				if !result.HasLatest {
					result.LatestTimestamp = parsed.Timestamp
					result.HasLatest = true
				}
				if !result.HasStatusTimestamp && parsed.StatusKind == currentStatusKind {
					result.StatusTimestamp = parsed.Timestamp
					result.HasStatusTimestamp = true
				}
			}
		}
	}

	return result, nil
}

// StatusDurationSecs computes now - statusTimestamp in seconds, clamped
// to zero (a clock skew or out-of-order write should never report a
// negative duration).
func StatusDurationSecs(now, statusTimestamp time.Time) int64 {
	d := now.Sub(statusTimestamp)
	if d < 0 {
		return 0
	}
	return int64(d.Seconds())
}

// jsonRolloutEvent is a default line schema: {"timestamp": "...",
// "msg": {"type": "...", ...}}. Consumers with a different on-disk
// schema supply their own LineParser; this is offered as the common
// case default, decoded by DefaultParser below.
type jsonRolloutEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Msg       struct {
		Type string `json:"type"`
	} `json:"msg"`
}

// DefaultParser implements LineParser against the jsonRolloutEvent
// schema.
func DefaultParser(line []byte) (RolloutLine, bool) {
	var ev jsonRolloutEvent
	if err := json.Unmarshal(line, &ev); err != nil {
		return RolloutLine{}, false
	}
	if ev.Timestamp.IsZero() {
		return RolloutLine{}, false
	}
	return RolloutLine{Timestamp: ev.Timestamp, StatusKind: ev.Msg.Type}, true
}

// FileReaderAt adapts an *os.File into ReaderAt, so callers with a real
// rollout file on disk don't need to hand-write the Size method.
type FileReaderAt struct {
	*os.File
}

func (f FileReaderAt) Size() (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
