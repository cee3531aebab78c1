package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// sequenceCounter assigns the monotonic sequence numbers of the event log.
// It is seeded from the highest sequence already on disk.
type sequenceCounter struct {
	mu   sync.Mutex
	next int64
}

func newSequenceCounter(logPath string) (*sequenceCounter, error) {
	if err := terminateLastLine(logPath); err != nil {
		return nil, fmt.Errorf("repair event log: %w", err)
	}

	sc := &sequenceCounter{next: 1}
	err := scanEvents(logPath, func(ev LLMEvent) bool {
		if ev.Sequence >= sc.next {
			sc.next = ev.Sequence + 1
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return sc, nil
}

// Next returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next() int64 {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	n := sc.next
	sc.next++
	return n
}

// scanEvents calls fn for each decodable line in log order until fn returns
// false. Lines that fail to decode, such as a torn final write, are skipped.
// A missing log is empty.
func scanEvents(path string, fn func(LLMEvent) bool) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		var ev LLMEvent
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			continue
		}
		if !fn(ev) {
			return nil
		}
	}
	return sc.Err()
}

// terminateLastLine appends a newline when the log ends mid-line, so the
// next append starts a fresh record instead of extending a torn one.
func terminateLastLine(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		return err
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return err
	}
	if last[0] == '\n' {
		return nil
	}
	_, err = f.WriteAt([]byte{'\n'}, info.Size())
	return err
}
