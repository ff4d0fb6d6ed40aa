// Package export writes a mining run to its result sinks: CSV tables on disk
// or stdout and JSON events on Kafka.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/candidate"
	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/search"
)

// WriteCandidates writes the header and one record per candidate.
func WriteCandidates(w io.Writer, t candidate.Table) error {
	records := make([][]string, 0, len(t)+1)
	records = append(records, candidate.Header())
	for _, c := range t {
		records = append(records, c.Record())
	}
	return writeAll(w, records)
}

// WriteOccurrences writes the keyword-search occurrences.
func WriteOccurrences(w io.Writer, occurrences []search.Occurrence) error {
	records := make([][]string, 0, len(occurrences)+1)
	records = append(records, search.Header())
	for _, o := range occurrences {
		records = append(records, o.Record())
	}
	return writeAll(w, records)
}

// WriteFile creates path and hands it to write. The file is removed again
// when write fails, so a failed run leaves no truncated table behind.
func WriteFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

func writeAll(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}
