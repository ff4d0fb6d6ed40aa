// Package dataset reads bibliographic records in JSON Lines form, one
// document per line.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/internal/corpus"
	apperrors "github.com/Adithya-Monish-Kumar-K/Terminology-Mining-Pipeline/pkg/errors"
)

// NoAbstract is what bibliographic exports put in place of a missing
// abstract.
const NoAbstract = "[No abstract available]"

const maxLineSize = 4 << 20

// Result holds the decoded documents and the warnings raised while reading.
type Result struct {
	Documents []corpus.Document
	Warnings  []apperrors.Warning
}

// ReadFile opens path and reads it with Read.
func ReadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, "read", "opening dataset %s: %v", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes one document per non-blank line. Documents without an id get
// "line-N". Null fields decode as empty strings.
func Read(r io.Reader) (*Result, error) {
	res := &Result{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	seen := make(map[string]int)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var doc corpus.Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, apperrors.Newf(apperrors.ErrInvalidInput, "read", "line %d: %v", line, err)
		}
		if doc.ID == "" {
			doc.ID = fmt.Sprintf("line-%d", line)
		}
		if prev, dup := seen[doc.ID]; dup {
			return nil, apperrors.ForDocument(apperrors.ErrInvalidInput, "read", doc.ID,
				"line %d repeats the id of line %d", line, prev)
		}
		seen[doc.ID] = line
		if strings.TrimSpace(doc.Abstract) == NoAbstract {
			doc.Abstract = ""
			res.Warnings = append(res.Warnings, apperrors.Warning{
				DocumentID: doc.ID,
				Field:      corpus.FieldAbstract,
				Message:    "no abstract available",
			})
		}
		res.Documents = append(res.Documents, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, "read", "scanning dataset: %v", err)
	}
	return res, nil
}
