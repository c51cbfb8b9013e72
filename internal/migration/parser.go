package migration

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/velmaris/votekeep/internal/common"
	"github.com/velmaris/votekeep/internal/roles"
)

// Record is one legacy credential line. Salt is filled in from the
// companion salt file when the id has one.
type Record struct {
	ID            string
	DisplayName   string
	DigestOrPlain string
	Role          roles.Role
	Salt          string
}

// HasPreservedDigest reports whether the record carries a digest with its
// matching salt, letting the original password keep working after import.
func (r Record) HasPreservedDigest() bool {
	return r.Salt != "" && r.DigestOrPlain != ""
}

// ParseRecords reads the legacy export: one credential per line in the
// form id:name:digestOrPlain:role. Blank lines and #-comments are skipped;
// a line with the wrong field count fails the whole parse, since a
// silently dropped credential is worse than an aborted import.
func ParseRecords(r io.Reader) ([]Record, error) {
	var out []Record

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Split(text, ":")
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: line %d: expected 4 colon-delimited fields, got %d",
				common.ErrInvalidInput, line, len(fields))
		}

		rec := Record{
			ID:            strings.TrimSpace(fields[0]),
			DisplayName:   strings.TrimSpace(fields[1]),
			DigestOrPlain: strings.TrimSpace(fields[2]),
			Role:          roles.Normalize(fields[3]),
		}
		if rec.ID == "" {
			return nil, fmt.Errorf("%w: line %d: empty id", common.ErrInvalidInput, line)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseSalts reads the companion salt file, one id:salt per line. Salts
// may themselves contain colons, so only the first colon splits.
func ParseSalts(r io.Reader) (map[string]string, error) {
	salts := make(map[string]string)

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		id, salt, found := strings.Cut(text, ":")
		if !found || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("%w: salt line %d: expected id:salt", common.ErrInvalidInput, line)
		}
		salts[strings.TrimSpace(id)] = strings.TrimSpace(salt)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return salts, nil
}
