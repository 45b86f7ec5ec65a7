package importer

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// JobsField holds the word list in an import record.
const JobsField = "jobs"

var (
	ErrDecode = errors.New("import content is not valid JSON")
	ErrShape  = errors.New("import record must be an object with a \"jobs\" array of strings")
)

// Import validates an import record and returns its word list verbatim,
// except that invalid UTF-8 bytes become U+FFFD as encoding/json would
// decode them. When "jobs" is repeated the last one counts.
// It never touches a WordSet; applying the list is up to the caller.
func Import(raw []byte) ([]string, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrDecode
	}

	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: top level is %s", ErrShape, doc.Type)
	}

	var jobs gjson.Result
	doc.ForEach(func(key, value gjson.Result) bool {
		if key.String() == JobsField {
			jobs = value
		}
		return true
	})
	if !jobs.Exists() {
		return nil, fmt.Errorf("%w: missing %q", ErrShape, JobsField)
	}
	if !jobs.IsArray() {
		return nil, fmt.Errorf("%w: %q is %s", ErrShape, JobsField, jobs.Type)
	}

	items := jobs.Array()
	words := make([]string, 0, len(items))
	for i, item := range items {
		if item.Type != gjson.String {
			return nil, fmt.Errorf("%w: element %d is %s", ErrShape, i, item.Type)
		}
		words = append(words, validUTF8(item.String()))
	}
	return words, nil
}

// validUTF8 replaces each invalid byte with U+FFFD, byte for byte, so the
// text matches what a JSON round trip produces.
func validUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		b.WriteRune(r)
	}
	return b.String()
}

// ReadFile reads and imports the record at path. Read failures are reported
// as ErrDecode.
func ReadFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return Import(raw)
}
