// Package repair turns near-valid JSON emitted by a generative-text provider
// into parseable data. It knows nothing about the case-analysis schema.
package repair

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Pass is one textual repair step. Every pass is a pure function of its input.
type Pass struct {
	Name  string
	Apply func(string) string
}

// Passes are applied in this order; each later pass assumes the earlier ones ran.
var Passes = []Pass{
	{Name: "strip_fences", Apply: StripFences},
	{Name: "trim_to_braces", Apply: TrimToBraces},
	{Name: "quote_keys", Apply: QuoteKeys},
	{Name: "string_commas", Apply: InsertStringCommas},
	{Name: "object_commas", Apply: InsertObjectCommas},
	{Name: "array_commas", Apply: InsertArrayCommas},
}

// Result is a successfully parsed payload
type Result struct {
	Value   any      // Decoded value; numbers are json.Number
	Text    string   // The text that was finally parsed
	Applied []string // Names of the passes that changed the text
}

// Suspect reports whether the payload only parsed after repair
func (r *Result) Suspect() bool {
	return len(r.Applied) > 0
}

// Failure reports text that could not be coerced into valid JSON
type Failure struct {
	OriginalText string
	RepairedText string
	Position     int64 // Byte offset into RepairedText where decoding stopped
	Err          error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("repair failed at offset %d: %v", f.Position, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Repair runs every pass over text and returns the result plus the passes that changed it
func Repair(text string) (string, []string) {
	var applied []string
	for _, p := range Passes {
		next := p.Apply(text)
		if next != text {
			applied = append(applied, p.Name)
		}
		text = next
	}
	return text, applied
}

// Parse repairs text and decodes it once. Text that is already valid JSON is decoded untouched.
func Parse(text string) (*Result, error) {
	if trimmed := strings.TrimSpace(text); json.Valid([]byte(trimmed)) {
		v, err := decode(trimmed)
		if err == nil {
			return &Result{Value: v, Text: trimmed}, nil
		}
	}

	repaired, applied := Repair(text)
	v, err := decode(repaired)
	if err != nil {
		return nil, &Failure{
			OriginalText: text,
			RepairedText: repaired,
			Position:     errorOffset(err),
			Err:          err,
		}
	}
	return &Result{Value: v, Text: repaired, Applied: applied}, nil
}

type trailingDataError struct {
	offset int64
}

func (e *trailingDataError) Error() string {
	return "unexpected data after top-level value"
}

func decode(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, &trailingDataError{offset: dec.InputOffset()}
	}
	return v, nil
}

func errorOffset(err error) int64 {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return syntaxErr.Offset
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return typeErr.Offset
	}
	var trailing *trailingDataError
	if errors.As(err, &trailing) {
		return trailing.offset
	}
	return 0
}

var fencePattern = regexp.MustCompile("```[A-Za-z0-9_+-]*")

// StripFences removes code-fence markers (with any language tag) wherever they appear
func StripFences(text string) string {
	return fencePattern.ReplaceAllString(text, "")
}

// TrimToBraces drops prose before the first '{' and after the last '}'
func TrimToBraces(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return text
	}
	end := strings.LastIndexByte(text, '}')
	if end < start {
		return text[start:]
	}
	return text[start : end+1]
}
