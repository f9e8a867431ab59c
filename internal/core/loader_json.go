package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ohler55/ojg/oj"
)

// jsonLayouts are the read_json format values tried in order.
var jsonLayouts = []string{"auto", "newline_delimited", "array"}

// jsonLoader reads JSON records, retrying with explicit layouts when
// auto-detection fails.
type jsonLoader struct{}

func (jsonLoader) load(ctx context.Context, s *Session, in loadInput, use func(Relation) error) (loadInfo, error) {
	const op = "JSON validation"

	d, _ := Descriptor(FormatJSON)
	if err := s.LoadExtension(ctx, d.Extension); err != nil {
		return loadInfo{}, engineLoadError(op, err)
	}

	rel, err := firstLayout(jsonLayouts, func(layout string) (Relation, error) {
		query := fmt.Sprintf("SELECT * FROM read_json(%s, format = %s)", quoteLiteral(in.Path), quoteLiteral(layout))
		return s.CreateTempTable(ctx, "json", query)
	})
	if err != nil {
		if ctx.Err() != nil {
			return loadInfo{}, ctx.Err()
		}
		return loadInfo{}, jsonLoadError(err, in.Data)
	}
	defer dropQuietly(ctx, s, rel)

	return loadInfo{}, use(rel)
}

// firstLayout calls try for each layout until one succeeds. On total failure
// it returns the last error.
func firstLayout(layouts []string, try func(layout string) (Relation, error)) (Relation, error) {
	var lastErr error
	for _, layout := range layouts {
		rel, err := try(layout)
		if err == nil {
			return rel, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no layouts to try")
	}
	return Relation{}, lastErr
}

// jsonLoadError reports the last engine error with the layouts tried, plus
// the position of the first syntax error when the text is not valid JSON.
func jsonLoadError(last error, data []byte) *IngestError {
	msg := fmt.Sprintf("JSON validation failed (tried formats: %s): %s",
		strings.Join(jsonLayouts, ", "), engineMessage(last))
	if syn := jsonSyntaxError(data); syn != "" {
		msg += "; " + syn
	}
	return &IngestError{Kind: KindEngineLoad, Op: "JSON validation", Message: msg, Err: last}
}

// jsonSyntaxError parses data as a sequence of JSON documents and describes
// the first syntax error ojg reports, or returns "". The locator is
// best-effort: ojg accepts some malformed input, such as an object member
// with no value, and "" then only means ojg found nothing.
func jsonSyntaxError(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	_, err := oj.Parse(data, func(any) bool { return false })
	if err == nil {
		return ""
	}
	return "syntax error: " + err.Error()
}
