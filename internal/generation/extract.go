package generation

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// Tier is one parse attempt of the extraction chain. Parse returns the
// recovered value and true, or false when the tier does not apply.
type Tier struct {
	Name  string
	Parse func(text string) (json.RawMessage, bool)
}

var (
	jsonFence = regexp.MustCompile("(?is)```[ \\t]*json\\b[ \\t]*\\n?(.*?)```")
	anyFence  = regexp.MustCompile("(?s)```[\\w+-]*[ \\t]*\\n?(.*?)```")
)

// DefaultTiers is the extraction order: a json-labelled fenced block, any
// fenced block, the whole text, then the outermost brace or bracket span.
// The order matters since upstream formatting is not guaranteed.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "json_fence", Parse: fencedBlocks(jsonFence)},
		{Name: "any_fence", Parse: fencedBlocks(anyFence)},
		{Name: "raw", Parse: parseCandidate},
		{Name: "brace_slice", Parse: outermostSpan},
	}
}

// Extractor recovers a JSON object or array from free text.
type Extractor struct {
	tiers []Tier
}

// NewExtractor returns an Extractor using DefaultTiers.
func NewExtractor() *Extractor {
	return &Extractor{tiers: DefaultTiers()}
}

// NewExtractorWithTiers returns an Extractor that tries tiers in order.
func NewExtractorWithTiers(tiers ...Tier) *Extractor {
	return &Extractor{tiers: tiers}
}

// Extract returns the first value recovered by the tier chain, compacted.
// When every tier fails the error is an *ExtractionError.
func (e *Extractor) Extract(text string) (json.RawMessage, error) {
	value, _, err := e.ExtractWithTier(text)
	return value, err
}

// ExtractWithTier is Extract that also reports the name of the winning tier.
func (e *Extractor) ExtractWithTier(text string) (json.RawMessage, string, error) {
	tried := make([]string, 0, len(e.tiers))
	for _, tier := range e.tiers {
		tried = append(tried, tier.Name)
		if value, ok := tier.Parse(text); ok {
			return value, tier.Name, nil
		}
	}
	return nil, "", &ExtractionError{Tiers: tried, InputLength: len(text)}
}

func fencedBlocks(re *regexp.Regexp) func(string) (json.RawMessage, bool) {
	return func(text string) (json.RawMessage, bool) {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if value, ok := parseCandidate(m[1]); ok {
				return value, true
			}
		}
		return nil, false
	}
}

// outermostSpan slices from the first '{' or '[' to the last matching
// closer, falling back to the closer that balances the opener when trailing
// text holds a stray bracket. Both openers are tried, earliest first.
func outermostSpan(text string) (json.RawMessage, bool) {
	type span struct{ open, close byte }
	spans := []span{{'{', '}'}, {'[', ']'}}
	if iObj, iArr := strings.IndexByte(text, '{'), strings.IndexByte(text, '['); iArr >= 0 && (iObj < 0 || iArr < iObj) {
		spans[0], spans[1] = spans[1], spans[0]
	}

	for _, s := range spans {
		start := strings.IndexByte(text, s.open)
		end := strings.LastIndexByte(text, s.close)
		if start < 0 || end <= start {
			continue
		}
		if value, ok := parseCandidate(text[start : end+1]); ok {
			return value, true
		}
		if stop := matchingCloser(text, start); stop > start {
			if value, ok := parseCandidate(text[start : stop+1]); ok {
				return value, true
			}
		}
	}
	return nil, false
}

// matchingCloser returns the index of the bracket closing the one at start,
// skipping brackets inside JSON strings, or -1 if it is never closed.
func matchingCloser(text string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseCandidate accepts s only if it is valid JSON with an object or array
// at the top level.
func parseCandidate(s string) (json.RawMessage, bool) {
	s = strings.TrimSpace(s)
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return nil, false
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return nil, false
	}
	return json.RawMessage(buf.Bytes()), true
}
