package generation

import (
	"slices"
	"strings"

	"github.com/phrazzld/pathway-api/internal/domain"
)

// Placeholder stands in for an absent optional field so that "absent" and
// "empty" never share a key with a real value.
const Placeholder = "~"

// escaper percent-escapes the characters that carry structure in a key.
// '%' must be escaped first so escapes can not be forged.
var escaper = strings.NewReplacer(
	"%", "%25",
	"|", "%7C",
	"=", "%3D",
	",", "%2C",
	"~", "%7E",
)

// KeyParams are the request parameters that influence generated content.
type KeyParams struct {
	Role       string   `json:"role"`
	Level      string   `json:"level"`
	Region     string   `json:"region"`
	Path       string   `json:"path"`
	Qualifiers []string `json:"qualifiers"`
}

// Normalizer builds canonical cache keys.
type Normalizer struct {
	schemaVersion string
}

// NewNormalizer returns a Normalizer that embeds schemaVersion in every key.
func NewNormalizer(schemaVersion string) *Normalizer {
	return &Normalizer{schemaVersion: normalizeValue(schemaVersion)}
}

// Key returns the canonical key for kind and p, in the form
//
//	kind=roadmap|role=backend developer|level=beginner|region=usa|path=~|q=~|schema=v1
//
// Values are trimmed, case-folded and whitespace-collapsed; qualifiers are
// de-duplicated and sorted. A missing role is a validation error.
func (n *Normalizer) Key(kind string, p KeyParams) (string, error) {
	kind = normalizeValue(kind)
	if kind == "" {
		return "", domain.NewValidationError("kind", "is required")
	}

	role := normalizeValue(p.Role)
	if role == "" {
		return "", domain.NewValidationError("role", "is required")
	}

	var b strings.Builder
	b.Grow(96)
	writeField(&b, "kind", kind)
	writeField(&b, "role", role)
	writeField(&b, "level", orPlaceholder(normalizeValue(p.Level)))
	writeField(&b, "region", orPlaceholder(normalizeValue(p.Region)))
	writeField(&b, "path", orPlaceholder(normalizeValue(p.Path)))
	writeField(&b, "q", orPlaceholder(strings.Join(normalizeList(p.Qualifiers), ",")))
	writeField(&b, "schema", orPlaceholder(n.schemaVersion))

	return b.String(), nil
}

func writeField(b *strings.Builder, name, value string) {
	if b.Len() > 0 {
		b.WriteByte('|')
	}
	b.WriteString(name)
	b.WriteByte('=')
	b.WriteString(value)
}

func orPlaceholder(v string) string {
	if v == "" {
		return Placeholder
	}
	return v
}

// normalizeValue case-folds v, collapses runs of whitespace and escapes
// separator characters.
func normalizeValue(v string) string {
	v = strings.Join(strings.Fields(strings.ToLower(v)), " ")
	return escaper.Replace(v)
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if nv := normalizeValue(v); nv != "" {
			out = append(out, nv)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
