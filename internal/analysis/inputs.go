package analysis

import (
	"strings"
	"unicode/utf8"

	"github.com/unbound-force/testscope/internal/codemodel"
	"github.com/unbound-force/testscope/internal/taxonomy"
)

// previewLen bounds the literal excerpt carried into reports.
const previewLen = 60

// Inputs detects structured formats in the string literals of a test
// method and its reachable helpers. Detection is an ordered best-
// effort heuristic chain returning the first match; literals that
// match nothing are tagged undetermined, never dropped or failed.
func (a *Analyzer) Inputs(root codemodel.MethodRef, helpers []codemodel.MethodRef) []taxonomy.TestInput {
	scope := append([]codemodel.MethodRef{root}, helpers...)

	var inputs []taxonomy.TestInput
	for _, ref := range scope {
		method, ok := a.model.Method(ref)
		if !ok {
			continue
		}
		for _, lit := range method.Literals {
			inputs = append(inputs, taxonomy.TestInput{
				Line:    lit.Line,
				Format:  DetectFormat(lit.Value),
				Preview: preview(lit.Value),
			})
		}
	}
	return inputs
}

// DetectFormat applies the format heuristics in their fixed order:
// json, xml/html, yaml, sql, csv, undetermined.
func DetectFormat(literal string) taxonomy.InputFormat {
	s := strings.TrimSpace(literal)
	if s == "" {
		return taxonomy.FormatUndetermined
	}
	switch {
	case looksLikeJSON(s):
		return taxonomy.FormatJSON
	case looksLikeMarkup(s):
		if hasHTMLVocabulary(s) {
			return taxonomy.FormatHTML
		}
		return taxonomy.FormatXML
	case looksLikeYAML(s):
		return taxonomy.FormatYAML
	case looksLikeSQL(s):
		return taxonomy.FormatSQL
	case looksLikeCSV(s):
		return taxonomy.FormatCSV
	}
	return taxonomy.FormatUndetermined
}

// looksLikeJSON requires balanced braces/brackets and a
// colon-delimited key/value structure (or a bracketed array).
func looksLikeJSON(s string) bool {
	first := s[0]
	last := s[len(s)-1]
	if first == '{' && last == '}' {
		return balanced(s, '{', '}') && strings.Contains(s, ":")
	}
	if first == '[' && last == ']' {
		return balanced(s, '[', ']')
	}
	return false
}

func balanced(s string, open, close byte) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// looksLikeMarkup requires a matched opening/closing tag pair.
func looksLikeMarkup(s string) bool {
	if len(s) < 3 || s[0] != '<' {
		return false
	}
	start := 1
	if strings.HasPrefix(s, "<?") || strings.HasPrefix(s, "<!") {
		// Prolog or doctype; look at the first element after it.
		i := strings.IndexByte(s, '>')
		if i == -1 {
			return false
		}
		rest := strings.TrimSpace(s[i+1:])
		return looksLikeMarkup(rest)
	}
	end := strings.IndexAny(s[start:], " >\n\t/")
	if end == -1 {
		return false
	}
	tag := s[start : start+end]
	if tag == "" {
		return false
	}
	return strings.Contains(s, "</"+tag+">") || strings.Contains(s, "/>")
}

var htmlTags = []string{
	"html", "head", "body", "div", "span", "p", "a", "table",
	"tr", "td", "ul", "li", "h1", "h2", "form", "input", "br",
}

func hasHTMLVocabulary(s string) bool {
	lower := strings.ToLower(s)
	for _, tag := range htmlTags {
		if strings.Contains(lower, "<"+tag+">") ||
			strings.Contains(lower, "<"+tag+" ") ||
			strings.Contains(lower, "<"+tag+"/>") {
			return true
		}
	}
	return false
}

// looksLikeYAML requires indentation-based key/value lines without
// braces.
func looksLikeYAML(s string) bool {
	if strings.ContainsAny(s, "{}") {
		return false
	}
	lines := nonEmptyLines(s)
	if len(lines) < 2 {
		return false
	}
	kv := 0
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "- ") {
			kv++
			continue
		}
		if i := strings.Index(trimmed, ": "); i > 0 {
			kv++
			continue
		}
		if strings.HasSuffix(trimmed, ":") && len(trimmed) > 1 {
			kv++
		}
	}
	return kv == len(lines)
}

var sqlKeywords = []string{"SELECT", "INSERT", "UPDATE", "DELETE", "CREATE"}

// looksLikeSQL requires a SQL keyword as the first token.
func looksLikeSQL(s string) bool {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return false
	}
	first := strings.ToUpper(fields[0])
	for _, kw := range sqlKeywords {
		if first == kw {
			return true
		}
	}
	return false
}

// looksLikeCSV requires multiple comma-separated lines with a
// consistent field count.
func looksLikeCSV(s string) bool {
	lines := nonEmptyLines(s)
	if len(lines) < 2 {
		return false
	}
	want := strings.Count(lines[0], ",")
	if want == 0 {
		return false
	}
	for _, line := range lines[1:] {
		if strings.Count(line, ",") != want {
			return false
		}
	}
	return true
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

func preview(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= previewLen {
		return s
	}
	// Back off to a rune boundary so the excerpt stays valid UTF-8.
	cut := previewLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
