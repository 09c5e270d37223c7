package analysis

import (
	"strings"

	"github.com/unbound-force/testscope/internal/codemodel"
)

// methodComplexity holds the two size metrics for one method body.
type methodComplexity struct {
	NCLOC      int
	Cyclomatic int
}

// Complexity computes the bare metrics of a test method and the
// with-helpers variant summed over its reachability set. Per-method
// values are memoized so a helper shared by several tests (or
// several reachability paths) is computed once; each helper in the
// set contributes exactly once to the sum.
func (a *Analyzer) Complexity(root codemodel.MethodRef, helpers []codemodel.MethodRef) (bare, withHelpers methodComplexity) {
	bare = a.methodComplexity(root)
	withHelpers = bare
	for _, ref := range helpers {
		mc := a.methodComplexity(ref)
		withHelpers.NCLOC += mc.NCLOC
		withHelpers.Cyclomatic += mc.Cyclomatic
	}
	return bare, withHelpers
}

func (a *Analyzer) methodComplexity(ref codemodel.MethodRef) methodComplexity {
	a.complexityMu.Lock()
	if mc, ok := a.complexityCache[ref]; ok {
		a.complexityMu.Unlock()
		return mc
	}
	a.complexityMu.Unlock()

	var mc methodComplexity
	if method, ok := a.model.Method(ref); ok && method.Code != "" {
		clean := stripCommentsAndLiterals(method.Code)
		mc = methodComplexity{
			NCLOC:      ncloc(clean),
			Cyclomatic: cyclomatic(clean),
		}
	}

	a.complexityMu.Lock()
	a.complexityCache[ref] = mc
	a.complexityMu.Unlock()
	return mc
}

// ncloc counts non-comment, non-blank lines in pre-cleaned source.
func ncloc(clean string) int {
	n := 0
	for _, line := range strings.Split(clean, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// decisionKeywords are the branch/loop/case tokens counted as
// decision points. else-if contributes through its if; do-while
// through its while.
var decisionKeywords = []string{"if", "for", "while", "case", "catch"}

// cyclomatic is 1 + decision points: branch/loop/case/catch keywords
// plus short-circuit operators, over pre-cleaned source.
func cyclomatic(clean string) int {
	points := 0
	for _, kw := range decisionKeywords {
		points += countWord(clean, kw)
	}
	points += strings.Count(clean, "&&")
	points += strings.Count(clean, "||")
	return 1 + points
}

// countWord counts whole-word occurrences of kw.
func countWord(s, kw string) int {
	count := 0
	for i := 0; i+len(kw) <= len(s); {
		j := strings.Index(s[i:], kw)
		if j == -1 {
			break
		}
		j += i
		before := j == 0 || !isIdentChar(s[j-1])
		afterIdx := j + len(kw)
		after := afterIdx == len(s) || !isIdentChar(s[afterIdx])
		if before && after {
			count++
		}
		i = j + len(kw)
	}
	return count
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// stripCommentsAndLiterals blanks comment text and the contents of
// string/char literals while preserving line structure, so line
// counting and keyword scans see only real code.
func stripCommentsAndLiterals(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	const (
		code = iota
		lineComment
		blockComment
		stringLit
		charLit
	)
	state := code

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch state {
		case code:
			switch {
			case c == '/' && i+1 < len(src) && src[i+1] == '/':
				state = lineComment
				b.WriteByte(' ')
			case c == '/' && i+1 < len(src) && src[i+1] == '*':
				state = blockComment
				b.WriteByte(' ')
			case c == '"':
				state = stringLit
				b.WriteByte(c)
			case c == '\'':
				state = charLit
				b.WriteByte(c)
			default:
				b.WriteByte(c)
			}
		case lineComment:
			if c == '\n' {
				state = code
				b.WriteByte(c)
			} else {
				b.WriteByte(' ')
			}
		case blockComment:
			if c == '*' && i+1 < len(src) && src[i+1] == '/' {
				state = code
				i++
				b.WriteString("  ")
			} else if c == '\n' {
				b.WriteByte(c)
			} else {
				b.WriteByte(' ')
			}
		case stringLit:
			switch {
			case c == '\\' && i+1 < len(src):
				i++
				b.WriteString("  ")
			case c == '"':
				state = code
				b.WriteByte(c)
			case c == '\n':
				// Unterminated literal; resync.
				state = code
				b.WriteByte(c)
			default:
				b.WriteByte(' ')
			}
		case charLit:
			switch {
			case c == '\\' && i+1 < len(src):
				i++
				b.WriteString("  ")
			case c == '\'':
				state = code
				b.WriteByte(c)
			case c == '\n':
				state = code
				b.WriteByte(c)
			default:
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}
