package nameformat

import (
	"regexp"
	"strings"
)

var (
	reSimpleSp       = regexp.MustCompile(`^[a-z-]+$`)
	reSimpleHyb      = regexp.MustCompile(`^[a-z-]+( × [a-z-]+)*$`)
	reSimpleCv       = regexp.MustCompile(`^'[^×'"]+'$`)
	reSimpleInfraHyb = regexp.MustCompile(`^×[a-z-]+$`)
	reSimpleProv     = regexp.MustCompile(`^sp\. \([^×]+\)$`)
	reSimpleDesc     = regexp.MustCompile(`^\([^×]*\)$`)
	reComplexDesc    = regexp.MustCompile(`^[a-z-]+ \([^×]+\)$`)
	reComplexHyb     = regexp.MustCompile(`\(.+×.+\)`)
	reOtherHyb       = regexp.MustCompile(`.+ × .+`)
)

const zws = "​"

// MarkupItalics adds italics markup to the epithet-bearing parts of a
// species string, per spec.md §4.1's markup_italics sub-algorithm. It
// matches on the outermost structural form before recursing into pieces,
// preserves a leading zero-width space, and returns the input unchanged
// for unrecognized tokens. It is a pure string transform, fuzz-safe
// against mismatched brackets: it never panics, only returns a best
// effort.
func MarkupItalics(s string) string {
	start := ""
	if strings.HasPrefix(s, zws) {
		start = zws
		s = strings.Trim(s, zws)
	}
	s = strings.TrimSpace(s)

	var result string
	switch {
	case s == "sp.":
		result = s
	case reSimpleSp.MatchString(s):
		result = "<i>" + s + "</i>"
	case reSimpleHyb.MatchString(s):
		result = strings.ReplaceAll("<i>"+s+"</i>", " × ", "</i> × <i>")
	case reSimpleCv.MatchString(s):
		result = s
	case reSimpleInfraHyb.MatchString(s):
		result = "×<i>" + strings.TrimPrefix(s, "×") + "</i>"
	case reSimpleProv.MatchString(s):
		result = s
	case reSimpleDesc.MatchString(s):
		result = s
	case reComplexDesc.MatchString(s):
		result = joinFirstSplit(s)
	case reComplexHyb.MatchString(s):
		result = markupComplexHyb(s)
	case reOtherHyb.MatchString(s):
		parts := strings.Split(s, " × ")
		italicized := make([]string, len(parts))
		for i, p := range parts {
			italicized[i] = MarkupItalics(strings.TrimSpace(p))
		}
		result = strings.Join(italicized, " × ")
	case strings.Contains(s, " "):
		result = joinFirstSplit(s)
	default:
		result = s
	}

	return start + strings.TrimSpace(result)
}

// joinFirstSplit splits s on the first space only, italicizes each half
// independently, and rejoins with a single space — mirrors the original's
// `" ".join(markup_italics(i) for i in string.split(" ", 1))`.
func joinFirstSplit(s string) string {
	parts := strings.SplitN(s, " ", 2)
	for i, p := range parts {
		parts[i] = MarkupItalics(p)
	}
	return strings.Join(parts, " ")
}

// italicizePart italicizes part, or just the interior of part if it is
// bracketed (keeping the brackets themselves unmarked).
func italicizePart(part string) string {
	if strings.HasPrefix(part, "(") && strings.HasSuffix(part, ")") {
		return "(" + MarkupItalics(part[1:len(part)-1]) + ")"
	}
	return MarkupItalics(part)
}

// markupComplexHyb splits a complex hybrid formula such as
// "(a × 'X') × (b × c)" into its top-level ×-separated groups, respecting
// parenthesis nesting, then italicizes each group.
func markupComplexHyb(s string) string {
	prts := strings.Split(s, "×")
	n := len(prts)
	var result []string
	left, right, find, found := 0, 0, 0, 0

	for i, raw := range prts {
		prt := strings.TrimSpace(raw)
		if strings.HasPrefix(prt, "(") {
			find += countLeading(prt, '(')
			if left == 0 {
				left = i + 1
			}
		}
		if strings.HasSuffix(prt, ")") {
			found += countTrailing(prt, ')')
			if found == find {
				right = i + 1
			}
		}
		switch {
		case right != 0:
			joined := strings.TrimSpace(strings.Join(prts[left-1:right], ""))
			joined = strings.ReplaceAll(joined, "  ", " × ")
			result = append(result, joined)
			left, right, find, found = 0, 0, 0, 0
		case left == 0 && right == 0 && find == 0 && found == 0:
			result = append(result, prt)
		case i == n-1:
			start := left - 1
			if start < 0 {
				start = i
			}
			joined := strings.TrimSpace(strings.Join(prts[start:], ""))
			joined = strings.ReplaceAll(joined, "  ", " × ")
			result = append(result, joined)
		}
	}

	italicized := make([]string, len(result))
	for i, r := range result {
		italicized[i] = italicizePart(r)
	}
	return strings.Join(italicized, " × ")
}

func countLeading(s string, b byte) int {
	n := 0
	for n < len(s) && s[n] == b {
		n++
	}
	return n
}

func countTrailing(s string, b byte) int {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == b; i-- {
		n++
	}
	return n
}

// smallCaps renders txt as alternating <small>UPPER</small> spans for
// lowercase runs, per spec.md §4.1 step 10's small-caps trade-name
// algorithm: uppercase letters pass through bare, lowercase runs are
// wrapped in <small> and upper-cased.
func smallCaps(txt string) string {
	var b strings.Builder
	small := false
	for _, r := range txt {
		if isUpper(r) {
			if small {
				b.WriteString("</small>")
				small = false
			}
			b.WriteRune(r)
			continue
		}
		if !small {
			b.WriteString("<small>")
			small = true
		}
		b.WriteString(strings.ToUpper(string(r)))
	}
	if small {
		b.WriteString("</small>")
	}
	return b.String()
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}
