package toc

import "strings"

// Kind is the role of one table-of-contents line.
type Kind int

// Line kinds.
const (
	LineBlank Kind = iota
	LineChapter
	LineSection
	LineBullet
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineChapter:
		return "chapter"
	case LineSection:
		return "section"
	case LineBullet:
		return "bullet"
	default:
		return "unknown"
	}
}

// Line is a classified table-of-contents line.
type Line struct {
	Kind   Kind
	Tokens []string
}

// Classify assigns a role to a raw line by its first token:
//
//	"3 Working with data 57"      chapter (all ASCII digits)
//	"3.1 Reading with JDBC 58"    section (contains a dot)
//	"Using JdbcTemplate 59"       bullet  (anything else)
//
// Whitespace-only lines are blank.
func Classify(raw string) Line {
	tokens := strings.Fields(raw)
	if len(tokens) == 0 {
		return Line{Kind: LineBlank}
	}
	switch {
	case isNumber(tokens[0]):
		return Line{Kind: LineChapter, Tokens: tokens}
	case strings.Contains(tokens[0], "."):
		return Line{Kind: LineSection, Tokens: tokens}
	default:
		return Line{Kind: LineBullet, Tokens: tokens}
	}
}

// Title joins the tokens between the leading number and the trailing page
// number. Lines of fewer than three tokens have an empty title.
func (l Line) Title() string {
	if len(l.Tokens) < 3 {
		return ""
	}
	return strings.Join(l.Tokens[1:len(l.Tokens)-1], " ")
}

func isNumber(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
