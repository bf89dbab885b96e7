package markum

import "regexp"

// refArgs matches a bracketed argument group, allowing escaped characters
// inside. Capture 1 is the raw argument text.
const refArgs = `(?:\[((?:\\.|[^\]\\])*)\])`

// Block rules, compiled once at startup. parseBlock tries them in a fixed
// order; the first match wins.
var (
	blockEmpty      = regexp.MustCompile(`^(\s*)$`)
	blockEquation   = regexp.MustCompile(`^\$\$(\*&|&\*|\*|&)? *` + refArgs + `?\s*`)
	blockUpload     = regexp.MustCompile(`^!!(gum)? *` + refArgs + `?\s*$`)
	blockFigure     = regexp.MustCompile(`^!([a-z]*)?(\*)? *` + refArgs + `?\s*`)
	blockComment    = regexp.MustCompile(`^// ?`)
	blockCode       = regexp.MustCompile("^``" + `(\*)? *` + refArgs + `?(?:\n)?(?: |\n)?`)
	blockTitle      = regexp.MustCompile(`^#! *` + refArgs + `?\s*([^\n]*)\s*`)
	blockHeading    = regexp.MustCompile(`^(#{1,6})(\*?) *` + refArgs + `? *([^\n]+?)$`)
	blockEnvBegin   = regexp.MustCompile(`^>>(!\*|\*!|!|\*)? *([\w-]+) *` + refArgs + `?\s*`)
	blockEnvEnd     = regexp.MustCompile(`^<<\s*`)
	blockLHeading   = regexp.MustCompile(`^([^\n]+)\n *(=|-){2,}\s*$`)
	blockHRule      = regexp.MustCompile(`^([-*_]){3,}\s*$`)
	blockBlockquote = regexp.MustCompile(`^>\s*\n?`)
	blockList       = regexp.MustCompile(`^((?: *(?:[*+-]|\d+\.) [^\n]*(?:\n|$))+)\s*$`)
	blockListItem   = regexp.MustCompile(`^( *)([*+-]|\d+\.) ?`)
	blockTable      = regexp.MustCompile(`^((?: *\|[^\n]+\| *(?:\n|$))+)\s*$`)
)

// Inline rules expressible as RE2 patterns. Rules that need lookaround or
// backreferences in their reference grammar (strong, emphasis, inline
// code, the text fallback) are implemented as scanner functions in
// parse.go, tried in the same fixed order.
var (
	inlineSpecial  = regexp.MustCompile("^\\\\([`'\"^~])\\{([A-Za-z])\\}")
	inlineEscape   = regexp.MustCompile("^\\\\([\\\\/`*{}\\[\\]()#+\\-.!_>$%&])")
	inlineMath     = regexp.MustCompile(`^\$((?:\\\$|[^$])+)\$`)
	inlineComment  = regexp.MustCompile(`^//([^\n]*)(?:\n|$)`)
	inlineRefCite  = regexp.MustCompile(`^(@{1,2})\[([^\]]+)\]`)
	inlineILink    = regexp.MustCompile(`^\[\[([^\]]+)\]\]`)
	inlineAutolink = regexp.MustCompile(`^<([^ >]+:/[^ >]+)>`)
	inlineURL      = regexp.MustCompile(`^(https?://[^\s<]+[^<.,:;"')\]\s])`)
	inlineHash     = regexp.MustCompile(`^#(\[[\w| ]+\]|\w+)`)
	inlineDel      = regexp.MustCompile(`^~~(\S(?:[\s\S]*?\S)?)~~`)
	inlineEmoji    = regexp.MustCompile(`^:([a-zA-Z0-9_+-]+):`)
	inlineBreak    = regexp.MustCompile(`^ *\n`)
	inlineHref     = regexp.MustCompile(`^\s*<?([\s\S]*?)>?(?:\s+['"]([\s\S]*?)['"])?\s*$`)
)

// accent table for Special elements: accent char -> entity suffix and the
// letters it may combine with. Unknown pairs fall back to the bare letter.
type accent struct {
	name    string
	allowed string
}

var accents = map[byte]accent{
	'`':  {"grave", "aeiouAEIOU"},
	'\'': {"acute", "aeiouyAEIOUY"},
	'^':  {"circ", "aeiouAEIOU"},
	'"':  {"uml", "aeiouyAEIOUY"},
	'~':  {"tilde", "anoANO"},
}

// specialChar resolves an accent escape to an HTML entity, or the bare
// letter when the pair is not allowed.
func specialChar(acc, letter byte) string {
	spec, ok := accents[acc]
	if !ok {
		return string(letter)
	}
	for i := 0; i < len(spec.allowed); i++ {
		if spec.allowed[i] == letter {
			return "&" + string(letter) + spec.name + ";"
		}
	}
	return string(letter)
}
