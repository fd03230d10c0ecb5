package speech

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MaxSpeechRunes caps the text sent for synthesis.
const MaxSpeechRunes = 5000

var (
	markupChars = regexp.MustCompile(`[*_#]`)
	lineBreaks  = regexp.MustCompile(`\s*\n+\s*`)
	spaces      = regexp.MustCompile(`[ \t]+`)
)

var md = goldmark.New()

// PlainText renders markdown advice as the sentence stream a listener
// should hear: markup is dropped, line breaks become sentence breaks and
// the result is capped at MaxSpeechRunes.
func PlainText(markdown string) string {
	src := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(src))

	var b strings.Builder
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock && n.Kind() != ast.KindDocument {
				b.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(src))
			}
			return ast.WalkSkipChildren, nil
		case *ast.AutoLink:
			b.Write(v.Label(src))
		}
		return ast.WalkContinue, nil
	})

	return sentences(b.String())
}

// sentences joins lines into one utterance, adding a full stop where a
// line ends without punctuation.
func sentences(s string) string {
	s = markupChars.ReplaceAllString(s, "")
	var parts []string
	for _, line := range lineBreaks.Split(s, -1) {
		line = strings.TrimSpace(spaces.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		parts = append(parts, line)
	}

	var b strings.Builder
	for i, p := range parts {
		b.WriteString(p)
		if i == len(parts)-1 {
			break
		}
		if !strings.ContainsAny(p[len(p)-1:], ".!?:;") {
			b.WriteByte('.')
		}
		b.WriteByte(' ')
	}
	return truncateRunes(b.String(), MaxSpeechRunes)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
