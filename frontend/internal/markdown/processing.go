package markdown

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// TextProcessor renders the markdown found in note titles and abstracts into safe HTML.
type TextProcessor struct {
	title    goldmark.Markdown
	abstract goldmark.Markdown
	policy   *bluemonday.Policy
}

func New() *TextProcessor {
	// titles: a single paragraph with emphasis, code spans and math
	titleParser := parser.NewParser(
		parser.WithBlockParsers(
			util.Prioritized(parser.NewParagraphParser(), 1000),
		),
		parser.WithInlineParsers(
			util.Prioritized(NewMathParser(), 50),
			util.Prioritized(parser.NewCodeSpanParser(), 100),
			util.Prioritized(parser.NewEmphasisParser(), 500),
		),
	)
	mathRenderer := renderer.WithNodeRenderers(util.Prioritized(NewMathHTMLRenderer(), 500))

	title := goldmark.New(
		goldmark.WithParser(titleParser),
		goldmark.WithRendererOptions(mathRenderer),
	)
	abstract := goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
		goldmark.WithParserOptions(parser.WithInlineParsers(util.Prioritized(NewMathParser(), 50))),
		goldmark.WithRendererOptions(mathRenderer),
	)

	return &TextProcessor{title: title, abstract: abstract, policy: newPolicy()}
}

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile("^math$")).OnElements("span")
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// RenderTitle renders a note title as inline HTML.
func (tp *TextProcessor) RenderTitle(title string) template.HTML {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	out, err := tp.convert(tp.title, title)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(title))
	}
	out = strings.TrimPrefix(out, "<p>")
	out = strings.TrimSuffix(out, "</p>")
	return template.HTML(tp.policy.Sanitize(out))
}

// RenderAbstract renders at most maxRunes runes of an abstract, cut at a word boundary.
// maxRunes <= 0 renders everything.
func (tp *TextProcessor) RenderAbstract(abstract string, maxRunes int) template.HTML {
	abstract = Truncate(strings.TrimSpace(abstract), maxRunes)
	if abstract == "" {
		return ""
	}
	out, err := tp.convert(tp.abstract, abstract)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(abstract))
	}
	return template.HTML(tp.policy.Sanitize(out))
}

func (tp *TextProcessor) convert(md goldmark.Markdown, text string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// Truncate cuts s to maxRunes runes, backing off to the last space, and marks the cut
// with an ellipsis.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:maxRunes])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " .,;:") + "…"
}
