package markdown

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Math is inline TeX between single dollars, e.g. $O(n \log n)$. Its content is kept
// verbatim so emphasis markers inside formulas are not interpreted.
type Math struct {
	ast.BaseInline
	Segment text.Segment
}

func (n *Math) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Value": string(n.Segment.Value(source))}, nil)
}

var KindMath = ast.NewNodeKind("Math")

func (n *Math) Kind() ast.NodeKind {
	return KindMath
}

type mathParser struct{}

func NewMathParser() parser.InlineParser {
	return &mathParser{}
}

func (p *mathParser) Trigger() []byte {
	return []byte{'$'}
}

func (p *mathParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, segment := block.PeekLine()
	if len(line) < 3 || line[0] != '$' {
		return nil
	}
	// $$ display math is left alone
	if line[1] == '$' {
		return nil
	}
	end := bytes.IndexByte(line[1:], '$')
	if end <= 0 {
		return nil
	}

	node := &Math{Segment: text.NewSegment(segment.Start+1, segment.Start+1+end)}
	block.Advance(end + 2)
	return node
}

// MathHTMLRenderer renders Math nodes as escaped text in a span for the client-side typesetter.
type MathHTMLRenderer struct {
	html.Config
}

func NewMathHTMLRenderer(opts ...html.Option) renderer.NodeRenderer {
	r := &MathHTMLRenderer{
		Config: html.NewConfig(),
	}
	for _, opt := range opts {
		opt.SetHTMLOption(&r.Config)
	}
	return r
}

func (r *MathHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMath, r.renderMath)
}

func (r *MathHTMLRenderer) renderMath(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		n := node.(*Math)
		_, _ = w.WriteString(`<span class="math">$`)
		_, _ = w.Write(util.EscapeHTML(n.Segment.Value(source)))
		_, _ = w.WriteString(`$</span>`)
	}
	return ast.WalkSkipChildren, nil
}
