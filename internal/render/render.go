// Package render converts markdown to preview HTML with syntax highlighting
// and overridable image and table output.
package render

import (
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	md_html "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/mmarkdown/mmark/v2/lang"
	"github.com/mmarkdown/mmark/v2/mast"
	"github.com/mmarkdown/mmark/v2/mparser"
	"github.com/mmarkdown/mmark/v2/render/mhtml"

	"github.com/debemdeboas/mdwidget/internal/cache"
	"github.com/debemdeboas/mdwidget/internal/config"
	"github.com/debemdeboas/mdwidget/internal/theme"
	"github.com/debemdeboas/mdwidget/internal/util"
)

// Image is one image reference found in the markdown.
type Image struct {
	Src    string
	Alt    string
	Title  string
	Width  int
	Height int
}

// ImageFunc writes the HTML of an image reference.
type ImageFunc func(w io.Writer, img Image)

// TableFunc writes the markup opening (entering) or closing a table.
type TableFunc func(w io.Writer, entering bool)

// Overrides customizes image and table output. Nil fields use the defaults.
type Overrides struct {
	Image ImageFunc
	Table TableFunc
}

type Renderer struct {
	engine      string
	syntaxTheme string
	overrides   Overrides
}

func New(engine, syntaxTheme string, overrides Overrides) *Renderer {
	if overrides.Image == nil {
		overrides.Image = DefaultImage
	}
	if overrides.Table == nil {
		overrides.Table = DefaultTable
	}
	return &Renderer{
		engine:      engine,
		syntaxTheme: syntaxTheme,
		overrides:   overrides,
	}
}

// DefaultImage writes an img tag, sized when the reference carries =WxH.
func DefaultImage(w io.Writer, img Image) {
	fmt.Fprintf(w, `<img src="%s" alt="%s"`, html.EscapeString(img.Src), html.EscapeString(img.Alt))
	if img.Title != "" {
		fmt.Fprintf(w, ` title="%s"`, html.EscapeString(img.Title))
	}
	if img.Width > 0 && img.Height > 0 {
		fmt.Fprintf(w, ` width="%d" height="%d"`, img.Width, img.Height)
	}
	io.WriteString(w, ">")
}

// DefaultTable wraps tables in a horizontally scrollable container.
func DefaultTable(w io.Writer, entering bool) {
	if entering {
		io.WriteString(w, "<div class=\"mdwidget-table\"><table>\n")
		return
	}
	io.WriteString(w, "</table></div>\n")
}

// Variant identifies the output of this renderer for caching.
func (r *Renderer) Variant() string {
	return r.engine + ":" + r.syntaxTheme
}

// Render converts the whole text to HTML, reusing earlier output for the same
// content.
func (r *Renderer) Render(text string) string {
	hash := util.ContentHashString(text)
	if cached, found := cache.GetRenderedPreview(hash, r.Variant()); found {
		renderLogger.Debug().Str("contentHash", hash).Str("variant", r.Variant()).Msg("Cache hit for rendered preview")
		return cached
	}

	renderLogger.Debug().Str("contentHash", hash).Str("variant", r.Variant()).Msg("Cache miss for rendered preview")
	out := string(r.RenderBytes([]byte(text)))
	cache.SetRenderedPreview(hash, r.Variant(), out)
	return out
}

// RenderBytes renders without touching the cache.
func (r *Renderer) RenderBytes(md []byte) []byte {
	md = config.RegexImageSize.ReplaceAll(md, []byte(`![$1]($2 "=${3}x$4")`))
	switch r.engine {
	case config.MarkdownEngineClassic:
		return r.renderClassic(md)
	default:
		return r.renderMmark(md)
	}
}

// Warm renders text in the background so the first preview is a cache hit.
func (r *Renderer) Warm(text string) {
	go r.Render(text)
}

func HighlightCode(code, language, highlightTheme string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	style := styles.Get(highlightTheme)
	var buf strings.Builder
	if err := theme.GetFormatter().Format(&buf, style, iterator); err != nil {
		return code
	}

	return config.RegexCallout.ReplaceAllString(buf.String(), "<span class=\"callout\">$1</span>")
}

// hook handles the nodes shared by both engines.
func (r *Renderer) hook(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	switch n := node.(type) {
	case *ast.CodeBlock:
		if !entering {
			return ast.GoToNext, true
		}
		var lang string
		if n.Info != nil {
			lang = string(n.Info)
		}
		fmt.Fprintf(w, "<div class=\"highlight\">%s</div>", HighlightCode(string(n.Literal), lang, r.syntaxTheme))
		return ast.GoToNext, true
	case *ast.Image:
		if !entering {
			return ast.GoToNext, true
		}
		r.overrides.Image(w, imageFromNode(n))
		return ast.SkipChildren, true
	case *ast.Table:
		r.overrides.Table(w, entering)
		return ast.GoToNext, true
	}
	return ast.GoToNext, false
}

func imageFromNode(n *ast.Image) Image {
	img := Image{
		Src:   string(n.Destination),
		Title: string(n.Title),
	}
	if m := config.RegexImageSizeTitle.FindStringSubmatch(img.Title); m != nil {
		img.Width, _ = strconv.Atoi(m[1])
		img.Height, _ = strconv.Atoi(m[2])
		img.Title = ""
	}

	var alt strings.Builder
	ast.WalkFunc(n, func(node ast.Node, entering bool) ast.WalkStatus {
		if leaf := node.AsLeaf(); leaf != nil && entering {
			alt.Write(leaf.Literal)
		}
		return ast.GoToNext
	})
	img.Alt = alt.String()
	return img
}

func (r *Renderer) renderClassic(md []byte) []byte {
	opts := md_html.RendererOptions{
		Flags:    md_html.CommonFlags | md_html.HrefTargetBlank | md_html.FootnoteReturnLinks,
		Comments: [][]byte{[]byte("//"), []byte("#")},
		RenderNodeHook: func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
			if callout, ok := node.(*ast.Callout); ok && entering {
				fmt.Fprintf(w, "<span class=\"callout\">%s</span>", callout.ID)
				return ast.GoToNext, true
			}
			return r.hook(w, node, entering)
		},
	}

	doc := parser.NewWithExtensions(
		parser.Tables | parser.FencedCode | parser.Autolink | parser.Strikethrough | parser.SpaceHeadings |
			parser.HeadingIDs | parser.BackslashLineBreak | parser.SuperSubscript | parser.DefinitionLists | parser.MathJax |
			parser.AutoHeadingIDs | parser.Footnotes | parser.OrderedListStart | parser.Attributes |
			parser.NonBlockingSpace,
	).Parse(md)

	return markdown.Render(doc, md_html.NewRenderer(opts))
}

func (r *Renderer) renderMmark(md []byte) []byte {
	md = markdown.NormalizeNewlines(md)

	p := parser.NewWithExtensions(mparser.Extensions | parser.NoIntraEmphasis)

	var info *mast.TitleData
	p.Opts = parser.Options{
		ParserHook: func(data []byte) (ast.Node, []byte, int) {
			node, data, consumed := mparser.Hook(data)
			if t, ok := node.(*mast.Title); ok {
				info = t.TitleData
			}
			return node, data, consumed
		},
		Flags: parser.FlagsNone,
	}

	doc := markdown.Parse(md, p)
	mparser.AddIndex(doc)

	// A document without a title block leaves info nil.
	language := "en"
	if info != nil && info.Language != "" {
		language = info.Language
	}
	mhtmlOpts := mhtml.RendererOptions{
		Language: lang.New(language),
	}

	opts := md_html.RendererOptions{
		Comments: [][]byte{[]byte("//"), []byte("#")},
		RenderNodeHook: func(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
			if status, handled := r.hook(w, node, entering); handled {
				return status, true
			}
			return mhtmlOpts.RenderHook(w, node, entering)
		},
		Flags: md_html.CommonFlags | md_html.FootnoteNoHRTag | md_html.FootnoteReturnLinks,
	}

	return markdown.Render(doc, md_html.NewRenderer(opts))
}
