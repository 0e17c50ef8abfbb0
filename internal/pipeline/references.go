package pipeline

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ReferenceKind identifies the syntax a reference was written in.
type ReferenceKind int

const (
	// LinkedImage is the markdown ![alt](path) construct.
	LinkedImage ReferenceKind = iota
	// EmbeddedTag is an <img src="path"> tag in raw HTML.
	EmbeddedTag
)

func (k ReferenceKind) String() string {
	if k == EmbeddedTag {
		return "embedded-tag"
	}
	return "linked-image"
}

// MarshalText encodes the kind by name.
func (k ReferenceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Reference is an asset reference found in a parsed document.
type Reference struct {
	Kind ReferenceKind `json:"kind"`
	Path string        `json:"path"`
	Alt  string        `json:"alt,omitempty"`
}

// referenceParser only needs block and inline structure; GFM adds the raw
// HTML cases found in tables.
var referenceParser = goldmark.New(goldmark.WithExtensions(extension.GFM))

// CollectReferences parses markdown and returns its image references in
// document order. Unlike Rewriter, it understands the markdown structure, so
// images inside code spans and fenced blocks are not reported.
func CollectReferences(markdown string) []Reference {
	src := []byte(markdown)
	doc := referenceParser.Parser().Parse(text.NewReader(src))

	var refs []Reference
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Image:
			refs = append(refs, Reference{
				Kind: LinkedImage,
				Path: string(node.Destination),
				Alt:  nodeText(node, src),
			})
		case *ast.RawHTML:
			var buf bytes.Buffer
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				buf.Write(seg.Value(src))
			}
			refs = append(refs, htmlImageSources(buf.String())...)
		case *ast.HTMLBlock:
			var buf bytes.Buffer
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(src))
			}
			if node.HasClosure() {
				buf.Write(node.ClosureLine.Value(src))
			}
			refs = append(refs, htmlImageSources(buf.String())...)
		}
		return ast.WalkContinue, nil
	})
	return refs
}

// nodeText concatenates the text segments below n.
func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
			continue
		}
		b.WriteString(nodeText(c, src))
	}
	return b.String()
}

// htmlImageSources tokenizes a raw HTML fragment and returns its img sources.
func htmlImageSources(fragment string) []Reference {
	var refs []Reference
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return refs
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.DataAtom != atom.Img {
				continue
			}
			ref := Reference{Kind: EmbeddedTag}
			for _, attr := range tok.Attr {
				switch attr.Key {
				case "src":
					ref.Path = attr.Val
				case "alt":
					ref.Alt = attr.Val
				}
			}
			if ref.Path != "" {
				refs = append(refs, ref)
			}
		}
	}
}

// UnresolvedReferences returns the references published under base whose
// target is reported missing by exists. exists receives the decoded path
// relative to base. References outside base are ignored.
func UnresolvedReferences(refs []Reference, base string, exists func(rel string) bool) []Reference {
	var missing []Reference
	for _, ref := range refs {
		if base == "" || !strings.HasPrefix(ref.Path, base) {
			continue
		}
		rel := strings.TrimPrefix(ref.Path, base)
		if i := strings.IndexAny(rel, "?#"); i >= 0 {
			rel = rel[:i]
		}
		decoded, err := url.PathUnescape(rel)
		if err != nil {
			decoded = rel
		}
		if !exists(decoded) {
			missing = append(missing, ref)
		}
	}
	return missing
}
