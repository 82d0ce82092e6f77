package htmlutil

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"legiscrape/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("legiscrape.lib.htmlutil")

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer, false)
	return buffer.String()
}

var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "tr": true, "td": true, "th": true,
	"dt": true, "dd": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "address": true, "section": true, "table": true,
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer, breaks bool) {
	if node == nil {
		return
	}
	switch node.Type {
	case html.TextNode:
		buffer.WriteString(node.Data)
		return
	case html.ElementNode:
		if breaks && node.Data == "br" {
			buffer.WriteByte('\n')
			return
		}
		if node.Data == "script" || node.Data == "style" {
			return
		}
	}
	block := breaks && node.Type == html.ElementNode && blockElements[node.Data]
	if block {
		buffer.WriteByte('\n')
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer, breaks)
		child = child.NextSibling
	}
	if block {
		buffer.WriteByte('\n')
	}
}

// Text is the whitespace collapsed text of every node in sel.
func Text(sel *goquery.Selection) string {
	var buffer bytes.Buffer
	for _, n := range sel.Nodes {
		getTextRecursive(n, &buffer, false)
		buffer.WriteByte(' ')
	}
	return textutil.CollapseWhitespace(removeNonPrintable(buffer.String()))
}

// TextLines is the text of sel split into trimmed non-empty lines, where
// <br> and block elements start new lines.
func TextLines(sel *goquery.Selection) []string {
	var buffer bytes.Buffer
	for _, n := range sel.Nodes {
		getTextRecursive(n, &buffer, true)
		buffer.WriteByte('\n')
	}
	return textutil.Lines(removeNonPrintable(buffer.String()))
}

// NodeLines is TextLines for a single node.
func NodeLines(node *html.Node) []string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer, true)
	return textutil.Lines(removeNonPrintable(buffer.String()))
}

type Anchor struct {
	Name string
	Href string
}

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		switch {
		case c == '\n':
			newStr.WriteRune(c)
		case unicode.IsSpace(c):
			newStr.WriteRune(' ')
		case unicode.IsPrint(c):
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// GetAnchors lists the anchors in sel with hrefs resolved against base.
// base may be nil, in which case hrefs are returned as written.
func GetAnchors(ctx context.Context, base *url.URL, sel *goquery.Selection) []Anchor {
	_, span := tracer.Start(ctx, "GetAnchors")
	defer span.End()

	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href, ok := attr(n, "href")
		if !ok {
			continue
		}

		link, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "got error while parsing url")
			continue
		}
		if base != nil {
			link = base.ResolveReference(link)
		}

		name := textutil.CollapseWhitespace(removeNonPrintable(GetText(n)))

		linkStr := link.String()
		anchors = append(anchors, Anchor{
			Name: name,
			Href: linkStr,
		})
		span.AddEvent("anchor", trace.WithAttributes(
			attribute.String("name", name),
			attribute.String("url", linkStr),
		))
	}

	return anchors
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// ResolveURL resolves href against base, the result is always absolute.
func ResolveURL(base, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", fmt.Errorf("empty url")
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	baseUrl, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	if !baseUrl.IsAbs() {
		return "", fmt.Errorf("cannot resolve %q against relative base %q", href, base)
	}
	return baseUrl.ResolveReference(ref).String(), nil
}

func IsAbsoluteURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	return err == nil && u.IsAbs() && u.Host != ""
}

// XPath evaluates expr against every node in sel and wraps the results in
// a selection, so the two query languages can be mixed.
func XPath(sel *goquery.Selection, expr string) (*goquery.Selection, error) {
	var found []*html.Node
	for _, n := range sel.Nodes {
		nodes, err := htmlquery.QueryAll(n, expr)
		if err != nil {
			return nil, fmt.Errorf("xpath %q: %w", expr, err)
		}
		found = append(found, nodes...)
	}
	return sel.FindNodes().AddNodes(found...), nil
}

// XPathNode is the first node matching expr, nil when nothing matches.
func XPathNode(node *html.Node, expr string) (*html.Node, error) {
	found, err := htmlquery.Query(node, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath %q: %w", expr, err)
	}
	return found, nil
}

// XPathText is the whitespace collapsed inner text of the first node
// matching expr, empty when nothing matches.
func XPathText(node *html.Node, expr string) (string, error) {
	found, err := htmlquery.Query(node, expr)
	if err != nil {
		return "", fmt.Errorf("xpath %q: %w", expr, err)
	}
	if found == nil {
		return "", nil
	}
	return textutil.CollapseWhitespace(htmlquery.InnerText(found)), nil
}

// XPathAttr is the value of attribute name on the first node matching
// expr.
func XPathAttr(node *html.Node, expr, name string) (string, error) {
	found, err := htmlquery.Query(node, expr)
	if err != nil {
		return "", fmt.Errorf("xpath %q: %w", expr, err)
	}
	if found == nil {
		return "", nil
	}
	return strings.TrimSpace(htmlquery.SelectAttr(found, name)), nil
}

// XPathTexts is the whitespace collapsed inner text of every node
// matching expr, empty strings dropped. Selecting text() nodes gives the
// page's text fragments in document order.
func XPathTexts(node *html.Node, expr string) ([]string, error) {
	found, err := htmlquery.QueryAll(node, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath %q: %w", expr, err)
	}
	var out []string
	for _, n := range found {
		text := textutil.CollapseWhitespace(removeNonPrintable(htmlquery.InnerText(n)))
		if text != "" {
			out = append(out, text)
		}
	}
	return out, nil
}
