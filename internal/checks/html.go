package checks

import (
	"strings"

	"golang.org/x/net/html"
)

// walkNodes visits every node in the tree depth-first.
func walkNodes(n *html.Node, fn func(*html.Node)) {
	if n == nil {
		return
	}
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkNodes(c, fn)
	}
}

// findElements collects every element node whose tag matches one of names.
func findElements(root *html.Node, names ...string) []*html.Node {
	want := make(map[string]struct{}, len(names))
	for _, n := range names {
		want[strings.ToLower(n)] = struct{}{}
	}
	var out []*html.Node
	walkNodes(root, func(n *html.Node) {
		if n.Type == html.ElementNode {
			if _, ok := want[n.Data]; ok {
				out = append(out, n)
			}
		}
	})
	return out
}

// nodeAttr returns the value of the named attribute, or "" when absent.
func nodeAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// hasAttr reports whether the attribute exists, even with an empty value.
func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return true
		}
	}
	return false
}

// nodeText flattens the text content beneath a node, whitespace-collapsed.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	walkNodes(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}
