package scraper

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
)

// htmlForm is the first form of a page: where it submits and its default fields.
type htmlForm struct {
	Action string
	Fields url.Values
}

// parseFirstForm parses the first <form> element in r. Every named <input>
// inside it contributes its default value. A page without a form, or a form
// without an action attribute, yields ErrFormShape.
func parseFirstForm(r io.Reader) (*htmlForm, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFormShape, err)
	}

	formNode := findFirst(doc, "form")
	if formNode == nil {
		return nil, fmt.Errorf("%w: no form on page", domain.ErrFormShape)
	}

	action, ok := attr(formNode, "action")
	if !ok {
		return nil, fmt.Errorf("%w: form has no action", domain.ErrFormShape)
	}

	form := &htmlForm{Action: action, Fields: url.Values{}}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "input" {
			if name, ok := attr(n, "name"); ok && name != "" {
				value, _ := attr(n, "value")
				form.Fields.Set(name, value)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(formNode)

	return form, nil
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// parseSetCookies reads name/value pairs from raw Set-Cookie header values.
// Only the text before the first ';' is considered and it is split at the
// first '='. Attributes such as Path or HttpOnly are ignored. When a name
// repeats, the first non-empty value is kept.
func parseSetCookies(headers []string) map[string]string {
	cookies := make(map[string]string, len(headers))
	for _, h := range headers {
		pair, _, _ := strings.Cut(h, ";")
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		value = strings.TrimSpace(value)
		if prev, seen := cookies[name]; seen && prev != "" {
			continue
		}
		cookies[name] = value
	}
	return cookies
}
