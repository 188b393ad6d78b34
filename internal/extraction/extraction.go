package extraction

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/rotisserie/eris"

	"github.com/williampepple1/catalog-crawler/internal/config"
)

// Extractor applies field rules to a product page
type Extractor struct {
	Rules    map[string]config.FieldRule
	patterns map[string]*regexp.Regexp
}

// NewExtractor compiles the rule patterns up front so a bad pattern fails at
// startup instead of on every product.
func NewExtractor(rules map[string]config.FieldRule) (*Extractor, error) {
	patterns := make(map[string]*regexp.Regexp)
	for name, rule := range rules {
		if rule.Pattern == "" {
			continue
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, eris.Wrapf(err, "extraction: field %s pattern", name)
		}
		patterns[name] = re
	}
	return &Extractor{Rules: rules, patterns: patterns}, nil
}

// Parse builds a document from rendered HTML.
func Parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, eris.Wrap(err, "extraction: parse html")
	}
	return doc, nil
}

// Extract evaluates every rule. A rule that matches nothing yields a nil
// value so the key is still present in the record.
func (e *Extractor) Extract(doc *goquery.Document) (map[string]any, error) {
	extracted := make(map[string]any, len(e.Rules))
	for name, rule := range e.Rules {
		values, err := Values(doc, rule)
		if err != nil {
			return nil, eris.Wrapf(err, "extraction: field %s", name)
		}

		if re := e.patterns[name]; re != nil {
			extracted[name] = firstMatch(re, values)
			continue
		}

		switch {
		case rule.Multiple && rule.Join != "":
			extracted[name] = strings.Join(values, rule.Join)
		case rule.Multiple:
			extracted[name] = values
		case len(values) > 0:
			extracted[name] = values[0]
		default:
			extracted[name] = nil
		}
	}
	return extracted, nil
}

// Values collects the trimmed text (or attribute) of every node the rule
// selects. A rule with neither selector nor XPath selects the whole document.
func Values(doc *goquery.Document, rule config.FieldRule) ([]string, error) {
	switch {
	case rule.XPath != "":
		return xpathValues(doc, rule)
	case rule.Selector != "":
		return selectionValues(doc.Find(rule.Selector), rule.Attr), nil
	default:
		html, err := doc.Html()
		if err != nil {
			return nil, eris.Wrap(err, "render document")
		}
		return []string{html}, nil
	}
}

func selectionValues(sel *goquery.Selection, attr string) []string {
	values := []string{}
	sel.Each(func(_ int, s *goquery.Selection) {
		var v string
		if attr != "" {
			var ok bool
			if v, ok = s.Attr(attr); !ok {
				return
			}
		} else {
			v = s.Text()
		}
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	})
	return values
}

func xpathValues(doc *goquery.Document, rule config.FieldRule) ([]string, error) {
	values := []string{}
	for _, root := range doc.Nodes {
		nodes, err := htmlquery.QueryAll(root, rule.XPath)
		if err != nil {
			return nil, eris.Wrapf(err, "xpath %q", rule.XPath)
		}
		for _, n := range nodes {
			var v string
			if rule.Attr != "" {
				v = htmlquery.SelectAttr(n, rule.Attr)
			} else {
				v = htmlquery.InnerText(n)
			}
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
	}
	return values, nil
}

func firstMatch(re *regexp.Regexp, values []string) any {
	for _, v := range values {
		if m := re.FindString(v); m != "" {
			return m
		}
	}
	return nil
}

// Texts returns the trimmed text of each selected element, empty ones
// included, so parallel columns stay aligned.
func Texts(sel *goquery.Selection) []string {
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}

// Attrs returns the attribute of each selected element that carries it.
func Attrs(sel *goquery.Selection, attr string) []string {
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(attr); ok {
			out = append(out, strings.TrimSpace(v))
		}
	})
	return out
}
