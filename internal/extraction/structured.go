package extraction

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// StructuredData decodes the JSON script blocks matching selector. Arrays and
// JSON-LD @graph containers are flattened into their member objects.
func StructuredData(doc *goquery.Document, selector string) ([]map[string]any, error) {
	var objects []map[string]any
	var decodeErr error

	doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		body := strings.TrimSpace(s.Text())
		if body == "" {
			return true
		}
		var v any
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			decodeErr = eris.Wrapf(err, "extraction: decode structured data block %d", i)
			return false
		}
		objects = appendObjects(objects, v)
		return true
	})

	if decodeErr != nil {
		return nil, decodeErr
	}
	return objects, nil
}

func appendObjects(dst []map[string]any, v any) []map[string]any {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			dst = appendObjects(dst, item)
		}
	case map[string]any:
		if graph, ok := t["@graph"].([]any); ok {
			return appendObjects(dst, graph)
		}
		dst = append(dst, t)
	}
	return dst
}

// FindType returns the first object whose @type equals typ. An empty typ
// matches the first object.
func FindType(objects []map[string]any, typ string) (map[string]any, bool) {
	for _, obj := range objects {
		if typ == "" || hasType(obj["@type"], typ) {
			return obj, true
		}
	}
	return nil, false
}

func hasType(v any, typ string) bool {
	switch t := v.(type) {
	case string:
		return t == typ
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == typ {
				return true
			}
		}
	}
	return false
}

// Resolve turns href into an absolute URL against base.
func Resolve(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", eris.Wrapf(err, "extraction: parse href %q", href)
	}
	return base.ResolveReference(ref).String(), nil
}

// LastSegment returns the last non-empty path segment of a URL, without
// query or fragment.
func LastSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	p := rawURL
	if err == nil {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}
