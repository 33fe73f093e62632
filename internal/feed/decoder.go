package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// Record is one loosely-typed feed record. Element names are lowercased and
// every child is held as a []any regardless of whether the document carried
// one element or many, so callers never branch on cardinality. List entries
// are either string (text leaf) or a nested Record.
type Record = map[string]any

// DecodeError reports a malformed feed document. It aborts the fetch cycle
// for that feed, never the process.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("feed decode: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeRecords parses a feed document and returns its property records.
// The upstream feeds have drifted between several roots over time
// (<kyero>, <root>, <properties>, and a nested <properties> wrapper), so
// all of them are accepted.
func DecodeRecords(data []byte) ([]Record, error) {
	rootName, tree, err := decodeTree(data)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}

	if rootName == "property" {
		if rec, ok := tree.(Record); ok {
			return []Record{rec}, nil
		}
		return nil, nil
	}

	root, ok := tree.(Record)
	if !ok {
		return nil, nil
	}

	items := childList(root, "property")
	if items == nil {
		// one wrapper deeper, e.g. <kyero><properties><property>
		if wrapper := firstChild(root, "properties"); wrapper != nil {
			items = childList(wrapper, "property")
		}
	}

	var records []Record
	for _, item := range items {
		if rec, ok := item.(Record); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// decodeTree walks the document tokens into the generic representation.
func decodeTree(data []byte) (string, any, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.CharsetReader = charset.NewReaderLabel

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return "", nil, fmt.Errorf("document has no root element")
		}
		if err != nil {
			return "", nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			tree, err := decodeElement(decoder, start)
			if err != nil {
				return "", nil, err
			}
			return strings.ToLower(start.Name.Local), tree, nil
		}
	}
}

// decodeElement consumes tokens up to the matching end element. Elements
// with children become a Record; pure text elements become their trimmed
// text.
func decodeElement(decoder *xml.Decoder, start xml.StartElement) (any, error) {
	children := Record{}
	var text strings.Builder

	for {
		tok, err := decoder.Token()
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeElement(decoder, t)
			if err != nil {
				return nil, err
			}
			key := strings.ToLower(t.Name.Local)
			existing, _ := children[key].([]any)
			children[key] = append(existing, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if len(children) > 0 {
				return children, nil
			}
			return strings.TrimSpace(text.String()), nil
		}
	}
}

func childList(rec Record, key string) []any {
	items, _ := rec[key].([]any)
	return items
}

func firstChild(rec Record, key string) Record {
	items := childList(rec, key)
	if len(items) == 0 {
		return nil
	}
	child, _ := items[0].(Record)
	return child
}
