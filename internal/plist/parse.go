package plist

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// ErrMalformed is returned when the input is not a well-formed plist whose
// top-level value is a dict.
var ErrMalformed = errors.New("malformed plist")

// scalar element names. <key> is handled separately.
var scalars = map[string]bool{
	"string":  true,
	"integer": true,
	"real":    true,
	"date":    true,
	"data":    true,
	"true":    true,
	"false":   true,
}

// container is the dict or array currently being filled.
type container interface {
	addValue(element, text string)
}

// Parse reads a property list document. Only the top-level dict is kept;
// any other top-level value is ErrMalformed.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	doc := &Document{}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "plist":
			for _, attr := range start.Attr {
				if attr.Name.Local == "version" {
					doc.Version = attr.Value
				}
			}
		case "dict":
			if doc.Root != nil {
				return nil, fmt.Errorf("%w: more than one top-level dict", ErrMalformed)
			}
			root := &Dict{}
			if err := parseDict(dec, root); err != nil {
				return nil, err
			}
			doc.Root = root
		default:
			return nil, fmt.Errorf("%w: unexpected top-level <%s>", ErrMalformed, start.Name.Local)
		}
	}

	if doc.Root == nil {
		return nil, fmt.Errorf("%w: no top-level dict", ErrMalformed)
	}
	return doc, nil
}

// parseDict consumes tokens up to and including </dict>.
func parseDict(dec *xml.Decoder, d *Dict) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: inside dict: %w", ErrMalformed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			switch {
			case name == "key":
				text, err := readText(dec, name)
				if err != nil {
					return err
				}
				d.Keys = append(d.Keys, text)
			case name == "dict":
				child := &Dict{}
				if err := parseDict(dec, child); err != nil {
					return err
				}
				d.Dicts = append(d.Dicts, child)
			case name == "array":
				child := &Array{}
				if err := parseArray(dec, child); err != nil {
					return err
				}
				d.Arrays = append(d.Arrays, child)
			case scalars[name]:
				if err := readScalar(dec, name, d); err != nil {
					return err
				}
			default:
				return fmt.Errorf("%w: unexpected <%s> in dict", ErrMalformed, name)
			}
		case xml.EndElement:
			return nil
		}
	}
}

// parseArray consumes tokens up to and including </array>.
func parseArray(dec *xml.Decoder, a *Array) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: inside array: %w", ErrMalformed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			switch {
			case name == "dict":
				child := &Dict{}
				if err := parseDict(dec, child); err != nil {
					return err
				}
				a.Dicts = append(a.Dicts, child)
			case name == "array":
				child := &Array{}
				if err := parseArray(dec, child); err != nil {
					return err
				}
				a.Arrays = append(a.Arrays, child)
			case scalars[name]:
				if err := readScalar(dec, name, a); err != nil {
					return err
				}
			default:
				return fmt.Errorf("%w: unexpected <%s> in array", ErrMalformed, name)
			}
		case xml.EndElement:
			return nil
		}
	}
}

func readScalar(dec *xml.Decoder, name string, c container) error {
	text, err := readText(dec, name)
	if err != nil {
		return err
	}
	if name == "data" {
		// Base64 payloads are wrapped across lines.
		text = strings.Join(strings.Fields(text), "")
	}
	c.addValue(name, text)
	return nil
}

// readText collects character data up to the end of the current element.
func readText(dec *xml.Decoder, name string) (string, error) {
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("%w: inside <%s>: %w", ErrMalformed, name, err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			return "", fmt.Errorf("%w: unexpected <%s> inside <%s>", ErrMalformed, t.Name.Local, name)
		case xml.EndElement:
			return b.String(), nil
		}
	}
}
