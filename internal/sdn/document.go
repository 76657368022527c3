// Package sdn parses the OFAC SDN Advanced XML list and flattens its
// cross-referenced graph into one denormalized record per sanctioned party.
package sdn

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// element is a minimal in-memory DOM node. Tags and attribute names are local
// names only; namespace prefixes are dropped during decoding, so lookups never
// need to care about them.
type element struct {
	tag      string
	attrs    map[string]string
	text     string
	children []*element
}

// attr returns the named attribute, or "" when absent.
func (e *element) attr(name string) string {
	return e.attrs[name]
}

// trimmed returns the element's own character data with surrounding
// whitespace removed.
func (e *element) trimmed() string {
	return strings.TrimSpace(e.text)
}

// find returns the first direct child with the given local tag, or nil.
func (e *element) find(tag string) *element {
	for _, c := range e.children {
		if c.tag == tag {
			return c
		}
	}
	return nil
}

// findText returns the trimmed text of the first direct child with the given
// tag, or "" when no such child exists.
func (e *element) findText(tag string) string {
	if c := e.find(tag); c != nil {
		return c.trimmed()
	}
	return ""
}

// all returns every direct child with the given local tag, in document order.
func (e *element) all(tag string) []*element {
	var out []*element
	for _, c := range e.children {
		if c.tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// decodeDocument builds the element tree for a whole XML document. Documents
// declaring a non-UTF-8 charset are transcoded through htmlindex.
func decodeDocument(data []byte) (*element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "sdn: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	var (
		root  *element
		stack []*element
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{tag: t.Name.Local}
			if len(t.Attr) > 0 {
				el.attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					el.attrs[a.Name.Local] = a.Value
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, eris.New("junk after document element")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.text += string(t)
			}
		}
	}

	if root == nil {
		return nil, eris.New("no root element")
	}
	return root, nil
}
