package soap

import (
	"github.com/beevik/etree"
)

// Fault is a generic SOAP fault. When present in a response it always
// wins over structural-mismatch errors.
type Fault struct {
	Code    string
	Message string
}

// ParseFault scans a response body for a SOAP Fault element. Namespace
// prefixes vary between AFIP services, so matching is by local name.
func ParseFault(body []byte) (*Fault, bool) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, false
	}
	root := doc.Root()
	if root == nil {
		return nil, false
	}
	elem := findLocal(root, "Fault")
	if elem == nil {
		return nil, false
	}
	fault := &Fault{}
	if code := findLocal(elem, "faultcode"); code != nil {
		fault.Code = code.Text()
	}
	if msg := findLocal(elem, "faultstring"); msg != nil {
		fault.Message = msg.Text()
	}
	return fault, true
}

// findLocal walks the tree depth-first for the first element whose
// local name matches tag, ignoring namespace prefixes.
func findLocal(e *etree.Element, tag string) *etree.Element {
	if e.Tag == tag {
		return e
	}
	for _, child := range e.ChildElements() {
		if found := findLocal(child, tag); found != nil {
			return found
		}
	}
	return nil
}

// FindLocal exposes prefix-agnostic element lookup for the service
// codecs.
func FindLocal(e *etree.Element, tag string) *etree.Element {
	return findLocal(e, tag)
}

// FindAllLocal collects every descendant with the given local name, in
// document order. Use it instead of assuming single-vs-collection arity
// on remote responses.
func FindAllLocal(e *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	if e.Tag == tag {
		out = append(out, e)
	}
	for _, child := range e.ChildElements() {
		out = append(out, FindAllLocal(child, tag)...)
	}
	return out
}

// Text returns the trimmed text of the first descendant with the given
// local name, or empty.
func Text(e *etree.Element, tag string) string {
	if found := findLocal(e, tag); found != nil {
		return found.Text()
	}
	return ""
}
