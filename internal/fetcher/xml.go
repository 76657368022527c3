package fetcher

import (
	"bytes"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// xmlSniffLen is how many lead bytes are inspected before a download is
// accepted as XML.
const xmlSniffLen = 200

// SniffXML checks that a body looks like an XML document before committing
// to a full read. It fails on an empty body and when no '<' appears in the
// first 200 bytes. The returned reader replays the inspected prefix.
func SniffXML(r io.Reader) (io.Reader, error) {
	head := make([]byte, xmlSniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, eris.Wrap(err, "xml: read lead bytes")
	}
	head = head[:n]

	if n == 0 {
		return nil, eris.New("xml: empty response body")
	}
	if !bytes.ContainsRune(head, '<') {
		return nil, eris.Errorf("xml: body does not look like XML: %q", string(head))
	}

	return io.MultiReader(bytes.NewReader(head), r), nil
}

// looksLikeXMLContentType reports whether a Content-Type header is plausible
// for an XML payload. OFAC serves the list as application/octet-stream from
// its S3 mirror, so that is accepted too.
func looksLikeXMLContentType(ct string) bool {
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "xml") || strings.Contains(ct, "octet-stream")
}
