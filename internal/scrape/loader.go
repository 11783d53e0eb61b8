// Package scrape turns saved marketplace listing pages into raw listing
// records. It is the ingest side of the pipeline: pages are scraped and
// saved elsewhere; this package only parses what is on disk.
package scrape

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// sniffLimit bounds how far into the document we look for a charset
// declaration. Meta tags live in <head>; 4KB is plenty.
const sniffLimit = 4096

// LoadFile reads one saved HTML page and parses it into a document.
//
// Marketplace mirrors are not always UTF-8: Turkish listing pages commonly
// declare windows-1254 or ISO-8859-9. The declared charset is honored so
// color and seller names survive with their diacritics intact.
func LoadFile(path string) (*goquery.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}

	var r io.Reader = bytes.NewReader(raw)
	if enc := sniffEncoding(raw); enc != nil {
		r = transform.NewReader(r, enc.NewDecoder())
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", path, err)
	}
	return doc, nil
}

// sniffEncoding inspects the head of the document for a charset
// declaration. Returns nil for UTF-8 and unknown charsets (parse as-is).
func sniffEncoding(raw []byte) encoding.Encoding {
	head := raw
	if len(head) > sniffLimit {
		head = head[:sniffLimit]
	}
	lower := strings.ToLower(string(head))

	switch {
	case strings.Contains(lower, "charset=windows-1254"):
		return charmap.Windows1254
	case strings.Contains(lower, "charset=iso-8859-9"):
		return charmap.ISO8859_9
	case strings.Contains(lower, "charset=iso-8859-1"):
		return charmap.ISO8859_1
	default:
		return nil
	}
}
