package feed

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// Validate inspects a rendered feed and returns human readable warnings.
// An empty result means the document looks like a usable podcast feed.
func Validate(doc []byte) []string {
	var warnings []string

	if !bytes.HasPrefix(bytes.TrimSpace(doc), []byte("<?xml")) {
		warnings = append(warnings, "missing XML declaration")
	}

	seen := map[string]bool{}
	var rootSeen bool
	var itunesNS bool

	decoder := xml.NewDecoder(bytes.NewReader(doc))
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			warnings = append(warnings, "malformed XML: "+err.Error())
			break
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !rootSeen {
			rootSeen = true
			if start.Name.Local != "rss" {
				warnings = append(warnings, "root element is not <rss>")
			}
			for _, attr := range start.Attr {
				if strings.Contains(attr.Value, "itunes.com/dtds/podcast") {
					itunesNS = true
				}
			}
		}
		seen[start.Name.Local] = true
	}

	if !itunesNS {
		warnings = append(warnings, "missing iTunes namespace")
	}
	for _, required := range []string{"channel", "title", "link", "description"} {
		if !seen[required] {
			warnings = append(warnings, "missing <"+required+"> element")
		}
	}
	return warnings
}
