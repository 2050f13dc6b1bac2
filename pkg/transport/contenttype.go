package transport

import (
	"errors"
	"fmt"
	"strings"

	"github.com/elnormous/contenttype"
)

// ErrNotJSON is returned by Response.JSON when the server declared a
// markup content type, typically an HTML error or login page.
var ErrNotJSON = errors.New("response is not JSON")

// Category is a broad content-type classification.
type Category string

const (
	JSON    Category = "json"
	HTML    Category = "html"
	XML     Category = "xml"
	Text    Category = "text"
	Unknown Category = "unknown"
)

// Classify returns the broad category of a Content-Type header value.
// Parameters (charset and the like) are ignored; malformed values are
// matched as lowercase text.
func Classify(contentType string) Category {
	if contentType == "" {
		return Unknown
	}

	var mediaType string
	// NewMediaType returns the zero value for malformed input.
	if mt := contenttype.NewMediaType(contentType); mt.Type != "" {
		mediaType = strings.ToLower(mt.Type + "/" + mt.Subtype)
	} else {
		head, _, _ := strings.Cut(contentType, ";")
		mediaType = strings.ToLower(strings.TrimSpace(head))
	}

	switch {
	case strings.Contains(mediaType, "json"):
		return JSON
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		return HTML
	case strings.Contains(mediaType, "xml"):
		return XML
	case strings.HasPrefix(mediaType, "text/"):
		return Text
	}
	return Unknown
}

// checkDecodable rejects bodies whose declared type can never be JSON.
// Plain text and undeclared types are still attempted.
func checkDecodable(contentType string) error {
	switch c := Classify(contentType); c {
	case HTML, XML:
		return fmt.Errorf("%w: content type %s", ErrNotJSON, c)
	}
	return nil
}
