package loader

import (
	"fmt"
	"net/url"
	"strings"
)

// PathTemplate addresses frames as {base}/{style}/{word}/v{variant}/{NN}.{ext}
// with NN the 1-based, zero-padded frame number.
type PathTemplate struct {
	Base string
	Ext  string
}

func (t PathTemplate) Path(style, word string, variant, frame int) string {
	ext := strings.TrimPrefix(t.Ext, ".")
	if ext == "" {
		ext = "jpg"
	}
	rel := fmt.Sprintf("%s/%s/v%d/%02d.%s", url.PathEscape(style), url.PathEscape(word), variant, frame, ext)
	base := strings.TrimRight(t.Base, "/")
	if base == "" {
		return rel
	}
	return base + "/" + rel
}
