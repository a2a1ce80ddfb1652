package backup

import (
	"strings"

	"github.com/debemdeboas/mdwidget/internal/dom"
)

// KeyPrefix starts every derived storage key.
const KeyPrefix = "mdwidget"

// DeriveKey computes the storage key of an editor. An explicit id wins,
// then the anchor id, then the anchor's tag, classes and full attribute list.
// Two anchors with identical markup on the same path share a key.
func DeriveKey(id, path string, anchor *dom.Element) string {
	if id != "" {
		return id
	}

	if anchor.ID != "" {
		return KeyPrefix + path + "#" + anchor.ID
	}

	attrs := anchor.Attributes()
	pairs := make([]string, 0, len(attrs))
	for _, a := range attrs {
		pairs = append(pairs, a.Name+"="+a.Value)
	}

	var b strings.Builder
	b.WriteString(KeyPrefix)
	b.WriteString(path)
	b.WriteString("<" + anchor.TagName + ">.")
	b.WriteString(anchor.ClassName())
	b.WriteString("[" + strings.Join(pairs, ";") + "]")
	return b.String()
}
