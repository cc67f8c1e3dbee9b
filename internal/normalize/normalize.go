package normalize

import (
	"strings"

	"github.com/samber/lo"

	"GrantRadar/internal/domain"
)

// Item projects a raw source-specific record onto the canonical shape:
// url becomes link, published_at becomes date, and the matched keywords
// are attached. It is a pure mapping: missing fields degrade to empty
// strings or an empty list, never to an error.
func Item(raw domain.RawItem, keywords []string) domain.NormalizedItem {
	if keywords == nil {
		keywords = []string{}
	}

	return domain.NormalizedItem{
		Source:     strings.TrimSpace(raw.Source),
		SourceID:   strings.TrimSpace(raw.SourceID),
		Title:      strings.TrimSpace(raw.Title),
		Link:       strings.TrimSpace(raw.URL),
		Date:       strings.TrimSpace(raw.PublishedAt),
		ApplyStart: strings.TrimSpace(raw.ApplyStart),
		ApplyEnd:   strings.TrimSpace(raw.ApplyEnd),
		Summary:    strings.TrimSpace(raw.Summary),
		Content:    strings.TrimSpace(raw.Content),
		Keywords:   lo.Uniq(keywords),
	}
}
