package service

import (
	"cmp"
	"fmt"
	"html"
	"slices"
	"strings"
	"unicode/utf16"

	message "github.com/reshetovitsme/tgfeed/internal/modules/message/domain"
)

// formatText renders message text with its formatting entities as HTML.
// Entity offsets count UTF-16 code units; the text itself is escaped.
func formatText(text string, entities []message.Entity) string {
	if len(entities) == 0 {
		return html.EscapeString(text)
	}

	units := utf16.Encode([]rune(text))
	n := len(units)

	sorted := slices.Clone(entities)
	slices.SortStableFunc(sorted, func(a, b message.Entity) int {
		if c := cmp.Compare(a.Offset, b.Offset); c != 0 {
			return c
		}
		return cmp.Compare(b.Length, a.Length)
	})

	opens := make(map[int][]message.Entity)
	closes := make(map[int][]message.Entity)
	for _, e := range sorted {
		start := min(max(e.Offset, 0), n)
		end := min(start+max(e.Length, 0), n)
		if start == end {
			continue
		}
		e.Offset, e.Length = start, end-start
		opens[start] = append(opens[start], e)
		closes[end] = append(closes[end], e)
	}

	var b strings.Builder
	for i := 0; i <= n; {
		ending := closes[i]
		for j := len(ending) - 1; j >= 0; j-- {
			b.WriteString(closeTag(ending[j]))
		}
		for _, e := range opens[i] {
			b.WriteString(openTag(e, string(utf16.Decode(units[e.Offset:e.Offset+e.Length]))))
		}
		if i == n {
			break
		}

		// surrogate pairs are written as one rune
		step := 1
		r := rune(units[i])
		if utf16.IsSurrogate(r) && i+1 < n {
			r = utf16.DecodeRune(r, rune(units[i+1]))
			step = 2
		}
		b.WriteString(html.EscapeString(string(r)))
		i += step
	}

	return b.String()
}

func openTag(e message.Entity, covered string) string {
	switch e.Kind {
	case message.EntityBold:
		return "<strong>"
	case message.EntityItalic:
		return "<em>"
	case message.EntityUnderline:
		return "<u>"
	case message.EntityStrike:
		return "<del>"
	case message.EntityCode:
		return "<code>"
	case message.EntityPre:
		if e.Language != "" {
			return fmt.Sprintf(`<pre><code class="language-%s">`, html.EscapeString(e.Language))
		}
		return "<pre>"
	case message.EntityTextURL:
		return fmt.Sprintf(`<a href="%s">`, html.EscapeString(e.URL))
	case message.EntityURL:
		return fmt.Sprintf(`<a href="%s">`, html.EscapeString(covered))
	case message.EntityEmail:
		return fmt.Sprintf(`<a href="mailto:%s">`, html.EscapeString(covered))
	case message.EntityMention:
		return fmt.Sprintf(`<a href="https://t.me/%s">`, html.EscapeString(strings.TrimPrefix(covered, "@")))
	case message.EntityMentionName:
		return fmt.Sprintf(`<a href="tg://user?id=%d">`, e.UserID)
	case message.EntitySpoiler:
		return `<span class="tg-spoiler">`
	case message.EntityBlockquote:
		return "<blockquote>"
	default:
		return ""
	}
}

func closeTag(e message.Entity) string {
	switch e.Kind {
	case message.EntityBold:
		return "</strong>"
	case message.EntityItalic:
		return "</em>"
	case message.EntityUnderline:
		return "</u>"
	case message.EntityStrike:
		return "</del>"
	case message.EntityCode:
		return "</code>"
	case message.EntityPre:
		if e.Language != "" {
			return "</code></pre>"
		}
		return "</pre>"
	case message.EntityTextURL, message.EntityURL, message.EntityEmail, message.EntityMention, message.EntityMentionName:
		return "</a>"
	case message.EntitySpoiler:
		return "</span>"
	case message.EntityBlockquote:
		return "</blockquote>"
	default:
		return ""
	}
}
