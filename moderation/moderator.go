// Package moderation censors blacklisted words in message bodies
// before they are routed. Matching is accent/leet tolerant: the text
// is normalized for the search but the replacement happens on the
// original runes, so spacing and length are preserved.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

// NewModerator builds the Aho-Corasick automaton over the normalized
// word list. An empty list is rejected by the loader, not here.
func NewModerator(words []string, replacement rune) (*Moderator, error) {
	patterns := make([][]rune, len(words))
	for i, w := range words {
		patterns[i] = normalize([]rune(w), nil)
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, replacement: replacement}, nil
}

// Censor replaces every blacklisted span in body with the replacement
// rune and returns the censored text together with the matched words.
// A clean body comes back unchanged with no matches.
func (m *Moderator) Censor(body string) (string, []string) {
	orig := []rune(body)
	var origIdx []int
	norm := normalize(orig, func(i int) { origIdx = append(origIdx, i) })
	if len(norm) == 0 {
		return body, nil
	}

	spans := m.matcher.MultiPatternSearch(norm, false)
	if len(spans) == 0 {
		return body, nil
	}

	var found []string
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		found = append(found, string(span.Word))
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			orig[i] = m.replacement
		}
	}
	return string(orig), found
}

// normalize lowercases, undoes common leet substitutions and strips
// punctuation/whitespace. onKeep, when set, receives the original
// index of every rune that survives.
func normalize(in []rune, onKeep func(i int)) []rune {
	out := make([]rune, 0, len(in))
	for i, r := range in {
		r = unleet(r)
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		out = append(out, unicode.ToLower(r))
		if onKeep != nil {
			onKeep(i)
		}
	}
	return out
}

func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
