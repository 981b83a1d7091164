package preprocessor

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

type match struct {
	start, end  int
	replacement string
}

// ReplaceAll replaces the first count matches of re in s (every match when
// count <= 0) by replacement, where $1, ${name}, $& and $$ expand as in
// regexp2. Each match goes through ReplaceString, so labels and contexts
// follow the edits.
func (p *Preprocessor) ReplaceAll(s string, re *regexp2.Regexp, replacement string, count int) (string, error) {
	var matches []match

	// regexp2 indexes runes
	offsets := make([]int, 0, len(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(s))

	m, err := re.FindStringMatch(s)
	for m != nil && err == nil {
		matches = append(matches, match{
			start:       offsets[m.Index],
			end:         offsets[m.Index+m.Length],
			replacement: ExpandReplacement(m, replacement),
		})
		if count > 0 && len(matches) == count {
			break
		}
		m, err = re.FindNextMatch(m)
	}
	if err != nil {
		return "", err
	}

	for i := len(matches) - 1; i >= 0; i-- {
		s, _ = p.ReplaceString(matches[i].start, matches[i].end, s, matches[i].replacement, nil)
	}

	return s, nil
}

// ExpandReplacement substitutes the groups of m in template: $n and ${n}
// by number, ${name} by name, $& (or $0) by the whole match and $$ by a
// dollar. A $ that does not start a valid reference is kept as written.
func ExpandReplacement(m *regexp2.Match, template string) string {
	if !strings.Contains(template, "$") {
		return template
	}

	var b strings.Builder
	for {
		i := strings.IndexByte(template, '$')
		if i == -1 || i == len(template)-1 {
			b.WriteString(template)
			return b.String()
		}
		b.WriteString(template[:i])
		template = template[i+1:]

		switch c := template[0]; {
		case c == '$':
			b.WriteByte('$')
			template = template[1:]
		case c == '&':
			b.WriteString(m.String())
			template = template[1:]
		case c == '{':
			end := strings.IndexByte(template, '}')
			if end == -1 {
				b.WriteByte('$')
				continue
			}
			name := template[1:end]
			group := m.GroupByName(name)
			if n, err := strconv.Atoi(name); err == nil {
				group = m.GroupByNumber(n)
			}
			if group == nil {
				b.WriteByte('$')
				continue
			}
			b.WriteString(group.String())
			template = template[end+1:]
		case c >= '0' && c <= '9':
			digits := len(template) - len(strings.TrimLeft(template, "0123456789"))
			// longest prefix naming an existing group
			for ; digits > 0; digits-- {
				n, _ := strconv.Atoi(template[:digits])
				if group := m.GroupByNumber(n); group != nil {
					b.WriteString(group.String())
					break
				}
			}
			if digits == 0 {
				b.WriteByte('$')
				continue
			}
			template = template[digits:]
		default:
			b.WriteByte('$')
		}
	}
}
