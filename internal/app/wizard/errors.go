package wizard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yigit/applicant-wizard/internal/domain"
	"github.com/yigit/applicant-wizard/internal/pkg/keycase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// summaryLimit is how many messages the consolidated summary shows
const summaryLimit = 3

// FieldErrors maps dotted field paths to their current message
type FieldErrors map[string]string

// Clone copies the map
func (fe FieldErrors) Clone() FieldErrors {
	out := make(FieldErrors, len(fe))
	for k, v := range fe {
		out[k] = v
	}
	return out
}

// Ordered returns the error paths in wizard order. Paths that are not part
// of the record (server errors on unknown fields) sort last.
func (fe FieldErrors) Ordered(r *domain.Record) []string {
	rank := make(map[string]int)
	for i, p := range RecordPaths(r) {
		rank[p.String()] = i
	}
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		ri, iok := rank[keys[i]]
		rj, jok := rank[keys[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Messages renders "<Field Name>: <message>" lines in wizard order
func (fe FieldErrors) Messages(r *domain.Record) []string {
	keys := fe.Ordered(r)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s: %s", Humanize(k), fe[k]))
	}
	return out
}

// Summarize joins the first three messages with "; " and appends "..."
// when more were left out.
func Summarize(messages []string) string {
	if len(messages) == 0 {
		return ""
	}
	n := len(messages)
	if n > summaryLimit {
		n = summaryLimit
	}
	s := strings.Join(messages[:n], "; ")
	if len(messages) > summaryLimit {
		s += "..."
	}
	return s
}

// Humanize turns a dotted path into a display name:
// educations.0.universityName -> Educations 0 University Name
func Humanize(path string) string {
	caser := cases.Title(language.English)
	segs := strings.Split(path, ".")
	for i, s := range segs {
		segs[i] = caser.String(strings.ReplaceAll(keycase.ToSnake(s), "_", " "))
	}
	return strings.Join(segs, " ")
}

// rekeyAfterRemove drops errors of the removed entry and shifts the errors
// of later entries down by one.
func rekeyAfterRemove(keys []string, kind domain.SectionKind, removed int) map[string]string {
	moves := make(map[string]string)
	for _, k := range keys {
		p, err := domain.ParsePath(k)
		if err != nil || p.Section != kind || p.Index < 0 {
			continue
		}
		switch {
		case p.Index == removed:
			moves[k] = ""
		case p.Index > removed:
			p.Index--
			moves[k] = p.String()
		}
	}
	return moves
}

func (fe FieldErrors) applyRemove(kind domain.SectionKind, removed int) {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	moved := make(FieldErrors)
	for from, to := range rekeyAfterRemove(keys, kind, removed) {
		if to != "" {
			moved[to] = fe[from]
		}
		delete(fe, from)
	}
	for k, v := range moved {
		fe[k] = v
	}
}
