package match

import (
	"sort"
	"strings"

	"github.com/sells-group/sanctions-cli/internal/sdn"
)

// Hit is one screened name that qualified as a candidate. MatchedName is the
// corpus name that matched; PrimaryName is that entry's primary full name,
// which may differ when the hit came in through an alias.
type Hit struct {
	EntryID          int      `json:"sdn_entry_id"`
	SDNType          string   `json:"sdn_type,omitempty"`
	PrimaryName      string   `json:"primary_name,omitempty"`
	MatchedName      string   `json:"matched_name"`
	Score            int      `json:"match_score"`
	Distance         int      `json:"edit_distance"`
	Programs         []string `json:"programs"`
	LegalAuthorities []string `json:"legal_authorities"`
	DatesOfBirth     []string `json:"dates_of_birth"`
	Nationalities    []string `json:"nationalities"`
}

// Match scores, strongest first.
const (
	ScoreExact     = 1 // case-folded equality
	ScoreNear      = 2 // edit distance <= 2
	ScoreThreshold = 3 // edit distance <= caller threshold
	ScorePhonetic  = 4 // Soundex keys equal
)

// nameRow is one pre-folded corpus name pointing back at its party.
type nameRow struct {
	party  *sdn.Party
	name   string
	folded string
	key    string
}

// Matcher screens names against an immutable snapshot of the flattened list.
// Build a new one after each sync; Screen is safe for concurrent use.
type Matcher struct {
	rows    []nameRow
	entries int
}

// New indexes every primary name and alias of the given parties. The parties
// slice is retained; callers must not mutate it afterwards.
func New(parties []sdn.Party) *Matcher {
	m := &Matcher{entries: len(parties)}
	for i := range parties {
		p := &parties[i]
		if p.PrimaryName != nil && p.PrimaryName.FullName != "" {
			m.add(p, p.PrimaryName.FullName)
		}
		for _, a := range p.Aliases {
			if a.FullName != "" {
				m.add(p, a.FullName)
			}
		}
	}
	return m
}

func (m *Matcher) add(p *sdn.Party, name string) {
	m.rows = append(m.rows, nameRow{
		party:  p,
		name:   name,
		folded: strings.ToLower(name),
		key:    Soundex(name),
	})
}

// Names reports how many corpus names are indexed.
func (m *Matcher) Names() int { return len(m.rows) }

// Entries reports how many parties the index was built from.
func (m *Matcher) Entries() int { return m.entries }

// Screen scores every indexed name against the query and returns the
// candidates (score <= 4) ordered by score, then edit distance, then corpus
// position, capped at limit. Expected ranges: threshold in [0,10], limit in
// [1,100]; the edit distance and Soundex comparisons fold case.
func (m *Matcher) Screen(name string, threshold, limit int) []Hit {
	folded := strings.ToLower(name)
	key := Soundex(name)

	var hits []Hit
	for i := range m.rows {
		r := &m.rows[i]
		dist := Distance(r.folded, folded)

		score := 5
		switch {
		case r.folded == folded:
			score = ScoreExact
		case dist <= 2:
			score = ScoreNear
		case dist <= threshold:
			score = ScoreThreshold
		case r.key == key:
			score = ScorePhonetic
		}
		if score > ScorePhonetic {
			continue
		}

		primary := ""
		if r.party.PrimaryName != nil {
			primary = r.party.PrimaryName.FullName
		}
		hits = append(hits, Hit{
			EntryID:          r.party.SDNEntryID,
			SDNType:          r.party.SDNType,
			PrimaryName:      primary,
			MatchedName:      r.name,
			Score:            score,
			Distance:         dist,
			Programs:         r.party.Programs,
			LegalAuthorities: r.party.LegalAuthorities,
			DatesOfBirth:     r.party.DatesOfBirth,
			Nationalities:    r.party.Nationalities,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score < hits[j].Score
		}
		return hits[i].Distance < hits[j].Distance
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}
