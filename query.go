package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
	"gorm.io/gorm"
)

var andSeparator = regexp.MustCompile(`(?i)\s+AND\s+`)

// Condition is one clause of a question query: the column must contain a
// substring at least Similarity alike to Search.
type Condition struct {
	Column     string  `json:"column"`
	Search     string  `json:"search"`
	Similarity float64 `json:"similarity"`
}

// ParseQuery reads queries of the form
//
//	text=trophic level, similarity=0.9 AND subject_code=0610
//
// Similarity defaults to 1, an exact substring match.
func ParseQuery(input string) ([]Condition, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty query")
	}

	var conds []Condition
	for _, clause := range andSeparator.Split(input, -1) {
		parts := strings.Split(clause, ",")
		col, search, ok := strings.Cut(parts[0], "=")
		if !ok {
			return nil, fmt.Errorf("clause %q must look like column=value", clause)
		}
		cond := Condition{
			Column:     strings.ToLower(strings.TrimSpace(col)),
			Search:     normalizeSearch(search),
			Similarity: 1,
		}
		if cond.Search == "" {
			return nil, fmt.Errorf("clause %q has an empty value", clause)
		}
		if _, ok := (QuestionRecord{}).Column(cond.Column); !ok {
			return nil, fmt.Errorf("unknown column %q", cond.Column)
		}
		if len(parts) > 1 {
			key, val, ok := strings.Cut(parts[1], "=")
			if !ok || !strings.EqualFold(strings.TrimSpace(key), "similarity") {
				return nil, fmt.Errorf("clause %q: expected similarity=<0..1>", clause)
			}
			sim, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
			if err != nil || sim < 0 || sim > 1 {
				return nil, fmt.Errorf("clause %q: similarity must be between 0 and 1", clause)
			}
			cond.Similarity = sim
		}
		conds = append(conds, cond)
	}
	return conds, nil
}

// normalizeSearch upper-cases s and drops all whitespace.
func normalizeSearch(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, s)
}

// bestSimilarity slides a window the length of search over value and
// returns the highest Ratcliff/Obershelp ratio. Windows whose first
// character differs from the search are skipped.
func bestSimilarity(value, search string) float64 {
	v, s := chars(normalizeSearch(value)), chars(search)
	if len(s) == 0 {
		return 0
	}
	best := 0.0
	for i := 0; i+len(s) <= len(v); i++ {
		if v[i] != s[0] {
			continue
		}
		ratio := difflib.NewMatcher(v[i:i+len(s)], s).Ratio()
		if ratio > best {
			best = ratio
			if best == 1 {
				break
			}
		}
	}
	return best
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// Matches reports whether r satisfies every condition.
func (r QuestionRecord) Matches(conds []Condition) bool {
	for _, c := range conds {
		value, ok := r.Column(c.Column)
		if !ok || bestSimilarity(value, c.Search) < c.Similarity {
			return false
		}
	}
	return true
}

// QueryQuestions returns the records matching every condition.
func QueryQuestions(db *gorm.DB, conds []Condition) ([]QuestionRecord, error) {
	records, err := GetAllQuestions(db)
	if err != nil {
		return nil, err
	}
	var out []QuestionRecord
	for _, r := range records {
		if r.Matches(conds) {
			out = append(out, r)
		}
	}
	log.Infof("%d matching questions were found", len(out))
	return out, nil
}
