package release

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// numberRegex extracts sequence numbers from titles (e.g., "2", "3")
var numberRegex = regexp.MustCompile(`\b(\d+)\b`)

// scoreEpsilon is the distance under which two scores count as tied.
const scoreEpsilon = 1e-6

// MatchConfidence represents the confidence level of a title match.
type MatchConfidence int

const (
	ConfidenceNone   MatchConfidence = iota // Score < 0.70
	ConfidenceLow                           // Score >= 0.70
	ConfidenceMedium                        // Score >= 0.85
	ConfidenceHigh                          // Score >= 0.95
)

func (c MatchConfidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "none"
	}
}

// ConfidenceFor maps a similarity score to a confidence level.
func ConfidenceFor(score float64) MatchConfidence {
	switch {
	case score >= 0.95:
		return ConfidenceHigh
	case score >= 0.85:
		return ConfidenceMedium
	case score >= 0.70:
		return ConfidenceLow
	default:
		return ConfidenceNone
	}
}

// Ranked is one scored candidate title.
type Ranked struct {
	Index  int     // Position in the candidate slice passed to Rank
	Title  string  // Candidate title as given
	Score  float64 // Similarity in [0, 1]
	Prefix bool    // Normalized candidate is a prefix of the normalized query
}

// Similarity scores two titles after normalization.
// Uses Jaro-Winkler similarity, which favors shared prefixes, adjusted for
// sequence numbers so "Witcher 3" does not match "Witcher 2".
func Similarity(a, b string) float64 {
	na, nb := CleanTitle(a), CleanTitle(b)
	return similarityNormalized(na, nb, extractNumbers(na))
}

func similarityNormalized(query, candidate string, queryNumbers []string) float64 {
	if query == "" || candidate == "" {
		return 0
	}
	if query == candidate {
		return 1
	}
	score := float64(edlib.JaroWinklerSimilarity(query, candidate))
	return adjustScoreForNumbers(score, queryNumbers, extractNumbers(candidate))
}

// Rank scores every candidate against query and returns those scoring at
// least minScore, best first. Ties prefer candidates whose normalized title
// is a prefix of the normalized query, then the shorter title, then the
// lexically smaller one.
func Rank(query string, candidates []string, minScore float64) []Ranked {
	normalizedQuery := CleanTitle(query)
	if normalizedQuery == "" {
		return nil
	}
	queryNumbers := extractNumbers(normalizedQuery)

	var ranked []Ranked
	for i, candidate := range candidates {
		normalized := CleanTitle(candidate)
		score := similarityNormalized(normalizedQuery, normalized, queryNumbers)
		if score < minScore {
			continue
		}
		ranked = append(ranked, Ranked{
			Index:  i,
			Title:  candidate,
			Score:  score,
			Prefix: normalized != "" && isWordPrefix(normalizedQuery, normalized),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if math.Abs(a.Score-b.Score) > scoreEpsilon {
			return a.Score > b.Score
		}
		if a.Prefix != b.Prefix {
			return a.Prefix
		}
		if len(a.Title) != len(b.Title) {
			return len(a.Title) < len(b.Title)
		}
		return a.Title < b.Title
	})
	return ranked
}

// isWordPrefix reports whether prefix is a whole-word prefix of s.
func isWordPrefix(s, prefix string) bool {
	if !strings.HasPrefix(s, prefix) {
		return false
	}
	return len(s) == len(prefix) || s[len(prefix)] == ' '
}

// extractNumbers returns all numeric sequences from a normalized title.
func extractNumbers(title string) []string {
	return numberRegex.FindAllString(title, -1)
}

// adjustScoreForNumbers modifies the similarity score based on sequence number matching.
// When the query has numbers:
// - Matching numbers get a bonus
// - Mismatched numbers get a penalty
// - Missing numbers in candidate also get a penalty
func adjustScoreForNumbers(score float64, queryNums, candidateNums []string) float64 {
	if len(queryNums) == 0 {
		if len(candidateNums) > 0 {
			// "Witcher" should not pick "Witcher 3" over "Witcher"
			return score * 0.95
		}
		return score
	}

	if len(candidateNums) == 0 {
		return score * 0.85
	}

	candidateSet := make(map[string]bool, len(candidateNums))
	for _, n := range candidateNums {
		candidateSet[n] = true
	}
	for _, n := range queryNums {
		if candidateSet[n] {
			return min(score*1.05, 1.0)
		}
	}

	return score * 0.90
}
