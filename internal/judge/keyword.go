package judge

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Keyword is an offline oracle that scores the player's latest plea against
// the persuasion lexicon configured for the exhausted gauge. A plea wins
// when enough of its tokens land close to lexicon words. Deterministic, so
// the crisis loop stays testable without a network service.
type Keyword struct {
	// Threshold is the score a plea must reach; zero means DefaultThreshold.
	Threshold float64
}

// DefaultThreshold is the passing score when none is configured.
const DefaultThreshold = 0.6

// Negotiate scores the last player turn in the transcript.
func (k *Keyword) Negotiate(_ context.Context, transcript []Turn, gc GaugeContext) (Verdict, error) {
	plea := lastPlayerTurn(transcript)
	if plea == "" {
		return Verdict{}, fmt.Errorf("transcript has no player turn")
	}

	threshold := k.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	weight := gc.Profile.Weight
	if weight <= 0 {
		weight = 1
	}

	score := scorePlea(plea, gc.Profile.Keywords) * weight
	if score >= threshold {
		return Verdict{Success: true, NPCResponse: acceptResponse(gc)}, nil
	}
	return Verdict{Success: false, NPCResponse: rejectResponse(gc)}, nil
}

// scorePlea is the best fuzzy match between any plea token and any lexicon
// word: 1.0 for an exact hit, 0.9 for a prefix, otherwise a score that
// decays with edit distance. Unmatchable pleas score 0.
func scorePlea(plea string, lexicon []string) float64 {
	tokens := tokenize(plea)
	if len(tokens) == 0 || len(lexicon) == 0 {
		return 0
	}
	best := 0.0
	for _, tok := range tokens {
		for _, word := range lexicon {
			word = strings.ToLower(strings.TrimSpace(word))
			if word == "" {
				continue
			}
			s := matchScore(tok, word)
			if s > best {
				best = s
			}
		}
	}
	return best
}

func matchScore(token, word string) float64 {
	switch {
	case token == word:
		return 1.0
	case len(token) >= 2 && strings.HasPrefix(word, token):
		return 0.9
	default:
		dist := levenshtein.ComputeDistance(token, word)
		if dist > distanceLimit(len(word)) {
			return 0
		}
		return 0.72 - 0.08*float64(dist)
	}
}

// distanceLimit scales the tolerated edit distance with word length.
func distanceLimit(length int) int {
	switch {
	case length <= 3:
		return 0
	case length <= 5:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

func lastPlayerTurn(transcript []Turn) string {
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].Role == RolePlayer {
			return strings.TrimSpace(transcript[i].Text)
		}
	}
	return ""
}

func acceptResponse(gc GaugeContext) string {
	persona := gc.Profile.Persona
	if persona == "" {
		persona = string(gc.Gauge)
	}
	return fmt.Sprintf("The %s relents. You have bought yourself a reprieve, but %s will not be pushed this far again.",
		persona, gc.Gauge)
}

func rejectResponse(gc GaugeContext) string {
	persona := gc.Profile.Persona
	if persona == "" {
		persona = string(gc.Gauge)
	}
	return fmt.Sprintf("The %s is unmoved. Words alone will not restore %s.", persona, gc.Gauge)
}

var _ Judge = (*Keyword)(nil)
