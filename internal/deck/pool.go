package deck

import (
	"log/slog"
	"math/rand/v2"
)

// Materialize projects a stage into a play-time deck: the stage's
// first-level cards in order, with every random pool replaced in place by
// its drawn cards. The stage and library are never mutated; drawn cards are
// copies. Pools with an explicit entry list use exactly those entries in
// order (ignoring Count, skipping ids missing from the library). Otherwise
// the pool draws Count distinct cards uniformly without replacement; a
// library smaller than Count yields every library card and a logged
// shortfall instead of a failure.
func Materialize(s *Stage, library []*Card, rng *rand.Rand, log *slog.Logger) []*Card {
	if log == nil {
		log = slog.Default()
	}
	in := s.incomingFollowUps()
	var out []*Card
	for _, it := range s.Items {
		switch {
		case it.Pool != nil:
			out = append(out, drawPool(it.Pool, library, rng, log)...)
		case it.Card != nil && in[it.Card.ID] == 0:
			out = append(out, it.Card.Clone())
		}
	}
	return out
}

func drawPool(p *RandomPool, library []*Card, rng *rand.Rand, log *slog.Logger) []*Card {
	if len(p.Entries) > 0 {
		out := make([]*Card, 0, len(p.Entries))
		for _, id := range p.Entries {
			c := findCard(library, id)
			if c == nil {
				log.Warn("pool entry missing from library", "pool", p.ID, "card", id)
				continue
			}
			out = append(out, c.Clone())
		}
		return out
	}

	count := p.ClampedCount()
	if len(library) == 0 {
		log.Warn("pool draw skipped, library empty", "pool", p.ID)
		return nil
	}
	if count > len(library) {
		log.Warn("pool draw shortfall",
			"pool", p.ID, "requested", count, "available", len(library))
		count = len(library)
	}

	out := make([]*Card, 0, count)
	for _, i := range rng.Perm(len(library))[:count] {
		out = append(out, library[i].Clone())
	}
	return out
}

func findCard(cards []*Card, id string) *Card {
	for _, c := range cards {
		if c.ID == id {
			return c
		}
	}
	return nil
}
