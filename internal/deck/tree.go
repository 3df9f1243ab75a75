package deck

import (
	"crypto/rand"
	"encoding/hex"
)

// The integrity operations below keep a stage's item list well-formed while
// an author edits it. Each first-level card and its follow-up descendants
// form one contiguous block in the item list; every operation preserves that
// layout. Operations are pure: they return an edited clone on success and
// the receiver unchanged (ok=false) when the edit would be illegal.

// NewCardID returns a fresh card id.
func NewCardID() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return "card_" + hex.EncodeToString(b)
}

// NewPoolID returns a fresh random-pool id.
func NewPoolID() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return "pool_" + hex.EncodeToString(b)
}

// cardIndex maps card id to card for every card item in the stage,
// follow-up children included.
func (s *Stage) cardIndex() map[string]*Card {
	idx := make(map[string]*Card, len(s.Items))
	for _, it := range s.Items {
		if it.Card != nil {
			idx[it.Card.ID] = it.Card
		}
	}
	return idx
}

// itemIndexOf returns the position of an item in the stage, or -1.
func (s *Stage) itemIndexOf(id string) int {
	for i, it := range s.Items {
		if it.ID() == id {
			return i
		}
	}
	return -1
}

// incomingFollowUps counts follow-up edges pointing at each card id.
func (s *Stage) incomingFollowUps() map[string]int {
	in := make(map[string]int)
	for _, it := range s.Items {
		if it.Card == nil {
			continue
		}
		for _, side := range sides {
			if f := it.Card.Option(side).FollowUpID; f != "" {
				in[f]++
			}
		}
	}
	return in
}

// FirstLevelIDs returns the ids of all first-level items in deck order.
func (s *Stage) FirstLevelIDs() []string {
	in := s.incomingFollowUps()
	out := make([]string, 0, len(s.Items))
	for _, it := range s.Items {
		if it.IsPool() || in[it.ID()] == 0 {
			out = append(out, it.ID())
		}
	}
	return out
}

// CollectSubtree returns, in pre-order (left branch fully expanded before
// right, self excluded), every card id reachable from cardID through
// follow-up edges. Each id is visited at most once, so the walk terminates
// even on malformed cyclic input.
func (s *Stage) CollectSubtree(cardID string) []string {
	cards := s.cardIndex()
	seen := map[string]bool{cardID: true}
	var out []string
	var walk func(id string)
	walk = func(id string) {
		c := cards[id]
		if c == nil {
			return
		}
		for _, side := range sides {
			next := c.Option(side).FollowUpID
			if next == "" || seen[next] || cards[next] == nil {
				continue
			}
			seen[next] = true
			out = append(out, next)
			walk(next)
		}
	}
	walk(cardID)
	return out
}

// FirstLevelParent returns the id of the first-level card whose subtree
// contains cardID. It returns "" when cardID is itself first-level or not
// reachable from any first-level card.
func (s *Stage) FirstLevelParent(cardID string) string {
	for _, id := range s.FirstLevelIDs() {
		if id == cardID {
			return ""
		}
		for _, sub := range s.CollectSubtree(id) {
			if sub == cardID {
				return id
			}
		}
	}
	return ""
}

// CardOverrides seeds fields of a card created by InsertFollowUp.
type CardOverrides struct {
	NPCID     string
	Text      string
	LeftText  string
	RightText string
}

// InsertFollowUp creates a new card and links it as the follow-up of the
// given option. The new card is placed immediately after the parent's
// entire current subtree so sibling subtrees never interleave. The edit is
// rejected (stage returned unchanged, ok=false) when the parent does not
// exist, the side is unknown, or the option already has a follow-up.
func (s *Stage) InsertFollowUp(parentID string, side Side, ov CardOverrides) (*Stage, string, bool) {
	if side != SideLeft && side != SideRight {
		return s, "", false
	}
	parent := s.cardIndex()[parentID]
	if parent == nil || parent.Option(side).FollowUpID != "" {
		return s, "", false
	}

	// Insertion point: one past the last item of the parent's block.
	last := s.itemIndexOf(parentID)
	for _, id := range s.CollectSubtree(parentID) {
		if i := s.itemIndexOf(id); i > last {
			last = i
		}
	}

	out := s.Clone()
	card := &Card{
		ID:    NewCardID(),
		NPCID: ov.NPCID,
		Text:  ov.Text,
		Left:  CardOption{Text: ov.LeftText},
		Right: CardOption{Text: ov.RightText},
	}
	items := make([]Item, 0, len(out.Items)+1)
	items = append(items, out.Items[:last+1]...)
	items = append(items, CardItem(card))
	items = append(items, out.Items[last+1:]...)
	out.Items = items
	out.cardIndex()[parentID].Option(side).FollowUpID = card.ID
	return out, card.ID, true
}

// DeleteCard removes the item with the given id. For cards the removal
// cascades to the whole reachable follow-up subtree, and every surviving
// option that pointed at a removed card is cleared so no dangling
// references remain. Pools are removed as single items. Unknown ids are a
// no-op.
func (s *Stage) DeleteCard(id string) (*Stage, bool) {
	if s.itemIndexOf(id) < 0 {
		return s, false
	}
	removed := map[string]bool{id: true}
	for _, sub := range s.CollectSubtree(id) {
		removed[sub] = true
	}

	out := s.Clone()
	items := out.Items[:0]
	for _, it := range out.Items {
		if removed[it.ID()] {
			continue
		}
		items = append(items, it)
	}
	out.Items = items
	for _, it := range out.Items {
		if it.Card == nil {
			continue
		}
		for _, side := range sides {
			opt := it.Card.Option(side)
			if removed[opt.FollowUpID] {
				opt.FollowUpID = ""
			}
		}
	}
	return out, true
}

// ReorderFirstLevel moves a first-level item one position up (dir -1) or
// down (dir +1) among its first-level siblings. The item's full subtree
// moves with it as one contiguous block. Moves past either edge, unknown
// ids, non-first-level ids, and dir values other than ±1 are no-ops.
func (s *Stage) ReorderFirstLevel(itemID string, dir int) (*Stage, bool) {
	if dir != -1 && dir != 1 {
		return s, false
	}
	blocks := s.firstLevelBlocks()
	at := -1
	for i, b := range blocks {
		if len(b) > 0 && b[0].ID() == itemID {
			at = i
			break
		}
	}
	if at < 0 {
		return s, false
	}
	to := at + dir
	if to < 0 || to >= len(blocks) {
		return s, false
	}

	blocks[at], blocks[to] = blocks[to], blocks[at]
	out := s.Clone()
	items := make([]Item, 0, len(s.Items))
	for _, b := range blocks {
		for _, it := range b {
			items = append(items, it.Clone())
		}
	}
	out.Items = items
	return out, true
}

// firstLevelBlocks partitions the item list into contiguous blocks, each
// headed by a first-level item and followed by its subtree.
func (s *Stage) firstLevelBlocks() [][]Item {
	in := s.incomingFollowUps()
	var blocks [][]Item
	for _, it := range s.Items {
		if it.IsPool() || in[it.ID()] == 0 || len(blocks) == 0 {
			blocks = append(blocks, []Item{it})
			continue
		}
		blocks[len(blocks)-1] = append(blocks[len(blocks)-1], it)
	}
	return blocks
}

// AddCard appends a new first-level card to the stage.
func (s *Stage) AddCard(ov CardOverrides) (*Stage, string) {
	out := s.Clone()
	card := &Card{
		ID:    NewCardID(),
		NPCID: ov.NPCID,
		Text:  ov.Text,
		Left:  CardOption{Text: ov.LeftText},
		Right: CardOption{Text: ov.RightText},
	}
	out.Items = append(out.Items, CardItem(card))
	return out, card.ID
}

// AddPool appends a new random pool to the stage. The count is clamped to
// the legal draw bounds.
func (s *Stage) AddPool(count int, entries []string) (*Stage, string) {
	out := s.Clone()
	pool := &RandomPool{ID: NewPoolID(), Count: count, Entries: entries}
	pool.Count = pool.ClampedCount()
	out.Items = append(out.Items, PoolItem(pool))
	return out, pool.ID
}
