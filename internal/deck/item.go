package deck

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// poolDiscriminant marks a serialized item as a random pool. Items without
// it are cards.
const poolDiscriminant = "random_pool"

// Item is a tagged deck-item union: exactly one of Card or Pool is set.
type Item struct {
	Card *Card
	Pool *RandomPool
}

// CardItem wraps a card as a deck item.
func CardItem(c *Card) Item { return Item{Card: c} }

// PoolItem wraps a random pool as a deck item.
func PoolItem(p *RandomPool) Item { return Item{Pool: p} }

// ID returns the wrapped item's id.
func (it Item) ID() string {
	switch {
	case it.Card != nil:
		return it.Card.ID
	case it.Pool != nil:
		return it.Pool.ID
	default:
		return ""
	}
}

// IsPool reports whether the item is a random pool.
func (it Item) IsPool() bool { return it.Pool != nil }

// Clone returns a deep copy of the item.
func (it Item) Clone() Item {
	switch {
	case it.Card != nil:
		return Item{Card: it.Card.Clone()}
	case it.Pool != nil:
		return Item{Pool: it.Pool.Clone()}
	default:
		return Item{}
	}
}

// itemProbe reads only the discriminant field.
type itemProbe struct {
	Type string `yaml:"type" json:"type"`
}

// poolWire is the on-disk shape of a pool item, carrying the discriminant.
type poolWire struct {
	Type    string   `yaml:"type" json:"type"`
	ID      string   `yaml:"id" json:"id"`
	Count   int      `yaml:"count" json:"count"`
	Entries []string `yaml:"entries,omitempty" json:"entries,omitempty"`
}

// UnmarshalYAML decodes a deck item, dispatching on the type discriminant.
func (it *Item) UnmarshalYAML(value *yaml.Node) error {
	var probe itemProbe
	if err := value.Decode(&probe); err != nil {
		return err
	}
	if probe.Type == poolDiscriminant {
		var w poolWire
		if err := value.Decode(&w); err != nil {
			return err
		}
		it.Pool = &RandomPool{ID: w.ID, Count: w.Count, Entries: w.Entries}
		it.Card = nil
		return nil
	}
	var c Card
	if err := value.Decode(&c); err != nil {
		return err
	}
	it.Card = &c
	it.Pool = nil
	return nil
}

// MarshalYAML encodes a deck item with its discriminant.
func (it Item) MarshalYAML() (interface{}, error) {
	switch {
	case it.Pool != nil:
		return poolWire{
			Type:    poolDiscriminant,
			ID:      it.Pool.ID,
			Count:   it.Pool.Count,
			Entries: it.Pool.Entries,
		}, nil
	case it.Card != nil:
		return it.Card, nil
	default:
		return nil, fmt.Errorf("empty deck item")
	}
}

// UnmarshalJSON decodes a deck item, dispatching on the type discriminant.
func (it *Item) UnmarshalJSON(data []byte) error {
	var probe itemProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Type == poolDiscriminant {
		var w poolWire
		if err := json.Unmarshal(data, &w); err != nil {
			return err
		}
		it.Pool = &RandomPool{ID: w.ID, Count: w.Count, Entries: w.Entries}
		it.Card = nil
		return nil
	}
	var c Card
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	it.Card = &c
	it.Pool = nil
	return nil
}

// MarshalJSON encodes a deck item with its discriminant.
func (it Item) MarshalJSON() ([]byte, error) {
	switch {
	case it.Pool != nil:
		return json.Marshal(poolWire{
			Type:    poolDiscriminant,
			ID:      it.Pool.ID,
			Count:   it.Pool.Count,
			Entries: it.Pool.Entries,
		})
	case it.Card != nil:
		return json.Marshal(it.Card)
	default:
		return nil, fmt.Errorf("empty deck item")
	}
}
