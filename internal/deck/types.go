package deck

// Gauge names one of the four bounded resources tracked across a run.
type Gauge string

const (
	GaugeEconomy     Gauge = "economy"
	GaugePeople      Gauge = "people"
	GaugeEnvironment Gauge = "environment"
	GaugeGovernance  Gauge = "governance"
)

// Gauges is the fixed enumeration order. Crisis detection scans gauges in
// this order and stops at the first exhausted one.
var Gauges = []Gauge{GaugeEconomy, GaugePeople, GaugeEnvironment, GaugeGovernance}

// ValidGauge reports whether s names a known gauge.
func ValidGauge(s Gauge) bool {
	for _, g := range Gauges {
		if g == s {
			return true
		}
	}
	return false
}

const (
	// GaugeMin and GaugeMax bound every gauge value.
	GaugeMin = 0
	GaugeMax = 100
	// GaugeStart is the value every gauge begins a run at.
	GaugeStart = 50
)

// GaugeState holds the four bounded resource values.
type GaugeState struct {
	Economy     int `yaml:"economy" json:"economy"`
	People      int `yaml:"people" json:"people"`
	Environment int `yaml:"environment" json:"environment"`
	Governance  int `yaml:"governance" json:"governance"`
}

// NewGaugeState returns a state with every gauge at GaugeStart.
func NewGaugeState() GaugeState {
	return GaugeState{
		Economy:     GaugeStart,
		People:      GaugeStart,
		Environment: GaugeStart,
		Governance:  GaugeStart,
	}
}

// Get returns the value of a gauge. Unknown gauges read as 0.
func (gs GaugeState) Get(g Gauge) int {
	switch g {
	case GaugeEconomy:
		return gs.Economy
	case GaugePeople:
		return gs.People
	case GaugeEnvironment:
		return gs.Environment
	case GaugeGovernance:
		return gs.Governance
	default:
		return 0
	}
}

// Set assigns a gauge value, clamped to [GaugeMin, GaugeMax].
func (gs *GaugeState) Set(g Gauge, v int) {
	v = clampGauge(v)
	switch g {
	case GaugeEconomy:
		gs.Economy = v
	case GaugePeople:
		gs.People = v
	case GaugeEnvironment:
		gs.Environment = v
	case GaugeGovernance:
		gs.Governance = v
	}
}

// Apply returns a copy of gs with the delta applied, each gauge clamped to
// [GaugeMin, GaugeMax].
func (gs GaugeState) Apply(d Delta) GaugeState {
	out := gs
	for g, v := range d {
		if !ValidGauge(g) {
			continue
		}
		out.Set(g, out.Get(g)+v)
	}
	return out
}

func clampGauge(v int) int {
	if v < GaugeMin {
		return GaugeMin
	}
	if v > GaugeMax {
		return GaugeMax
	}
	return v
}

// Delta is a partial gauge adjustment carried by a card option.
type Delta map[Gauge]int

// Side selects one of a card's two options.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// sides is the traversal order for follow-up edges.
var sides = []Side{SideLeft, SideRight}

// CardOption is one side of a card: display text, a gauge delta, and an
// optional follow-up card spliced into the deck when the option is chosen.
type CardOption struct {
	Text       string `yaml:"text" json:"text"`
	Delta      Delta  `yaml:"delta,omitempty" json:"delta,omitempty"`
	FollowUpID string `yaml:"followUp,omitempty" json:"followUp,omitempty"`
}

// Card is an atomic narrative event with two mutually exclusive choices.
type Card struct {
	ID    string     `yaml:"id" json:"id"`
	NPCID string     `yaml:"npc,omitempty" json:"npc,omitempty"`
	Text  string     `yaml:"text" json:"text"`
	Left  CardOption `yaml:"left" json:"left"`
	Right CardOption `yaml:"right" json:"right"`
}

// Option returns the option on the given side, or nil for an unknown side.
func (c *Card) Option(s Side) *CardOption {
	switch s {
	case SideLeft:
		return &c.Left
	case SideRight:
		return &c.Right
	default:
		return nil
	}
}

// Clone returns a deep copy of the card.
func (c *Card) Clone() *Card {
	out := *c
	out.Left.Delta = cloneDelta(c.Left.Delta)
	out.Right.Delta = cloneDelta(c.Right.Delta)
	return &out
}

func cloneDelta(d Delta) Delta {
	if d == nil {
		return nil
	}
	out := make(Delta, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

const (
	// PoolMinDraw and PoolMaxDraw bound a pool's draw count.
	PoolMinDraw = 1
	PoolMaxDraw = 10
)

// RandomPool is a deck placeholder resolved at play time into cards sampled
// from the shared event library. An explicit Entries list overrides free
// sampling and ignores Count.
type RandomPool struct {
	ID      string   `yaml:"id" json:"id"`
	Count   int      `yaml:"count" json:"count"`
	Entries []string `yaml:"entries,omitempty" json:"entries,omitempty"`
}

// ClampedCount returns Count clamped to [PoolMinDraw, PoolMaxDraw].
func (p *RandomPool) ClampedCount() int {
	if p.Count < PoolMinDraw {
		return PoolMinDraw
	}
	if p.Count > PoolMaxDraw {
		return PoolMaxDraw
	}
	return p.Count
}

// Clone returns a deep copy of the pool.
func (p *RandomPool) Clone() *RandomPool {
	out := *p
	out.Entries = append([]string(nil), p.Entries...)
	return &out
}

// KPI is an optional per-gauge stage-exit threshold.
type KPI struct {
	Enabled   bool `yaml:"enabled" json:"enabled"`
	Threshold int  `yaml:"threshold" json:"threshold"`
}

// Stage is an ordered sequence of deck items plus per-gauge exit thresholds.
type Stage struct {
	ID    string        `yaml:"id" json:"id"`
	Title string        `yaml:"title,omitempty" json:"title,omitempty"`
	Items []Item        `yaml:"items" json:"items"`
	KPIs  map[Gauge]KPI `yaml:"kpis,omitempty" json:"kpis,omitempty"`
}

// Clone returns a deep copy of the stage.
func (s *Stage) Clone() *Stage {
	out := &Stage{ID: s.ID, Title: s.Title}
	out.Items = make([]Item, len(s.Items))
	for i, it := range s.Items {
		out.Items[i] = it.Clone()
	}
	if s.KPIs != nil {
		out.KPIs = make(map[Gauge]KPI, len(s.KPIs))
		for g, k := range s.KPIs {
			out.KPIs[g] = k
		}
	}
	return out
}

// NPC is a narrator entry referenced by cards.
type NPC struct {
	Name  string `yaml:"name" json:"name"`
	Title string `yaml:"title,omitempty" json:"title,omitempty"`
}

// GaugeProfile configures the negotiation persona for one gauge: the voice
// that answers during a crisis and the arguments it responds to.
type GaugeProfile struct {
	Persona  string   `yaml:"persona,omitempty" json:"persona,omitempty"`
	Keywords []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	Weight   float64  `yaml:"weight,omitempty" json:"weight,omitempty"`
}

// Scenario is a complete authored narrative: ordered stages, the shared
// event library available to random pools, the NPC table, and per-gauge
// negotiation profiles.
type Scenario struct {
	Title    string                 `yaml:"title" json:"title"`
	NPCs     map[string]NPC         `yaml:"npcs,omitempty" json:"npcs,omitempty"`
	Library  []*Card                `yaml:"library,omitempty" json:"library,omitempty"`
	Stages   []*Stage               `yaml:"stages" json:"stages"`
	Profiles map[Gauge]GaugeProfile `yaml:"profiles,omitempty" json:"profiles,omitempty"`
}

// Clone returns a deep copy of the scenario.
func (sc *Scenario) Clone() *Scenario {
	out := &Scenario{Title: sc.Title}
	if sc.NPCs != nil {
		out.NPCs = make(map[string]NPC, len(sc.NPCs))
		for k, v := range sc.NPCs {
			out.NPCs[k] = v
		}
	}
	out.Library = make([]*Card, len(sc.Library))
	for i, c := range sc.Library {
		out.Library[i] = c.Clone()
	}
	out.Stages = make([]*Stage, len(sc.Stages))
	for i, st := range sc.Stages {
		out.Stages[i] = st.Clone()
	}
	if sc.Profiles != nil {
		out.Profiles = make(map[Gauge]GaugeProfile, len(sc.Profiles))
		for g, p := range sc.Profiles {
			cp := p
			cp.Keywords = append([]string(nil), p.Keywords...)
			out.Profiles[g] = cp
		}
	}
	return out
}

// Stage returns the stage with the given id, or nil.
func (sc *Scenario) Stage(id string) *Stage {
	for _, st := range sc.Stages {
		if st.ID == id {
			return st
		}
	}
	return nil
}

// LibraryCard returns the library card with the given id, or nil.
func (sc *Scenario) LibraryCard(id string) *Card {
	for _, c := range sc.Library {
		if c.ID == id {
			return c
		}
	}
	return nil
}
