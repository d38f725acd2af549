package match

import "sort"

// Player identifies one side of the match. All analysis is framed from
// P1's perspective: P1 is the analyzed player, P2 the opponent. Callers
// tracking the right-side player swap samples first (see SwapSamples).
type Player string

const (
	P1 Player = "p1"
	P2 Player = "p2"
)

// Opponent returns the other player.
func (p Player) Opponent() Player {
	if p == P1 {
		return P2
	}
	return P1
}

// Sample is one telemetry reading. Any field except Timestamp may be
// missing: the sensor (OCR over video frames) drops readings, misreads
// digits, and glitches for single frames. Samples are ordered by
// timestamp with irregular spacing.
type Sample struct {
	Timestamp   float64  `json:"timestamp"`
	P1Percent   *float64 `json:"p1_percent,omitempty"`
	P2Percent   *float64 `json:"p2_percent,omitempty"`
	P1Stocks    *int     `json:"p1_stocks,omitempty"`
	P2Stocks    *int     `json:"p2_stocks,omitempty"`
	P1Character string   `json:"p1_character,omitempty"`
	P2Character string   `json:"p2_character,omitempty"`
}

// Percent returns the given player's damage percent, nil when unread.
func (s *Sample) Percent(p Player) *float64 {
	if p == P1 {
		return s.P1Percent
	}
	return s.P2Percent
}

// Stocks returns the given player's stock reading, nil when unread.
func (s *Sample) Stocks(p Player) *int {
	if p == P1 {
		return s.P1Stocks
	}
	return s.P2Stocks
}

// SwapSamples returns a copy of samples with the player fields
// exchanged, so a match recorded from the right-side player's
// perspective can be analyzed as P1.
func SwapSamples(samples []Sample) []Sample {
	out := make([]Sample, len(samples))
	for i, s := range samples {
		out[i] = Sample{
			Timestamp:   s.Timestamp,
			P1Percent:   s.P2Percent,
			P2Percent:   s.P1Percent,
			P1Stocks:    s.P2Stocks,
			P2Stocks:    s.P1Stocks,
			P1Character: s.P2Character,
			P2Character: s.P1Character,
		}
	}
	return out
}

// EventKind tags the members of the closed event set.
type EventKind string

const (
	KindStockLoss      EventKind = "stock_loss"
	KindKill           EventKind = "kill"
	KindDamageSpike    EventKind = "damage_spike"
	KindDamageDealt    EventKind = "damage_dealt"
	KindCombo          EventKind = "combo"
	KindEdgeguard      EventKind = "edgeguard"
	KindGotEdgeguarded EventKind = "got_edgeguarded"
	KindMomentumSwing  EventKind = "momentum_swing"
	KindNeutralPhase   EventKind = "neutral_phase"
)

// Event is the sealed union of timeline event types. Only types in this
// package implement it, so consumers switching on Kind handle a closed
// set.
type Event interface {
	Kind() EventKind
	When() float64
	sealedEvent()
}

// StockLossEvent records a confirmed death of the analyzed player.
// Percent is drawn from the raw pre-smoothing maximum in a bounded
// lookback window, never from the smoothed series.
type StockLossEvent struct {
	Timestamp       float64 `json:"timestamp"`
	Player          Player  `json:"player"`
	Percent         float64 `json:"percent"`
	StocksRemaining int     `json:"stocks_remaining"`
	GameEnder       bool    `json:"is_game_ender,omitempty"`
}

func (e StockLossEvent) Kind() EventKind { return KindStockLoss }
func (e StockLossEvent) When() float64   { return e.Timestamp }
func (StockLossEvent) sealedEvent()      {}

// KillEvent mirrors StockLossEvent for the opponent: a confirmed
// opponent death is the analyzed player's kill.
type KillEvent struct {
	Timestamp               float64 `json:"timestamp"`
	OpponentPercent         float64 `json:"opponent_percent"`
	OpponentStocksRemaining int     `json:"opponent_stocks_remaining"`
	GameWinner              bool    `json:"is_game_winner,omitempty"`
}

func (e KillEvent) Kind() EventKind { return KindKill }
func (e KillEvent) When() float64   { return e.Timestamp }
func (KillEvent) sealedEvent()      {}

// DamageSpikeEvent records the analyzed player taking a rapid chunk of
// damage without dealing much back.
type DamageSpikeEvent struct {
	Timestamp   float64 `json:"timestamp"`
	Player      Player  `json:"player"`
	Damage      float64 `json:"damage"`
	FromPercent float64 `json:"from_percent"`
	ToPercent   float64 `json:"to_percent"`
}

func (e DamageSpikeEvent) Kind() EventKind { return KindDamageSpike }
func (e DamageSpikeEvent) When() float64   { return e.Timestamp }
func (DamageSpikeEvent) sealedEvent()      {}

// DamageDealtEvent is the dealt-side mirror of DamageSpikeEvent: the
// opponent took the damage.
type DamageDealtEvent struct {
	Timestamp   float64 `json:"timestamp"`
	Player      Player  `json:"player"`
	Damage      float64 `json:"damage"`
	FromPercent float64 `json:"from_percent"`
	ToPercent   float64 `json:"to_percent"`
}

func (e DamageDealtEvent) Kind() EventKind { return KindDamageDealt }
func (e DamageDealtEvent) When() float64   { return e.Timestamp }
func (DamageDealtEvent) sealedEvent()      {}

// ComboEvent records an uninterrupted damage sequence against the
// opponent. Retained combos always satisfy HitCount >= 3 and
// Damage > 25; sub-threshold accumulations are discarded, not emitted.
type ComboEvent struct {
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Damage      float64 `json:"damage"`
	FromPercent float64 `json:"from_percent"`
	ToPercent   float64 `json:"to_percent"`
	HitCount    int     `json:"hits"`
}

func (e ComboEvent) Kind() EventKind { return KindCombo }
func (e ComboEvent) When() float64   { return e.Start }
func (ComboEvent) sealedEvent()      {}

// EdgeguardEvent scores whether a confirmed kill or death happened
// off-stage, inferred from damage-flow shape alone. Victim names who
// died: P2 means the analyzed player scored the edgeguard, P1 means
// they were the victim.
type EdgeguardEvent struct {
	Timestamp         float64 `json:"timestamp"`
	Victim            Player  `json:"victim"`
	VictimPercent     float64 `json:"victim_percent"`
	KillerDamageTaken float64 `json:"killer_damage_taken"`
	DamageDealtBefore float64 `json:"damage_dealt_before"`
	Score             int     `json:"confidence"`
	Confident         bool    `json:"is_confident"`
}

func (e EdgeguardEvent) Kind() EventKind {
	if e.Victim == P1 {
		return KindGotEdgeguarded
	}
	return KindEdgeguard
}
func (e EdgeguardEvent) When() float64 { return e.Timestamp }
func (EdgeguardEvent) sealedEvent()    {}

// SwingType labels the direction of a momentum swing.
type SwingType string

const (
	SwingAdvantage    SwingType = "advantage"
	SwingDisadvantage SwingType = "disadvantage"
)

// MomentumSwingEvent records a one-sided damage exchange.
type MomentumSwingEvent struct {
	Timestamp   float64   `json:"timestamp"`
	Type        SwingType `json:"type"`
	DamageDealt float64   `json:"damage_dealt"`
	DamageTaken float64   `json:"damage_taken"`
}

func (e MomentumSwingEvent) Kind() EventKind { return KindMomentumSwing }
func (e MomentumSwingEvent) When() float64   { return e.Timestamp }
func (MomentumSwingEvent) sealedEvent()      {}

// NeutralPhaseEvent records a sustained lull with no significant damage
// by either player.
type NeutralPhaseEvent struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
}

func (e NeutralPhaseEvent) Kind() EventKind { return KindNeutralPhase }
func (e NeutralPhaseEvent) When() float64   { return e.Start }
func (NeutralPhaseEvent) sealedEvent()      {}

// PhaseLabel classifies a game phase.
type PhaseLabel string

const (
	PhaseNeutral      PhaseLabel = "neutral"
	PhaseAdvantage    PhaseLabel = "advantage"
	PhaseDisadvantage PhaseLabel = "disadvantage"
	PhaseAfterDeath   PhaseLabel = "after_death"
)

// GamePhase is a contiguous [Start, End) interval with its damage
// totals.
type GamePhase struct {
	Start       float64    `json:"start"`
	End         float64    `json:"end"`
	Label       PhaseLabel `json:"phase"`
	DamageDealt float64    `json:"damage_dealt"`
	DamageTaken float64    `json:"damage_taken"`
}

// Behavior classifies how the analyzed player re-engaged after losing a
// stock.
type Behavior string

const (
	BehaviorPanic      Behavior = "panic"
	BehaviorAggressive Behavior = "aggressive"
	BehaviorComposed   Behavior = "composed"
	BehaviorNeutral    Behavior = "neutral"
)

// AfterDeathWindow summarizes the ~5 seconds following a non-final
// analyzed-player stock loss. TimeToFirstHit is nil when no interaction
// above the threshold occurred inside the window.
type AfterDeathWindow struct {
	DeathTime       float64  `json:"death_timestamp"`
	DamageTaken     float64  `json:"damage_taken"`
	DamageDealt     float64  `json:"damage_dealt"`
	TimeToFirstHit  *float64 `json:"time_to_first_interaction"`
	Behavior        Behavior `json:"behavior"`
	StocksRemaining int      `json:"stocks_remaining"`
}

// StageControlSample is one 1 Hz reading of the rolling 3-second damage
// differential. Positive control means the analyzed player dominating.
type StageControlSample struct {
	Timestamp   float64 `json:"timestamp"`
	DamageDealt float64 `json:"damage_dealt"`
	DamageTaken float64 `json:"damage_taken"`
	Control     float64 `json:"control_score"`
}

// Winner names the resolved match winner, or "unknown" when every
// resolution strategy declined an opinion.
type Winner string

const (
	WinnerP1      Winner = "p1"
	WinnerP2      Winner = "p2"
	WinnerUnknown Winner = "unknown"
)

// Stats carries aggregate match statistics computed from the raw
// samples.
type Stats struct {
	Duration      float64 `json:"duration"`
	Winner        Winner  `json:"winner"`
	WinnerVia     string  `json:"winner_via,omitempty"`
	P1MaxPercent  float64 `json:"p1_max_percent"`
	P2MaxPercent  float64 `json:"p2_max_percent"`
	P1AvgPercent  float64 `json:"p1_avg_percent"`
	P2AvgPercent  float64 `json:"p2_avg_percent"`
	P1FinalStocks *int    `json:"p1_final_stocks"`
	P2FinalStocks *int    `json:"p2_final_stocks"`
}

// Timeline is the immutable analysis result. Slices are never nil and
// must not be mutated by consumers; build a new Timeline instead (see
// vision.Refine for the one sanctioned derivation).
type Timeline struct {
	MatchStart float64 `json:"match_start"`
	// MatchEnd is zero when no game-ending event was resolved.
	MatchEnd float64 `json:"match_end"`

	StockLosses    []StockLossEvent     `json:"stock_losses"`
	Kills          []KillEvent          `json:"kills"`
	DamageSpikes   []DamageSpikeEvent   `json:"damage_spikes"`
	DamageDealt    []DamageDealtEvent   `json:"damage_dealt"`
	Combos         []ComboEvent         `json:"combos"`
	Edgeguards     []EdgeguardEvent     `json:"edgeguards"`
	GotEdgeguarded []EdgeguardEvent     `json:"got_edgeguarded"`
	MomentumSwings []MomentumSwingEvent `json:"momentum_swings"`
	NeutralPhases  []NeutralPhaseEvent  `json:"neutral_phases"`
	Phases         []GamePhase          `json:"game_phases"`
	AfterDeath     []AfterDeathWindow   `json:"after_death"`
	StageControl   []StageControlSample `json:"stage_control"`

	// TrueMaxPercent holds each player's global maximum percent; unlike
	// the trackers' recent maxima it is never reset by deaths.
	TrueMaxPercent map[Player]float64 `json:"true_max_percent"`

	Stats Stats `json:"stats"`
}

var kindOrder = map[EventKind]int{
	KindStockLoss:      0,
	KindKill:           1,
	KindDamageSpike:    2,
	KindDamageDealt:    3,
	KindCombo:          4,
	KindEdgeguard:      5,
	KindGotEdgeguarded: 6,
	KindMomentumSwing:  7,
	KindNeutralPhase:   8,
}

// Events returns every event merged into a single slice, totally
// ordered by timestamp (ties break on kind, then emission order). The
// returned slice is freshly allocated.
func (t *Timeline) Events() []Event {
	out := make([]Event, 0,
		len(t.StockLosses)+len(t.Kills)+len(t.DamageSpikes)+
			len(t.DamageDealt)+len(t.Combos)+len(t.Edgeguards)+
			len(t.GotEdgeguarded)+len(t.MomentumSwings)+len(t.NeutralPhases))
	for _, e := range t.StockLosses {
		out = append(out, e)
	}
	for _, e := range t.Kills {
		out = append(out, e)
	}
	for _, e := range t.DamageSpikes {
		out = append(out, e)
	}
	for _, e := range t.DamageDealt {
		out = append(out, e)
	}
	for _, e := range t.Combos {
		out = append(out, e)
	}
	for _, e := range t.Edgeguards {
		out = append(out, e)
	}
	for _, e := range t.GotEdgeguarded {
		out = append(out, e)
	}
	for _, e := range t.MomentumSwings {
		out = append(out, e)
	}
	for _, e := range t.NeutralPhases {
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].When() != out[j].When() {
			return out[i].When() < out[j].When()
		}
		return kindOrder[out[i].Kind()] < kindOrder[out[j].Kind()]
	})
	return out
}

// EdgeguardsAgainst returns the edgeguard events where the given player
// was the victim.
func (t *Timeline) EdgeguardsAgainst(p Player) []EdgeguardEvent {
	if p == P1 {
		return t.GotEdgeguarded
	}
	return t.Edgeguards
}

func newTimeline() *Timeline {
	return &Timeline{
		StockLosses:    []StockLossEvent{},
		Kills:          []KillEvent{},
		DamageSpikes:   []DamageSpikeEvent{},
		DamageDealt:    []DamageDealtEvent{},
		Combos:         []ComboEvent{},
		Edgeguards:     []EdgeguardEvent{},
		GotEdgeguarded: []EdgeguardEvent{},
		MomentumSwings: []MomentumSwingEvent{},
		NeutralPhases:  []NeutralPhaseEvent{},
		Phases:         []GamePhase{},
		AfterDeath:     []AfterDeathWindow{},
		StageControl:   []StageControlSample{},
		TrueMaxPercent: map[Player]float64{P1: 0, P2: 0},
		Stats:          Stats{Winner: WinnerUnknown},
	}
}
