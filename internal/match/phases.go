package match

import "math"

// computeGamePhases walks the smoothed series once, folding per-sample
// damage deltas into rolling dealt/taken accumulators. A transition is
// recorded only after the current phase survived PhaseMinDuration
// seconds; proximity to a confirmed death forces the after_death label
// over the damage differential. Once a phase is older than PhaseWindow
// seconds the accumulators are halved on every further sample, so stale
// damage decays instead of pinning the label.
func computeGamePhases(smoothed []Sample, losses []StockLossEvent, startTime float64, cfg Config) []GamePhase {
	phases := []GamePhase{}
	if len(smoothed) < 3 {
		return phases
	}

	deathTimes := make([]float64, len(losses))
	for i, l := range losses {
		deathTimes[i] = l.Timestamp
	}

	phaseStart := startTime
	current := PhaseNeutral
	dealtAcc, takenAcc := 0.0, 0.0
	var prevP1, prevP2 *float64

	for _, s := range smoothed {
		ts := s.Timestamp
		if ts < startTime {
			continue
		}
		p1 := carried(s.Percent(P1), prevP1)
		p2 := carried(s.Percent(P2), prevP2)

		takenAcc += clampedDelta(prevP1, p1)
		dealtAcc += clampedDelta(prevP2, p2)

		label := PhaseNeutral
		switch {
		case nearDeath(ts, deathTimes, cfg.PhaseDeathWindow):
			label = PhaseAfterDeath
		case dealtAcc > takenAcc+cfg.PhaseDiff:
			label = PhaseAdvantage
		case takenAcc > dealtAcc+cfg.PhaseDiff:
			label = PhaseDisadvantage
		}

		if label != current && ts-phaseStart >= cfg.PhaseMinDuration {
			phases = append(phases, GamePhase{
				Start:       round2(phaseStart),
				End:         round2(ts),
				Label:       current,
				DamageDealt: round1(dealtAcc),
				DamageTaken: round1(takenAcc),
			})
			current = label
			phaseStart = ts
			dealtAcc, takenAcc = 0, 0
		}

		if ts-phaseStart > cfg.PhaseWindow {
			dealtAcc *= 0.5
			takenAcc *= 0.5
		}

		prevP1, prevP2 = p1, p2
	}

	if finalTS := smoothed[len(smoothed)-1].Timestamp; finalTS > phaseStart {
		phases = append(phases, GamePhase{
			Start:       round2(phaseStart),
			End:         round2(finalTS),
			Label:       current,
			DamageDealt: round1(dealtAcc),
			DamageTaken: round1(takenAcc),
		})
	}
	return phases
}

// computeAfterDeath characterizes the analyzed player's re-entry after
// each non-final stock loss. The first AfterDeathSkip seconds are the
// death animation and are excluded; percents are seeded from the last
// reading before the window so the first in-window delta is real.
func computeAfterDeath(smoothed []Sample, losses []StockLossEvent, cfg Config) []AfterDeathWindow {
	windows := []AfterDeathWindow{}
	if len(smoothed) == 0 {
		return windows
	}
	for _, loss := range losses {
		if loss.StocksRemaining == 0 {
			continue
		}
		death := loss.Timestamp
		wStart := death + cfg.AfterDeathSkip
		wEnd := death + cfg.AfterDeathSpan

		taken, dealt := 0.0, 0.0
		var firstHit *float64
		var prevP1, prevP2 *float64
		for _, s := range smoothed {
			ts := s.Timestamp
			if ts < wStart {
				if v := s.Percent(P1); v != nil {
					prevP1 = v
				}
				if v := s.Percent(P2); v != nil {
					prevP2 = v
				}
				continue
			}
			if ts > wEnd {
				break
			}
			p1 := carried(s.Percent(P1), prevP1)
			p2 := carried(s.Percent(P2), prevP2)
			dTaken := clampedDelta(prevP1, p1)
			dDealt := clampedDelta(prevP2, p2)
			taken += dTaken
			dealt += dDealt
			if firstHit == nil && (dTaken > cfg.InteractionDelta || dDealt > cfg.InteractionDelta) {
				firstHit = ptrFloat(round2(ts - death))
			}
			prevP1, prevP2 = p1, p2
		}

		behavior := BehaviorNeutral
		switch {
		case taken > cfg.AfterDeathPanic && dealt < cfg.AfterDeathQuiet:
			behavior = BehaviorPanic
		case dealt > taken+cfg.AfterDeathAggrEdge:
			behavior = BehaviorAggressive
		case taken < cfg.AfterDeathQuiet && dealt < cfg.AfterDeathQuiet:
			behavior = BehaviorComposed
		}

		windows = append(windows, AfterDeathWindow{
			DeathTime:       round2(death),
			DamageTaken:     round1(taken),
			DamageDealt:     round1(dealt),
			TimeToFirstHit:  firstHit,
			Behavior:        behavior,
			StocksRemaining: loss.StocksRemaining,
		})
	}
	return windows
}

// computeStageControl samples the rolling ControlWindow damage
// differential at ControlInterval steps. Deltas before the match start
// are zeroed so menu noise never biases the opening readings.
func computeStageControl(smoothed []Sample, startTime float64, cfg Config) []StageControlSample {
	samples := []StageControlSample{}
	if len(smoothed) < 3 {
		return samples
	}

	type frameDelta struct {
		ts           float64
		dealt, taken float64
	}
	deltas := make([]frameDelta, 0, len(smoothed))
	var prevP1, prevP2 *float64
	for i, s := range smoothed {
		ts := s.Timestamp
		p1 := carried(s.Percent(P1), prevP1)
		p2 := carried(s.Percent(P2), prevP2)
		d := frameDelta{ts: ts}
		if i > 0 && ts >= startTime {
			d.taken = clampedDelta(prevP1, p1)
			d.dealt = clampedDelta(prevP2, p2)
		}
		deltas = append(deltas, d)
		prevP1, prevP2 = p1, p2
	}

	end := smoothed[len(smoothed)-1].Timestamp
	for t := math.Max(startTime, smoothed[0].Timestamp); t <= end; t += cfg.ControlInterval {
		dealt, taken := 0.0, 0.0
		for _, d := range deltas {
			if d.ts >= t-cfg.ControlWindow && d.ts <= t {
				dealt += d.dealt
				taken += d.taken
			}
		}
		samples = append(samples, StageControlSample{
			Timestamp:   round2(t),
			DamageDealt: round1(dealt),
			DamageTaken: round1(taken),
			Control:     round1(dealt - taken),
		})
	}
	return samples
}

func nearDeath(ts float64, deaths []float64, window float64) bool {
	for _, dt := range deaths {
		if diff := ts - dt; diff >= 0 && diff <= window {
			return true
		}
	}
	return false
}

// carried returns the current reading when present, otherwise the
// previous one.
func carried(cur, prev *float64) *float64 {
	if cur != nil {
		return cur
	}
	return prev
}

// clampedDelta is the positive percent movement between two carried
// readings, clamped to the per-frame cap so a respawn jump or OCR
// misread cannot swamp an accumulator.
func clampedDelta(prev, cur *float64) float64 {
	if prev == nil || cur == nil {
		return 0
	}
	d := *cur - *prev
	if d <= 0 {
		return 0
	}
	return math.Min(d, FrameDeltaCap)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round1(v float64) float64 { return math.Round(v*10) / 10 }
