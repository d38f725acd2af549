package match

import "math"

// Engine reconstructs a MatchTimeline from a noisy telemetry stream. It
// holds only configuration: every per-match state machine is created
// inside Analyze and discarded with it, so one Engine may serve any
// number of concurrent matches.
type Engine struct {
	cfg Config
}

// New returns an Engine using the given thresholds.
func New(cfg Config) *Engine { return &Engine{cfg: cfg} }

// Analyze runs the full reconstruction: ingestion clamp, smoothing,
// start detection, one chronological detection pass, deduplication, and
// the phase computations. The input is never mutated and no state
// survives the call. A stream with fewer than two samples yields a
// timeline with stats only.
func (e *Engine) Analyze(raw []Sample) *Timeline {
	cfg := e.cfg
	tl := newTimeline()

	clamped := clampPercents(raw)
	tl.Stats = computeStats(clamped)
	if len(clamped) < 2 {
		return tl
	}

	smoothed := Smooth(clamped, cfg.SmoothingWindow)
	start, _ := DetectStart(smoothed, cfg)
	tl.MatchStart = start

	p1Track := NewStockTracker(P1, cfg)
	p2Track := NewStockTracker(P2, cfg)
	combos := newComboTracker(cfg)

	var (
		prevP1, prevP2 float64
		prevTS         float64
		started        bool
		gameOver       bool
		maxP1, maxP2   float64

		neutralActive        bool
		neutralStart         float64
		neutralP1, neutralP2 float64
	)

	for i := range smoothed {
		s := &smoothed[i]
		ts := s.Timestamp
		if ts < start {
			continue
		}
		if !started {
			prevTS = ts
			started = true
		}

		// Missing readings carry forward from the last known value.
		p1Pct := valueOr(s.Percent(P1), prevP1)
		p2Pct := valueOr(s.Percent(P2), prevP2)

		// Recent maxima fold the raw reading too: smoothing can
		// suppress the brief peak right before a death.
		p1Track.ObservePercent(clamped[i].Percent(P1), p1Pct)
		p2Track.ObservePercent(clamped[i].Percent(P2), p2Pct)
		maxP1 = math.Max(maxP1, p1Pct)
		maxP2 = math.Max(maxP2, p2Pct)

		p1Taken := math.Max(0, p1Pct-prevP1)
		p2Taken := math.Max(0, p2Pct-prevP2)

		if ev, ok := detectDamageSpike(smoothed, i, prevP1, p1Pct, cfg); ok {
			tl.DamageSpikes = append(tl.DamageSpikes, ev)
		}
		if ev, ok := detectDamageDealt(smoothed, i, prevP2, p2Pct, cfg); ok {
			tl.DamageDealt = append(tl.DamageDealt, ev)
		}
		if ev, ok := combos.Observe(ts, prevTS, p2Taken, p1Taken, prevP2, p2Pct); ok {
			tl.Combos = append(tl.Combos, ev)
		}
		prevTS = ts

		// Spike and combo accounting above still runs after the match
		// ends; everything below stops at the final death.
		if gameOver {
			continue
		}

		p1Loss, p1LossOK := p1Track.DetectLoss(smoothed, i, start)
		var p1ResetPct float64
		var p1ResetOK bool
		if !p1LossOK {
			p1ResetPct, p1ResetOK = p1Track.DetectPercentReset(smoothed, i, prevP1, p1Pct)
		}

		var p1Death float64
		p1Died := false
		switch {
		case p1LossOK:
			tl.StockLosses = append(tl.StockLosses, StockLossEvent{
				Timestamp:       ts,
				Player:          P1,
				Percent:         deathPercent(clamped, i, P1, p1Loss.deathPercent, cfg),
				StocksRemaining: p1Loss.newStocks,
			})
			p1Track.CommitLoss(p1Loss.newStocks)
			prevP1 = 0
			p1Death = p1Loss.deathPercent
			p1Died = true
			if p1Loss.newStocks == 0 {
				gameOver = true
			}
		case p1ResetOK:
			newStocks := max(0, p1Track.ConfirmedStocks()-1)
			tl.StockLosses = append(tl.StockLosses, StockLossEvent{
				Timestamp:       ts,
				Player:          P1,
				Percent:         deathPercent(clamped, i, P1, p1ResetPct, cfg),
				StocksRemaining: newStocks,
			})
			p1Track.CommitLoss(newStocks)
			prevP1 = 0
			p1Death = p1ResetPct
			p1Died = true
			if newStocks == 0 {
				gameOver = true
			}
		}

		p2Loss, p2LossOK := p2Track.DetectLoss(smoothed, i, start)
		var p2ResetPct float64
		var p2ResetOK bool
		if !p2LossOK {
			p2ResetPct, p2ResetOK = p2Track.DetectPercentReset(smoothed, i, prevP2, p2Pct)
		}

		var p2Death float64
		p2Died := false
		switch {
		case p2LossOK:
			tl.Kills = append(tl.Kills, KillEvent{
				Timestamp:               ts,
				OpponentPercent:         deathPercent(clamped, i, P2, p2Loss.deathPercent, cfg),
				OpponentStocksRemaining: p2Loss.newStocks,
			})
			p2Track.CommitLoss(p2Loss.newStocks)
			prevP2 = 0
			p2Death = p2Loss.deathPercent
			p2Died = true
			if p2Loss.newStocks == 0 {
				gameOver = true
			}
		case p2ResetOK:
			newStocks := max(0, p2Track.ConfirmedStocks()-1)
			tl.Kills = append(tl.Kills, KillEvent{
				Timestamp:               ts,
				OpponentPercent:         deathPercent(clamped, i, P2, p2ResetPct, cfg),
				OpponentStocksRemaining: newStocks,
			})
			p2Track.CommitLoss(newStocks)
			prevP2 = 0
			p2Death = p2ResetPct
			p2Died = true
			if newStocks == 0 {
				gameOver = true
			}
		}

		if gameOver {
			tl.MatchEnd = ts
		}

		// A final death can slip past stock detection entirely when the
		// loser's percent display simply vanishes. Synthesize the
		// match-ending event from a held high percent going unreadable
		// late in the stream.
		nearStreamEnd := float64(i) >= float64(len(smoothed))*cfg.FinalNullFraction
		if !gameOver && nearStreamEnd &&
			prevP1 >= cfg.FinalNullMinPct && s.Percent(P1) == nil &&
			!anySince(tl.StockLosses, ts-cfg.FinalNullQuiet) {
			tl.StockLosses = append(tl.StockLosses, StockLossEvent{
				Timestamp:       ts,
				Player:          P1,
				Percent:         prevP1,
				StocksRemaining: 0,
				GameEnder:       true,
			})
			tl.MatchEnd = ts
			gameOver = true
		}
		if !gameOver && nearStreamEnd &&
			prevP2 >= cfg.FinalNullMinPct && s.Percent(P2) == nil &&
			!anySince(tl.Kills, ts-cfg.FinalNullQuiet) {
			tl.Kills = append(tl.Kills, KillEvent{
				Timestamp:               ts,
				OpponentPercent:         prevP2,
				OpponentStocksRemaining: 0,
				GameWinner:              true,
			})
			tl.MatchEnd = ts
			gameOver = true
		}

		if p2Died {
			if ev, ok := buildEdgeguard(smoothed, i, P2, p2Death, cfg); ok {
				tl.Edgeguards = append(tl.Edgeguards, ev)
			}
		}
		if p1Died {
			if ev, ok := buildEdgeguard(smoothed, i, P1, p1Death, cfg); ok {
				tl.GotEdgeguarded = append(tl.GotEdgeguarded, ev)
			}
		}

		switch {
		case p2Taken > cfg.MomentumDealtMin && p1Taken < cfg.MomentumTakenQuiet:
			if swingSpaced(tl.MomentumSwings, ts, cfg.MomentumSpacing) {
				tl.MomentumSwings = append(tl.MomentumSwings, MomentumSwingEvent{
					Timestamp:   ts,
					Type:        SwingAdvantage,
					DamageDealt: p2Taken,
					DamageTaken: p1Taken,
				})
			}
		case p1Taken > cfg.MomentumTakenMin && p2Taken < cfg.MomentumDealtQuiet:
			if swingSpaced(tl.MomentumSwings, ts, cfg.MomentumSpacing) {
				tl.MomentumSwings = append(tl.MomentumSwings, MomentumSwingEvent{
					Timestamp:   ts,
					Type:        SwingDisadvantage,
					DamageDealt: p2Taken,
					DamageTaken: p1Taken,
				})
			}
		}

		// A lull only counts while both players are alive, engaged, and
		// away from any stock event.
		quiet := p1Taken+p2Taken < cfg.NeutralDamageMax &&
			p1Pct >= cfg.NeutralRespawnPct && p2Pct >= cfg.NeutralRespawnPct &&
			!anyEventNear(tl.StockLosses, ts, cfg.NeutralEventWindow) &&
			!anyEventNear(tl.Kills, ts, cfg.NeutralEventWindow) &&
			!recentDamage(smoothed, i, cfg)
		if quiet {
			if !neutralActive {
				neutralActive = true
				neutralStart = ts
				neutralP1, neutralP2 = p1Pct, p2Pct
			}
		} else {
			if neutralActive && ts-neutralStart > cfg.NeutralMinDuration {
				// Both endpoints unmoved means the readings may just be
				// stuck, not the players standing off.
				if math.Abs(p1Pct-neutralP1) > cfg.NeutralMoveMin || math.Abs(p2Pct-neutralP2) > cfg.NeutralMoveMin {
					tl.NeutralPhases = append(tl.NeutralPhases, NeutralPhaseEvent{
						Start:    neutralStart,
						End:      ts,
						Duration: ts - neutralStart,
					})
				}
			}
			neutralActive = false
		}

		prevP1, prevP2 = p1Pct, p2Pct
	}

	tl.StockLosses = dedupWindow(tl.StockLosses, cfg.DedupWindow, stockLossFinal)
	tl.Kills = dedupWindow(tl.Kills, cfg.DedupWindow, killFinal)

	tl.TrueMaxPercent[P1] = maxP1
	tl.TrueMaxPercent[P2] = maxP2

	tl.Phases = computeGamePhases(smoothed, tl.StockLosses, start, cfg)
	tl.AfterDeath = computeAfterDeath(smoothed, tl.StockLosses, cfg)
	tl.StageControl = computeStageControl(smoothed, start, cfg)

	return tl
}

// clampPercents copies the sample list, rejecting percent readings
// outside [0, MaxPlausiblePercent]. A rejected reading becomes missing
// and is carried forward downstream rather than trusted.
func clampPercents(raw []Sample) []Sample {
	out := make([]Sample, len(raw))
	copy(out, raw)
	for i := range out {
		if v := out[i].P1Percent; v != nil && (*v < 0 || *v > MaxPlausiblePercent) {
			out[i].P1Percent = nil
		}
		if v := out[i].P2Percent; v != nil && (*v < 0 || *v > MaxPlausiblePercent) {
			out[i].P2Percent = nil
		}
	}
	return out
}

// deathPercent resolves the percent to report for a death at sample i:
// the raw-series peak in the lookback window when one exists, otherwise
// the detector's fallback value.
func deathPercent(raw []Sample, i int, p Player, fallback float64, cfg Config) float64 {
	if peak := rawMaxBefore(raw, i, p, cfg.RawPeakLookback); peak > 0 {
		return peak
	}
	return fallback
}

// rawMaxBefore scans the raw percents in [i-lookback, i) for the
// player's peak.
func rawMaxBefore(raw []Sample, i int, p Player, lookback int) float64 {
	maxPct := 0.0
	for j := max(0, i-lookback); j < i && j < len(raw); j++ {
		if v := raw[j].Percent(p); v != nil && *v > maxPct {
			maxPct = *v
		}
	}
	return maxPct
}

// recentDamage reports whether either player's smoothed percent moved
// more than NeutralRecentDelta across any of the last NeutralRecentSpan
// sample pairs. OCR misses individual hits; this catches the residue.
func recentDamage(smoothed []Sample, i int, cfg Config) bool {
	for j := max(1, i-cfg.NeutralRecentSpan); j < i; j++ {
		for _, p := range []Player{P1, P2} {
			cur := valueOr(smoothed[j].Percent(p), 0)
			prev := valueOr(smoothed[j-1].Percent(p), 0)
			if cur > prev+cfg.NeutralRecentDelta {
				return true
			}
		}
	}
	return false
}

func swingSpaced(swings []MomentumSwingEvent, ts, spacing float64) bool {
	return len(swings) == 0 || ts-swings[len(swings)-1].Timestamp > spacing
}

func anySince[E Event](events []E, cutoff float64) bool {
	for _, e := range events {
		if e.When() >= cutoff {
			return true
		}
	}
	return false
}

func anyEventNear[E Event](events []E, ts, window float64) bool {
	for _, e := range events {
		if math.Abs(ts-e.When()) < window {
			return true
		}
	}
	return false
}
