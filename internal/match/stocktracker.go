package match

// StockTracker confirms stock losses for one player. Stock-count OCR is
// itself noisy, so a candidate loss must survive a validation chain
// before it is believed, and a percent-reset fallback catches deaths
// the stock digits never showed. The tracker holds the two pieces of
// state the validations hinge on: the confirmed stock count (which only
// ever decreases) and the maximum percent seen since the last confirmed
// death.
type StockTracker struct {
	player    Player
	cfg       Config
	confirmed int
	maxRecent float64
}

// NewStockTracker returns a tracker starting at the full stock count.
func NewStockTracker(player Player, cfg Config) *StockTracker {
	return &StockTracker{player: player, cfg: cfg, confirmed: StartingStocks}
}

// Player returns the tracked player.
func (t *StockTracker) Player() Player { return t.player }

// ConfirmedStocks returns the last confirmed stock count.
func (t *StockTracker) ConfirmedStocks() int { return t.confirmed }

// MaxRecentPercent returns the highest percent observed since the last
// confirmed death.
func (t *StockTracker) MaxRecentPercent() float64 { return t.maxRecent }

// ObservePercent folds one sample's readings into the recent maximum.
// Both the raw and the carried smoothed value participate: smoothing
// can suppress a brief peak right before a death, and that peak is
// exactly what the loss validations need.
func (t *StockTracker) ObservePercent(raw *float64, carried float64) {
	if raw != nil && *raw > t.maxRecent {
		t.maxRecent = *raw
	}
	if carried > t.maxRecent {
		t.maxRecent = carried
	}
}

// CommitLoss records a confirmed death at the new stock count and
// resets the recent percent maximum for the next life.
func (t *StockTracker) CommitLoss(newStocks int) {
	if newStocks < 0 {
		newStocks = 0
	}
	t.confirmed = newStocks
	t.maxRecent = 0
}

// lossResult is a confirmed detection before the engine records it.
// deathPercent is the tracker's recent maximum; the engine substitutes
// the raw-window peak when one exists.
type lossResult struct {
	newStocks    int
	deathPercent float64
}

// DetectLoss runs the stock-count-driven validation chain at sample i
// of the smoothed sequence:
//
//  1. the raw stock value must be strictly below the confirmed count;
//  2. the recent percent maximum must be plausible for a death: at
//     least MinDeathPercent (EarlyDeathPercent inside the first
//     EarlyWindow seconds) and at most MaxDeathPercent;
//  3. stocks must have read at or above the confirmed count in at
//     least PriorRequired of the PriorFrames samples before i;
//  4. the lower value must persist in PersistRequired of the next
//     PersistFrames samples, relaxed near the end of the stream where
//     a final death may have no trailing readings;
//  5. a drop to 0 is the match-ending death: persistence is relaxed
//     and the respawn check is skipped, the match simply ends;
//  6. otherwise the percent must fall below RespawnPercent within the
//     next RespawnFrames samples, confirming an actual respawn.
func (t *StockTracker) DetectLoss(smoothed []Sample, i int, startTime float64) (lossResult, bool) {
	cfg := t.cfg
	if i < cfg.PriorFrames {
		return lossResult{}, false
	}
	nearEnd := float64(i) >= float64(len(smoothed))*cfg.NearEndFraction

	cur := smoothed[i].Stocks(t.player)
	if cur == nil || *cur >= t.confirmed {
		return lossResult{}, false
	}

	floor := cfg.MinDeathPercent
	if smoothed[i].Timestamp-startTime <= cfg.EarlyWindow {
		floor = cfg.EarlyDeathPercent
	}
	if t.maxRecent < floor || t.maxRecent > cfg.MaxDeathPercent {
		return lossResult{}, false
	}

	priorHigher := 0
	for j := 1; j <= cfg.PriorFrames && i-j >= 0; j++ {
		if v := smoothed[i-j].Stocks(t.player); v != nil && *v >= t.confirmed {
			priorHigher++
		}
	}
	if priorHigher < cfg.PriorRequired {
		return lossResult{}, false
	}

	framesToCheck := min(cfg.PersistFrames, len(smoothed)-i-1)
	persisting := 0
	for j := 1; j <= framesToCheck; j++ {
		if v := smoothed[i+j].Stocks(t.player); v != nil && *v <= *cur {
			persisting++
		}
	}
	required := cfg.PersistRequired
	if nearEnd {
		required = cfg.PersistNearEnd
	}
	if nearEnd && *cur == 0 && framesToCheck < required {
		return lossResult{newStocks: 0, deathPercent: t.maxRecent}, true
	}
	if persisting < required && framesToCheck >= required {
		return lossResult{}, false
	}

	if *cur == 0 {
		return lossResult{newStocks: 0, deathPercent: t.maxRecent}, true
	}

	reset := false
	for j := 1; j <= cfg.RespawnFrames && i+j < len(smoothed); j++ {
		if v := smoothed[i+j].Percent(t.player); v != nil && *v < cfg.RespawnPercent {
			reset = true
			break
		}
	}
	if !reset {
		return lossResult{}, false
	}

	return lossResult{newStocks: *cur, deathPercent: t.maxRecent}, true
}

// DetectPercentReset is the fallback for unreliable stock digits: a
// percent collapsing from a high recent maximum to respawn level is the
// unambiguous respawn-to-zero mechanic. prevPercent and curPercent are
// the carried-forward values for this player at samples i-1 and i. The
// returned percent is the recent maximum at the moment of death.
func (t *StockTracker) DetectPercentReset(smoothed []Sample, i int, prevPercent, curPercent float64) (float64, bool) {
	cfg := t.cfg
	if i < 2 || i >= len(smoothed)-2 {
		return 0, false
	}
	if t.maxRecent < cfg.ResetMinMax {
		return 0, false
	}
	if curPercent > cfg.ResetMaxNow {
		return 0, false
	}
	// A still-low previous percent means this reset was already counted.
	if prevPercent < cfg.ResetPrevMin {
		return 0, false
	}

	persist := 0
	for j := 1; j <= cfg.ResetPersistFrames && i+j < len(smoothed); j++ {
		if v := smoothed[i+j].Percent(t.player); v != nil && *v <= cfg.ResetPersistMax {
			persist++
		}
	}
	if persist < 1 {
		return 0, false
	}
	return t.maxRecent, true
}
