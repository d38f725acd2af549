package match

// detectDamageSpike reports a qualifying "took damage quickly" event at
// sample i. prev and cur are the carried-forward percents for the
// analyzed player. Single-frame OCR jumps are rejected by the
// persistence check, gradual exchanges by the quick-accumulation check.
func detectDamageSpike(smoothed []Sample, i int, prev, cur float64, cfg Config) (DamageSpikeEvent, bool) {
	taken := cur - prev
	if taken < cfg.SpikeTakenMin || taken > cfg.SpikeTakenMax {
		return DamageSpikeEvent{}, false
	}
	if cur > cfg.MaxDeathPercent || prev > cfg.MaxDeathPercent {
		return DamageSpikeEvent{}, false
	}
	// A jump out of 0 at these magnitudes is menu/loading noise.
	if prev == 0 && cur > cfg.StartArtifactPct {
		return DamageSpikeEvent{}, false
	}
	if !verifySpikePersists(smoothed, i, P1, cur, cfg) {
		return DamageSpikeEvent{}, false
	}
	if !verifyQuickDamage(smoothed, i, P1, prev, cur, cfg) {
		return DamageSpikeEvent{}, false
	}
	return DamageSpikeEvent{
		Timestamp:   smoothed[i].Timestamp,
		Player:      P1,
		Damage:      taken,
		FromPercent: prev,
		ToPercent:   cur,
	}, true
}

// detectDamageDealt is the dealt-side mirror: lower floor, persistence
// only, no quick-accumulation requirement.
func detectDamageDealt(smoothed []Sample, i int, prev, cur float64, cfg Config) (DamageDealtEvent, bool) {
	dealt := cur - prev
	if dealt < cfg.SpikeDealtMin || dealt > cfg.SpikeDealtMax {
		return DamageDealtEvent{}, false
	}
	if cur > MaxPlausiblePercent || prev > MaxPlausiblePercent {
		return DamageDealtEvent{}, false
	}
	if prev == 0 && cur > cfg.StartArtifactPct {
		return DamageDealtEvent{}, false
	}
	if !verifySpikePersists(smoothed, i, P2, cur, cfg) {
		return DamageDealtEvent{}, false
	}
	return DamageDealtEvent{
		Timestamp:   smoothed[i].Timestamp,
		Player:      P2,
		Damage:      dealt,
		FromPercent: prev,
		ToPercent:   cur,
	}, true
}

// verifySpikePersists requires the elevated percent to hold, within
// tolerance, in at least one of the next SpikePersistCheck samples. No
// trailing samples means no corroboration: the jump is rejected.
func verifySpikePersists(smoothed []Sample, i int, p Player, expected float64, cfg Config) bool {
	framesToCheck := min(cfg.SpikePersistCheck, len(smoothed)-i-1)
	if framesToCheck < 1 {
		return false
	}
	for j := 1; j <= framesToCheck; j++ {
		if v := smoothed[i+j].Percent(p); v != nil && *v >= expected-cfg.SpikeTolerance {
			return true
		}
	}
	return false
}

// verifyQuickDamage distinguishes "got combo'd" from "traded hits": the
// accumulation from the pre-jump percent must span at most QuickWindow
// seconds, and damage dealt back inside that span must stay under
// QuickTradeRatio of the damage taken.
func verifyQuickDamage(smoothed []Sample, i int, p Player, from, to float64, cfg Config) bool {
	if i < 1 {
		return true
	}
	taken := to - from
	if taken < cfg.SpikeTakenMin {
		return false
	}

	// Walk back to the sample where this run of damage began. The +5
	// tolerance absorbs minor OCR wobble around the starting percent.
	start := i
	for j := 1; j < min(cfg.QuickLookback, i); j++ {
		if v := smoothed[i-j].Percent(p); v != nil && *v <= from+5 {
			start = i - j
			break
		}
	}
	if smoothed[i].Timestamp-smoothed[start].Timestamp > cfg.QuickWindow {
		return false
	}

	opp := p.Opponent()
	dealtBack := 0.0
	for j := start; j <= i; j++ {
		if j == 0 {
			continue
		}
		cur := valueOr(smoothed[j].Percent(opp), 0)
		prev := valueOr(smoothed[j-1].Percent(opp), 0)
		if delta := cur - prev; delta > 0 && delta < FrameDeltaCap {
			dealtBack += delta
		}
	}
	return dealtBack <= taken*cfg.QuickTradeRatio
}

// comboTracker accumulates an uninterrupted damage sequence against the
// opponent. Taking damage while dealing it is a trade and breaks the
// combo; so does rolling past ComboMaxSpan seconds or going quiet for
// ComboIdleTimeout. Accumulations below the retention floor are
// discarded silently, never emitted as zero-hit combos.
type comboTracker struct {
	cfg    Config
	active bool
	start  float64
	damage float64
	hits   int
	from   float64
	end    float64
}

func newComboTracker(cfg Config) *comboTracker {
	return &comboTracker{cfg: cfg}
}

// Observe folds one sample into the accumulator. dealt and taken are
// the carried-forward deltas at ts; prevTS is the previous processed
// timestamp; prevOpp and curOpp the opponent's carried percents. The
// returned event is valid only when ok is true.
func (c *comboTracker) Observe(ts, prevTS, dealt, taken, prevOpp, curOpp float64) (ComboEvent, bool) {
	capped := min(dealt, FrameDeltaCap)
	gotHit := taken > c.cfg.ComboBreakTaken

	if capped > c.cfg.ComboExtendDelta {
		if gotHit {
			// Trading mid-sequence: flush and reset.
			to := prevOpp
			if to == 0 {
				to = c.from + c.damage
			}
			ev, ok := c.qualify(prevTS, to)
			c.reset()
			return ev, ok
		}
		if !c.active {
			c.begin(ts, capped, prevOpp, curOpp)
			return ComboEvent{}, false
		}
		if ts-c.start > c.cfg.ComboMaxSpan {
			ev, ok := c.qualify(prevTS, c.end)
			c.begin(ts, capped, prevOpp, curOpp)
			return ev, ok
		}
		c.damage += capped
		c.hits++
		if curOpp != 0 {
			c.end = curOpp
		} else {
			c.end += capped
		}
		return ComboEvent{}, false
	}

	if gotHit {
		ev, ok := c.qualify(prevTS, c.toPercent(prevOpp))
		c.reset()
		return ev, ok
	}
	if c.active && ts-c.start > c.cfg.ComboIdleTimeout {
		ev, ok := c.qualify(prevTS, c.toPercent(prevOpp))
		c.reset()
		return ev, ok
	}
	return ComboEvent{}, false
}

func (c *comboTracker) begin(ts, capped, prevOpp, curOpp float64) {
	c.active = true
	c.start = ts
	c.from = prevOpp
	c.damage = capped
	c.hits = 1
	if curOpp != 0 {
		c.end = curOpp
	} else {
		c.end = c.from + capped
	}
}

func (c *comboTracker) toPercent(prevOpp float64) float64 {
	if c.end != 0 {
		return c.end
	}
	return prevOpp
}

func (c *comboTracker) qualify(end, to float64) (ComboEvent, bool) {
	if !c.active || c.hits < c.cfg.ComboMinHits || c.damage <= c.cfg.ComboMinDamage {
		return ComboEvent{}, false
	}
	return ComboEvent{
		Start:       c.start,
		End:         end,
		Damage:      min(c.damage, c.cfg.ComboDamageCap),
		FromPercent: c.from,
		ToPercent:   to,
		HitCount:    c.hits,
	}, true
}

func (c *comboTracker) reset() {
	*c = comboTracker{cfg: c.cfg}
}
