package match

// buildEdgeguard scores the death at sample i as a possible offstage
// finish and returns an annotation when the score clears the floor. The
// signature of an edgeguard is a mid-percent death where the killer
// neither took nor dealt much damage leading in: the kill interrupted a
// recovery instead of ending a damage exchange.
func buildEdgeguard(smoothed []Sample, i int, victim Player, victimPercent float64, cfg Config) (EdgeguardEvent, bool) {
	killer := victim.Opponent()
	killerTaken := damageOver(smoothed, i, cfg.EdgeguardTakenFrames, killer)
	killerDealt := damageOver(smoothed, i, cfg.EdgeguardDealtFrames, victim)

	score := scoreEdgeguard(victimPercent, killerTaken, killerDealt, cfg)
	if score < cfg.EdgeguardScoreMin {
		return EdgeguardEvent{}, false
	}
	return EdgeguardEvent{
		Timestamp:         smoothed[i].Timestamp,
		Victim:            victim,
		VictimPercent:     victimPercent,
		KillerDamageTaken: killerTaken,
		DamageDealtBefore: killerDealt,
		Score:             score,
		Confident:         score >= cfg.EdgeguardConfident,
	}, true
}

// scoreEdgeguard awards one point per satisfied signal, four possible:
// death percent in the edgeguard band, killer barely touched, killer
// not mid-combo, and killer completely untouched.
func scoreEdgeguard(victimPercent, killerTaken, killerDealt float64, cfg Config) int {
	score := 0
	if victimPercent >= cfg.EdgeguardPctMin && victimPercent <= cfg.EdgeguardPctMax {
		score++
	}
	if killerTaken <= cfg.EdgeguardTakenMax {
		score++
	}
	if killerDealt < cfg.EdgeguardDealtMax {
		score++
	}
	if killerTaken < cfg.EdgeguardCleanTaken {
		score++
	}
	return score
}

// damageOver sums p's positive percent deltas across the frames
// [i-frames, i).
func damageOver(smoothed []Sample, i, frames int, p Player) float64 {
	start := max(0, i-frames)
	total := 0.0
	for j := start; j < i && j < len(smoothed); j++ {
		if j == 0 {
			continue
		}
		cur := valueOr(smoothed[j].Percent(p), 0)
		prev := valueOr(smoothed[j-1].Percent(p), 0)
		if delta := cur - prev; delta > 0 {
			total += delta
		}
	}
	return total
}
