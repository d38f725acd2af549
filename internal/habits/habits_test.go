package habits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringside-data/stock.report/internal/match"
)

func habitByType(t *testing.T, habits []Habit, typ string) Habit {
	t.Helper()
	for _, h := range habits {
		if h.Type == typ {
			return h
		}
	}
	t.Fatalf("habit %q not found", typ)
	return Habit{}
}

func hasHabit(habits []Habit, typ string) bool {
	for _, h := range habits {
		if h.Type == typ {
			return true
		}
	}
	return false
}

func TestDetect_CleanMatch(t *testing.T) {
	t.Parallel()

	r := Detect(&match.Timeline{})
	require.NotNil(t, r)
	assert.Empty(t, r.Habits)
	assert.Equal(t, "No significant habits detected in this match.", r.Summary)
}

func TestDetectRecovery(t *testing.T) {
	t.Parallel()

	t.Run("repeated edgeguards flag a predictable recovery", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			GotEdgeguarded: []match.EdgeguardEvent{
				{Timestamp: 40, Victim: match.P1, VictimPercent: 85},
				{Timestamp: 90, Victim: match.P1, VictimPercent: 95},
			},
		}
		h := habitByType(t, Detect(tl).Habits, "recovery_predictable")
		assert.Equal(t, SeverityNotable, h.Severity)
		assert.Equal(t, 2, h.Occurrences)
		assert.Contains(t, h.Evidence, "Got edgeguarded 2 times (avg death at 90%)")
	})

	t.Run("three edgeguards escalate to critical", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			GotEdgeguarded: []match.EdgeguardEvent{
				{Timestamp: 30, VictimPercent: 80},
				{Timestamp: 60, VictimPercent: 90},
				{Timestamp: 90, VictimPercent: 100},
			},
		}
		h := habitByType(t, Detect(tl).Habits, "recovery_predictable")
		assert.Equal(t, SeverityCritical, h.Severity)
	})

	t.Run("single edgeguard is not a pattern", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			GotEdgeguarded: []match.EdgeguardEvent{{Timestamp: 30, VictimPercent: 80}},
		}
		assert.False(t, hasHabit(Detect(tl).Habits, "recovery_predictable"))
	})

	t.Run("deaths clustered in a narrow band", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			StockLosses: []match.StockLossEvent{
				{Timestamp: 40, Player: match.P1, Percent: 95, StocksRemaining: 2},
				{Timestamp: 90, Player: match.P1, Percent: 100, StocksRemaining: 1},
				{Timestamp: 140, Player: match.P1, Percent: 105, StocksRemaining: 0},
			},
		}
		h := habitByType(t, Detect(tl).Habits, "consistent_death_range")
		assert.Equal(t, SeverityNotable, h.Severity)
		assert.Equal(t, 3, h.Occurrences)
		assert.Contains(t, h.Evidence, "Lost 3 stocks all around 100% (spread: 5%)")
	})

	t.Run("wide death spread is fine", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			StockLosses: []match.StockLossEvent{
				{Timestamp: 40, Percent: 60, StocksRemaining: 2},
				{Timestamp: 90, Percent: 100, StocksRemaining: 1},
				{Timestamp: 140, Percent: 140, StocksRemaining: 0},
			},
		}
		assert.False(t, hasHabit(Detect(tl).Habits, "consistent_death_range"))
	})

	t.Run("clustered but late deaths are just good survival", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			StockLosses: []match.StockLossEvent{
				{Timestamp: 40, Percent: 130, StocksRemaining: 2},
				{Timestamp: 90, Percent: 135, StocksRemaining: 1},
				{Timestamp: 140, Percent: 140, StocksRemaining: 0},
			},
		}
		assert.False(t, hasHabit(Detect(tl).Habits, "consistent_death_range"))
	})

	t.Run("unreadable percents are skipped", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			StockLosses: []match.StockLossEvent{
				{Timestamp: 40, Percent: 0, StocksRemaining: 2},
				{Timestamp: 90, Percent: 95, StocksRemaining: 1},
				{Timestamp: 140, Percent: 100, StocksRemaining: 0},
			},
		}
		assert.False(t, hasHabit(Detect(tl).Habits, "consistent_death_range"))
	})
}

func TestDetectPostDeathPanic(t *testing.T) {
	t.Parallel()

	t.Run("two panicked respawns", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			AfterDeath: []match.AfterDeathWindow{
				{DeathTime: 40, DamageTaken: 30, Behavior: match.BehaviorPanic, StocksRemaining: 2},
				{DeathTime: 90, DamageTaken: 40, Behavior: match.BehaviorPanic, StocksRemaining: 1},
				{DeathTime: 140, DamageTaken: 2, Behavior: match.BehaviorComposed, StocksRemaining: 1},
			},
		}
		h := habitByType(t, Detect(tl).Habits, "post_death_panic")
		assert.Equal(t, SeverityNotable, h.Severity)
		assert.Equal(t, 2, h.Occurrences)
		assert.Contains(t, h.Evidence, "In 2 of 3 respawns, you took an average of 35% damage")
	})

	t.Run("three panicked respawns escalate to critical", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			AfterDeath: []match.AfterDeathWindow{
				{DeathTime: 40, DamageTaken: 25, Behavior: match.BehaviorPanic},
				{DeathTime: 90, DamageTaken: 30, Behavior: match.BehaviorPanic},
				{DeathTime: 140, DamageTaken: 35, Behavior: match.BehaviorPanic},
			},
		}
		h := habitByType(t, Detect(tl).Habits, "post_death_panic")
		assert.Equal(t, SeverityCritical, h.Severity)
	})

	t.Run("composed respawns stay quiet", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			AfterDeath: []match.AfterDeathWindow{
				{DeathTime: 40, DamageTaken: 30, Behavior: match.BehaviorPanic},
				{DeathTime: 90, DamageTaken: 2, Behavior: match.BehaviorComposed},
			},
		}
		assert.False(t, hasHabit(Detect(tl).Habits, "post_death_panic"))
	})
}

func TestDetectKillFishing(t *testing.T) {
	t.Parallel()

	t.Run("tight kill percent cluster", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			Kills: []match.KillEvent{
				{Timestamp: 40, OpponentPercent: 100},
				{Timestamp: 90, OpponentPercent: 105},
				{Timestamp: 140, OpponentPercent: 110},
			},
		}
		h := habitByType(t, Detect(tl).Habits, "kill_fishing")
		assert.Equal(t, SeverityNotable, h.Severity)
		assert.Equal(t, 3, h.Occurrences)
		assert.Contains(t, h.Evidence, "All 3 kills were around 105% (spread: 5%)")
	})

	t.Run("spread kills are not fishing", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			Kills: []match.KillEvent{
				{Timestamp: 40, OpponentPercent: 70},
				{Timestamp: 90, OpponentPercent: 100},
				{Timestamp: 140, OpponentPercent: 160},
			},
		}
		assert.False(t, hasHabit(Detect(tl).Habits, "kill_fishing"))
	})

	t.Run("spread right at the threshold does not fire", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			Kills: []match.KillEvent{
				{Timestamp: 40, OpponentPercent: 85},
				{Timestamp: 90, OpponentPercent: 100},
				{Timestamp: 140, OpponentPercent: 115},
			},
		}
		assert.False(t, hasHabit(Detect(tl).Habits, "kill_fishing"))
	})

	t.Run("zero percents do not count as evidence", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			Kills: []match.KillEvent{
				{Timestamp: 40, OpponentPercent: 0},
				{Timestamp: 90, OpponentPercent: 100},
				{Timestamp: 140, OpponentPercent: 105},
			},
		}
		assert.False(t, hasHabit(Detect(tl).Habits, "kill_fishing"))
	})
}

func TestDetectNeutralTendency(t *testing.T) {
	t.Parallel()

	spikes := func(n int) []match.DamageSpikeEvent {
		out := make([]match.DamageSpikeEvent, n)
		for i := range out {
			out[i] = match.DamageSpikeEvent{Timestamp: float64(10 * (i + 1)), Player: match.P1, Damage: 15}
		}
		return out
	}
	dealt := func(n int) []match.DamageDealtEvent {
		out := make([]match.DamageDealtEvent, n)
		for i := range out {
			out[i] = match.DamageDealtEvent{Timestamp: float64(10*(i+1) + 5), Player: match.P2, Damage: 15}
		}
		return out
	}

	t.Run("taking far more hits than landing reads passive", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{DamageDealt: dealt(1), DamageSpikes: spikes(5)}
		h := habitByType(t, Detect(tl).Habits, "passive_neutral")
		assert.Equal(t, SeverityNotable, h.Severity)
		assert.Equal(t, 5, h.Occurrences)
		assert.Contains(t, h.Evidence, "Landed 1 significant hits but took 5 damage spikes")
	})

	t.Run("mild passivity is only informational", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{DamageDealt: dealt(1), DamageSpikes: spikes(4)}
		h := habitByType(t, Detect(tl).Habits, "passive_neutral")
		assert.Equal(t, SeverityInfo, h.Severity)
	})

	t.Run("landing far more than taking reads overaggressive", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{DamageDealt: dealt(6), DamageSpikes: spikes(2)}
		h := habitByType(t, Detect(tl).Habits, "overaggressive_neutral")
		assert.Equal(t, SeverityInfo, h.Severity)
		assert.Equal(t, 6, h.Occurrences)
	})

	t.Run("too few exchanges to judge", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{DamageDealt: dealt(1), DamageSpikes: spikes(2)}
		r := Detect(tl)
		assert.False(t, hasHabit(r.Habits, "passive_neutral"))
		assert.False(t, hasHabit(r.Habits, "overaggressive_neutral"))
	})

	t.Run("frequent swings in both directions read volatile", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			MomentumSwings: []match.MomentumSwingEvent{
				{Timestamp: 10, Type: match.SwingAdvantage},
				{Timestamp: 20, Type: match.SwingDisadvantage},
				{Timestamp: 30, Type: match.SwingAdvantage},
				{Timestamp: 40, Type: match.SwingDisadvantage},
				{Timestamp: 50, Type: match.SwingAdvantage},
			},
		}
		h := habitByType(t, Detect(tl).Habits, "momentum_volatile")
		assert.Equal(t, SeverityInfo, h.Severity)
		assert.Equal(t, 5, h.Occurrences)
	})

	t.Run("four swings are not volatile yet", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			MomentumSwings: []match.MomentumSwingEvent{
				{Timestamp: 10, Type: match.SwingAdvantage},
				{Timestamp: 20, Type: match.SwingDisadvantage},
				{Timestamp: 30, Type: match.SwingAdvantage},
				{Timestamp: 40, Type: match.SwingDisadvantage},
			},
		}
		assert.False(t, hasHabit(Detect(tl).Habits, "momentum_volatile"))
	})
}

func TestDetectDamageTrading(t *testing.T) {
	t.Parallel()

	t.Run("rapid reversals count as trades", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			MomentumSwings: []match.MomentumSwingEvent{
				{Timestamp: 10, Type: match.SwingAdvantage},
				{Timestamp: 11, Type: match.SwingDisadvantage},
				{Timestamp: 12, Type: match.SwingAdvantage},
				{Timestamp: 13, Type: match.SwingDisadvantage},
				{Timestamp: 14, Type: match.SwingAdvantage},
			},
		}
		h := habitByType(t, Detect(tl).Habits, "damage_trading")
		assert.Equal(t, SeverityNotable, h.Severity)
		assert.Equal(t, 4, h.Occurrences)
		assert.Contains(t, h.Evidence, "4 rapid momentum reversals")
	})

	t.Run("three trades are informational", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			MomentumSwings: []match.MomentumSwingEvent{
				{Timestamp: 10, Type: match.SwingAdvantage},
				{Timestamp: 11, Type: match.SwingDisadvantage},
				{Timestamp: 12, Type: match.SwingAdvantage},
				{Timestamp: 13, Type: match.SwingDisadvantage},
			},
		}
		h := habitByType(t, Detect(tl).Habits, "damage_trading")
		assert.Equal(t, SeverityInfo, h.Severity)
		assert.Equal(t, 3, h.Occurrences)
	})

	t.Run("slow reversals are not trades", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			MomentumSwings: []match.MomentumSwingEvent{
				{Timestamp: 10, Type: match.SwingAdvantage},
				{Timestamp: 20, Type: match.SwingDisadvantage},
				{Timestamp: 30, Type: match.SwingAdvantage},
				{Timestamp: 40, Type: match.SwingDisadvantage},
				{Timestamp: 50, Type: match.SwingAdvantage},
			},
		}
		assert.False(t, hasHabit(Detect(tl).Habits, "damage_trading"))
	})

	t.Run("same-direction swings are not trades", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			MomentumSwings: []match.MomentumSwingEvent{
				{Timestamp: 10, Type: match.SwingAdvantage},
				{Timestamp: 11, Type: match.SwingAdvantage},
				{Timestamp: 12, Type: match.SwingAdvantage},
				{Timestamp: 13, Type: match.SwingAdvantage},
			},
		}
		assert.False(t, hasHabit(Detect(tl).Habits, "damage_trading"))
	})
}

func TestDetectEarlyDeaths(t *testing.T) {
	t.Parallel()

	t.Run("two cheap deaths", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			StockLosses: []match.StockLossEvent{
				{Timestamp: 40, Percent: 55, StocksRemaining: 2},
				{Timestamp: 90, Percent: 65, StocksRemaining: 1},
			},
		}
		h := habitByType(t, Detect(tl).Habits, "early_deaths")
		assert.Equal(t, SeverityNotable, h.Severity)
		assert.Equal(t, 2, h.Occurrences)
		assert.Contains(t, h.Evidence, "Lost 2 stocks below 80% (avg: 60%)")
	})

	t.Run("three cheap deaths escalate to critical", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			StockLosses: []match.StockLossEvent{
				{Timestamp: 40, Percent: 50, StocksRemaining: 2},
				{Timestamp: 90, Percent: 60, StocksRemaining: 1},
				{Timestamp: 140, Percent: 70, StocksRemaining: 1},
			},
		}
		h := habitByType(t, Detect(tl).Habits, "early_deaths")
		assert.Equal(t, SeverityCritical, h.Severity)
	})

	t.Run("the game-ending stock is exempt", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			StockLosses: []match.StockLossEvent{
				{Timestamp: 40, Percent: 55, StocksRemaining: 1},
				{Timestamp: 90, Percent: 65, StocksRemaining: 0, GameEnder: true},
			},
		}
		assert.False(t, hasHabit(Detect(tl).Habits, "early_deaths"))
	})

	t.Run("healthy death percents stay quiet", func(t *testing.T) {
		t.Parallel()
		tl := &match.Timeline{
			StockLosses: []match.StockLossEvent{
				{Timestamp: 40, Percent: 110, StocksRemaining: 2},
				{Timestamp: 90, Percent: 125, StocksRemaining: 1},
			},
		}
		assert.False(t, hasHabit(Detect(tl).Habits, "early_deaths"))
	})
}

func TestDetect_OrderingAndSummary(t *testing.T) {
	t.Parallel()

	tl := &match.Timeline{
		StockLosses: []match.StockLossEvent{
			{Timestamp: 40, Player: match.P1, Percent: 50, StocksRemaining: 2},
			{Timestamp: 90, Player: match.P1, Percent: 60, StocksRemaining: 1},
			{Timestamp: 140, Player: match.P1, Percent: 70, StocksRemaining: 1},
		},
		GotEdgeguarded: []match.EdgeguardEvent{
			{Timestamp: 40, Victim: match.P1, VictimPercent: 50},
			{Timestamp: 90, Victim: match.P1, VictimPercent: 60},
		},
		MomentumSwings: []match.MomentumSwingEvent{
			{Timestamp: 10, Type: match.SwingAdvantage},
			{Timestamp: 11, Type: match.SwingDisadvantage},
			{Timestamp: 12, Type: match.SwingAdvantage},
			{Timestamp: 13, Type: match.SwingDisadvantage},
			{Timestamp: 100, Type: match.SwingAdvantage},
		},
	}

	r := Detect(tl)
	require.Len(t, r.Habits, 5)

	types := make([]string, len(r.Habits))
	for i, h := range r.Habits {
		types[i] = h.Type
	}
	assert.Equal(t, []string{
		"early_deaths",
		"recovery_predictable",
		"consistent_death_range",
		"momentum_volatile",
		"damage_trading",
	}, types, "critical first, then notable and info in detector order")

	assert.Equal(t,
		"1 critical habit found: dying at low percent: possible di or positioning issue. "+
			"2 notable patterns: predictable recovery pattern, dying in a narrow percent range.",
		r.Summary)
}

func TestBuildSummary_OnlyInfo(t *testing.T) {
	t.Parallel()

	tl := &match.Timeline{
		MomentumSwings: []match.MomentumSwingEvent{
			{Timestamp: 10, Type: match.SwingAdvantage},
			{Timestamp: 25, Type: match.SwingDisadvantage},
			{Timestamp: 50, Type: match.SwingAdvantage},
			{Timestamp: 75, Type: match.SwingDisadvantage},
			{Timestamp: 100, Type: match.SwingAdvantage},
		},
	}

	r := Detect(tl)
	require.Len(t, r.Habits, 1)
	assert.Equal(t, SeverityInfo, r.Habits[0].Severity)
	assert.Equal(t, "Minor tendencies detected; keep playing to build a clearer picture.", r.Summary)
}
