package match

import "testing"

func TestScoreEdgeguard(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		name              string
		pct, taken, dealt float64
		want              int
	}{
		{"clean kill at mid percent", 90, 3, 10, 4},
		{"some recovery damage taken", 90, 10, 10, 3},
		{"victim too low in percent", 40, 3, 10, 3},
		{"combo kill, not a guard", 90, 20, 50, 1},
		{"boundaries inclusive", 50, 15, 29, 3},
		{"upper percent bound", 145, 4, 0, 4},
		{"past the upper bound", 146, 4, 0, 3},
		{"dealt at the cutoff", 90, 0, 30, 3},
	}
	for _, c := range cases {
		if got := scoreEdgeguard(c.pct, c.taken, c.dealt, cfg); got != c.want {
			t.Errorf("%s: score(%v, %v, %v) = %d, want %d",
				c.name, c.pct, c.taken, c.dealt, got, c.want)
		}
	}
}

func TestBuildEdgeguardConfident(t *testing.T) {
	// P1 chips P2 slowly without taking anything back, then P2 dies at
	// 92%: the canonical offstage kill.
	samples := []Sample{
		pcts(0, 20, 80),
		pcts(1, 20, 82),
		pcts(2, 20, 84),
		pcts(3, 20, 86),
		pcts(4, 20, 88),
		pcts(5, 20, 88),
		pcts(6, 20, 90),
		pcts(7, 20, 90),
		pcts(8, 20, 92),
		pcts(9, 20, 92),
		pcts(10, 20, 92),
		full(11, 20, 0, 3, 1),
	}
	ev, ok := buildEdgeguard(samples, 11, P2, 92, DefaultConfig())
	if !ok {
		t.Fatal("clean offstage kill not scored as an edgeguard")
	}
	if ev.Score != 4 || !ev.Confident {
		t.Errorf("score = %d confident = %v, want 4 true", ev.Score, ev.Confident)
	}
	if ev.Victim != P2 || ev.VictimPercent != 92 {
		t.Errorf("victim = %v at %v%%, want P2 at 92%%", ev.Victim, ev.VictimPercent)
	}
	if ev.KillerDamageTaken != 0 {
		t.Errorf("killer damage taken = %v, want 0", ev.KillerDamageTaken)
	}
	if ev.DamageDealtBefore != 12 {
		t.Errorf("damage dealt before = %v, want 12", ev.DamageDealtBefore)
	}
	if ev.Timestamp != 11 {
		t.Errorf("timestamp = %v, want 11", ev.Timestamp)
	}
}

func TestBuildEdgeguardNotConfident(t *testing.T) {
	// The killer ate some recovery damage: still an edgeguard, no
	// clean-kill bonus.
	samples := []Sample{
		pcts(0, 20, 80),
		pcts(1, 20, 84),
		pcts(2, 24, 86),
		pcts(3, 24, 88),
		pcts(4, 28, 90),
		pcts(5, 28, 92),
		full(6, 28, 0, 3, 1),
	}
	ev, ok := buildEdgeguard(samples, 6, P2, 92, DefaultConfig())
	if !ok {
		t.Fatal("edgeguard with minor trade rejected")
	}
	if ev.Score != 3 || ev.Confident {
		t.Errorf("score = %d confident = %v, want 3 false", ev.Score, ev.Confident)
	}
	if ev.KillerDamageTaken != 8 {
		t.Errorf("killer damage taken = %v, want 8", ev.KillerDamageTaken)
	}
}

func TestBuildEdgeguardRejectsComboKill(t *testing.T) {
	// A 45% burst straight into the kill is a combo finish, and the
	// killer traded 20 on the way in.
	samples := []Sample{
		pcts(0, 20, 50),
		pcts(1, 30, 65),
		pcts(2, 30, 80),
		pcts(3, 40, 95),
		full(4, 40, 0, 3, 1),
	}
	if _, ok := buildEdgeguard(samples, 4, P2, 95, DefaultConfig()); ok {
		t.Error("combo kill scored as an edgeguard")
	}
}

func TestDamageOverWindow(t *testing.T) {
	samples := []Sample{
		pcts(0, 0, 5),
		pcts(1, 10, 5),
		pcts(2, 15, 5),
		pcts(3, 40, 5),
		pcts(4, 45, 5),
	}

	// Two-frame window: deltas at j=2 and j=3 only; the detection
	// frame's own delta stays out.
	if got := damageOver(samples, 4, 2, P1); got != 30 {
		t.Errorf("two-frame window = %v, want 30", got)
	}

	// A window reaching past the stream start clamps and skips the
	// first sample, which has no predecessor.
	if got := damageOver(samples, 4, 10, P1); got != 40 {
		t.Errorf("clamped window = %v, want 40", got)
	}
}

func TestDamageOverIgnoresResets(t *testing.T) {
	// A respawn drop is a negative delta and never subtracts.
	samples := []Sample{
		pcts(0, 50, 5),
		pcts(1, 65, 5),
		pcts(2, 20, 5),
		pcts(3, 35, 5),
		pcts(4, 35, 5),
	}
	if got := damageOver(samples, 4, 10, P1); got != 30 {
		t.Errorf("sum across a reset = %v, want 30", got)
	}
}
