package match

// Constants shared by several detectors.
const (
	// MaxPlausiblePercent is the ingestion clamp: percent readings
	// outside [0, MaxPlausiblePercent] are rejected as unreadable.
	MaxPlausiblePercent = 200.0
	// StartingStocks is the stock count both players begin with.
	StartingStocks = 3
	// FrameDeltaCap bounds a single inter-sample percent delta when
	// accumulating damage; larger jumps are OCR misreads.
	FrameDeltaCap = 60.0
)

// Config holds the engine's detection thresholds. Zero values are not
// meaningful; start from DefaultConfig and override selectively.
type Config struct {
	// Smoother
	SmoothingWindow int // centered median/mode window size

	// StartBoundaryDetector
	StartRunLength     int     // consecutive clean samples required
	StartPercentMax    float64 // both players at or below this percent
	StartFallbackAfter float64 // fallback skips samples before this time (s)

	// StockTracker
	RawPeakLookback    int     // raw samples scanned for the death percent
	MinDeathPercent    float64 // max-recent floor for a confirmed loss
	EarlyDeathPercent  float64 // relaxed floor early in the match
	EarlyWindow        float64 // seconds of match considered "early"
	MaxDeathPercent    float64 // max-recent ceiling (rejects OCR like 188)
	PriorFrames        int     // samples before i checked for higher stocks
	PriorRequired      int     // how many of those must read >= confirmed
	PersistFrames      int     // samples after i checked for the lower value
	PersistRequired    int     // how many of those must hold it
	PersistNearEnd     int     // relaxed requirement near the stream end
	NearEndFraction    float64 // fraction of stream considered "near end"
	RespawnPercent     float64 // percent confirming a respawn reset
	RespawnFrames      int     // samples allowed for the reset to appear
	ResetMinMax        float64 // percent-reset fallback: max-recent floor
	ResetMaxNow        float64 // percent-reset fallback: current ceiling
	ResetPrevMin       float64 // percent-reset fallback: previous floor
	ResetPersistFrames int     // samples checked for the low value
	ResetPersistMax    float64 // future percent counting as still low
	FinalNullMinPct    float64 // end-of-stream synthesis: held percent
	FinalNullFraction  float64 // synthesis only in this trailing fraction
	FinalNullQuiet     float64 // seconds with no prior event required

	// DamageEventDetector
	SpikeTakenMin     float64 // taken-spike lower bound
	SpikeTakenMax     float64 // taken-spike upper bound
	SpikeDealtMin     float64 // dealt-spike lower bound
	SpikeDealtMax     float64 // dealt-spike upper bound
	SpikePersistCheck int     // future samples inspected for persistence
	SpikeTolerance    float64 // allowed sag below the elevated percent
	StartArtifactPct  float64 // prev==0 jumps above this are menu noise
	QuickWindow       float64 // max seconds for "quick" accumulation
	QuickLookback     int     // samples walked back to find the run start
	QuickTradeRatio   float64 // dealt-back fraction disqualifying a spike
	ComboExtendDelta  float64 // dealt percent extending a combo
	ComboBreakTaken   float64 // taken percent breaking a combo
	ComboMaxSpan      float64 // seconds before a combo rolls over
	ComboIdleTimeout  float64 // quiet seconds before a combo flushes
	ComboMinHits      int     // retention floor
	ComboMinDamage    float64 // retention floor
	ComboDamageCap    float64 // total damage ceiling on emission

	// EdgeguardHeuristic
	EdgeguardPctMin      float64 // kill percent window
	EdgeguardPctMax      float64
	EdgeguardDealtMax    float64 // killer dealt less than this before
	EdgeguardTakenMax    float64 // killer took at most this
	EdgeguardCleanTaken  float64 // bonus point threshold
	EdgeguardDealtFrames int     // lookback for killer-dealt damage (~5s)
	EdgeguardTakenFrames int     // lookback for killer-taken damage (~3s)
	EdgeguardScoreMin    int     // points required to label
	EdgeguardConfident   int     // points for high confidence

	// Momentum swings
	MomentumDealtMin   float64
	MomentumTakenQuiet float64
	MomentumTakenMin   float64
	MomentumDealtQuiet float64
	MomentumSpacing    float64 // min seconds between recorded swings

	// Neutral phases
	NeutralDamageMax   float64 // per-sample damage ending a lull
	NeutralRespawnPct  float64 // either player below this = respawning
	NeutralEventWindow float64 // seconds around stock events excluded
	NeutralRecentSpan  int     // recent samples scanned for damage
	NeutralRecentDelta float64 // delta counting as recent damage
	NeutralMinDuration float64 // seconds before a lull is reportable
	NeutralMoveMin     float64 // endpoint movement ruling out stuck OCR

	// Deduplicator
	DedupWindow float64 // seconds

	// PhaseSegmenter
	PhaseWindow      float64 // accumulator half-life boundary (s)
	PhaseDiff        float64 // differential crossing a phase boundary
	PhaseDeathWindow float64 // seconds after a death forced after_death
	PhaseMinDuration float64 // seconds before a transition records

	// After-death windows
	AfterDeathSkip     float64 // death animation skip (s)
	AfterDeathSpan     float64 // window length from death (s)
	AfterDeathPanic    float64 // taken above this = panic
	AfterDeathQuiet    float64 // dealt/taken below this = quiet
	InteractionDelta   float64 // per-sample damage counting as contact
	AfterDeathAggrEdge float64 // dealt must exceed taken by this

	// Stage control
	ControlInterval float64 // sampling period (s)
	ControlWindow   float64 // trailing window (s)
}

// DefaultConfig returns the tuned production thresholds.
func DefaultConfig() Config {
	return Config{
		SmoothingWindow: 5,

		StartRunLength:     3,
		StartPercentMax:    5,
		StartFallbackAfter: 5,

		RawPeakLookback:    60,
		MinDeathPercent:    50,
		EarlyDeathPercent:  35,
		EarlyWindow:        20,
		MaxDeathPercent:    180,
		PriorFrames:        3,
		PriorRequired:      2,
		PersistFrames:      5,
		PersistRequired:    4,
		PersistNearEnd:     1,
		NearEndFraction:    0.9,
		RespawnPercent:     15,
		RespawnFrames:      5,
		ResetMinMax:        60,
		ResetMaxNow:        15,
		ResetPrevMin:       30,
		ResetPersistFrames: 2,
		ResetPersistMax:    20,
		FinalNullMinPct:    60,
		FinalNullFraction:  0.75,
		FinalNullQuiet:     2,

		SpikeTakenMin:     20,
		SpikeTakenMax:     80,
		SpikeDealtMin:     15,
		SpikeDealtMax:     80,
		SpikePersistCheck: 2,
		SpikeTolerance:    20,
		StartArtifactPct:  60,
		QuickWindow:       5,
		QuickLookback:     15,
		QuickTradeRatio:   0.3,
		ComboExtendDelta:  8,
		ComboBreakTaken:   5,
		ComboMaxSpan:      5,
		ComboIdleTimeout:  3,
		ComboMinHits:      3,
		ComboMinDamage:    25,
		ComboDamageCap:    100,

		EdgeguardPctMin:      50,
		EdgeguardPctMax:      145,
		EdgeguardDealtMax:    30,
		EdgeguardTakenMax:    15,
		EdgeguardCleanTaken:  5,
		EdgeguardDealtFrames: 15,
		EdgeguardTakenFrames: 10,
		EdgeguardScoreMin:    3,
		EdgeguardConfident:   4,

		MomentumDealtMin:   10,
		MomentumTakenQuiet: 5,
		MomentumTakenMin:   20,
		MomentumDealtQuiet: 5,
		MomentumSpacing:    5,

		NeutralDamageMax:   3,
		NeutralRespawnPct:  5,
		NeutralEventWindow: 10,
		NeutralRecentSpan:  5,
		NeutralRecentDelta: 3,
		NeutralMinDuration: 6,
		NeutralMoveMin:     2,

		DedupWindow: 5,

		PhaseWindow:      3,
		PhaseDiff:        10,
		PhaseDeathWindow: 5,
		PhaseMinDuration: 1,

		AfterDeathSkip:     0.5,
		AfterDeathSpan:     5,
		AfterDeathPanic:    25,
		AfterDeathQuiet:    10,
		InteractionDelta:   3,
		AfterDeathAggrEdge: 10,

		ControlInterval: 1,
		ControlWindow:   3,
	}
}
