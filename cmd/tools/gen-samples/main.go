// Command gen-samples generates noisy telemetry samples for testing analysis.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"math"
	"math/rand"
	"os"

	"github.com/ringside-data/stock.report/internal/match"
)

func main() {
	output := flag.String("o", "samples.json", "output path")
	seed := flag.Int64("seed", 1, "random seed")
	p1Char := flag.String("p1", "fox", "player one character")
	p2Char := flag.String("p2", "marth", "player two character")
	dropout := flag.Float64("dropout", 0.05, "per-field read dropout rate")
	misread := flag.Float64("misread", 0.03, "percent digit misread rate")
	spike := flag.Float64("spike", 0.01, "single-frame percent spike rate")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	samples := playMatch(rng)
	samples[0].P1Character = *p1Char
	samples[0].P2Character = *p2Char
	addNoise(rng, samples, *dropout, *misread, *spike)

	data, err := json.MarshalIndent(samples, "", "  ")
	if err != nil {
		log.Fatalf("marshal samples: %v", err)
	}
	if err := os.WriteFile(*output, append(data, '\n'), 0o644); err != nil {
		log.Fatalf("write %s: %v", *output, err)
	}
	log.Printf("%d samples, seed %d", len(samples), *seed)
	log.Printf("✓ Created: %s", *output)
}

// playMatch simulates one 3-stock match at 1Hz until a player runs out
// of stocks. The stream opens with a short idle run, both players at 0%
// and full stocks, the way a HUD reads before the first engagement. P2
// hits slightly harder so the match resolves instead of stalling.
func playMatch(rng *rand.Rand) []match.Sample {
	var samples []match.Sample
	p1, p2 := newFighter(58), newFighter(65)

	record := func(t int) {
		samples = append(samples, match.Sample{
			Timestamp: float64(t),
			P1Percent: floatPtr(p1.percent),
			P2Percent: floatPtr(p2.percent),
			P1Stocks:  intPtr(p1.stocks),
			P2Stocks:  intPtr(p2.stocks),
		})
	}

	const idle = 4
	for t := 0; ; t++ {
		record(t)
		if t < idle {
			continue
		}
		if p1.stocks == 0 || p2.stocks == 0 || t > 600 {
			// A few trailing frames so the end of the match is visible.
			for i := 1; i <= 3; i++ {
				record(t + i)
			}
			return samples
		}
		p1.takeHits(rng)
		p2.takeHits(rng)
	}
}

type fighter struct {
	stocks  int
	percent float64
	power   float64 // opponent's average damage per second of pressure
}

func newFighter(power float64) *fighter {
	return &fighter{stocks: 3, power: power}
}

// takeHits advances the fighter by one second of play. Damage arrives in
// bursts with quiet gaps between them, and death chance grows with percent.
func (f *fighter) takeHits(rng *rand.Rand) {
	if f.stocks == 0 {
		return
	}
	if rng.Float64() < 0.55 {
		f.percent += rng.Float64() * f.power / 2
	}
	kill := (f.percent - 60) / 400
	if rng.Float64() < kill {
		f.stocks--
		f.percent = 0
	}
}

// addNoise mutates samples in place with OCR-style read errors: dropped
// fields, misread percent digits, and single-frame percent spikes.
func addNoise(rng *rand.Rand, samples []match.Sample, dropout, misread, spike float64) {
	for i := range samples {
		s := &samples[i]
		if rng.Float64() < dropout {
			s.P1Percent = nil
		}
		if rng.Float64() < dropout {
			s.P2Percent = nil
		}
		if rng.Float64() < dropout {
			s.P1Stocks = nil
		}
		if rng.Float64() < dropout {
			s.P2Stocks = nil
		}
		s.P1Percent = misreadPercent(rng, s.P1Percent, misread)
		s.P2Percent = misreadPercent(rng, s.P2Percent, misread)
		if s.P1Percent != nil && rng.Float64() < spike {
			s.P1Percent = floatPtr(*s.P1Percent + 600)
		}
		if s.P2Percent != nil && rng.Float64() < spike {
			s.P2Percent = floatPtr(*s.P2Percent + 600)
		}
	}
}

// misreadPercent swaps one digit of the reading, the way OCR confuses
// similar glyphs (1 for 7, 3 for 8). Applied per sample, not per digit.
func misreadPercent(rng *rand.Rand, p *float64, rate float64) *float64 {
	if p == nil || rng.Float64() >= rate {
		return p
	}
	v := math.Floor(*p)
	digit := math.Pow(10, float64(rng.Intn(3)))
	old := math.Mod(math.Floor(v/digit), 10)
	swapped := v + (float64(rng.Intn(10))-old)*digit
	if swapped < 0 {
		swapped = 0
	}
	return floatPtr(swapped)
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
