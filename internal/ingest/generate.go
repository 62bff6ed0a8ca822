package ingest

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/lvonguyen/incidentscope/internal/dataset"
)

// GeneratorConfig controls synthetic dataset generation. The fixed seed makes
// generation reproducible run to run for the same anchor time.
type GeneratorConfig struct {
	Seed int64 `yaml:"seed"`
	Days int   `yaml:"days"`
}

// DefaultGeneratorConfig mirrors the historical generator: seed 42, a 90-day
// incident horizon.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{Seed: 42, Days: 90}
}

var (
	generatorAttackTypes = []string{
		"DDoS", "SQL Injection", "XSS", "Malware", "Phishing",
		"Brute Force", "Ransomware", "Privilege Escalation", "Botnet",
	}

	generatorSeverities = []string{"Low", "Medium", "High", "Critical"}

	// Cumulative weights for Low .40, Medium .35, High .20, Critical .05.
	severityCumWeights = []float64{0.40, 0.75, 0.95, 1.0}
)

// Generate produces a synthetic incident table of n rows spanning cfg.Days
// days back from now, with canonical column names. The result goes through
// the same Build pipeline as uploaded files.
func Generate(n int, cfg GeneratorConfig) *Table {
	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Days <= 0 {
		cfg.Days = DefaultGeneratorConfig().Days
	}
	start := time.Now().AddDate(0, 0, -cfg.Days)

	t := &Table{
		Header: []string{
			string(ColTimestamp), string(ColAttackType), string(ColSeverity),
			string(ColSourceIP), string(ColTargetSystem), string(ColDuration),
			string(ColBlocked),
		},
		Rows: make([][]string, 0, n),
	}

	for i := 0; i < n; i++ {
		ts := start.Add(
			time.Duration(rng.Intn(cfg.Days))*24*time.Hour +
				time.Duration(rng.Intn(24))*time.Hour +
				time.Duration(rng.Intn(60))*time.Minute +
				time.Duration(rng.Intn(60))*time.Second,
		)

		blocked := "false"
		if rng.Float64() < 0.7 {
			blocked = "true"
		}

		t.Rows = append(t.Rows, []string{
			ts.Format("2006-01-02 15:04:05"),
			generatorAttackTypes[rng.Intn(len(generatorAttackTypes))],
			weightedSeverity(rng),
			fmt.Sprintf("%d.%d.%d.%d", 1+rng.Intn(254), rng.Intn(255), rng.Intn(255), rng.Intn(255)),
			fmt.Sprintf("server-%d", 1+rng.Intn(49)),
			fmt.Sprintf("%d", 5+rng.Intn(4995)),
			blocked,
		})
	}
	return t
}

// GenerateDataset generates and builds a synthetic dataset in one step.
func GenerateDataset(n int, cfg GeneratorConfig) (*dataset.Dataset, error) {
	return Build(Generate(n, cfg))
}

func weightedSeverity(rng *rand.Rand) string {
	r := rng.Float64()
	for i, w := range severityCumWeights {
		if r <= w {
			return generatorSeverities[i]
		}
	}
	return generatorSeverities[len(generatorSeverities)-1]
}
