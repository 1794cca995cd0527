package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/coinsight/coinsight/internal/composite"
)

// weightsFile is the on-disk shape of the strategy table file
type weightsFile struct {
	Strategies map[string]struct {
		Risk           map[string]float64 `yaml:"risk"`
		Recommendation map[string]float64 `yaml:"recommendation"`
	} `yaml:"strategies"`
}

// LoadStrategies reads named weight strategies from a YAML file and
// validates each. Strategies not present in the file keep their built-in
// tables, so a partial file overriding only one strategy is fine.
func LoadStrategies(path string) (baseline, enriched composite.Strategy, err error) {
	baseline = composite.BaselineStrategy()
	enriched = composite.EnrichedStrategy()
	if path == "" {
		return baseline, enriched, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return baseline, enriched, fmt.Errorf("failed to read weights file %s: %w", path, err)
	}

	var file weightsFile
	if err := yaml.Unmarshal(b, &file); err != nil {
		return baseline, enriched, fmt.Errorf("failed to parse weights file: %w", err)
	}

	for name, raw := range file.Strategies {
		strategy := composite.Strategy{
			Name:           name,
			Risk:           tableFrom(raw.Risk),
			Recommendation: tableFrom(raw.Recommendation),
		}
		if err := strategy.Validate(); err != nil {
			return baseline, enriched, err
		}
		switch name {
		case "baseline":
			baseline = strategy
		case "enriched":
			enriched = strategy
		default:
			return baseline, enriched, fmt.Errorf("unknown strategy %q in weights file", name)
		}
	}

	return baseline, enriched, nil
}

func tableFrom(raw map[string]float64) composite.WeightTable {
	return composite.WeightTable{
		Technical:          raw["technical"],
		Sentiment:          raw["sentiment"],
		Liquidity:          raw["liquidity"],
		Fundamental:        raw["fundamental"],
		Concentration:      raw["concentration"],
		SuspiciousInverted: raw["suspicious_inverted"],
	}
}
