package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	engine "github.com/tierflow/tierflow/engine"
)

// Define struct for YAML
type ProfileConfig struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

type Profile struct {
	Cost            float64 `yaml:"cost"`
	LatencyBaseMs   float64 `yaml:"latency_base_ms"`
	LatencyJitterMs float64 `yaml:"latency_jitter_ms"`
}

// GetTierProfiles loads a yaml tier profile file and overlays it on the
// built-in cost table. Tiers absent from the file keep their defaults.
func GetTierProfiles(profileFilePath string) map[engine.Tier]engine.TierProfile {
	// Read YAML file
	data, err := os.ReadFile(profileFilePath)
	if err != nil {
		logrus.Fatalf("Could not read profile file %s: %v", profileFilePath, err)
	}

	// Parse YAML
	var cfg ProfileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logrus.Fatalf("Could not parse profile file %s: %v", profileFilePath, err)
	}

	profiles := engine.DefaultProfiles()
	for name, p := range cfg.Profiles {
		tier := engine.Tier(name)
		if !tier.Valid() {
			logrus.Fatalf("Unknown tier %q in profile file %s", name, profileFilePath)
		}
		logrus.Infof("Using profile override for tier %v", tier)
		profiles[tier] = engine.TierProfile{
			Cost:            p.Cost,
			LatencyBaseMs:   p.LatencyBaseMs,
			LatencyJitterMs: p.LatencyJitterMs,
		}
	}
	return profiles
}
