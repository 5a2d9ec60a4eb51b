package utils

import (
	"github.com/newrelic/go-agent/v3/newrelic"
)

const DEFAULT_APP_NAME = "Attio Relay"

// NewTelemetry creates the New Relic application. It returns a nil application,
// which every caller treats as "telemetry disabled", when no license key is set
func NewTelemetry(cfg *Config) (*newrelic.Application, error) {
	license := cfg.Get("NEW_RELIC_LICENSE_KEY")
	if license == "" {
		return nil, nil
	}

	return newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.GetWithDefault("NEW_RELIC_APP_NAME", DEFAULT_APP_NAME)),
		newrelic.ConfigLicense(license),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
}
