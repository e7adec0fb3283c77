package settings

import (
	"github.com/caarlos0/env/v11"
	"github.com/oomph-ac/locomotion/oerror"
)

// EnvPrefix prefixes every environment variable that overrides a setting,
// e.g. LOCOMOTION_MAX_SIMULATION_ITERATIONS.
const EnvPrefix = "LOCOMOTION_"

// ApplyEnv overrides scalar movement and physical animation settings with the
// process environment.
func ApplyEnv(s *Settings) error {
	return applyEnv(s, nil)
}

// applyEnv parses overrides from environment, or from the process environment
// if it is nil.
func applyEnv(s *Settings, environment map[string]string) error {
	if err := env.ParseWithOptions(s, env.Options{Prefix: EnvPrefix, Environment: environment}); err != nil {
		return oerror.Wrap(err, "parse env")
	}
	return nil
}
