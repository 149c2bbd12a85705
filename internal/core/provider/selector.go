package provider

import (
	"net/http"

	"swifthub/internal/core/auth"
	"swifthub/internal/platform/logger"
)

// Selector derives the active strategy from the environment and the stored credential
type Selector struct {
	// Staging serves every request when the environment selects staging.
	// Nil falls back to the default transport against StagingBaseURL.
	Staging http.RoundTripper
}

// Decide returns the capability Select would build, without constructing anything
func Decide(env Environment, cred auth.Credential) Capability {
	if env.Staging {
		return Baseline
	}
	switch cred.Kind() {
	case auth.KindOAuth, auth.KindPersonal:
		if cred.Token() != "" {
			return Enhanced
		}
	case auth.KindBasic, auth.KindNone:
	}
	return Baseline
}

// Select builds a fresh strategy for env and cred. A token credential outside
// staging gets the Enhanced strategy wrapping its own Baseline
func (s Selector) Select(env Environment, cred auth.Credential) Strategy {
	var transport http.RoundTripper
	if env.Staging {
		env.GitHubBaseURL = StagingBaseURL
		env.TrendingBaseURL = StagingBaseURL + "/trending"
		transport = s.Staging
	}

	base := NewBaseline(env, cred, transport)
	capability := Decide(env, cred)
	logger.Named("provider").Debug().
		Bool("staging", env.Staging).
		Str("credential", cred.Kind().String()).
		Str("capability", capability.String()).
		Msg("strategy selected")

	if capability == Enhanced {
		return NewEnhanced(base)
	}
	return base
}
