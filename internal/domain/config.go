package domain

import "time"

// Config is the subset of process configuration the inner layers need,
// injected from cmd rather than read from ambient state.
type Config struct {
	SiteURL           string
	AdminEmail        string
	AdminPasswordHash string
	SessionSecret     string
	SessionTTL        time.Duration
	Timezone          *time.Location
}
