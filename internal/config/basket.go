package config

import "time"

// BasketConfig controls the reservation ledger store and its session
// cookie.
type BasketConfig struct {
	TTL          time.Duration
	Prefix       string
	CookieName   string
	CookieSecure bool
}

// LoadBasketConfig reads BASKET_* variables.
func LoadBasketConfig() BasketConfig {
	cfg := BasketConfig{
		TTL:          envDur("BASKET_TTL", 10*time.Minute),
		Prefix:       envStr("BASKET_PREFIX", "basket"),
		CookieName:   envStr("BASKET_COOKIE", "basket_session"),
		CookieSecure: envBool("BASKET_COOKIE_SECURE", false),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	return cfg
}
