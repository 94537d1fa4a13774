package config

import "fmt"

// Require reports the first empty variable among the given name/value pairs.
func Require(pairs map[string]string) error {
	for name, value := range pairs {
		if value == "" {
			return fmt.Errorf("missing required env %s", name)
		}
	}
	return nil
}

// RequireServe checks what the HTTP server cannot start without.
func (c Config) RequireServe() error {
	return Require(map[string]string{
		"DATABASE_URL": c.DatabaseURL,
		"JWT_SECRET":   string(c.JWTAccessSecret),
	})
}
