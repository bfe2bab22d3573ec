package config

import (
	"fmt"
	"slices"
)

// validSSLModes are the sslmode values accepted by libpq/pgx.
var validSSLModes = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

// validSymbolPositions are the accepted currency symbol placements.
var validSymbolPositions = []string{PositionLeft, PositionRight, PositionLeftSpace, PositionRightSpace}

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	// Retention window. A zero or negative window would purge the whole log
	// on every sweep and break the lowest-price lookup.
	if c.RetentionDays < 1 || c.RetentionDays > MaxRetentionDays {
		return fmt.Errorf("%w: retention_days must be between 1 and %d, got %d",
			ErrInvalidRetention, MaxRetentionDays, c.RetentionDays)
	}

	// PostgreSQL connection settings.
	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host cannot be empty", ErrInvalidPostgresHost)
	}

	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: must be between 1 and 65535, got %d", ErrInvalidPostgresPort, c.PostgresPort)
	}

	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name cannot be empty", ErrInvalidPostgresDBName)
	}

	if !slices.Contains(validSSLModes, c.PostgresSSLMode) {
		return fmt.Errorf("%w: %q is not a valid sslmode", ErrInvalidPostgresSSLMode, c.PostgresSSLMode)
	}

	// Currency display settings.
	if c.Currency.Decimals < 0 || c.Currency.Decimals > 8 {
		return fmt.Errorf("%w: decimals must be between 0 and 8, got %d",
			ErrInvalidCurrency, c.Currency.Decimals)
	}

	if !slices.Contains(validSymbolPositions, c.Currency.Position) {
		return fmt.Errorf("%w: %q is not a valid symbol position", ErrInvalidCurrency, c.Currency.Position)
	}

	return nil
}
