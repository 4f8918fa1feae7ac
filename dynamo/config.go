package dynamo

// Config holds configuration for the Store.
type Config struct {
	// Tables maps a document type to its DynamoDB table name.
	// Types without an entry use TablePrefix + type.
	Tables map[string]string

	// TablePrefix is the fallback table-name prefix.
	// Default: "espalier_"
	TablePrefix string

	// MaxBatchAttempts bounds the retry loop for unprocessed keys and
	// items in batch operations.
	// Default: 3
	MaxBatchAttempts int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TablePrefix:      "espalier_",
		MaxBatchAttempts: 3,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.TablePrefix == "" {
		c.TablePrefix = "espalier_"
	}
	if c.MaxBatchAttempts < 1 {
		c.MaxBatchAttempts = 3
	}
}

// tableFor resolves the table name for a document type.
func (c Config) tableFor(docType string) string {
	if t, ok := c.Tables[docType]; ok {
		return t
	}
	return c.TablePrefix + docType
}
