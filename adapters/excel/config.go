package excel

// Config configures an Adapter.
type Config struct {
	FilePath string // path to the .xlsx workbook; created on first write
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.FilePath == "" {
		return ErrMissingFilePath
	}
	return nil
}
