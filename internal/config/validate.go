package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range (got %d)", c.Server.Port)
	}

	if c.Notifier.NoticeWindowDays <= 0 {
		return fmt.Errorf("notifier.notice_window_days must be > 0 (got %d)", c.Notifier.NoticeWindowDays)
	}

	if c.Extraction.MaxTokens <= 0 {
		return fmt.Errorf("extraction.max_tokens must be > 0 (got %d)", c.Extraction.MaxTokens)
	}

	if c.Mailer.From == "" {
		return fmt.Errorf("mailer.from must not be empty")
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	return nil
}
