package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load loads configuration from an optional YAML file and the environment.
// Environment variables use the SPENDSENSE_ prefix with underscores for
// nesting (SPENDSENSE_LLM_API_KEY, SPENDSENSE_STORAGE_DB_PATH). A .env file
// in the working directory is read first if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix("SPENDSENSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, statErr := os.Stat(path); statErr == nil {
				return nil, err
			}
		}
	}

	bindKeys(v)

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// API keys also honor the vendors' conventional variable names.
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg, nil
}

// bindKeys registers every key so AutomaticEnv can resolve nested fields
// even when no config file sets them.
func bindKeys(v *viper.Viper) {
	for _, key := range []string{
		"server.addr",
		"storage.db_path",
		"llm.api_key",
		"llm.model",
		"llm.timeout_seconds",
		"embedding.api_key",
		"embedding.model",
		"articles.similarity_threshold",
		"worker.enabled",
		"worker.cron_spec",
	} {
		_ = v.BindEnv(key)
	}
}
