package config

// Config represents the full service configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Storage configuration
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`

	// LLM content generation configuration
	LLM LLMConfig `yaml:"llm" mapstructure:"llm"`

	// Embedding configuration
	Embedding EmbeddingConfig `yaml:"embedding" mapstructure:"embedding"`

	// Article matching configuration
	Articles ArticlesConfig `yaml:"articles" mapstructure:"articles"`

	// Worker configuration
	Worker WorkerConfig `yaml:"worker" mapstructure:"worker"`
}

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// StorageConfig configures the SQLite stores
type StorageConfig struct {
	DBPath string `yaml:"db_path" mapstructure:"db_path"`
}

// LLMConfig configures the Gemini content generator
type LLMConfig struct {
	APIKey         string `yaml:"api_key" mapstructure:"api_key"`
	Model          string `yaml:"model" mapstructure:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// EmbeddingConfig configures the OpenAI embedding client
type EmbeddingConfig struct {
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	Model  string `yaml:"model" mapstructure:"model"`
}

// ArticlesConfig configures article enrichment
type ArticlesConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
}

// WorkerConfig configures the batch refresh schedule
type WorkerConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	CronSpec string `yaml:"cron_spec" mapstructure:"cron_spec"`
}
