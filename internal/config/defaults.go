package config

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Storage: StorageConfig{
			DBPath: "spendsense.db",
		},
		LLM: LLMConfig{
			Model:          "gemini-2.0-flash",
			TimeoutSeconds: 30,
		},
		Embedding: EmbeddingConfig{
			Model: "text-embedding-3-small",
		},
		Articles: ArticlesConfig{
			SimilarityThreshold: 0.75,
		},
		Worker: WorkerConfig{
			Enabled:  false,
			CronSpec: "0 2 * * *",
		},
	}
}
