package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	// Dimensions is only used by the local hashing embedder.
	Dimensions int `toml:"dimensions"`
}

type DatasetConfig struct {
	Path string `toml:"path"`
}

type CacheConfig struct {
	Backend string `toml:"backend"` // "json" or "sqlite"
	Path    string `toml:"path"`
}

type MatchConfig struct {
	TopK   int  `toml:"top_k"`
	Rerank bool `toml:"rerank"`
}

type OCRConfig struct {
	Language   string `toml:"language"`
	Preprocess bool   `toml:"preprocess"`
}

type RecognitionPrompts struct {
	Text   string `toml:"text"`
	Vision string `toml:"vision"`
}

type MemgraphConfig struct {
	// Enabled lets the server answer crewmate queries from the graph.
	Enabled  bool   `toml:"enabled"`
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type LogConfig struct {
	Mode string `toml:"mode"` // "dev" or "prod"
}

type Config struct {
	LLM         LLMConfig          `toml:"llm"`
	Dataset     DatasetConfig      `toml:"dataset"`
	Cache       CacheConfig        `toml:"cache"`
	Match       MatchConfig        `toml:"match"`
	OCR         OCRConfig          `toml:"ocr"`
	Recognition RecognitionPrompts `toml:"recognition"`
	Memgraph    MemgraphConfig     `toml:"memgraph"`
	Server      ServerConfig       `toml:"server"`
	Log         LogConfig          `toml:"log"`
}

// Default mirrors the layout the card scripts always used: a data/ folder
// holding the dump and the embedding cache, and a local Ollama for models.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:       "ollama",
			Model:          "llama3.2-vision",
			EmbeddingModel: "all-minilm",
			BaseURL:        "http://localhost:11434",
			Dimensions:     384,
		},
		Dataset: DatasetConfig{Path: "data/merry_cards_data_dump.json"},
		Cache: CacheConfig{
			Backend: "json",
			Path:    "data/merry_cards_embeddings_cache.json",
		},
		Match:       MatchConfig{TopK: 5},
		OCR:         OCRConfig{Language: "eng", Preprocess: true},
		Recognition: DefaultPrompts(),
		Memgraph:    MemgraphConfig{URI: "bolt://localhost:7687"},
		Server:      ServerConfig{Port: "8080"},
		Log:         LogConfig{Mode: "dev"},
	}
}

// Load reads a TOML file on top of Default, so a config file only needs the
// keys it wants to change.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault falls back to Default when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// ApplyEnv overrides config values with environment variables when set.
func (c *Config) ApplyEnv() {
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.LLM.EmbeddingModel, "LLM_EMBEDDING_MODEL")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	if c.LLM.APIKey == "" {
		switch strings.ToLower(c.LLM.Provider) {
		case "gemini":
			setString(&c.LLM.APIKey, "GEMINI_API_KEY")
		case "openai":
			setString(&c.LLM.APIKey, "OPENAI_API_KEY")
		case "claude":
			setString(&c.LLM.APIKey, "ANTHROPIC_API_KEY")
		}
	}
	if v := os.Getenv("LLM_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.LLM.Dimensions = n
		}
	}

	setString(&c.Dataset.Path, "DATASET_PATH")
	setString(&c.Cache.Backend, "CACHE_BACKEND")
	setString(&c.Cache.Path, "CACHE_PATH")
	if v := os.Getenv("MEMGRAPH_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Memgraph.Enabled = b
		}
	}
	setString(&c.Memgraph.URI, "MEMGRAPH_URI")
	setString(&c.Memgraph.User, "MEMGRAPH_USER")
	setString(&c.Memgraph.Password, "MEMGRAPH_PASSWORD")
	setString(&c.Server.Port, "PORT")
	setString(&c.Log.Mode, "LOG_MODE")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
