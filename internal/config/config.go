package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abdulachik/cadavre/internal/corpus"
	"github.com/abdulachik/cadavre/internal/generator"
	"github.com/abdulachik/cadavre/internal/source"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

// Config holds all application configuration.
type Config struct {
	// Web harvesting
	IndexURL        string        `validate:"omitempty,url"`
	UserAgent       string        `validate:"required"`
	LiveFetch       bool          // harvest before generating instead of loading the cached corpus
	PolitenessDelay time.Duration `validate:"gte=0"`
	PageCap         int           `validate:"min=1"`

	// Paths
	SourcesDir   string `validate:"required"`
	CorpusPath   string `validate:"required"`
	DatabasePath string `validate:"required"`
	OutputDir    string `validate:"required"`
	OutputFormat string `validate:"oneof=markdown md html text txt all"`

	// Generation
	WordGoal                 int     `validate:"min=1"`
	ChapterCount             int     `validate:"min=1,ltefield=WordGoal"`
	SolitaryRate             float64 `validate:"gte=0"`
	DialogueRate             float64 `validate:"gte=0"`
	MaxSentencesPerParagraph int     `validate:"min=2"`
	MaxSentencesPerDialogue  int     `validate:"gte=0"`
	TitleAttempts            int     `validate:"min=1"`
	Seed                     uint64  // 0 seeds from the clock

	// Classification
	MinWordsPerSentence int `validate:"gte=0"`
	BannedWords         []string

	// Daemon
	HarvestInterval  time.Duration `validate:"gte=0"` // 0 disables scheduled harvests
	GenerateInterval time.Duration `validate:"gt=0"`
	MaxStoriesPerDay int           `validate:"gte=0"`

	// Logging
	LogLevel string `validate:"oneof=debug info warn error"`
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		IndexURL:     getEnv("INDEX_URL", "https://www.fanfiction.net/tv/Doctor-Who/"),
		UserAgent:    getEnv("USER_AGENT", defaultUserAgent),
		SourcesDir:   getEnv("SOURCES_DIR", "books"),
		CorpusPath:   getEnv("CORPUS_PATH", "data/corpus.yaml"),
		DatabasePath: getEnv("DATABASE_PATH", "data/cadavre.db"),
		OutputDir:    getEnv("OUTPUT_DIR", "output"),
		OutputFormat: strings.ToLower(getEnv("OUTPUT_FORMAT", "markdown")),
		LogLevel:     strings.ToLower(getEnv("LOG_LEVEL", "info")),
		BannedWords:  bannedWords(),
	}

	var err error
	if cfg.LiveFetch, err = strconv.ParseBool(getEnv("LIVE_FETCH", "false")); err != nil {
		return nil, fmt.Errorf("invalid LIVE_FETCH: %w", err)
	}
	if cfg.PolitenessDelay, err = time.ParseDuration(getEnv("POLITENESS_DELAY", "2s")); err != nil {
		return nil, fmt.Errorf("invalid POLITENESS_DELAY: %w", err)
	}
	if cfg.HarvestInterval, err = time.ParseDuration(getEnv("HARVEST_INTERVAL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid HARVEST_INTERVAL: %w", err)
	}
	if cfg.GenerateInterval, err = time.ParseDuration(getEnv("GENERATE_INTERVAL", "6h")); err != nil {
		return nil, fmt.Errorf("invalid GENERATE_INTERVAL: %w", err)
	}
	if cfg.Seed, err = strconv.ParseUint(getEnv("SEED", "0"), 10, 64); err != nil {
		return nil, fmt.Errorf("invalid SEED: %w", err)
	}
	if cfg.SolitaryRate, err = strconv.ParseFloat(getEnv("SOLITARY_RATE", "0.2"), 64); err != nil {
		return nil, fmt.Errorf("invalid SOLITARY_RATE: %w", err)
	}
	if cfg.DialogueRate, err = strconv.ParseFloat(getEnv("DIALOGUE_RATE", "0.6"), 64); err != nil {
		return nil, fmt.Errorf("invalid DIALOGUE_RATE: %w", err)
	}

	ints := []struct {
		key, def string
		dst      *int
	}{
		{"PAGE_CAP", "200", &cfg.PageCap},
		{"WORD_GOAL", "50000", &cfg.WordGoal},
		{"CHAPTER_COUNT", "10", &cfg.ChapterCount},
		{"MAX_SENTENCES_PER_PARAGRAPH", "8", &cfg.MaxSentencesPerParagraph},
		{"MAX_SENTENCES_PER_DIALOGUE", "6", &cfg.MaxSentencesPerDialogue},
		{"MIN_WORDS_PER_SENTENCE", "0", &cfg.MinWordsPerSentence},
		{"TITLE_ATTEMPTS", "1000", &cfg.TitleAttempts},
		{"MAX_STORIES_PER_DAY", "4", &cfg.MaxStoriesPerDay},
	}
	for _, i := range ints {
		if *i.dst, err = strconv.Atoi(getEnv(i.key, i.def)); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", i.key, err)
		}
	}

	return cfg, nil
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// ValidateForHarvest checks configuration needed for web harvesting.
func (c *Config) ValidateForHarvest() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.IndexURL == "" {
		return fmt.Errorf("INDEX_URL is required for harvesting")
	}
	return nil
}

// ValidateForGenerate checks configuration needed for story generation.
func (c *Config) ValidateForGenerate() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.LiveFetch {
		if err := c.ValidateForHarvest(); err != nil {
			return err
		}
	}
	return c.GeneratorOptions().Validate()
}

// ValidateForServe checks configuration needed for the daemon.
func (c *Config) ValidateForServe() error {
	if c.HarvestInterval > 0 {
		if err := c.ValidateForHarvest(); err != nil {
			return err
		}
	}
	return c.ValidateForGenerate()
}

// GeneratorOptions maps the generation settings.
func (c *Config) GeneratorOptions() generator.Options {
	return generator.Options{
		WordGoal:              c.WordGoal,
		Chapters:              c.ChapterCount,
		SolitaryRate:          c.SolitaryRate,
		DialogueRate:          c.DialogueRate,
		MaxParagraphSentences: c.MaxSentencesPerParagraph,
		MaxDialogueSentences:  c.MaxSentencesPerDialogue,
		MaxTitleAttempts:      c.TitleAttempts,
	}
}

// ClassifierConfig maps the classification settings.
func (c *Config) ClassifierConfig() corpus.ClassifierConfig {
	return corpus.ClassifierConfig{
		Banned:   c.BannedWords,
		MinWords: c.MinWordsPerSentence,
	}
}

// WebConfig maps the web harvesting settings.
func (c *Config) WebConfig() source.WebConfig {
	cfg := source.DefaultWebConfig()
	cfg.IndexURL = c.IndexURL
	cfg.UserAgent = c.UserAgent
	cfg.Delay = c.PolitenessDelay
	cfg.PageCap = c.PageCap
	return cfg
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// bannedWords reads BANNED_WORDS as a comma separated list. Unset means the
// default list; set but empty disables the filter.
func bannedWords() []string {
	val, ok := os.LookupEnv("BANNED_WORDS")
	if !ok {
		return append([]string(nil), corpus.DefaultBanned...)
	}

	var words []string
	for _, w := range strings.Split(val, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
