package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/campus-matcher/internal/listing"
	"github.com/spigell/campus-matcher/internal/portal"
)

const (
	app = "campus-matcher"
)

type Config struct {
	Cache      *CacheConfig      `mapstructure:"cache"`
	Scoring    *ScoringConfig    `mapstructure:"scoring"`
	Candidates *CandidatesConfig `mapstructure:"candidates"`
}

type CacheConfig struct {
	// Backend is one of memory, redis or none.
	Backend   string        `mapstructure:"backend"`
	TTL       time.Duration `mapstructure:"ttl"`
	ResumeTTL time.Duration `mapstructure:"resume-ttl"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Redis     *RedisConfig  `mapstructure:"redis"`
}

type RedisConfig struct {
	URL            string `mapstructure:"url"`
	PasswordFile   string `mapstructure:"password-file"`
	ConnectRetries int    `mapstructure:"connect-retries"`
}

type ScoringConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

type CandidatesConfig struct {
	ExcludeFile  string `mapstructure:"exclude-file"`
	MinimumScore *int   `mapstructure:"minimum-score"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "campus-matcher scores student resumes against job requirements and caches the results",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("cache.redis.url", "REDIS_URL"); err != nil {
		log.Fatalf("binding REDIS_URL environment variable: %v", err)
	}
	if err := viper.BindEnv("cache.redis.password-file", "REDIS_PASSWORD_FILE"); err != nil {
		log.Fatalf("binding REDIS_PASSWORD_FILE environment variable: %v", err)
	}

	viper.SetDefault("cache.backend", backendMemory)
	viper.SetDefault("cache.ttl", time.Hour)
	viper.SetDefault("cache.resume-ttl", 24*time.Hour)
	viper.SetDefault("cache.timeout", 2*time.Second)
	viper.SetDefault("cache.redis.connect-retries", 3)
	viper.SetDefault("scoring.concurrency", listing.DefaultConcurrency)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is campus-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Every setting has a default, so only a broken or explicitly requested file is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Cache == nil {
		config.Cache = &CacheConfig{Backend: backendMemory}
	}
	if config.Scoring == nil {
		config.Scoring = &ScoringConfig{Concurrency: listing.DefaultConcurrency}
	}
	if config.Candidates == nil {
		config.Candidates = &CandidatesConfig{}
	}

	return config, nil
}

// loadJob reads and validates a job document.
func loadJob(path string) (*portal.Job, error) {
	job, err := portal.LoadJob(path)
	if err != nil {
		return nil, err
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return job, nil
}
