package cmd

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/jobstir/internal/cache"
	"github.com/spigell/jobstir/internal/evaluator"
	"github.com/spigell/jobstir/internal/filtering"
	"github.com/spigell/jobstir/internal/headhunter"
	"github.com/spigell/jobstir/internal/server"
	"github.com/spigell/jobstir/internal/storage"
)

const (
	app = "jobstir"

	corpusSourceFile       = "file"
	corpusSourceHeadhunter = "headhunter"
)

type Config struct {
	Dictionary string           `mapstructure:"dictionary"`
	Evaluator  evaluator.Config `mapstructure:"evaluator"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Corpus     CorpusConfig     `mapstructure:"corpus"`
	Filters    filtering.Config `mapstructure:"filters"`
	Storage    storage.Config   `mapstructure:"storage"`
	AI         *AIConfig        `mapstructure:"ai"`
	Server     server.Config    `mapstructure:"server"`
}

type CacheConfig struct {
	MaxEntries int                `mapstructure:"max-entries"`
	Redis      *cache.RedisConfig `mapstructure:"redis"`
}

type CorpusConfig struct {
	// Source is file or headhunter. Empty disables job recommendations.
	Source     string             `mapstructure:"source"`
	File       string             `mapstructure:"file"`
	Headhunter *headhunter.Config `mapstructure:"headhunter"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
	Tone         string `mapstructure:"tone"`
	Instructions string `mapstructure:"instructions"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobstir scores resumes against job descriptions and recommends matching jobs",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"storage.database-url-file":    "JOBSTIR_DATABASE_URL_FILE",
		"ai.gemini.api-key-file":       "GEMINI_API_KEY_FILE",
		"corpus.headhunter.token-file": "HH_TOKEN_FILE",
		"cache.redis.password":         "JOBSTIR_REDIS_PASSWORD",
		"server.address":               "JOBSTIR_ADDRESS",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobstir.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// .env is a convenience for local runs and is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Without an explicit --config every setting has a default.
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

	return config, nil
}
