package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/casefile/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is overridden at build time with -ldflags "-X .../internal/cli.version=..."
var version = "0.1.0"

var (
	cfgFile    string
	verbose    bool
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "casefile",
	Short: "Casefile - employment case analysis workbench (non-normative)",
	Long: `Casefile turns a claimant's narrative into a structured case file:
stated allegations, potential unstated claims, response strategies,
counter-arguments, investigatory questions and a good-faith conference
guide, plus an evidence board you organize yourself.

The analysis comes from a generative-text provider and is treated as
untrusted input: it is repaired, normalized and merged without ever
overwriting the links, statuses and notes you authored.

Casefile organizes a case. It does not judge its merits.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("casefile v%s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.casefile/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().String("store", "", "store backend (memory, disk, layered, redis, minio)")
	rootCmd.PersistentFlags().String("store-dir", "", "directory for the disk and layered stores")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("output.json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("store.backend", rootCmd.PersistentFlags().Lookup("store"))
	_ = viper.BindPFlag("store.dir", rootCmd.PersistentFlags().Lookup("store-dir"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".casefile"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	setDefaults(model.DefaultConfig())

	// CASEFILE_LLM_PROVIDER overrides llm.provider, and so on
	viper.SetEnvPrefix("CASEFILE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key so environment overrides reach Unmarshal
func setDefaults(cfg *model.Config) {
	defaults := map[string]interface{}{
		"llm.provider":                      cfg.LLM.Provider,
		"llm.model":                         cfg.LLM.Model,
		"llm.api_key":                       "",
		"llm.base_url":                      cfg.LLM.BaseURL,
		"llm.timeout":                       cfg.LLM.Timeout,
		"llm.max_tokens":                    cfg.LLM.MaxTokens,
		"llm.http_proxy":                    "",
		"llm.https_proxy":                   "",
		"llm.no_proxy":                      "",
		"store.backend":                     cfg.Store.Backend,
		"store.dir":                         cfg.Store.Dir,
		"store.capacity_bytes":              cfg.Store.CapacityBytes,
		"store.namespace":                   cfg.Store.Namespace,
		"store.redis_url":                   "",
		"store.minio_endpoint":              "",
		"store.minio_bucket":                cfg.Store.MinioBucket,
		"store.minio_region":                "",
		"store.minio_access_key":            "",
		"store.minio_secret_key":            "",
		"store.minio_use_ssl":               false,
		"concurrency.workers":               cfg.Concurrency.Workers,
		"rate_limiting.requests_per_second": cfg.RateLimiting.RequestsPerSecond,
		"rate_limiting.burst_size":          cfg.RateLimiting.BurstSize,
		"output.verbose":                    false,
		"output.json":                       false,
		"logging.mode":                      cfg.Logging.Mode,
	}
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
}

// loadConfig resolves flags, environment, config file and defaults into a Config
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.LLM.APIKey == "" {
		switch strings.ToLower(cfg.LLM.Provider) {
		case "openai", "gpt":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if strings.EqualFold(cfg.LLM.Provider, "ollama") && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	jsonOutput = cfg.Output.JSON

	return cfg, nil
}
