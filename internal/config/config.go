package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Solana    SolanaConfig
	Portfolio PortfolioConfig
	Jobs      JobsConfig
	LogLevel  string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// SolanaConfig holds ledger-specific configuration
type SolanaConfig struct {
	RPCEndpoint      string
	OperatorKey      string // base58 private key, env only
	TokenMint        string
	TokenRequired    uint64 // minimum holding in base units for draw eligibility
	ClaimEndpoint    string
	ClaimPriorityFee float64
}

// PortfolioConfig holds portfolio API-specific configuration
type PortfolioConfig struct {
	BaseURL string
	APIKey  string
	MockAPI bool
}

// JobsConfig holds the cron specs and flags for the scheduled jobs
type JobsConfig struct {
	StatsSyncSpec        string
	FeeClaimSpec         string
	EligibilitySpec      string
	DrawSpec             string
	DrawsEnabled         bool
	FeeClaimEnabled      bool
	LedgerTimeoutSeconds int // bound on each external ledger call
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read configuration
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Unmarshal configuration
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Secrets are only ever read from the environment
	config.Solana.OperatorKey = GetEnv("SOLANA_OPERATOR_KEY", config.Solana.OperatorKey)
	config.Portfolio.APIKey = GetEnv("PORTFOLIO_API_KEY", config.Portfolio.APIKey)

	// Deployment switches that operators flip without editing the yaml
	config.Server.AllowedHosts = GetEnvAsSlice("ALLOWED_HOSTS", ",", config.Server.AllowedHosts)
	config.Jobs.DrawsEnabled = GetEnvAsBool("SHOULD_PERFORM_DRAWS", config.Jobs.DrawsEnabled)
	config.Jobs.FeeClaimEnabled = GetEnvAsBool("SHOULD_CLAIM_FEES", config.Jobs.FeeClaimEnabled)
	config.Jobs.LedgerTimeoutSeconds = GetEnvAsInt("LEDGER_TIMEOUT_SECONDS", config.Jobs.LedgerTimeoutSeconds)

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "pnl-league")
	viper.SetDefault("LogLevel", "info")

	viper.SetDefault("Solana.RPCEndpoint", "https://api.mainnet-beta.solana.com")
	viper.SetDefault("Solana.TokenRequired", 1000000)
	viper.SetDefault("Solana.ClaimPriorityFee", 0.000001)

	viper.SetDefault("Portfolio.MockAPI", true)

	viper.SetDefault("Jobs.StatsSyncSpec", "*/5 * * * *")
	viper.SetDefault("Jobs.FeeClaimSpec", "*/15 * * * *")
	viper.SetDefault("Jobs.EligibilitySpec", "*/30 * * * *")
	viper.SetDefault("Jobs.DrawSpec", "0 * * * *")
	viper.SetDefault("Jobs.DrawsEnabled", false)
	viper.SetDefault("Jobs.FeeClaimEnabled", false)
	viper.SetDefault("Jobs.LedgerTimeoutSeconds", 60)
}
