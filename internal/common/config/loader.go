// internal/common/config/loader.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "db-agent/internal/common/errors"
)

func Load() (*Config, error) {
	// 🔧 Load .env from multiple possible locations
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like SUPABASE_URL
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	// 1️⃣ LOAD BASE CONFIG
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// 2️⃣ LOAD ENV CONFIG
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	// 3️⃣ EXPAND ENV PLACEHOLDERS
	expandEnvVars(viper.GetViper())

	// 4️⃣ Unmarshal final config
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5️⃣ DIRECT OVERRIDE IF STILL EMPTY
	overrideEmptyConfig(&cfg)

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// 🔥 Load .env from multiple possible locations
func loadEnvFile() {
	// Try multiple paths (for running from different directories)
	possiblePaths := []string{
		".env",          // Current directory
		"../.env",       // Parent directory
		"../../.env",    // Two levels up
		"../../../.env", // Three levels up
	}

	// Also try to find project root by looking for go.mod
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				fmt.Printf("✅ Loaded .env from: %s\n", path)
				return
			}
		}
	}

	fmt.Printf("⚠️  .env file not found in any location, using system environment variables\n")
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Walk up directories looking for go.mod
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return ""
}

// Improved environment variable expansion
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		// Only process string values
		if strVal, ok := val.(string); ok {
			// Check if it contains environment variable pattern
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	// Supabase project
	if cfg.Supabase.URL == "" {
		if val := os.Getenv("SUPABASE_URL"); val != "" {
			cfg.Supabase.URL = val
		}
	}
	if cfg.Supabase.ServiceKey == "" {
		if val := os.Getenv("SUPABASE_SERVICE_KEY"); val != "" {
			cfg.Supabase.ServiceKey = val
		}
	}

	// GenAI API
	if cfg.APIs.GenAI.APIKey == "" {
		if val := os.Getenv("GEMINI_API_KEY"); val != "" {
			cfg.APIs.GenAI.APIKey = val
		}
	}

	// Database overrides
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile() // Load env file first

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Expand environment variables before unmarshal
	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	// App defaults
	if cfg.App.Name == "" {
		cfg.App.Name = "db-agent"
	}
	if cfg.App.MetricsAddr == "" {
		cfg.App.MetricsAddr = ":8080"
	}

	// Database defaults: the hosted project is Postgres underneath, so empty
	// connection fields are derived from the project URL.
	if ref := projectRef(cfg.Supabase.URL); ref != "" {
		if cfg.Database.Postgres.Host == "" {
			cfg.Database.Postgres.Host = "db." + ref + ".supabase.co"
		}
	}
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.User == "" {
		cfg.Database.Postgres.User = "postgres"
	}
	if cfg.Database.Postgres.Database == "" {
		cfg.Database.Postgres.Database = "postgres"
	}
	if cfg.Database.Postgres.Password == "" {
		cfg.Database.Postgres.Password = cfg.Supabase.ServiceKey
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 5
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "require"
	}
	if cfg.Database.Postgres.ConnMaxLifetime == 0 {
		cfg.Database.Postgres.ConnMaxLifetime = 300000
	}

	// Storage base URL for bare object paths
	if cfg.Storage.BaseURL == "" && cfg.Supabase.URL != "" {
		cfg.Storage.BaseURL = strings.TrimRight(cfg.Supabase.URL, "/") + "/storage/v1/object/public"
	}

	// GenAI defaults
	if cfg.APIs.GenAI.BaseURL == "" {
		cfg.APIs.GenAI.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.APIs.GenAI.Model == "" {
		cfg.APIs.GenAI.Model = "gemini-2.0-flash"
	}
	if cfg.APIs.GenAI.Timeout == 0 {
		cfg.APIs.GenAI.Timeout = 60000
	}

	// Media defaults. Acquisition is only practical on Windows, where a
	// static build can be dropped next to the binary; elsewhere the
	// operator installs the tool through the package manager.
	if cfg.Media.AcquirePolicy == "" {
		if runtime.GOOS == "windows" {
			cfg.Media.AcquirePolicy = "auto"
		} else {
			cfg.Media.AcquirePolicy = "manual"
		}
	}
	if cfg.Media.DownloadURL == "" {
		cfg.Media.DownloadURL = "https://www.gyan.dev/ffmpeg/builds/ffmpeg-release-essentials.zip"
	}
	if cfg.Media.ReceiptInstruction == "" {
		cfg.Media.ReceiptInstruction = "What is the total amount in this receipt?"
	}

	// Agent defaults
	if len(cfg.Agent.ExitKeywords) == 0 {
		cfg.Agent.ExitKeywords = []string{"exit", "quit"}
	}
	if cfg.Agent.TurnTimeout == 0 {
		cfg.Agent.TurnTimeout = 300000
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Task defaults
	if cfg.Tasks == nil {
		cfg.Tasks = map[string]TaskConfig{}
	}
	for key, task := range cfg.Tasks {
		if task.Timeout == 0 {
			task.Timeout = 30000
		}
		cfg.Tasks[key] = task
	}
}

// projectRef extracts the project reference from a hosted project URL like
// https://<ref>.supabase.co. Returns "" when the URL has another shape.
func projectRef(projectURL string) string {
	u, err := url.Parse(projectURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := u.Host
	if !strings.HasSuffix(host, ".supabase.co") {
		return ""
	}
	return strings.TrimSuffix(host, ".supabase.co")
}

// validateConfig validates the required credential values. All missing values
// are collected so the startup error names every one of them at once.
func validateConfig(cfg *Config) error {
	var missing []string

	if cfg.Supabase.URL == "" {
		missing = append(missing, "supabase.url (SUPABASE_URL)")
	}
	if cfg.Supabase.ServiceKey == "" {
		missing = append(missing, "supabase.service_key (SUPABASE_SERVICE_KEY)")
	}
	if cfg.APIs.GenAI.APIKey == "" {
		missing = append(missing, "apis.genai.api_key (GEMINI_API_KEY)")
	}

	if len(missing) > 0 {
		return apperrors.NewConfigurationError(missing)
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetTaskConfig retrieves task-specific configuration with fallback to defaults
func GetTaskConfig(cfg *Config, taskName string) TaskConfig {
	if task, exists := cfg.Tasks[taskName]; exists {
		return task
	}

	// Return default task config if not found
	return TaskConfig{
		Enabled: true,
		Timeout: 30000,
	}
}
