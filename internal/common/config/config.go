// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig             `mapstructure:"app"`
	Supabase SupabaseConfig        `mapstructure:"supabase"`
	Database DatabaseConfig        `mapstructure:"database"`
	APIs     APIsConfig            `mapstructure:"apis"`
	Storage  StorageConfig         `mapstructure:"storage"`
	Media    MediaConfig           `mapstructure:"media"`
	Agent    AgentConfig           `mapstructure:"agent"`
	Tasks    map[string]TaskConfig `mapstructure:"tasks"`
	Logging  LoggingConfig         `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	MetricsAddr string `mapstructure:"metrics_addr"` // empty disables the HTTP endpoint
}

// SupabaseConfig holds the hosted-project credentials. All three values in this
// section plus the Gemini key are required; startup fails without them.
type SupabaseConfig struct {
	URL        string `mapstructure:"url"`
	ServiceKey string `mapstructure:"service_key"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	MaxConnections  int    `mapstructure:"max_connections"`
	MaxIdle         int    `mapstructure:"max_idle"`
	SSLMode         string `mapstructure:"sslmode"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_ms"` // milliseconds
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// TaskConfig holds the core settings applicable to every task handler.
type TaskConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Timeout int  `mapstructure:"timeout"` // milliseconds
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	GenAI struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
		Model   string `mapstructure:"model"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"genai"`
}

// StorageConfig resolves bare object paths against the hosted storage endpoint.
type StorageConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// MediaConfig holds the conversion-tool settings used by extract-audio.
// AcquirePolicy is "auto" (download the tool once when missing), "manual"
// (fail with an install instruction), or empty for the platform default.
type MediaConfig struct {
	ToolPath           string `mapstructure:"tool_path"`
	ToolDir            string `mapstructure:"tool_dir"`
	AcquirePolicy      string `mapstructure:"acquire_policy"`
	DownloadURL        string `mapstructure:"download_url"`
	ReceiptInstruction string `mapstructure:"receipt_instruction"`
}

// AgentConfig holds the interactive loop settings.
type AgentConfig struct {
	ExitKeywords []string `mapstructure:"exit_keywords"`
	TurnTimeout  int      `mapstructure:"turn_timeout_ms"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
