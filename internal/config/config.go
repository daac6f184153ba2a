package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// PointsConfig holds the reward rates applied when attendance is recorded.
// Multipliers compound; leaving one at 0 disables it.
type PointsConfig struct {
	PerHour                float64            `yaml:"perHour" validate:"required,gt=0"`
	WeekendMultiplier      float64            `yaml:"weekendMultiplier,omitempty" validate:"omitempty,gte=0"`
	NightMultiplier        float64            `yaml:"nightMultiplier,omitempty" validate:"omitempty,gte=0"`
	MissionTypeMultipliers map[string]float64 `yaml:"missionTypeMultipliers,omitempty" validate:"omitempty,dive,gte=0"`
}

// AttendanceConfig controls attendance bookkeeping policy.
type AttendanceConfig struct {
	// RequireForComplete blocks completing a mission while approved
	// volunteers still have no attendance recorded.
	RequireForComplete bool `yaml:"requireForComplete,omitempty"`
}

// GmailConfig holds the OAuth material for the outbound mail channel.
// Email delivery is disabled when the section is absent.
type GmailConfig struct {
	ClientID     string `yaml:"clientID" validate:"required"`
	ClientSecret string `yaml:"clientSecret" validate:"required"`
	RefreshToken string `yaml:"refreshToken" validate:"required"`
	Sender       string `yaml:"sender" validate:"required,email"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL string           `yaml:"databaseURL" validate:"required"`
	APIAddress  string           `yaml:"apiAddress,omitempty"`
	Points      PointsConfig     `yaml:"points" validate:"required"`
	Attendance  AttendanceConfig `yaml:"attendance,omitempty"`
	Gmail       *GmailConfig     `yaml:"gmail,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from volunhub_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
// VOLUNHUB_DATABASE_URL overrides the file's database URL when set.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if url := os.Getenv("VOLUNHUB_DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}
	if cfg.APIAddress == "" {
		cfg.APIAddress = ":8080"
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// findConfigFile searches for volunhub_config.yaml in current directory and home directory
func findConfigFile() (string, error) {
	configFileName := "volunhub_config.yaml"

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
