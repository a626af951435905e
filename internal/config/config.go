package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all program settings.
type Config struct {
	// Teams lists the team groups to aggregate, in report order. The
	// whole-company group is always added in front of these.
	Teams []string `yaml:"teams" mapstructure:"teams"`

	Directories DirectoriesConfig `yaml:"directories" mapstructure:"directories"`
	Survey      SurveyConfig      `yaml:"survey" mapstructure:"survey"`
	Risk        RiskConfig        `yaml:"risk" mapstructure:"risk"`
	Storage     StorageConfig     `yaml:"storage" mapstructure:"storage"`
}

type DirectoriesConfig struct {
	// Questionnaires holds the instrument definition JSON files.
	Questionnaires string `yaml:"questionnaires" mapstructure:"questionnaires"`
	// Batches holds the weekly raw-scores JSON files produced by parse.
	Batches string `yaml:"batches" mapstructure:"batches"`
	// Output receives analysis.json and the risk summary CSV.
	Output string `yaml:"output" mapstructure:"output"`
}

type SurveyConfig struct {
	// LateWeekThreshold is the first week index whose exports lack the
	// team, role, and email columns.
	LateWeekThreshold int `yaml:"late_week_threshold" mapstructure:"late_week_threshold"`
	// PeriodicInterval is the cadence (in weeks) of the stress and
	// emotional-labor instruments.
	PeriodicInterval int `yaml:"periodic_interval" mapstructure:"periodic_interval"`
	// RosterPath points at the staff roster CSV. Optional; without it
	// participants lack external IDs and gender attributes.
	RosterPath string `yaml:"roster_path" mapstructure:"roster_path"`
}

type RiskConfig struct {
	// MaleMarker is the roster gender value selecting male-variant cutoffs.
	MaleMarker string `yaml:"male_marker" mapstructure:"male_marker"`
	// CutoffsPath optionally overrides the built-in normative cutoff table.
	CutoffsPath string `yaml:"cutoffs_path" mapstructure:"cutoffs_path"`
}

type StorageConfig struct {
	// Archive toggles the SQLite run archive.
	Archive bool `yaml:"archive" mapstructure:"archive"`
	// LocalPath is the archive database location.
	LocalPath string `yaml:"local_path" mapstructure:"local_path"`
}

// Default returns default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Teams: []string{"Support 1", "Support 2", "Support 3", "Support 4"},
		Directories: DirectoriesConfig{
			Questionnaires: filepath.Join("data", "questionnaires"),
			Batches:        filepath.Join("data", "results"),
			Output:         filepath.Join("data", "analysis"),
		},
		Survey: SurveyConfig{
			LateWeekThreshold: 2,
			PeriodicInterval:  4,
			RosterPath:        filepath.Join("data", "roster.csv"),
		},
		Risk: RiskConfig{
			MaleMarker: "male",
		},
		Storage: StorageConfig{
			Archive:   true,
			LocalPath: filepath.Join(homeDir, ".wellpulse", "archive.db"),
		},
	}
}

// Load loads configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("teams", cfg.Teams)
	v.SetDefault("directories", cfg.Directories)
	v.SetDefault("survey", cfg.Survey)
	v.SetDefault("risk", cfg.Risk)
	v.SetDefault("storage", cfg.Storage)

	v.SetEnvPrefix("WELLPULSE")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".wellpulse")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".wellpulse"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file is fine, defaults apply.
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Survey.LateWeekThreshold < 0 {
		return fmt.Errorf("survey.late_week_threshold must not be negative")
	}
	if c.Survey.PeriodicInterval <= 0 {
		return fmt.Errorf("survey.periodic_interval must be positive")
	}
	if c.Risk.MaleMarker == "" {
		return fmt.Errorf("risk.male_marker must not be empty")
	}
	return nil
}

// loadEnvFiles loads .env files in order of precedence.
func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}
	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".wellpulse", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		godotenv.Load(homeEnvFile)
	}
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if dir := os.Getenv("WELLPULSE_QUESTIONNAIRES_DIR"); dir != "" {
		cfg.Directories.Questionnaires = dir
	}
	if dir := os.Getenv("WELLPULSE_BATCHES_DIR"); dir != "" {
		cfg.Directories.Batches = dir
	}
	if dir := os.Getenv("WELLPULSE_OUTPUT_DIR"); dir != "" {
		cfg.Directories.Output = dir
	}
	if path := os.Getenv("WELLPULSE_ROSTER_PATH"); path != "" {
		cfg.Survey.RosterPath = path
	}
	if path := os.Getenv("WELLPULSE_CUTOFFS_PATH"); path != "" {
		cfg.Risk.CutoffsPath = path
	}
	if path := os.Getenv("WELLPULSE_DB_PATH"); path != "" {
		cfg.Storage.LocalPath = path
	}
	if archive := os.Getenv("WELLPULSE_ARCHIVE"); archive != "" {
		if b, err := strconv.ParseBool(archive); err == nil {
			cfg.Storage.Archive = b
		}
	}
	if threshold := os.Getenv("WELLPULSE_LATE_WEEK_THRESHOLD"); threshold != "" {
		if n, err := strconv.Atoi(threshold); err == nil {
			cfg.Survey.LateWeekThreshold = n
		}
	}
}
