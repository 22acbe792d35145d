package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"workman/log"
)

const (
	ConfigFileName = "config.json"

	defaultScrollbackLines = 1000
	defaultPollIntervalMs  = 50
)

// GetConfigDir returns the path to the application's configuration directory
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config home directory: %w", err)
	}
	return filepath.Join(homeDir, ".workman"), nil
}

// Worktree is a git worktree tracked under a project.
type Worktree struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Project is a git repository and the worktrees created from it.
type Project struct {
	Name      string     `json:"name"`
	Path      string     `json:"path"`
	Worktrees []Worktree `json:"worktrees"`
}

// Config represents the application configuration
type Config struct {
	// Projects is the list of tracked repositories, in display order.
	Projects []Project `json:"projects"`
	// Shell overrides $SHELL as the shell started in worktrees.
	Shell string `json:"shell,omitempty"`
	// ScrollbackLines bounds the history kept per terminal session.
	ScrollbackLines int `json:"scrollback_lines"`
	// PollIntervalMs is the redraw interval of the dashboard.
	PollIntervalMs int `json:"poll_interval_ms"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Projects:        []Project{},
		ScrollbackLines: defaultScrollbackLines,
		PollIntervalMs:  defaultPollIntervalMs,
	}
}

// PollInterval returns the redraw interval as a duration.
func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalMs <= 0 {
		return defaultPollIntervalMs * time.Millisecond
	}
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// normalize fills in zero values left by older or hand-edited config files.
func (c *Config) normalize() {
	if c.Projects == nil {
		c.Projects = []Project{}
	}
	for i := range c.Projects {
		if c.Projects[i].Worktrees == nil {
			c.Projects[i].Worktrees = []Worktree{}
		}
	}
	if c.ScrollbackLines <= 0 {
		c.ScrollbackLines = defaultScrollbackLines
	}
	if c.PollIntervalMs <= 0 {
		c.PollIntervalMs = defaultPollIntervalMs
	}
}

func LoadConfig() *Config {
	configDir, err := GetConfigDir()
	if err != nil {
		log.ErrorLog.Printf("failed to get config directory: %v", err)
		return DefaultConfig()
	}
	return loadConfigFrom(filepath.Join(configDir, ConfigFileName))
}

func loadConfigFrom(configPath string) *Config {
	lock := NewFileLock(configPath)
	if err := lock.RLock(); err != nil {
		log.WarningLog.Printf("failed to acquire read lock: %v", err)
	} else {
		defer lock.Unlock()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WarningLog.Printf("failed to get config file: %v", err)
		}
		return DefaultConfig()
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		preview := string(data)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		log.ErrorLog.Printf("failed to parse config file at %s: %v\nConfig content preview: %s", configPath, err, preview)

		// Keep the unreadable file around so the next save does not destroy it.
		backupPath := configPath + ".corrupt." + time.Now().Format("20060102-150405")
		if backupErr := os.WriteFile(backupPath, data, 0644); backupErr == nil {
			log.InfoLog.Printf("Backed up corrupted config to: %s", backupPath)
		}

		return DefaultConfig()
	}

	config.normalize()
	return config
}

// SaveConfig writes the configuration to disk under an exclusive lock.
func SaveConfig(config *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	return saveConfigTo(config, filepath.Join(configDir, ConfigFileName))
}

func saveConfigTo(config *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	lock := NewFileLock(configPath)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire write lock: %w", err)
	}
	defer lock.Unlock()

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// ConfigPath returns the full path of the config file.
func ConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}
