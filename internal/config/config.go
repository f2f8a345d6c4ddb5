// Package config handles bot configuration: an optional YAML file
// merged with environment variables, the environment winning.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete bot configuration.
type Config struct {
	Token  string `yaml:"token"`
	Prefix string `yaml:"prefix"`

	GuildID           string `yaml:"guild_id"`
	ShopChannelID     string `yaml:"shop_channel_id"`
	CartChannelID     string `yaml:"cart_channel_id"`
	AdminChannelID    string `yaml:"admin_channel_id"`
	TicketCategoryID  string `yaml:"ticket_category_id"`
	ArchiveCategoryID string `yaml:"archive_category_id"`
	ReviewChannelID   string `yaml:"review_channel_id"`
	AdminRoleID       string `yaml:"admin_role_id"`

	DataDir string `yaml:"data_dir"`
	OpsAddr string `yaml:"ops_addr"`

	ArchiveDelay     time.Duration `yaml:"archive_delay"`
	CloseDeleteDelay time.Duration `yaml:"close_delete_delay"`

	Payment PaymentConfig `yaml:"payment"`
}

// PaymentConfig holds the strings shown by the payment-info command.
type PaymentConfig struct {
	CardNumber string `yaml:"card_number"`
	CardHolder string `yaml:"card_holder"`
	BankName   string `yaml:"bank_name"`
}

const (
	defaultPrefix           = "!"
	defaultDataDir          = "data"
	defaultOpsAddr          = ":8090"
	defaultArchiveDelay     = 10 * time.Second
	defaultCloseDeleteDelay = 5 * time.Second
)

// Load reads the YAML file at path (skipped when path is empty or the
// file is absent), applies environment overrides and validates the
// result. A .env file found in the working directory or a parent is
// loaded first without overriding the real environment.
func Load(path string) (*Config, error) {
	LoadDotEnv()

	cfg := &Config{
		Prefix:           defaultPrefix,
		DataDir:          defaultDataDir,
		OpsAddr:          defaultOpsAddr,
		ArchiveDelay:     defaultArchiveDelay,
		CloseDeleteDelay: defaultCloseDeleteDelay,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setEnv(&cfg.Token, "TOKEN")
	setEnv(&cfg.Prefix, "COMMAND_PREFIX")
	setEnv(&cfg.GuildID, "GUILD_ID")
	setEnv(&cfg.ShopChannelID, "SHOP_CHANNEL_ID")
	setEnv(&cfg.CartChannelID, "CART_CHANNEL_ID")
	setEnv(&cfg.AdminChannelID, "ADMIN_CHANNEL_ID")
	setEnv(&cfg.TicketCategoryID, "TICKET_CATEGORY_ID")
	setEnv(&cfg.ArchiveCategoryID, "ARCHIVE_CATEGORY_ID")
	setEnv(&cfg.ReviewChannelID, "REVIEW_CHANNEL_ID")
	setEnv(&cfg.AdminRoleID, "ADMIN_ROLE_ID")
	setEnv(&cfg.DataDir, "DATA_DIR")
	setEnv(&cfg.OpsAddr, "OPS_ADDR")
	setEnv(&cfg.Payment.CardNumber, "CARD_NUMBER")
	setEnv(&cfg.Payment.CardHolder, "CARD_HOLDER")
	setEnv(&cfg.Payment.BankName, "BANK_NAME")
}

func setEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func (c *Config) validate() error {
	if c.Token == "" {
		return fmt.Errorf("config: token is required (TOKEN)")
	}
	if c.GuildID == "" {
		return fmt.Errorf("config: guild id is required (GUILD_ID)")
	}
	if c.ShopChannelID == "" {
		return fmt.Errorf("config: shop channel id is required (SHOP_CHANNEL_ID)")
	}
	if c.TicketCategoryID == "" {
		return fmt.Errorf("config: ticket category id is required (TICKET_CATEGORY_ID)")
	}
	if c.Prefix == "" {
		c.Prefix = defaultPrefix
	}
	return nil
}

// LoadDotEnv walks up from the working directory looking for a .env
// file and loads it. Variables already present in the environment are
// left alone.
func LoadDotEnv() {
	path := findDotEnv()
	if path == "" {
		return
	}
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			line = strings.TrimPrefix(line, "\uFEFF")
			first = false
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = trimQuotes(strings.TrimSpace(value))
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		os.Setenv(key, value)
	}
}

func findDotEnv() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for i := 0; i < 6; i++ {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func trimQuotes(value string) string {
	if len(value) < 2 {
		return value
	}
	if (value[0] == '"' && value[len(value)-1] == '"') ||
		(value[0] == '\'' && value[len(value)-1] == '\'') {
		return value[1 : len(value)-1]
	}
	return value
}
