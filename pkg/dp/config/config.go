package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env      string         `yaml:"env"` // "dev" or "prod"
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Content  ContentConfig  `yaml:"content"`
	Site     SiteConfig     `yaml:"site"`
	Publish  PublishConfig  `yaml:"publish"`
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	PreviewAddr string `yaml:"preview_addr"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// ContentConfig locates the hand-authored content tree.
type ContentConfig struct {
	Root string `yaml:"root"`
}

// SiteConfig controls static generation output.
type SiteConfig struct {
	BaseURL       string   `yaml:"base_url"`
	OutputDir     string   `yaml:"output_dir"`
	TemplatePath  string   `yaml:"template_path"` // external shell HTML; empty means the embedded default
	Locales       []string `yaml:"locales"`
	DefaultLocale string   `yaml:"default_locale"`
	Minify        bool     `yaml:"minify"`
}

// PublishConfig holds the git targets for commit-on-save and site publishing.
type PublishConfig struct {
	RepoURL      string `yaml:"repo_url"`
	Branch       string `yaml:"branch"`
	AuthToken    string `yaml:"auth_token"`
	CommitName   string `yaml:"commit_name"`
	CommitEmail  string `yaml:"commit_email"`
	CommitOnSave bool   `yaml:"commit_on_save"`
}

func Load() *Config {
	// .env first so PAGES_* overrides below see it
	_ = godotenv.Load()

	env := os.Getenv("PAGES_ENV")
	if env == "" {
		env = "dev" // Default to dev for safety
	}

	var dbPath, contentRoot, outputDir string
	if env == "dev" {
		dbPath = "_workspace/db/pages.db"
		contentRoot = "content"
		outputDir = "dist"
	} else {
		homeDir, _ := os.UserHomeDir()
		dbPath = filepath.Join(homeDir, ".pages", "pages.db")
		contentRoot = filepath.Join(homeDir, "Documents", "Pages", "content")
		outputDir = filepath.Join(homeDir, "Documents", "Pages", "dist")
	}

	cfg := &Config{
		Env:      env,
		Server:   ServerConfig{Addr: ":8080", PreviewAddr: ":3000"},
		Database: DatabaseConfig{Path: dbPath},
		Log:      LogConfig{Level: "info"},
		Content:  ContentConfig{Root: contentRoot},
		Site: SiteConfig{
			BaseURL:       "https://dongtl.com",
			OutputDir:     outputDir,
			Locales:       []string{"ko", "en"},
			DefaultLocale: "ko",
			Minify:        true,
		},
		Publish: PublishConfig{
			Branch:      "main",
			CommitName:  "Pages Bot",
			CommitEmail: "pages@localhost",
		},
	}

	data, err := os.ReadFile("config.yaml")
	if err == nil {
		yaml.Unmarshal(data, cfg)
	}

	// Environment overrides (highest priority)
	if v := os.Getenv("PAGES_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("PAGES_PREVIEW_ADDR"); v != "" {
		cfg.Server.PreviewAddr = v
	}
	if v := os.Getenv("PAGES_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("PAGES_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PAGES_CONTENT_ROOT"); v != "" {
		cfg.Content.Root = v
	}
	if v := os.Getenv("PAGES_SITE_BASE_URL"); v != "" {
		cfg.Site.BaseURL = v
	}
	if v := os.Getenv("PAGES_SITE_OUTPUT_DIR"); v != "" {
		cfg.Site.OutputDir = v
	}
	if v := os.Getenv("PAGES_SITE_TEMPLATE_PATH"); v != "" {
		cfg.Site.TemplatePath = v
	}
	if v := os.Getenv("PAGES_SITE_LOCALES"); v != "" {
		cfg.Site.Locales = splitList(v)
	}
	if v := os.Getenv("PAGES_PUBLISH_REPO_URL"); v != "" {
		cfg.Publish.RepoURL = v
	}
	if v := os.Getenv("PAGES_PUBLISH_BRANCH"); v != "" {
		cfg.Publish.Branch = v
	}
	if v := os.Getenv("PAGES_PUBLISH_AUTH_TOKEN"); v != "" {
		cfg.Publish.AuthToken = v
	}

	return cfg
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
