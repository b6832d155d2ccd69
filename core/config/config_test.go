package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc", AdminIDs: []int64{42}},
		Bot:      BotConfig{PhotoID: "photo-file-id"},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q, want %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}
	if cfg.Bot.LinkBaseURL != DefaultLinkBaseURL {
		t.Fatalf("link base = %q, want %q", cfg.Bot.LinkBaseURL, DefaultLinkBaseURL)
	}
}

func TestNormalizeAppendsSlashToBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.Bot.LinkBaseURL = "https://pay.example.org/l"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Bot.LinkBaseURL != "https://pay.example.org/l/" {
		t.Fatalf("link base = %q", cfg.Bot.LinkBaseURL)
	}
}

func TestNormalizeRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing token", func(c *Config) { c.Telegram.Token = "" }, "Telegram.Token"},
		{"no admins", func(c *Config) { c.Telegram.AdminIDs = nil }, "Telegram.AdminIDs"},
		{"zero admin", func(c *Config) { c.Telegram.AdminIDs = []int64{0} }, "Telegram.AdminIDs[0]"},
		{"missing photo", func(c *Config) { c.Bot.PhotoID = " " }, "Bot.PhotoID"},
		{"bad base url", func(c *Config) { c.Bot.LinkBaseURL = "not a url" }, "Bot.LinkBaseURL"},
		{"bad run mode", func(c *Config) { c.Telegram.RunMode = "carrier-pigeon" }, "run_mode"},
		{"webhook without url", func(c *Config) { c.Telegram.RunMode = "webhook" }, "webhook.url"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := Normalize(cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadOverlaysEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `telegram:
  token: from-file
  admin_ids: [7]
bot:
  photo_id: file-photo
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("BOT_TOKEN", "from-env")
	t.Setenv("TELEGRAM_ADMIN_IDS", "7,8")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Fatalf("token = %q, want env override", cfg.Telegram.Token)
	}
	if len(cfg.Telegram.AdminIDs) != 2 || cfg.Telegram.AdminIDs[1] != 8 {
		t.Fatalf("admin ids = %v", cfg.Telegram.AdminIDs)
	}
	if cfg.Bot.PhotoID != "file-photo" {
		t.Fatalf("photo id = %q", cfg.Bot.PhotoID)
	}
}
