// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"davomat/pkg/localdate"
)

// DefaultClasses is the school's fixed, ordered class enumeration. Report
// ordering and the "missing classes" reminder both follow this order, not the
// alphabet.
var DefaultClasses = []string{
	"1A", "1B",
	"2A", "2B",
	"3A",
	"4A",
	"5A", "5B",
	"6A", "6B",
	"7A",
	"8A", "8B",
	"9A", "9B",
	"10A", "10B",
	"11A",
}

// Config captures everything the bot needs at boot.
type Config struct {
	BotToken       string
	OwnerID        int64
	AllowedGroupID int64 // 0 means any group is accepted

	Timezone string
	Classes  []string

	ActiveWindow  localdate.Window
	SummaryTimes  []localdate.TimeOfDay
	ReminderTimes []localdate.TimeOfDay
	EndOfDay      localdate.TimeOfDay

	DatabaseURL string
	RedisURL    string

	Addr        string
	WebhookURL  string
	AdminJWTKey string
}

// FromEnv builds a Config from environment variables, applying the deployment
// defaults the school runs with.
func FromEnv() (Config, error) {
	cfg := Config{
		BotToken:    os.Getenv("BOT_TOKEN"),
		Timezone:    envOr("TIMEZONE", "Asia/Tashkent"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		Addr:        envOr("ADDR", ":8080"),
		WebhookURL:  os.Getenv("WEBHOOK_URL"),
		AdminJWTKey: os.Getenv("ADMIN_JWT_KEY"),
	}

	if cfg.BotToken == "" {
		return Config{}, fmt.Errorf("BOT_TOKEN is required")
	}

	var err error
	if cfg.OwnerID, err = envInt64("OWNER_USER_ID"); err != nil {
		return Config{}, err
	}
	if cfg.AllowedGroupID, err = envInt64("ALLOWED_GROUP_ID"); err != nil {
		return Config{}, err
	}

	if classes := os.Getenv("CLASSES"); classes != "" {
		for _, c := range strings.Split(classes, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cfg.Classes = append(cfg.Classes, strings.ToUpper(c))
			}
		}
	} else {
		cfg.Classes = append([]string(nil), DefaultClasses...)
	}

	if cfg.ActiveWindow.Start, err = envTime("ACTIVE_START", "08:15"); err != nil {
		return Config{}, err
	}
	if cfg.ActiveWindow.End, err = envTime("ACTIVE_END", "13:00"); err != nil {
		return Config{}, err
	}
	if cfg.SummaryTimes, err = envTimeList("SUMMARY_TIMES", "09:15"); err != nil {
		return Config{}, err
	}
	if cfg.ReminderTimes, err = envTimeList("REMINDER_TIMES", "09:30,09:45,10:00"); err != nil {
		return Config{}, err
	}
	if cfg.EndOfDay, err = envTime("END_OF_DAY", "13:00"); err != nil {
		return Config{}, err
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}

	return cfg, nil
}

// Location resolves the configured timezone. Config validation already
// guaranteed it loads.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func envTime(key, fallback string) (localdate.TimeOfDay, error) {
	t, err := localdate.ParseTimeOfDay(envOr(key, fallback))
	if err != nil {
		return localdate.TimeOfDay{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return t, nil
}

func envTimeList(key, fallback string) ([]localdate.TimeOfDay, error) {
	times, err := localdate.ParseTimeOfDayList(envOr(key, fallback))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return times, nil
}
