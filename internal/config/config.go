package config

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/diegoclair/slack-attendance-bot/internal/domain"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/entity"
	"github.com/diegoclair/slack-attendance-bot/internal/domain/service"
)

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// settings is the part of the configuration read from the environment
type settings struct {
	SlackBotToken      string `env:"SLACK_BOT_TOKEN"`
	SlackSigningSecret string `env:"SLACK_SIGNING_SECRET"`
	Port               string `env:"PORT" envDefault:"3000"`
	Timezone           string `env:"BOT_TIMEZONE" envDefault:"Asia/Dhaka"`

	NotificationChannelID string `env:"NOTIFICATION_CHANNEL_ID"`

	StorageDriver       string `env:"STORAGE_DRIVER" envDefault:"json"`
	AttendanceStorePath string `env:"ATTENDANCE_STORE_PATH" envDefault:"./schedule_data.json"`
	ReminderStorePath   string `env:"REMINDER_STORE_PATH" envDefault:"./reminders.json"`
	DatabasePath        string `env:"DATABASE_PATH" envDefault:"./bot.db"`

	ScheduleFile       string        `env:"ATTENDANCE_SCHEDULE_FILE"`
	ExtraUsers         []string      `env:"ATTENDANCE_USERS" envSeparator:","`
	ActiveStatusNames  []string      `env:"ATTENDANCE_ACTIVE_STATUSES" envSeparator:"," envDefault:"online,idle,busy"`
	SummaryModeName    string        `env:"ATTENDANCE_SUMMARY_MODE" envDefault:"midnight"`
	PresencePollPeriod time.Duration `env:"PRESENCE_POLL_INTERVAL" envDefault:"30s"`

	ReminderTiers []int  `env:"REMINDER_TIERS" envSeparator:"," envDefault:"15,10,2"`
	AckPolicyName string `env:"REMINDER_ACK_POLICY" envDefault:"last-tier"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

type Config struct {
	settings

	Location       *time.Location
	Schedules      map[string]entity.WeeklySchedule
	ActiveStatuses []domain.Status
	SummaryMode    domain.SummaryMode
	AckPolicy      service.AckPolicy
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	raw, err := env.ParseAs[settings]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg := Config{settings: raw}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolve() error {
	switch c.StorageDriver {
	case DriverJSON, DriverSQLite:
	default:
		return fmt.Errorf("STORAGE_DRIVER: unknown driver %q", c.StorageDriver)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("BOT_TIMEZONE: %w", err)
	}
	c.Location = loc

	switch mode := domain.SummaryMode(c.SummaryModeName); mode {
	case domain.SummaryImmediate, domain.SummaryMidnight:
		c.SummaryMode = mode
	default:
		return fmt.Errorf("ATTENDANCE_SUMMARY_MODE: unknown mode %q", c.SummaryModeName)
	}

	c.ActiveStatuses = nil
	for _, name := range c.ActiveStatusNames {
		status, ok := domain.ParseStatus(name)
		if !ok {
			return fmt.Errorf("ATTENDANCE_ACTIVE_STATUSES: unknown status %q", name)
		}
		if !slices.Contains(c.ActiveStatuses, status) {
			c.ActiveStatuses = append(c.ActiveStatuses, status)
		}
	}

	if err := validateTiers(c.ReminderTiers); err != nil {
		return fmt.Errorf("REMINDER_TIERS: %w", err)
	}

	c.AckPolicy, err = service.NewAckPolicy(c.AckPolicyName)
	if err != nil {
		return fmt.Errorf("REMINDER_ACK_POLICY: %w", err)
	}

	if c.PresencePollPeriod <= 0 {
		return fmt.Errorf("PRESENCE_POLL_INTERVAL: must be positive, got %s", c.PresencePollPeriod)
	}

	c.Schedules = map[string]entity.WeeklySchedule{}
	if c.ScheduleFile != "" {
		c.Schedules, err = LoadSchedules(c.ScheduleFile)
		if err != nil {
			return fmt.Errorf("ATTENDANCE_SCHEDULE_FILE: %w", err)
		}
	}

	return nil
}

func validateTiers(tiers []int) error {
	if len(tiers) == 0 {
		return fmt.Errorf("at least one tier is required")
	}
	for i, t := range tiers {
		if t <= 0 {
			return fmt.Errorf("tiers must be positive, got %d", t)
		}
		if i > 0 && t >= tiers[i-1] {
			return fmt.Errorf("tiers must be strictly descending, got %v", tiers)
		}
	}
	return nil
}

// LoadSchedules reads a JSON document mapping user ids to their weekly schedules.
func LoadSchedules(path string) (map[string]entity.WeeklySchedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule file: %w", err)
	}

	var schedules map[string]entity.WeeklySchedule
	if err := json.Unmarshal(data, &schedules); err != nil {
		return nil, fmt.Errorf("failed to decode schedule file: %w", err)
	}

	for userID, weekly := range schedules {
		if err := weekly.Validate(); err != nil {
			return nil, fmt.Errorf("user %s: %w", userID, err)
		}
	}
	if schedules == nil {
		schedules = map[string]entity.WeeklySchedule{}
	}
	return schedules, nil
}
