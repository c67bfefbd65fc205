package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"officebot/internal/bughunter"
	"officebot/internal/roster"
	"officebot/internal/schedule"

	"gopkg.in/yaml.v3"
)

const defaultExternalHTTPTimeout = 30 * time.Second
const defaultExternalHTTPTimeoutSeconds = int(defaultExternalHTTPTimeout / time.Second)

type Config struct {
	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannel   string `yaml:"slack_channel"`
	SlackUserGroup string `yaml:"slack_user_group"`

	RosterPath               string `yaml:"roster_path"`
	RosterSheet              string `yaml:"roster_sheet"`
	RosterBoardURL           string `yaml:"roster_board_url"`
	RosterAssigneeColumn     string `yaml:"roster_assignee_column"`
	RosterNextAssigneeColumn string `yaml:"roster_next_assignee_column"`

	NotifySchedule string           `yaml:"notify_schedule"`
	ExtraLinks     []bughunter.Link `yaml:"extra_links"`
	Reminder       string           `yaml:"reminder"`

	InvoiceWorkbookPath  string   `yaml:"invoice_workbook_path"`
	InvoiceTemplateSheet string   `yaml:"invoice_template_sheet"`
	InvoiceDateCell      string   `yaml:"invoice_date_cell"`
	InvoiceTabColor      string   `yaml:"invoice_tab_color"`
	InvoiceOutputDir     string   `yaml:"invoice_output_dir"`
	InvoiceFilePrefix    string   `yaml:"invoice_file_prefix"`
	InvoiceSenderName    string   `yaml:"invoice_sender_name"`
	InvoiceEmailTo       []string `yaml:"invoice_email_to"`

	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUsername string `yaml:"smtp_username"`
	SMTPPassword string `yaml:"smtp_password"`
	SMTPFrom     string `yaml:"smtp_from"`

	DBPath                     string `yaml:"db_path"`
	ExternalHTTPTimeoutSeconds int    `yaml:"external_http_timeout_seconds"`
	Timezone                   string `yaml:"timezone"`

	Location *time.Location `yaml:"-"` // computed from Timezone, not from YAML
	Columns  roster.Columns `yaml:"-"` // computed from the roster column letters
}

func LoadConfig() Config {
	var cfg Config

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannel, "SLACK_CHANNEL")
	envOverride(&cfg.SlackUserGroup, "SLACK_USER_GROUP")
	envOverride(&cfg.RosterPath, "ROSTER_PATH")
	envOverride(&cfg.RosterSheet, "ROSTER_SHEET")
	envOverride(&cfg.RosterBoardURL, "ROSTER_BOARD_URL")
	envOverride(&cfg.RosterAssigneeColumn, "ROSTER_ASSIGNEE_COLUMN")
	envOverride(&cfg.RosterNextAssigneeColumn, "ROSTER_NEXT_ASSIGNEE_COLUMN")
	envOverride(&cfg.NotifySchedule, "NOTIFY_SCHEDULE")
	envOverrideAllowEmpty(&cfg.Reminder, "REMINDER")
	envOverride(&cfg.InvoiceWorkbookPath, "INVOICE_WORKBOOK_PATH")
	envOverride(&cfg.InvoiceTemplateSheet, "INVOICE_TEMPLATE_SHEET")
	envOverride(&cfg.InvoiceDateCell, "INVOICE_DATE_CELL")
	envOverride(&cfg.InvoiceTabColor, "INVOICE_TAB_COLOR")
	envOverride(&cfg.InvoiceOutputDir, "INVOICE_OUTPUT_DIR")
	envOverride(&cfg.InvoiceFilePrefix, "INVOICE_FILE_PREFIX")
	envOverride(&cfg.InvoiceSenderName, "INVOICE_SENDER_NAME")
	envOverrideList(&cfg.InvoiceEmailTo, "INVOICE_EMAIL_TO")
	envOverride(&cfg.SMTPHost, "SMTP_HOST")
	envOverrideInt(&cfg.SMTPPort, "SMTP_PORT")
	envOverride(&cfg.SMTPUsername, "SMTP_USERNAME")
	envOverride(&cfg.SMTPPassword, "SMTP_PASSWORD")
	envOverride(&cfg.SMTPFrom, "SMTP_FROM")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS")
	envOverride(&cfg.Timezone, "TIMEZONE")

	if cfg.RosterAssigneeColumn == "" {
		cfg.RosterAssigneeColumn = "O"
	}
	if cfg.RosterNextAssigneeColumn == "" {
		cfg.RosterNextAssigneeColumn = "R"
	}
	if cfg.NotifySchedule == "" {
		cfg.NotifySchedule = "0 9 * * 1-5"
	}
	if cfg.InvoiceTemplateSheet == "" {
		cfg.InvoiceTemplateSheet = "YYYY-NNN"
	}
	if cfg.InvoiceDateCell == "" {
		cfg.InvoiceDateCell = "F12"
	}
	if cfg.InvoiceTabColor == "" {
		cfg.InvoiceTabColor = "#6aa84f"
	}
	if cfg.InvoiceOutputDir == "" {
		cfg.InvoiceOutputDir = "./invoices"
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = 587
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./officebot.db"
	}
	if cfg.ExternalHTTPTimeoutSeconds == 0 {
		cfg.ExternalHTTPTimeoutSeconds = defaultExternalHTTPTimeoutSeconds
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}
	if cfg.RosterBoardURL == "" {
		cfg.RosterBoardURL = cfg.RosterPath
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	cols, err := roster.ColumnsFromNames(cfg.RosterAssigneeColumn, cfg.RosterNextAssigneeColumn)
	if err != nil {
		log.Fatalf("invalid roster columns: %v", err)
	}
	cfg.Columns = cols

	if _, err := schedule.Parse(cfg.NotifySchedule); err != nil {
		log.Fatalf("invalid notify_schedule '%s': %v", cfg.NotifySchedule, err)
	}
	if cfg.ExternalHTTPTimeoutSeconds < 5 {
		log.Fatalf("invalid external_http_timeout_seconds '%d': must be >= 5", cfg.ExternalHTTPTimeoutSeconds)
	}
	if cfg.SMTPPort < 1 || cfg.SMTPPort > 65535 {
		log.Fatalf("invalid smtp_port '%d': must be between 1 and 65535", cfg.SMTPPort)
	}
	for i, l := range cfg.ExtraLinks {
		if strings.TrimSpace(l.URL) == "" {
			log.Fatalf("invalid extra_links[%d]: url is required", i)
		}
	}

	return cfg
}

// ValidateBugHunter reports the settings the notify and assign run cannot do without.
func (c Config) ValidateBugHunter() error {
	return requireAll(map[string]string{
		"slack_bot_token": c.SlackBotToken,
		"slack_channel":   c.SlackChannel,
		"roster_path":     c.RosterPath,
	})
}

func (c Config) ValidateInvoice() error {
	return requireAll(map[string]string{
		"invoice_workbook_path": c.InvoiceWorkbookPath,
	})
}

func (c Config) ValidateMail() error {
	if err := requireAll(map[string]string{
		"smtp_host": c.SMTPHost,
		"smtp_from": c.SMTPFrom,
	}); err != nil {
		return err
	}
	if len(c.InvoiceEmailTo) == 0 {
		return errors.New("required config 'invoice_email_to' is not set (via config.yaml or env var)")
	}
	return nil
}

func (c Config) Extras() bughunter.Extras {
	return bughunter.Extras{Links: c.ExtraLinks, Reminder: c.Reminder}
}

func requireAll(fields map[string]string) error {
	var missing []string
	for name, val := range fields {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("required config '%s' is not set (via config.yaml or env var)", strings.Join(missing, "', '"))
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideAllowEmpty(field *string, envKey string) {
	if val, ok := os.LookupEnv(envKey); ok {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideList(field *[]string, envKey string) {
	vals := os.Getenv(envKey)
	if vals == "" {
		return
	}
	*field = nil
	for _, v := range strings.Split(vals, ",") {
		v = strings.TrimSpace(v)
		if v != "" {
			*field = append(*field, v)
		}
	}
}
