package config

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func setMinimalValidConfigEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing-config.yaml"))
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SLACK_CHANNEL", "C123")
	t.Setenv("ROSTER_PATH", "/data/roster.xlsx")
	t.Setenv("TIMEZONE", "UTC")
}

func TestLoadConfigFromEnvWithDefaults(t *testing.T) {
	setMinimalValidConfigEnv(t)

	cfg := LoadConfig()

	if cfg.SlackBotToken != "xoxb-test" || cfg.SlackChannel != "C123" {
		t.Fatalf("unexpected slack settings: %q %q", cfg.SlackBotToken, cfg.SlackChannel)
	}
	if cfg.RosterAssigneeColumn != "O" || cfg.RosterNextAssigneeColumn != "R" {
		t.Fatalf("unexpected roster column defaults: %q %q", cfg.RosterAssigneeColumn, cfg.RosterNextAssigneeColumn)
	}
	if cfg.Columns.Assignee != 14 || cfg.Columns.NextAssignee != 17 {
		t.Fatalf("unexpected computed columns: %+v", cfg.Columns)
	}
	if cfg.RosterBoardURL != "/data/roster.xlsx" {
		t.Fatalf("board url should default to the roster path, got %q", cfg.RosterBoardURL)
	}
	if cfg.NotifySchedule != "0 9 * * 1-5" {
		t.Fatalf("unexpected schedule default: %q", cfg.NotifySchedule)
	}
	if cfg.InvoiceTemplateSheet != "YYYY-NNN" || cfg.InvoiceDateCell != "F12" || cfg.InvoiceTabColor != "#6aa84f" {
		t.Fatalf("unexpected invoice defaults: %+v", cfg)
	}
	if cfg.DBPath != "./officebot.db" {
		t.Fatalf("unexpected db path default: %q", cfg.DBPath)
	}
	if cfg.SMTPPort != 587 {
		t.Fatalf("unexpected smtp port default: %d", cfg.SMTPPort)
	}
	if cfg.ExternalHTTPTimeoutSeconds != int(defaultExternalHTTPTimeout/time.Second) {
		t.Fatalf("unexpected external HTTP timeout default: %d", cfg.ExternalHTTPTimeoutSeconds)
	}
	if cfg.Location == nil || cfg.Location.String() != "UTC" {
		t.Fatalf("unexpected location: %v", cfg.Location)
	}
	if err := cfg.ValidateBugHunter(); err != nil {
		t.Fatalf("ValidateBugHunter returned error: %v", err)
	}
}

func TestLoadConfigYAMLAndEnvOverride(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
slack_bot_token: "yaml-bot"
slack_channel: "C-YAML"
slack_user_group: "S-YAML"
roster_path: "/yaml/roster.xlsx"
roster_board_url: "https://docs.example.com/spreadsheets/d/xxx/edit"
roster_assignee_column: "B"
roster_next_assignee_column: "D"
timezone: "America/Los_Angeles"
extra_links:
  - title: "Runbook"
    url: "https://wiki.example.com/runbook"
reminder: "Hand over open tickets."
invoice_email_to: ["a@example.com", "b@example.com"]
external_http_timeout_seconds: 75
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_PATH", cfgPath)
	t.Setenv("SLACK_CHANNEL", "C-ENV")
	t.Setenv("INVOICE_EMAIL_TO", "c@example.com, ,d@example.com")
	t.Setenv("EXTERNAL_HTTP_TIMEOUT_SECONDS", "120")

	cfg := LoadConfig()

	if cfg.SlackBotToken != "yaml-bot" || cfg.SlackUserGroup != "S-YAML" {
		t.Fatalf("expected slack settings from yaml, got %q %q", cfg.SlackBotToken, cfg.SlackUserGroup)
	}
	if cfg.SlackChannel != "C-ENV" {
		t.Fatalf("expected channel from env override, got %q", cfg.SlackChannel)
	}
	if cfg.Columns.Assignee != 1 || cfg.Columns.NextAssignee != 3 {
		t.Fatalf("unexpected computed columns: %+v", cfg.Columns)
	}
	if cfg.RosterBoardURL != "https://docs.example.com/spreadsheets/d/xxx/edit" {
		t.Fatalf("unexpected board url: %q", cfg.RosterBoardURL)
	}
	if !reflect.DeepEqual(cfg.InvoiceEmailTo, []string{"c@example.com", "d@example.com"}) {
		t.Fatalf("unexpected invoice recipients: %v", cfg.InvoiceEmailTo)
	}
	if cfg.ExternalHTTPTimeoutSeconds != 120 {
		t.Fatalf("expected external HTTP timeout from env override, got %d", cfg.ExternalHTTPTimeoutSeconds)
	}
	extras := cfg.Extras()
	if len(extras.Links) != 1 || extras.Links[0].Title != "Runbook" || extras.Reminder != "Hand over open tickets." {
		t.Fatalf("unexpected extras: %+v", extras)
	}
	if cfg.Location.String() != "America/Los_Angeles" {
		t.Fatalf("unexpected location: %v", cfg.Location)
	}
}

func TestValidateHelpers(t *testing.T) {
	var cfg Config
	err := cfg.ValidateBugHunter()
	if err == nil {
		t.Fatal("expected ValidateBugHunter to fail on an empty config")
	}
	for _, name := range []string{"roster_path", "slack_bot_token", "slack_channel"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("expected %s in %v", name, err)
		}
	}
	if err := cfg.ValidateInvoice(); err == nil {
		t.Fatal("expected ValidateInvoice to fail without a workbook path")
	}

	cfg.SMTPHost = "smtp.example.com"
	cfg.SMTPFrom = "billing@example.com"
	if err := cfg.ValidateMail(); err == nil {
		t.Fatal("expected ValidateMail to fail without recipients")
	}
	cfg.InvoiceEmailTo = []string{"a@example.com"}
	if err := cfg.ValidateMail(); err != nil {
		t.Fatalf("ValidateMail returned error: %v", err)
	}
}

func TestEnvOverrideHelpers(t *testing.T) {
	s := "initial"
	t.Setenv("OB_TEST_STR", "value")
	envOverride(&s, "OB_TEST_STR")
	if s != "value" {
		t.Fatalf("envOverride failed, got %q", s)
	}

	e := "initial"
	t.Setenv("OB_TEST_EMPTY", "")
	envOverrideAllowEmpty(&e, "OB_TEST_EMPTY")
	if e != "" {
		t.Fatalf("envOverrideAllowEmpty failed, got %q", e)
	}

	i := 1
	t.Setenv("OB_TEST_INT", "42")
	envOverrideInt(&i, "OB_TEST_INT")
	if i != 42 {
		t.Fatalf("envOverrideInt failed, got %d", i)
	}

	list := []string{"old"}
	t.Setenv("OB_TEST_LIST", " a@example.com ,b@example.com,")
	envOverrideList(&list, "OB_TEST_LIST")
	if !reflect.DeepEqual(list, []string{"a@example.com", "b@example.com"}) {
		t.Fatalf("envOverrideList failed, got %v", list)
	}
}

func runFatalSubprocess(t *testing.T, testName, marker string) {
	t.Helper()
	cmd := exec.Command(os.Args[0], "-test.run="+testName)
	cmd.Env = append(os.Environ(), marker+"=1")
	err := cmd.Run()
	if err == nil {
		t.Fatal("expected subprocess to exit with failure")
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got: %v", err)
	}
}

func TestLoadConfigInvalidTimezoneFatal(t *testing.T) {
	if os.Getenv("TEST_INVALID_TZ_FATAL") == "1" {
		_ = os.Setenv("CONFIG_PATH", filepath.Join(os.TempDir(), "no-config.yaml"))
		_ = os.Setenv("TIMEZONE", "Mars/Colony")
		LoadConfig()
		return
	}
	runFatalSubprocess(t, "TestLoadConfigInvalidTimezoneFatal", "TEST_INVALID_TZ_FATAL")
}

func TestLoadConfigInvalidScheduleFatal(t *testing.T) {
	if os.Getenv("TEST_INVALID_SCHEDULE_FATAL") == "1" {
		_ = os.Setenv("CONFIG_PATH", filepath.Join(os.TempDir(), "no-config.yaml"))
		_ = os.Setenv("TIMEZONE", "UTC")
		_ = os.Setenv("NOTIFY_SCHEDULE", "every weekday")
		LoadConfig()
		return
	}
	runFatalSubprocess(t, "TestLoadConfigInvalidScheduleFatal", "TEST_INVALID_SCHEDULE_FATAL")
}

func TestLoadConfigInvalidColumnFatal(t *testing.T) {
	if os.Getenv("TEST_INVALID_COLUMN_FATAL") == "1" {
		_ = os.Setenv("CONFIG_PATH", filepath.Join(os.TempDir(), "no-config.yaml"))
		_ = os.Setenv("TIMEZONE", "UTC")
		_ = os.Setenv("ROSTER_ASSIGNEE_COLUMN", "14")
		LoadConfig()
		return
	}
	runFatalSubprocess(t, "TestLoadConfigInvalidColumnFatal", "TEST_INVALID_COLUMN_FATAL")
}
