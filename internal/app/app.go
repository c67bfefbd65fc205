package app

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"officebot/internal/config"
	"officebot/internal/httpx"
	"officebot/internal/mail"
	"officebot/internal/storage/sqlite"

	"github.com/alecthomas/kong"
)

// CLI is the officebot command tree.
type CLI struct {
	Serve   ServeCmd   `cmd:"" help:"Run the bug hunter notification on notify_schedule until interrupted."`
	Notify  NotifyCmd  `cmd:"" help:"Announce today's bug hunter and assign the user group once."`
	History HistoryCmd `cmd:"" help:"List recorded bug hunter runs and invoice events."`
	Invoice struct {
		Menu   InvoiceMenuCmd   `cmd:"" help:"List invoices and what can be done with them."`
		Create InvoiceCreateCmd `cmd:"" help:"Create this month's invoice from the template sheet."`
		Export InvoiceExportCmd `cmd:"" help:"Export one invoice sheet to its own workbook."`
		Email  InvoiceEmailCmd  `cmd:"" help:"Export an invoice and email it."`
	} `cmd:"" help:"Manage the invoice workbook."`
}

// Context is handed to every command's Run method.
type Context struct {
	Config config.Config
	DB     *sql.DB
	Out    io.Writer
	Now    func() time.Time

	// Mail overrides the SMTP sender built from Config.
	Mail mail.Sender
}

func (c *Context) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now().In(c.Config.Location)
}

func (c *Context) mailSender() mail.Sender {
	if c.Mail != nil {
		return c.Mail
	}
	return mail.SMTPSender{
		Host:     c.Config.SMTPHost,
		Port:     c.Config.SMTPPort,
		Username: c.Config.SMTPUsername,
		Password: c.Config.SMTPPassword,
	}
}

func Main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("officebot"),
		kong.Description("Bug hunter rotation announcements and monthly invoices."),
		kong.UsageOnError(),
	)

	cfg := config.LoadConfig()
	appliedHTTPTimeout := httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)
	log.Printf(
		"Config loaded. Channel=%s Group=%s Roster=%s Schedule=%q Timezone=%s ExternalHTTPTimeout=%s",
		cfg.SlackChannel,
		cfg.SlackUserGroup,
		cfg.RosterPath,
		cfg.NotifySchedule,
		cfg.Timezone,
		appliedHTTPTimeout,
	)

	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to init database: %v", err)
	}
	log.Printf("Database initialized at %s", cfg.DBPath)
	defer db.Close()

	appCtx := &Context{Config: cfg, DB: db, Out: os.Stdout}
	if err := kctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		db.Close()
		os.Exit(1)
	}
}
