package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"officebot/internal/invoice"
	"officebot/internal/storage/sqlite"
)

func book(ctx *Context) (invoice.Book, error) {
	if err := ctx.Config.ValidateInvoice(); err != nil {
		return invoice.Book{}, err
	}
	cfg := ctx.Config
	return invoice.Book{
		Path: cfg.InvoiceWorkbookPath,
		Options: invoice.Options{
			TemplateSheet: cfg.InvoiceTemplateSheet,
			DateCell:      cfg.InvoiceDateCell,
			TabColor:      cfg.InvoiceTabColor,
		},
	}, nil
}

func recordInvoice(ctx *Context, number, action, detail string) {
	err := sqlite.InsertInvoiceEvent(ctx.DB, sqlite.InvoiceEvent{Number: number, Action: action, Detail: detail})
	if err != nil {
		log.Printf("invoice: record %s %s failed: %v", action, number, err)
	}
}

type InvoiceMenuCmd struct{}

func (cmd *InvoiceMenuCmd) Run(ctx *Context) error {
	b, err := book(ctx)
	if err != nil {
		return err
	}
	m, err := b.Menu(ctx.now())
	if err != nil {
		return err
	}
	if len(m.Invoices) == 0 {
		fmt.Fprintln(ctx.Out, "No invoices yet.")
	} else {
		fmt.Fprintf(ctx.Out, "Invoices: %s\n", strings.Join(m.Invoices, ", "))
	}
	if m.CanCreate {
		fmt.Fprintf(ctx.Out, "create: new invoice %s\n", m.Next)
	}
	if m.Current != "" && m.Current != b.TemplateSheet {
		fmt.Fprintf(ctx.Out, "export: %s\n", m.Current)
		fmt.Fprintf(ctx.Out, "email: %s\n", m.Current)
	}
	return nil
}

type InvoiceCreateCmd struct{}

func (cmd *InvoiceCreateCmd) Run(ctx *Context) error {
	b, err := book(ctx)
	if err != nil {
		return err
	}
	now := ctx.now()
	number, err := b.Create(now)
	if err != nil {
		return err
	}
	recordInvoice(ctx, number, "created", invoice.IssueDate(now).Format("2006-01-02"))
	fmt.Fprintf(ctx.Out, "Created invoice %s\n", number)
	return nil
}

type InvoiceExportCmd struct {
	Sheet string `help:"Invoice sheet to export. Defaults to the active sheet."`
}

func (cmd *InvoiceExportCmd) Run(ctx *Context) error {
	b, err := book(ctx)
	if err != nil {
		return err
	}
	number, path, err := export(ctx, b, cmd.Sheet)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Exported invoice %s to %s\n", number, path)
	return nil
}

type InvoiceEmailCmd struct {
	Sheet string `help:"Invoice sheet to email. Defaults to the active sheet."`
}

func (cmd *InvoiceEmailCmd) Run(ctx *Context) error {
	if err := ctx.Config.ValidateMail(); err != nil {
		return err
	}
	b, err := book(ctx)
	if err != nil {
		return err
	}
	number, path, err := export(ctx, b, cmd.Sheet)
	if err != nil {
		return err
	}

	cfg := ctx.Config
	mailer := invoice.Mailer{
		Sender:     ctx.mailSender(),
		From:       cfg.SMTPFrom,
		To:         cfg.InvoiceEmailTo,
		SenderName: cfg.InvoiceSenderName,
	}
	if err := mailer.Send(context.Background(), ctx.now(), number, path); err != nil {
		return err
	}
	recordInvoice(ctx, number, "emailed", strings.Join(cfg.InvoiceEmailTo, ","))
	fmt.Fprintf(ctx.Out, "Emailed invoice %s to %s\n", number, strings.Join(cfg.InvoiceEmailTo, ", "))
	return nil
}

func export(ctx *Context, b invoice.Book, sheet string) (string, string, error) {
	if sheet == "" {
		m, err := b.Menu(ctx.now())
		if err != nil {
			return "", "", err
		}
		sheet = m.Current
	}
	if sheet == b.TemplateSheet {
		return "", "", fmt.Errorf("%w: %q is the template", invoice.ErrSheetMissing, sheet)
	}
	path, err := b.Export(ctx.now(), sheet, ctx.Config.InvoiceOutputDir, ctx.Config.InvoiceFilePrefix)
	if err != nil {
		return "", "", err
	}
	recordInvoice(ctx, sheet, "exported", path)
	return sheet, path, nil
}
