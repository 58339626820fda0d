package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hummingbird-fin/hbctl/internal/model"
	"github.com/hummingbird-fin/hbctl/internal/rail"
)

// Prompter is the blocking-dialog implementation of interactive input:
// it collects the transfer draft, the overdraft confirmation, and the
// one-time passcode from stdin.
type Prompter struct {
	reader *LineReader
	writer io.Writer
}

// NewPrompter creates a prompter over the given streams. Nil arguments
// default to stdin/stdout.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &Prompter{
		reader: NewLineReader(reader),
		writer: writer,
	}
}

// CollectCode prompts for the 6-digit confirmation code for one transfer.
// Format validation happens in the otp flow; this only collects.
func (p *Prompter) CollectCode(ctx context.Context, referenceID string) (string, error) {
	if _, err := fmt.Fprintln(p.writer, FormatInfo(fmt.Sprintf("A confirmation code was sent for transfer %s.", referenceID))); err != nil {
		return "", fmt.Errorf("failed to write code notice: %w", err)
	}
	if _, err := fmt.Fprint(p.writer, FormatPrompt("Enter 6-digit code")); err != nil {
		return "", fmt.Errorf("failed to write code prompt: %w", err)
	}
	return p.reader.ReadLine(ctx)
}

// ConfirmOverdraft warns that the draft exceeds the locally cached balance
// and asks whether to proceed. The backend remains authoritative either way.
func (p *Prompter) ConfirmOverdraft(ctx context.Context, amount, available float64) (bool, error) {
	warning := fmt.Sprintf("Amount $%s exceeds your available balance of $%s.",
		rail.FormatAmount(amount), rail.FormatAmount(available))
	if _, err := fmt.Fprintln(p.writer, FormatWarning(warning)); err != nil {
		return false, fmt.Errorf("failed to write overdraft warning: %w", err)
	}

	answer, err := p.promptChoice(ctx, "Continue anyway? [y/N]", []string{"y", "n", ""})
	if err != nil {
		return false, err
	}
	return answer == "y", nil
}

// PromptDraft walks the user through a transfer draft for the given rail.
func (p *Prompter) PromptDraft(ctx context.Context, d *rail.Descriptor) (*model.TransferDraft, error) {
	if _, err := fmt.Fprintln(p.writer, FormatTitle(fmt.Sprintf("New %s transfer", d.Label))); err != nil {
		return nil, fmt.Errorf("failed to write title: %w", err)
	}

	account, err := p.promptChoice(ctx, "From account: [c]hecking or [s]avings", []string{"c", "s", ""})
	if err != nil {
		return nil, err
	}
	fromAccount := model.AccountChecking
	if account == "s" {
		fromAccount = model.AccountSavings
	}

	recipient, err := p.promptLine(ctx, fmt.Sprintf("Recipient (%s)", d.Hint))
	if err != nil {
		return nil, err
	}

	amount, err := p.promptLine(ctx, "Amount (USD)")
	if err != nil {
		return nil, err
	}

	note, err := p.promptLine(ctx, "Note (optional)")
	if err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(d.Fields))
	for _, spec := range d.Fields {
		label := spec.Label
		if !spec.Required {
			label += " (optional)"
		}
		value, fieldErr := p.promptLine(ctx, label)
		if fieldErr != nil {
			return nil, fieldErr
		}
		if value != "" {
			fields[spec.Key] = value
		}
	}

	return &model.TransferDraft{
		FromAccount: fromAccount,
		Recipient:   recipient,
		RawAmount:   amount,
		Note:        note,
		Fields:      fields,
	}, nil
}

// ShowRejection surfaces an inline error near the action, the CLI
// equivalent of the web form's inline banner.
func (p *Prompter) ShowRejection(err error) {
	_, _ = fmt.Fprintln(p.writer, FormatError(err.Error()))
}

func (p *Prompter) promptLine(ctx context.Context, label string) (string, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt(label)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	return p.reader.ReadLine(ctx)
}

func (p *Prompter) promptChoice(ctx context.Context, label string, valid []string) (string, error) {
	for {
		answer, err := p.promptLine(ctx, label)
		if err != nil {
			return "", err
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		for _, v := range valid {
			if answer == v {
				return answer, nil
			}
		}
		if _, err := fmt.Fprintln(p.writer, FormatWarning("Please choose one of: "+strings.Join(valid, ", "))); err != nil {
			return "", fmt.Errorf("failed to write choice warning: %w", err)
		}
	}
}
