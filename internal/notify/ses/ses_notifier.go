package ses

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/SkiltonTrading/cmrv2/internal/config"
	"github.com/SkiltonTrading/cmrv2/internal/port"
)

type sesNotifier struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	toAddress   string
}

// NewNotifier creates a new SES-backed RunNotifier.
func NewNotifier(cfg *config.NotifyConfig) (port.RunNotifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(awsCfg)
	return &sesNotifier{
		client:      client,
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		toAddress:   cfg.ToAddress,
	}, nil
}

func (n *sesNotifier) NotifyRunCompleted(ctx context.Context, report port.RunReport) error {
	if n.toAddress == "" {
		log.Printf("sesNotifier: no recipient configured, skipping run report")
		return nil
	}

	duration := report.FinishedAt.Sub(report.StartedAt).Round(time.Second)
	subject := fmt.Sprintf("CMR run finished: %d new rows", report.RowsAdded)

	var text strings.Builder
	fmt.Fprintf(&text, "A processing run finished in %s.\n\n", duration)
	fmt.Fprintf(&text, "Pages processed: %d of %d\n", report.ProcessedPages, report.TotalPages)
	fmt.Fprintf(&text, "Rows added: %d\n", report.RowsAdded)
	fmt.Fprintf(&text, "Pages failed: %d\n", report.FailedPages)
	if len(report.Notices) > 0 {
		text.WriteString("\nNotices:\n")
		for _, notice := range report.Notices {
			fmt.Fprintf(&text, "  - %s\n", notice)
		}
	}
	textBody := text.String()
	htmlBody := buildRunReportHTML(report, duration)

	from := fmt.Sprintf("%s <%s>", n.fromName, n.fromAddress)

	_, err := n.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{n.toAddress},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildRunReportHTML(report port.RunReport, duration time.Duration) string {
	var notices strings.Builder
	if len(report.Notices) > 0 {
		notices.WriteString(`<h3 style="color: #333;">Notices</h3><ul>`)
		for _, notice := range report.Notices {
			fmt.Fprintf(&notices, "<li>%s</li>", notice)
		}
		notices.WriteString("</ul>")
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">CMR processing run finished</h2>
  <p>The run finished in %s.</p>
  <table style="border-collapse: collapse;">
    <tr><td style="padding: 4px 12px 4px 0;">Pages processed</td><td>%d of %d</td></tr>
    <tr><td style="padding: 4px 12px 4px 0;">Rows added</td><td>%d</td></tr>
    <tr><td style="padding: 4px 12px 4px 0;">Pages failed</td><td>%d</td></tr>
  </table>
  %s
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">CMR Verwerking - Skilton Trading</p>
</body>
</html>`, duration, report.ProcessedPages, report.TotalPages, report.RowsAdded, report.FailedPages, notices.String())
}
