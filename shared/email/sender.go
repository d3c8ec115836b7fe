package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/TKay76/the-trend-navigator/internal/models"
	"github.com/TKay76/the-trend-navigator/shared/config"
)

type Sender struct {
	config *config.EmailConfig
}

func NewSender(cfg *config.EmailConfig) *Sender {
	return &Sender{
		config: cfg,
	}
}

// SendTrendReport renders a trend report as HTML and emails it. Disabled
// senders and empty reports are silently skipped.
func (s *Sender) SendTrendReport(report *models.TrendReport) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}
	if !s.config.Enabled {
		return nil
	}
	if report.TotalVideosAnalyzed == 0 {
		return nil // Nothing to report
	}

	subject := fmt.Sprintf("Shorts Trend Report - %s (%s)",
		report.Category, report.GeneratedAt.Format("Jan 2, 2006"))

	body, err := s.generateEmailBody(report)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return s.SendHTML(subject, body)
}

// SendHTML sends an email with custom HTML content
func (s *Sender) SendHTML(subject, htmlBody string) error {
	return s.sendViaSMTP(subject, htmlBody)
}

func (s *Sender) sendViaSMTP(subject, body string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.SMTPServer)

	to := []string{s.config.ToEmail}
	msg := []byte(fmt.Sprintf(`To: %s
From: %s
Subject: %s
MIME-Version: 1.0
Content-Type: text/html; charset=UTF-8

%s`, s.config.ToEmail, s.config.FromEmail, subject, body))

	addr := fmt.Sprintf("%s:%d", s.config.SMTPServer, s.config.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.FromEmail, to, msg)
}

const reportTemplate = `<html>
<body style="font-family: Arial, sans-serif; max-width: 720px; margin: 0 auto;">
  <h1>Trend Report: {{.Category}}</h1>
  <p>{{.TrendSummary}}</p>
  <p><em>{{.TotalVideosAnalyzed}} videos analyzed over {{.AnalysisPeriod}}.</em></p>

  {{if .KeyInsights}}
  <h2>Key Insights</h2>
  <ul>
    {{range .KeyInsights}}<li>{{.}}</li>{{end}}
  </ul>
  {{end}}

  {{if .RecommendedActions}}
  <h2>Recommended Actions</h2>
  <ul>
    {{range .RecommendedActions}}<li>{{.}}</li>{{end}}
  </ul>
  {{end}}

  {{if .TopVideos}}
  <h2>Top Videos</h2>
  <ol>
    {{range .TopVideos}}
    <li>
      <a href="https://www.youtube.com/shorts/{{.VideoID}}">{{.Title}}</a>
      - {{.ChannelTitle}} ({{.ViewCount}} views, confidence {{printf "%.2f" .Confidence}})
    </li>
    {{end}}
  </ol>
  {{end}}

  <p style="color: #888; font-size: 12px;">Generated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}</p>
</body>
</html>`

func (s *Sender) generateEmailBody(report *models.TrendReport) (string, error) {
	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, report); err != nil {
		return "", err
	}

	return buf.String(), nil
}
