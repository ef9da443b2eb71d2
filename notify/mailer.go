package notify

import (
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"sort"
	"strings"
	"time"

	"huurhuis-scraper/config"
	"huurhuis-scraper/models"
	"huurhuis-scraper/utils"
)

// Mailer sends the "new rental listings" mail over SMTP. It consumes the
// final aggregate and never touches stored state; a failed send is the
// caller's to log and ignore.
type Mailer struct {
	host       string
	port       string
	sender     string
	password   string
	recipients []string
	logger     *utils.Logger
}

// NewMailer creates a Mailer from the application config.
func NewMailer(cfg *config.Config, logger *utils.Logger) *Mailer {
	return &Mailer{
		host:       cfg.SMTPHost,
		port:       cfg.SMTPPort,
		sender:     cfg.SenderEmail,
		password:   cfg.SenderPassword,
		recipients: cfg.Recipients,
		logger:     logger,
	}
}

// SendNewListings mails the new listings, grouped per agency. Sending
// nothing is a successful no-op.
func (m *Mailer) SendNewListings(listings []models.Listing) error {
	if len(listings) == 0 {
		m.logger.Info("[mail] no new listings, no mail sent")
		return nil
	}
	if m.sender == "" || m.password == "" || len(m.recipients) == 0 {
		return errors.New("mail: sender credentials or recipients not configured")
	}

	subject := fmt.Sprintf("Nieuwe Huurwoningen - %s", time.Now().Format("02-01-2006 15:04"))
	body := buildBody(listings)

	var msg strings.Builder
	msg.WriteString("From: " + m.sender + "\r\n")
	msg.WriteString("To: " + strings.Join(m.recipients, ", ") + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := net.JoinHostPort(m.host, m.port)
	auth := smtp.PlainAuth("", m.sender, m.password, m.host)

	if err := smtp.SendMail(addr, auth, m.sender, m.recipients, []byte(msg.String())); err != nil {
		return fmt.Errorf("mail: send via %s: %w", addr, err)
	}

	m.logger.Info("[mail] sent %d new listings to %d recipient(s)", len(listings), len(m.recipients))
	return nil
}

// buildBody renders the HTML body: one section per agency, agencies in
// alphabetical order, listings in discovery order within each section.
func buildBody(listings []models.Listing) string {
	byBroker := make(map[string][]models.Listing)
	for _, l := range listings {
		name := l.BrokerName
		if name == "" {
			name = "Onbekende makelaar"
		}
		byBroker[name] = append(byBroker[name], l)
	}

	brokers := make([]string, 0, len(byBroker))
	for name := range byBroker {
		brokers = append(brokers, name)
	}
	sort.Strings(brokers)

	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString(fmt.Sprintf("<h2>Er zijn %d nieuwe huurwoningen gevonden</h2>", len(listings)))

	for _, name := range brokers {
		group := byBroker[name]
		b.WriteString(fmt.Sprintf("<h3>%s (%d)</h3>", name, len(group)))
		b.WriteString("<table border=\"1\" cellpadding=\"4\" cellspacing=\"0\">")
		b.WriteString("<tr><th>Adres</th><th>Plaats</th><th>Huurprijs</th><th>Oppervlakte</th></tr>")
		for _, l := range group {
			price := "Onbekend"
			if l.Price > 0 {
				price = fmt.Sprintf("€ %d", l.Price)
			}
			b.WriteString(fmt.Sprintf(
				"<tr><td><a href=%q>%s</a></td><td>%s</td><td>%s</td><td>%s</td></tr>",
				l.Link, l.Address, l.City, price, l.Area))
		}
		b.WriteString("</table>")
	}

	b.WriteString("</body></html>")
	return b.String()
}
