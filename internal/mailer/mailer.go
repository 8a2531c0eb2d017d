package mailer

import (
	"context"

	"github.com/resend/resend-go/v2"

	"github.com/workkeaco-commits/networkk-web-sub001/internal/logger"
)

// Mailer отправляет письма через Resend. Реализует service.Notifier.
type Mailer struct {
	client *resend.Client
	from   string
}

// New создаёт почтовый сервис. Пустой API ключ даёт no-op экземпляр:
// в development письма не отправляются, только логируются.
func New(apiKey, from string) *Mailer {
	if apiKey == "" {
		logger.WithComponent("mailer").Warn("RESEND_API_KEY не задан, письма отправляться не будут")
		return &Mailer{from: from}
	}
	return &Mailer{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// Send отправляет письмо с готовыми subject/text/html.
func (m *Mailer) Send(ctx context.Context, to, subject, text, html string) error {
	if m.client == nil {
		logger.WithComponent("mailer").
			WithField("to", to).WithField("subject", subject).
			Debug("письмо пропущено: mailer не сконфигурирован")
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Text:    text,
		Html:    html,
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return err
	}

	logger.WithComponent("mailer").
		WithField("to", to).WithField("email_id", sent.Id).
		Debug("письмо отправлено")
	return nil
}
