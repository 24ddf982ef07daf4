package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"github.com/repotec-dev/repotec-api/internal/auth"
	"github.com/repotec-dev/repotec-api/internal/config"
)

var _ auth.Mailer = (*Mailer)(nil)

// Mailer sends the transactional emails over SMTP. When mail is disabled in
// the configuration, sends are skipped and logged instead of failing, so
// local environments work without an SMTP server.
type Mailer struct {
	cfg    config.MailConfig
	logger *slog.Logger
}

func NewMailer(cfg config.MailConfig, logger *slog.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

func (m *Mailer) SendWelcome(ctx context.Context, nome, email string) error {
	body := fmt.Sprintf(
		"Olá, %s!\n\n"+
			"Sua conta no RepoTEC foi criada com sucesso. "+
			"Agora você pode publicar e avaliar projetos técnicos.\n\n"+
			"Equipe RepoTEC",
		nome,
	)

	return m.send(ctx, email, "Bem-vindo ao RepoTEC", body)
}

func (m *Mailer) SendPasswordReset(
	ctx context.Context,
	nome, email, resetLink string,
) error {
	body := fmt.Sprintf(
		"Olá, %s.\n\n"+
			"Recebemos uma solicitação para redefinir sua senha. "+
			"Acesse o link abaixo para criar uma nova senha:\n\n%s\n\n"+
			"O link é válido por 24 horas. Se você não solicitou a "+
			"redefinição, ignore este email.\n\n"+
			"Equipe RepoTEC",
		nome, resetLink,
	)

	return m.send(ctx, email, "Redefinição de senha - RepoTEC", body)
}

func (m *Mailer) SendTest(ctx context.Context, email string) error {
	return m.send(ctx, email,
		"Email de teste - RepoTEC",
		"Este é um email de teste. A configuração de email está funcionando.")
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	if !m.cfg.Enabled {
		m.logger.Info("mail disabled, skipping send",
			slog.String("to", to),
			slog.String("subject", subject),
		)
		return nil
	}

	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("set mail sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set mail recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}

	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	return nil
}
