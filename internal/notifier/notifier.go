// Package notifier delivers outbound notifications to users. Mail goes
// through plain SMTP; when SMTP is disabled the notifier degrades to a
// logging noop so the worker pipeline stays exercised in development.
package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/edusupply/compras/internal/config"
)

// Assignment describes a purchase request newly assigned to a buyer.
type Assignment struct {
	CompraID        int64
	NumeroOrdinario string
	Descripcion     string
	Unidad          string
	Comprador       string
	Email           string
}

// Notifier sends assignment notifications.
type Notifier interface {
	NotifyAssignment(ctx context.Context, a Assignment) error
}

// Module provides the configured notifier.
var Module = fx.Provide(New)

// New selects the SMTP notifier or a logging noop based on configuration.
func New(cfg config.Config, logger *zap.Logger) Notifier {
	if !cfg.SMTP.Enabled {
		logger.Info("smtp disabled; assignment notifications will only be logged")
		return noopNotifier{logger: logger}
	}
	return &smtpNotifier{cfg: cfg.SMTP, logger: logger}
}

type noopNotifier struct {
	logger *zap.Logger
}

func (n noopNotifier) NotifyAssignment(_ context.Context, a Assignment) error {
	n.logger.Info("assignment notification (noop)",
		zap.Int64("compra_id", a.CompraID),
		zap.String("comprador", a.Comprador),
		zap.String("email", a.Email),
	)
	return nil
}

type smtpNotifier struct {
	cfg    config.SMTP
	logger *zap.Logger
}

func (n *smtpNotifier) NotifyAssignment(_ context.Context, a Assignment) error {
	if a.Email == "" {
		n.logger.Warn("assignment without buyer email; skipping notification",
			zap.Int64("compra_id", a.CompraID))
		return nil
	}

	subject := fmt.Sprintf("Nueva solicitud de compra asignada: %s", a.NumeroOrdinario)
	body := fmt.Sprintf(
		"Hola %s,\r\n\r\nSe te ha asignado la solicitud de compra %s.\r\n\r\nDescripción: %s\r\nUnidad requirente: %s\r\n",
		a.Comprador, a.NumeroOrdinario, a.Descripcion, a.Unidad,
	)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", a.Email)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{a.Email}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send assignment mail: %w", err)
	}

	n.logger.Info("assignment notification sent",
		zap.Int64("compra_id", a.CompraID),
		zap.String("email", a.Email),
	)
	return nil
}
