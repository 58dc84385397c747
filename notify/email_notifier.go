/*
Package notify e-mails headline Dual Asset recommendations after a batch.
*/
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Aashish23092/dualasset-analyzer/config"
	"github.com/Aashish23092/dualasset-analyzer/dto"
	"github.com/Aashish23092/dualasset-analyzer/logger"

	gomail "gopkg.in/mail.v2"
)

// RenderedMessage is a ready-to-send e-mail.
type RenderedMessage struct {
	Subject string
	Text    string
}

// EmailNotifier delivers recommendation summaries via SMTP.
type EmailNotifier struct {
	cfg  config.EmailConfig
	send func(*gomail.Message) error
}

func NewEmailNotifier(cfg config.EmailConfig) *EmailNotifier {
	n := &EmailNotifier{cfg: cfg}
	n.send = n.dialAndSend
	return n
}

// Notify sends one summary of every favorable headline in results. It does
// nothing when e-mail is disabled or no result has a recommendation.
func (n *EmailNotifier) Notify(ctx context.Context, results []dto.ImageResult) error {
	if !n.cfg.Enabled {
		return nil
	}

	msg, ok := RenderRecommendations(results)
	if !ok {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", n.cfg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)

	if err := n.send(m); err != nil {
		logger.ErrorWithErr(ctx, "Failed to send recommendation email", err, "to", strings.Join(n.cfg.To, ","))
		return fmt.Errorf("send recommendation email: %w", err)
	}

	logger.Info(ctx, "Recommendation email sent", "subject", msg.Subject)
	return nil
}

func (n *EmailNotifier) dialAndSend(m *gomail.Message) error {
	dialer := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.Username, n.cfg.Password)
	dialer.Timeout = 10 * time.Second
	return dialer.DialAndSend(m)
}

// RenderRecommendations builds the e-mail body. ok is false when there is
// nothing worth sending.
func RenderRecommendations(results []dto.ImageResult) (msg *RenderedMessage, ok bool) {
	var sb strings.Builder
	count := 0

	for _, r := range results {
		if r.Result == nil {
			continue
		}
		for _, o := range []*dto.AnalyzedOffer{r.Result.BestBuy, r.Result.BestSell} {
			if o == nil {
				continue
			}
			count++
			sb.WriteString(fmt.Sprintf("\t- [%s] %s %s @ %.4f, APR %.2f%%, deviation %.2f%% (reference %.4f, %s)\n",
				r.Filename,
				r.Result.Coin,
				o.Decision.Label(),
				o.TargetPrice,
				o.RatePercent,
				o.DeviationPercent,
				r.Result.Reference.Price,
				r.Result.Reference.Source,
			))
		}
	}

	if count == 0 {
		return nil, false
	}

	return &RenderedMessage{
		Subject: fmt.Sprintf("Dual Asset: %d recommended offer(s)", count),
		Text:    "Recommended offers:\n" + sb.String(),
	}, true
}
