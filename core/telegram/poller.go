package telegram

import (
	"log/slog"
	"net"
	"strconv"
	"time"

	coreconfig "github.com/m3rciful/applybot/core/config"

	tele "gopkg.in/telebot.v4"
)

const defaultLongPollTimeout = 10 * time.Second

// allowedUpdates lists the update types the bot handles; Telegram does not
// deliver the rest at all.
var allowedUpdates = []string{"message", "callback_query"}

// BuildPoller returns a webhook or long poller for the normalized run mode.
func BuildPoller(tc coreconfig.TelegramConfig, wc coreconfig.WebhookConfig) tele.Poller {
	if tc.RunMode == coreconfig.RunModeWebhook {
		return &tele.Webhook{
			Listen:         net.JoinHostPort(wc.Listen, strconv.Itoa(wc.Port)),
			SecretToken:    wc.Secret,
			AllowedUpdates: allowedUpdates,
			Endpoint:       &tele.WebhookEndpoint{PublicURL: wc.URL},
		}
	}
	timeout := defaultLongPollTimeout
	if tc.LongPollTimeoutSeconds > 0 {
		timeout = time.Duration(tc.LongPollTimeoutSeconds) * time.Second
	}
	return &tele.LongPoller{Timeout: timeout, AllowedUpdates: allowedUpdates}
}

// pollerAttrs describes p for the startup log line.
func pollerAttrs(p tele.Poller) []slog.Attr {
	switch p := p.(type) {
	case *tele.Webhook:
		attrs := []slog.Attr{
			slog.String("mode", coreconfig.RunModeWebhook),
			slog.String("listen", p.Listen),
			slog.Bool("secret", p.SecretToken != ""),
		}
		if p.Endpoint != nil {
			attrs = append(attrs, slog.String("public_url", p.Endpoint.PublicURL))
		}
		return attrs
	case *tele.LongPoller:
		return []slog.Attr{
			slog.String("mode", coreconfig.RunModeLongpoll),
			slog.Duration("timeout", p.Timeout),
		}
	}
	return nil
}
