package notifications

import (
	"context"
	"html"
	"regexp"

	"github.com/ducminhle1904/crypto-signal-bot/internal/logger"
)

var htmlTag = regexp.MustCompile(`</?[a-z]+>`)

// ConsoleNotifier writes alerts to the logger, for runs without Telegram credentials
type ConsoleNotifier struct {
	log *logger.Logger
}

func NewConsoleNotifier(log *logger.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{log: log}
}

func (c *ConsoleNotifier) SendAlert(ctx context.Context, level, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text := html.UnescapeString(htmlTag.ReplaceAllString(message, ""))
	switch level {
	case LevelError:
		c.log.Error("%s %s", levelEmoji(level), text)
	case LevelWarning:
		c.log.Warning("%s %s", levelEmoji(level), text)
	default:
		c.log.Info("%s %s", levelEmoji(level), text)
	}
	return nil
}
