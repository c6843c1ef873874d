// Package announce forwards notification messages to outside observers:
// a shell command template, a Slack channel, a Discord channel. Delivery is
// best-effort; failures are logged and never affect message status.
package announce

import (
	"log"
	"os/exec"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/davrell/switchboard/internal/config"
	"github.com/davrell/switchboard/internal/models"
	"github.com/slack-go/slack"
)

// slackPoster abstracts the one Slack API call we use, enabling test mocks.
type slackPoster interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

// discordPoster abstracts the one Discord API call we use.
type discordPoster interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Announcer fans a message out to every configured hook.
type Announcer struct {
	cfg     config.AnnounceConfig
	slack   slackPoster
	discord discordPoster
}

// New builds an Announcer from configuration. Hooks without credentials are
// left disabled.
func New(cfg config.AnnounceConfig) *Announcer {
	a := &Announcer{cfg: cfg}
	if cfg.Slack.BotToken != "" && cfg.Slack.Channel != "" {
		a.slack = slack.New(cfg.Slack.BotToken)
	}
	if cfg.Discord.Token != "" && cfg.Discord.Channel != "" {
		if s, err := discordgo.New("Bot " + cfg.Discord.Token); err == nil {
			a.discord = s
		} else {
			log.Printf("announce: discord session: %v", err)
		}
	}
	return a
}

// Notify pushes the message to every configured hook. Nil receivers and nil
// messages are no-ops so callers never need to guard.
func (a *Announcer) Notify(msg *models.Message) {
	if a == nil || msg == nil {
		return
	}
	if a.cfg.Command != "" {
		cmdStr := templateMessage(a.cfg.Command, msg)
		cmd := exec.Command("sh", "-c", cmdStr)
		if out, err := cmd.CombinedOutput(); err != nil {
			log.Printf("announce: command failed: %v: %s", err, strings.TrimSpace(string(out)))
		}
	}
	text := msg.FromSession + " -> " + msg.ToSession + ": " + msg.Payload
	if a.slack != nil {
		if _, _, err := a.slack.PostMessage(a.cfg.Slack.Channel,
			slack.MsgOptionText(text, false)); err != nil {
			log.Printf("announce: slack post failed: %v", err)
		}
	}
	if a.discord != nil {
		if _, err := a.discord.ChannelMessageSend(a.cfg.Discord.Channel, text); err != nil {
			log.Printf("announce: discord send failed: %v", err)
		}
	}
}

// templateMessage replaces placeholders in the command template with message
// values.
func templateMessage(command string, msg *models.Message) string {
	r := strings.NewReplacer(
		"{{.From}}", msg.FromSession,
		"{{.To}}", msg.ToSession,
		"{{.Payload}}", msg.Payload,
		"{{.Type}}", string(msg.Type),
	)
	return r.Replace(command)
}
