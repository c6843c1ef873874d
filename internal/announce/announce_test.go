package announce

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/davrell/switchboard/internal/config"
	"github.com/davrell/switchboard/internal/models"
	"github.com/slack-go/slack"
)

type fakeSlack struct {
	channels []string
}

func (f *fakeSlack) PostMessage(channelID string, options ...slack.MsgOption) (string, string, error) {
	f.channels = append(f.channels, channelID)
	return channelID, "1", nil
}

type fakeDiscord struct {
	contents []string
}

func (f *fakeDiscord) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.contents = append(f.contents, content)
	return &discordgo.Message{}, nil
}

func TestTemplateMessage(t *testing.T) {
	msg := &models.Message{
		FromSession: "ci",
		ToSession:   "ops",
		Payload:     "deploy v2",
		Type:        models.TypeNotification,
	}
	got := templateMessage("echo '{{.From}}>{{.To}}: {{.Payload}} ({{.Type}})'", msg)
	want := "echo 'ci>ops: deploy v2 (notification)'"
	if got != want {
		t.Errorf("templateMessage = %q, want %q", got, want)
	}
}

func TestNotify_Hooks(t *testing.T) {
	fs := &fakeSlack{}
	fd := &fakeDiscord{}
	a := &Announcer{
		cfg: config.AnnounceConfig{
			Slack:   config.SlackConfig{Channel: "C123"},
			Discord: config.DiscordConfig{Channel: "D456"},
		},
		slack:   fs,
		discord: fd,
	}
	a.Notify(&models.Message{FromSession: "ci", ToSession: "ops", Payload: "v2"})
	if len(fs.channels) != 1 || fs.channels[0] != "C123" {
		t.Errorf("slack channels = %v", fs.channels)
	}
	if len(fd.contents) != 1 || fd.contents[0] != "ci -> ops: v2" {
		t.Errorf("discord contents = %v", fd.contents)
	}
}

func TestNotify_NilSafe(t *testing.T) {
	var a *Announcer
	a.Notify(&models.Message{}) // must not panic
	New(config.AnnounceConfig{}).Notify(nil)
}

func TestNew_DisabledWithoutCredentials(t *testing.T) {
	a := New(config.AnnounceConfig{})
	if a.slack != nil || a.discord != nil {
		t.Error("hooks should be disabled without credentials")
	}
}
