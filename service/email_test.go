package service

import (
	"errors"
	"testing"

	"hisaab/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func newTestEmailService(enabled bool) (*EmailService, *[]*gomail.Message) {
	s := NewEmailService(&config.EmailConfig{Enabled: enabled, Username: "noreply@example.com", From: "Hisaab Kitaab"})
	var sent []*gomail.Message
	s.send = func(m *gomail.Message) error {
		sent = append(sent, m)
		return nil
	}
	return s, &sent
}

func TestGenerateWelcomeEmailBody(t *testing.T) {
	s, _ := newTestEmailService(true)
	body := s.generateWelcomeEmailBody("Asha <admin>")
	assert.Contains(t, body, "Asha &lt;admin&gt;")
	assert.Contains(t, body, "Hisaab Kitaab")
	assert.NotContains(t, body, "<admin>")
}

func TestSendWelcomeEmail(t *testing.T) {
	s, sent := newTestEmailService(true)
	require.NoError(t, s.SendWelcomeEmail("asha@example.com", "Asha"))
	require.Len(t, *sent, 1)
	m := (*sent)[0]
	assert.Equal(t, []string{"asha@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Welcome to Hisaab Kitaab"}, m.GetHeader("Subject"))
}

func TestSendWelcomeEmail_Disabled(t *testing.T) {
	s, sent := newTestEmailService(false)
	assert.ErrorIs(t, s.SendWelcomeEmail("asha@example.com", "Asha"), ErrEmailDisabled)
	assert.Empty(t, *sent)
}

func TestSendWelcomeEmail_Failure(t *testing.T) {
	s, _ := newTestEmailService(true)
	smtpErr := errors.New("dial tcp: connection refused")
	s.send = func(*gomail.Message) error { return smtpErr }
	err := s.SendWelcomeEmail("asha@example.com", "Asha")
	assert.ErrorIs(t, err, smtpErr)
}
