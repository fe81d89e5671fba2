package mail

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medihub/medihub/internal/pkg/env"
)

func TestNewSMTPMailerFromEnv(t *testing.T) {
	env.Env = map[string]string{}
	t.Cleanup(func() { env.Env = nil })

	assert.Nil(t, NewSMTPMailerFromEnv())

	env.Env["SMTP_HOST"] = "mail.internal"
	env.Env["SMTP_PORT"] = "2525"
	m := NewSMTPMailerFromEnv()
	require.NotNil(t, m)
	assert.Equal(t, "2525", m.Port)
	assert.Equal(t, "no-reply@localhost", m.Sender)
}

func TestSMTPMailer_Send(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	m := &SMTPMailer{Host: "mail.internal", Port: "25", Sender: "moderation@medihub.kr"}
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		assert.Nil(t, a)
		return nil
	}

	require.NoError(t, m.Send("doctor@medihub.kr", "신고 처리 결과", "처리되었습니다"))
	assert.Equal(t, "mail.internal:25", gotAddr)
	assert.Equal(t, "moderation@medihub.kr", gotFrom)
	assert.Equal(t, []string{"doctor@medihub.kr"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: 신고 처리 결과\r\n")
	assert.Contains(t, string(gotMsg), "charset=UTF-8")
}

func TestSMTPMailer_SendError(t *testing.T) {
	m := &SMTPMailer{Host: "mail.internal", Port: "25", Sender: "a@b.c", Username: "u", Password: "p"}
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		assert.NotNil(t, a)
		return errors.New("connection refused")
	}

	assert.EqualError(t, m.Send("x@y.z", "s", "b"), "connection refused")
}
