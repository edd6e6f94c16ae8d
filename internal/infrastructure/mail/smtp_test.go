package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"

	"servicecenter/internal/core/apperror"
	domainmail "servicecenter/internal/domain/mail"
)

func TestSMTPSender_Send(t *testing.T) {
	var sent *gomail.Msg
	s := NewSMTPSender(Config{Host: "smtp.example.com", Port: 587, Username: "svc", Password: "pw", From: "svc@example.com"})
	s.now = func() time.Time { return time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC) }
	s.send = func(_ context.Context, m *gomail.Msg) error {
		sent = m
		return nil
	}

	err := s.Send(context.Background(), domainmail.Message{
		Subject: "Pending complaints",
		To:      []domainmail.Recipient{{Name: "Head Office", Email: "ho@example.com"}},
		HTML:    "<p>hi</p>",
	})
	require.NoError(t, err)
	require.NotNil(t, sent)

	to, err := sent.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"ho@example.com"}, to)

	var raw bytes.Buffer
	_, err = sent.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), `To: "Head Office" <ho@example.com>`)
	assert.Contains(t, raw.String(), "Subject: Pending complaints\r\n")
	assert.Contains(t, raw.String(), "Content-Type: text/html")
	assert.Contains(t, raw.String(), "<p>hi</p>")
}

func TestSMTPSender_EncodesNonASCIISubject(t *testing.T) {
	var sent *gomail.Msg
	s := NewSMTPSender(Config{Host: "localhost", Port: 25, From: "svc@example.com"})
	s.send = func(_ context.Context, m *gomail.Msg) error {
		sent = m
		return nil
	}

	require.NoError(t, s.Send(context.Background(), domainmail.Message{
		Subject: "Réclamations en attente",
		To:      []domainmail.Recipient{{Name: "b", Email: "b@example.com"}},
	}))

	var raw bytes.Buffer
	_, err := sent.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "Subject: =?UTF-8?")
	assert.NotContains(t, raw.String(), "Subject: Réclamations")
}

func TestSMTPSender_Failure(t *testing.T) {
	s := NewSMTPSender(Config{Host: "localhost", Port: 25, From: "a@example.com"})
	s.send = func(context.Context, *gomail.Msg) error { return errors.New("connection refused") }

	err := s.Send(context.Background(), domainmail.Message{
		Subject: "x",
		To:      []domainmail.Recipient{{Name: "b", Email: "b@example.com"}},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeInternal))
}

func TestSMTPSender_BadSender(t *testing.T) {
	s := NewSMTPSender(Config{Host: "localhost", Port: 25, From: "not an address"})
	s.send = func(context.Context, *gomail.Msg) error {
		t.Fatal("nothing should be sent")
		return nil
	}

	err := s.Send(context.Background(), domainmail.Message{
		Subject: "x",
		To:      []domainmail.Recipient{{Name: "b", Email: "b@example.com"}},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestLogSender_ValidatesOnly(t *testing.T) {
	assert.NoError(t, LogSender{}.Send(context.Background(), domainmail.Message{
		Subject: "x",
		To:      []domainmail.Recipient{{Name: "b", Email: "b@example.com"}},
	}))
	assert.Error(t, LogSender{}.Send(context.Background(), domainmail.Message{}))
}
