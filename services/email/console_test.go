package emailsvc

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/tests"
)

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	conf := testutil.NewConfig()
	svc := NewConsoleServiceMock(conf, testutil.NewLogger(conf))

	svc.SendMessages(
		&core.EmailMessage{To: []mail.Address{{Address: "john@test.cd"}}, Subject: "Hi", BodyStr: "hello"},
		&core.EmailMessage{Subject: "no recipient", BodyStr: "hello"},
		&core.EmailMessage{To: []mail.Address{{Address: "john@test.cd"}}, Subject: "no content"},
		&core.EmailMessage{To: []mail.Address{{Name: "Jane", Address: "jane@test.cd"}}, Subject: "Schedule", BodyStr: "every Monday"},
	)

	sent := svc.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "Hi", sent[0].Subject)
	assert.Equal(t, "hello", sent[0].TextContent)
	assert.Equal(t, "Schedule", sent[1].Subject)
	assert.Equal(t, "every Monday", sent[1].TextContent)
}

func TestConsoleService_format(t *testing.T) {
	conf := testutil.NewConfig()
	svc := NewConsoleService(conf, testutil.NewLogger(conf))

	msg := core.EmailMessage{
		To:          []mail.Address{{Name: "Jane", Address: "jane@test.cd"}},
		Cc:          []mail.Address{{Address: "john@test.cd"}},
		Subject:     "Hi",
		TextContent: "hello",
		HTMLContent: "<p>hello</p>",
	}
	body, err := svc.format(msg)
	require.NoError(t, err)

	assert.Contains(t, body, "From: \"Academia\" <noreply@localhost>\r\n")
	assert.Contains(t, body, "Subject: [Academia] Hi\r\n")
	assert.Contains(t, body, "To: \"Jane\" <jane@test.cd>\r\n")
	assert.Contains(t, body, "CC: <john@test.cd>\r\n")
	assert.Contains(t, body, "Content-Type: multipart/alternative")
	assert.Contains(t, body, "<p>hello</p>")
}
