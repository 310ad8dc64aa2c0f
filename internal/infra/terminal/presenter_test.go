package terminal_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/internal/application"
	"jarvis/internal/domain"
	"jarvis/internal/infra/terminal"
)

func TestPresenter_UserAndAssistantLines(t *testing.T) {
	var buf bytes.Buffer
	p, err := terminal.NewPresenter(&buf)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, p.Present(ctx, application.Message{Role: application.RoleUser, Text: "what time is it"}))
	require.NoError(t, p.Present(ctx, application.Message{Role: application.RoleAssistant, Text: "It's 9:05:00 AM."}))

	out := buf.String()
	assert.Contains(t, out, "You:")
	assert.Contains(t, out, "what time is it")
	assert.Contains(t, out, "Jarvis:")
	assert.Contains(t, out, "It's 9:05:00 AM.")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("what time")), bytes.Index(buf.Bytes(), []byte("It's")))
}

func TestPresenter_PrintsSearchURL(t *testing.T) {
	var buf bytes.Buffer
	p, err := terminal.NewPresenter(&buf)
	require.NoError(t, err)

	err = p.Present(context.Background(), application.Message{
		Role:   application.RoleAssistant,
		Text:   "Searching for cats",
		Effect: domain.OpenSearch{Query: "cats", URL: "https://www.google.com/search?q=cats"},
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "https://www.google.com/search?q=cats")
}

func TestPresenter_RendersMarkdown(t *testing.T) {
	var buf bytes.Buffer
	p, err := terminal.NewPresenter(&buf, terminal.WithMarkdown("notty", 80))
	require.NoError(t, err)

	err = p.Present(context.Background(), application.Message{
		Role:     application.RoleAssistant,
		Text:     "# Title\n\nSome **bold** words",
		Markdown: true,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "bold")
}

func TestPresenter_Notify(t *testing.T) {
	var buf bytes.Buffer
	p, err := terminal.NewPresenter(&buf)
	require.NoError(t, err)

	require.NoError(t, p.Notify(context.Background(), "Reminder: drink water"))

	assert.Contains(t, buf.String(), "Reminder: drink water")
}
