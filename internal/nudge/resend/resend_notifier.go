package resend

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/brk3/habitstats/internal/logger"
	"github.com/brk3/habitstats/pkg/habit"
	"github.com/resend/resend-go/v2"
)

type Notifier struct {
	APIKey string
	From   string
	To     string
}

var emailTemplate = template.Must(template.New("email").Parse(`
<p>These streaks end tonight unless you check in today ({{.Today}}):</p>
<ul>
{{range .Habits}}
  <li>{{.Icon}} <strong>{{.Name}}</strong>: {{.CurrentStreak}} day streak, last done {{.LastCompleted}}</li>
{{end}}
</ul>
`))

func render(today habit.Day, habits []habit.Summary) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Today  habit.Day
		Habits []habit.Summary
	}{today, habits}
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (n *Notifier) SendNudge(ctx context.Context, today habit.Day, habits []habit.Summary) error {
	html, err := render(today, habits)
	if err != nil {
		return fmt.Errorf("render nudge: %w", err)
	}

	client := resend.NewClient(n.APIKey)
	params := &resend.SendEmailRequest{
		From:    n.From,
		To:      []string{n.To},
		Subject: fmt.Sprintf("%d habit streak(s) end tonight", len(habits)),
		Html:    html,
	}

	sent, err := client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return err
	}
	logger.Info("Nudge email sent", "id", sent.Id, "to", n.To, "habits", len(habits))
	return nil
}
