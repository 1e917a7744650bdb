package notify

import (
	"bytes"
	"strings"
	"text/template"
	"time"

	"duty-notifier/internal/roster"
)

// MessageData is what message templates are rendered with.
type MessageData struct {
	Date    time.Time
	Primary []string
	Backup  []string
}

func NewMessageData(date time.Time, r roster.Roster) MessageData {
	return MessageData{Date: date, Primary: r.Primary, Backup: r.Backup}
}

const DefaultMessage = `Сегодня {{.Date.Format "02.01.2006"}} дежурные:
{{- if .Primary}}
Основной: {{join .Primary ", "}}{{end}}
{{- if .Backup}}
Резервный: {{join .Backup ", "}}{{end}}
{{- if not (or .Primary .Backup)}}
Дежурных не назначено{{end}}`

var funcs = template.FuncMap{"join": strings.Join}

var defaultTemplate = template.Must(template.New("msg").Funcs(funcs).Parse(DefaultMessage))

// FormatMessage renders the roster for date with DefaultMessage.
func FormatMessage(date time.Time, r roster.Roster) string {
	var buf bytes.Buffer
	// Executing into a bytes.Buffer with the built-in template cannot fail.
	_ = defaultTemplate.Execute(&buf, NewMessageData(date, r))
	return buf.String()
}

// RenderMessage renders data with tmpl, or with DefaultMessage when tmpl
// is empty.
func RenderMessage(data MessageData, tmpl string) (string, error) {
	if tmpl == "" {
		tmpl = DefaultMessage
	}
	t, err := template.New("msg").Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = t.Execute(&buf, data)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
