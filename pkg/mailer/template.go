package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// Notice is the single call-to-action layout every account mail uses.
type Notice struct {
	Title   string
	Name    string
	Message string
	Link    string
	Action  string
	Note    string
}

var noticeTemplate = template.Must(template.New("notice").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background: #f4f4f4; padding: 24px;">
  <div style="max-width: 560px; margin: 0 auto; background: #ffffff; padding: 32px; border-radius: 8px;">
    <h2 style="margin-top: 0;">{{.Title}}</h2>
    <p>Hi {{.Name}},</p>
    <p>{{.Message}}</p>
    <p style="text-align: center; margin: 32px 0;">
      <a href="{{.Link}}" style="background: #000000; color: #ffffff; padding: 12px 24px; border-radius: 6px; text-decoration: none;">{{.Action}}</a>
    </p>
    <p style="font-size: 13px; color: #666666;">{{.Note}}</p>
  </div>
</body>
</html>
`))

func Render(n Notice) (string, error) {
	var b bytes.Buffer
	if err := noticeTemplate.Execute(&b, n); err != nil {
		return "", fmt.Errorf("failed to render mail: %w", err)
	}
	return b.String(), nil
}
