// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"html/template"
	"strings"
)

// PickupConfirmationData is what the pickup confirmation email shows.
type PickupConfirmationData struct {
	AppName   string
	Name      string
	Address   string
	City      string
	State     string
	Zip       string
	Items     string
	Date      string // as captured, YYYY-MM-DD
	DateLabel string // e.g. "Monday, 10 March 2025"
	TimeSlot  string // display label
	Type      string
}

// PickupConfirmationEmail generates both plain text and HTML versions of
// the email sent after a pickup is scheduled.
func PickupConfirmationEmail(data PickupConfirmationData) (subject, textBody, htmlBody string) {
	subject = "Your " + data.AppName + " pickup is scheduled"

	var t strings.Builder
	t.WriteString("Hi " + data.Name + ",\n\n")
	t.WriteString("Thank you for scheduling an e-waste pickup with " + data.AppName + ".\n\n")
	t.WriteString("Pickup address:\n")
	t.WriteString(data.Address + "\n")
	t.WriteString(data.City + ", " + data.State + " " + data.Zip + "\n\n")
	t.WriteString("Items:\n" + data.Items + "\n\n")
	t.WriteString("When: " + dateLine(data) + ", " + data.TimeSlot + "\n")
	t.WriteString("Pickup type: " + data.Type + "\n\n")
	t.WriteString("Please have the items ready at the front door or reception.")
	textBody = t.String()

	var buf bytes.Buffer
	if err := pickupConfirmationHTMLTmpl.Execute(&buf, data); err == nil {
		htmlBody = buf.String()
	}
	return subject, textBody, htmlBody
}

func dateLine(d PickupConfirmationData) string {
	if d.DateLabel != "" {
		return d.DateLabel
	}
	return d.Date
}

var pickupConfirmationHTMLTmpl = template.Must(template.New("pickup_confirmation").Funcs(template.FuncMap{
	"lines": func(s string) []string { return strings.Split(s, "\n") },
}).Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Pickup Scheduled</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f0fdf4;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f0fdf4;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 520px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 1px 3px rgba(0,0,0,0.1);">
          <tr>
            <td style="padding: 32px 32px 24px 32px; text-align: center; border-bottom: 1px solid #dcfce7;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #166534;">{{.AppName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <h2 style="margin: 0 0 16px 0; font-size: 20px; font-weight: 600; color: #18181b;">Your pickup is scheduled</h2>
              <p style="margin: 0 0 24px 0; font-size: 15px; line-height: 1.6; color: #52525b;">
                Hi {{.Name}}, thank you for recycling your electronics responsibly.
              </p>
              <p style="margin: 0 0 8px 0; font-size: 14px; font-weight: 600; color: #18181b;">Pickup address</p>
              <p style="margin: 0 0 16px 0; font-size: 14px; line-height: 1.6; color: #52525b;">
                {{.Address}}<br>{{.City}}, {{.State}} {{.Zip}}
              </p>
              <p style="margin: 0 0 8px 0; font-size: 14px; font-weight: 600; color: #18181b;">Items</p>
              <p style="margin: 0 0 16px 0; font-size: 14px; line-height: 1.6; color: #52525b;">
                {{range $i, $l := lines .Items}}{{if $i}}<br>{{end}}{{$l}}{{end}}
              </p>
              <p style="margin: 0 0 8px 0; font-size: 14px; font-weight: 600; color: #18181b;">When</p>
              <p style="margin: 0; font-size: 14px; line-height: 1.6; color: #52525b;">
                {{if .DateLabel}}{{.DateLabel}}{{else}}{{.Date}}{{end}}, {{.TimeSlot}} ({{.Type}})
              </p>
            </td>
          </tr>
          <tr>
            <td style="padding: 24px 32px; background-color: #fafafa; border-top: 1px solid #e4e4e7; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #a1a1aa; text-align: center;">
                Please have the items ready at the front door or reception.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`))
