// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// TranscriptProcessedData holds data for the post-processing summary email.
type TranscriptProcessedData struct {
	SiteName        string
	FileName        string
	Provider        string
	ConversationURL string
	AnswerHTML      template.HTML // sanitized before it reaches the mailer
}

// BuildTranscriptProcessedEmail creates the email sent after a meeting
// transcript has been processed and a conversation opened for it.
func BuildTranscriptProcessedEmail(data TranscriptProcessedData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("Your meeting %q has been processed", data.FileName),
		TextBody: buildProcessedText(data),
		HTMLBody: buildProcessedHTML(data),
	}
}

func buildProcessedText(data TranscriptProcessedData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Your %s meeting %q has been processed.\n\n", data.Provider, data.FileName))
	buf.WriteString("Open the conversation to read the summary and ask follow-up questions:\n")
	buf.WriteString(data.ConversationURL + "\n")
	return buf.String()
}

func buildProcessedHTML(data TranscriptProcessedData) string {
	tmpl := template.Must(template.New("processed").Parse(processedHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

// TranscriptSkippedData holds data for the too-short notice email.
type TranscriptSkippedData struct {
	SiteName  string
	FileName  string
	Provider  string
	MinLength int
}

// BuildTranscriptSkippedEmail creates the notice sent when a recording
// was fetched but its transcript was too short to process.
func BuildTranscriptSkippedEmail(data TranscriptSkippedData) Email {
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("Your meeting %q was too short to process", data.FileName),
		TextBody: buildSkippedText(data),
		HTMLBody: buildSkippedHTML(data),
	}
}

func buildSkippedText(data TranscriptSkippedData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Your %s meeting %q was retrieved but not processed.\n\n", data.Provider, data.FileName))
	buf.WriteString(fmt.Sprintf("Its transcript is shorter than the %d characters required for a useful summary.\n", data.MinLength))
	buf.WriteString("It will not be retried.\n")
	return buf.String()
}

func buildSkippedHTML(data TranscriptSkippedData) string {
	tmpl := template.Must(template.New("skipped").Parse(skippedHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

const processedHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Meeting Processed</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 560px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <!-- Header -->
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>

          <!-- Content -->
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                Your {{.Provider}} meeting <strong>{{.FileName}}</strong> has been processed.
              </p>

              {{if .AnswerHTML}}
              <div style="background-color: #f9fafb; border-radius: 8px; padding: 20px; margin-bottom: 24px; font-size: 14px; color: #374151; line-height: 1.6;">
                {{.AnswerHTML}}
              </div>
              {{end}}

              <!-- Button -->
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center">
                    <a href="{{.ConversationURL}}" style="display: inline-block; padding: 14px 32px; background-color: #4f46e5; color: #ffffff; text-decoration: none; font-size: 16px; font-weight: 500; border-radius: 6px;">
                      Open Conversation
                    </a>
                  </td>
                </tr>
              </table>
            </td>
          </tr>

          <!-- Footer -->
          <tr>
            <td style="padding: 24px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">
                You receive this because transcript notifications are enabled for your account.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

const skippedHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Meeting Skipped</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <!-- Header -->
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>

          <!-- Content -->
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151; line-height: 1.5;">
                Your {{.Provider}} meeting <strong>{{.FileName}}</strong> was retrieved but not processed.
              </p>
              <p style="margin: 0; font-size: 14px; color: #6b7280; line-height: 1.5;">
                Its transcript is shorter than the {{.MinLength}} characters required for a useful summary. It will not be retried.
              </p>
            </td>
          </tr>

          <!-- Footer -->
          <tr>
            <td style="padding: 24px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">
                You receive this because transcript notifications are enabled for your account.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
