package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

const (
	welcomeSubject = "Welcome to Todo App! 🎉"
	signInSubject  = "New sign-in to your Todo App account"
)

var (
	welcomeText = texttemplate.Must(texttemplate.New("welcome").Parse(
		`Hi {{.Name}},

Welcome! Your account has been successfully created. Thank you for joining us!

Best regards,
Todo App Team`))

	welcomeHTML = htmltemplate.Must(htmltemplate.New("welcome").Parse(
		`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #6C63FF;">Welcome to Todo App!</h2>
  <p>Hi <strong>{{.Name}}</strong>,</p>
  <p>Welcome! Your account has been successfully created. Thank you for joining us!</p>
  <p>You can now start organizing your tasks and boosting your productivity.</p>
  <hr style="border: 1px solid #eee; margin: 20px 0;" />
  <p style="color: #666; font-size: 14px;">Best regards,<br/>Todo App Team</p>
</div>`))

	signInText = texttemplate.Must(texttemplate.New("signin").Parse(
		`Hi {{.Name}},

Your account was signed in on {{.When}}.
If this wasn't you, please change your password.

Todo App Team`))

	signInHTML = htmltemplate.Must(htmltemplate.New("signin").Parse(
		`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <p>Hi <strong>{{.Name}}</strong>,</p>
  <p>Your account was signed in on {{.When}}.</p>
  <p>If this wasn't you, please change your password.</p>
  <p style="color: #666; font-size: 14px;">Todo App Team</p>
</div>`))
)

type templateData struct {
	Name string
	When string
}

// DisplayName picks the username, or the local part of the email address.
func DisplayName(username, email string) string {
	if username = strings.TrimSpace(username); username != "" {
		return username
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// WelcomeEmail builds the message sent after a successful signup.
func WelcomeEmail(to, name string) (Email, error) {
	return render(to, welcomeSubject, templateData{Name: name}, welcomeText, welcomeHTML)
}

// SignInEmail builds the message sent after a successful login.
func SignInEmail(to, name string, at time.Time) (Email, error) {
	data := templateData{Name: name, When: at.UTC().Format("Jan 2, 2006 at 15:04 UTC")}
	return render(to, signInSubject, data, signInText, signInHTML)
}

func render(to, subject string, data templateData, text *texttemplate.Template, html *htmltemplate.Template) (Email, error) {
	var textBuf, htmlBuf bytes.Buffer
	if err := text.Execute(&textBuf, data); err != nil {
		return Email{}, fmt.Errorf("render %s text: %w", text.Name(), err)
	}
	if err := html.Execute(&htmlBuf, data); err != nil {
		return Email{}, fmt.Errorf("render %s html: %w", html.Name(), err)
	}
	return Email{
		To:      to,
		Subject: subject,
		Text:    textBuf.String(),
		HTML:    htmlBuf.String(),
	}, nil
}
