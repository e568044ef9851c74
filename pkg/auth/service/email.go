package service

import (
	"fmt"
	"html/template"
	"strings"
)

// Outbound emails are dark-themed standalone HTML. Styles stay inline since
// most mail clients strip <style> blocks.

var signupTmpl = template.Must(template.New("signup").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; background-color: #1a1a2e; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif;">
  <div style="display: none; max-height: 0; overflow: hidden;">
    Your account setup link is ready. Click to connect your Telegram.
  </div>
  <div style="max-width: 600px; margin: 0 auto; padding: 40px 20px;">
    <div style="text-align: center; margin-bottom: 40px;">
      <h1 style="color: #D4AF37; font-size: 28px; margin: 0; font-weight: 600;">YNTOYG</h1>
      <p style="color: #F5F5DC; opacity: 0.7; margin-top: 8px; font-size: 14px;">Your account is almost ready</p>
    </div>
    <div style="background: #252540; border: 1px solid #3a3a5a; border-radius: 12px; padding: 32px; text-align: center;">
      <h2 style="color: #F5F5DC; font-size: 20px; margin: 0 0 16px 0; font-weight: 500;">Welcome to the Covenant</h2>
      <p style="color: #a0a0b0; margin: 0 0 24px 0; font-size: 15px; line-height: 1.5;">
        Click below to connect your Telegram account and complete your registration.
      </p>
      <a href="{{.Link}}" style="display: inline-block; background-color: #D4AF37; color: #1a1a2e; font-weight: 600; text-decoration: none; padding: 14px 28px; border-radius: 8px; font-size: 15px;">
        Complete Setup
      </a>
      <p style="color: #707080; font-size: 12px; margin-top: 24px;">
        Link expires in 24 hours
      </p>
    </div>
    <div style="text-align: center; margin-top: 32px;">
      <p style="color: #606070; font-size: 11px; line-height: 1.4;">
        You requested this email from yntoyg.com<br/>
        If you didn't request this, you can safely ignore it.
      </p>
    </div>
  </div>
</body>
</html>`))

var loginTmpl = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <meta name="color-scheme" content="dark">
  <title>Dashboard Access</title>
</head>
<body style="margin: 0; padding: 0; background-color: #000000; -webkit-font-smoothing: antialiased; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;" bgcolor="#000000">
  <div style="display: none; max-height: 0; overflow: hidden; font-size: 1px; color: #000000;">
    Your dashboard access link is ready. This link expires in 15 minutes.
  </div>
  <table role="presentation" cellspacing="0" cellpadding="0" border="0" width="100%" style="background-color: #000000;" bgcolor="#000000">
    <tr>
      <td align="center" valign="top" style="padding: 40px 16px;">
        <table role="presentation" cellspacing="0" cellpadding="0" border="0" width="100%" style="max-width: 480px;">
          <tr>
            <td style="background-color: #0a0a0a; border: 1px solid #D4AF37; border-radius: 16px; padding: 32px 24px;" bgcolor="#0a0a0a" align="center">
              <span style="color: #D4AF37; font-size: 12px;">&#9670;</span>
              <h1 style="margin: 20px 0 12px 0; font-size: 28px; font-weight: 400; font-family: Georgia, 'Times New Roman', serif; color: #FFFFFF; line-height: 1.3;">
                Welcome Back, <span style="color: #D4AF37; font-style: italic;">Gentleman</span>
              </h1>
              <p style="margin: 0 0 28px 0; font-size: 14px; color: #888888; line-height: 1.5;">
                Access your personal dashboard
              </p>
              <a href="{{.Link}}" style="display: inline-block; background-color: #D4AF37; color: #000000; font-weight: 600; text-decoration: none; padding: 14px 32px; border-radius: 8px; font-size: 15px;">
                Enter Dashboard
              </a>
              <p style="color: #555555; font-size: 12px; margin-top: 24px;">
                This link expires in 15 minutes
              </p>
            </td>
          </tr>
          <tr>
            <td align="center" style="padding-top: 24px;">
              <p style="color: #444444; font-size: 11px; line-height: 1.4;">
                You requested this email from yntoyg.com<br/>
                If you didn't request this, you can safely ignore it.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`))

func renderSignupEmail(link string) (string, error) {
	return render(signupTmpl, link)
}

func renderLoginEmail(link string) (string, error) {
	return render(loginTmpl, link)
}

func render(tmpl *template.Template, link string) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, struct{ Link string }{Link: link}); err != nil {
		return "", fmt.Errorf("render %s email: %w", tmpl.Name(), err)
	}
	return b.String(), nil
}
