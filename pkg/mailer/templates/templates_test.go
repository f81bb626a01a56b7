package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_VerifyEmail(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)
	data := NewEmailData(Brand{AppName: "pm", CompanyName: "Acme"}, VerifyEmail, "Alice", "alice@x.com",
		WithActionURL("http://client/verify-email/abc123"),
		WithExpiresIn(now, time.Hour),
	)

	subject, text, html, err := Render(VerifyEmail, data)
	require.NoError(t, err)

	assert.Equal(t, "Email verification", subject)
	assert.Contains(t, text, "http://client/verify-email/abc123")
	assert.Contains(t, text, "1 hour")
	assert.Contains(t, html, `href="http://client/verify-email/abc123"`)
	assert.Contains(t, html, "Welcome to Acme!")
	assert.Equal(t, now.Add(time.Hour), data.ExpiresAt)
}

func TestRender_ResetPasswordEscapesHTML(t *testing.T) {
	data := NewEmailData(Brand{AppName: "pm"}, ResetPassword, "<b>Eve</b>", "eve@x.com",
		WithActionURL("http://client/reset-password/tok"),
		WithExpiresIn(time.Now(), 30*time.Minute),
	)

	subject, text, html, err := Render(ResetPassword, data)
	require.NoError(t, err)

	assert.Equal(t, "Reset your password", subject)
	assert.Contains(t, text, "30 minutes")
	assert.NotContains(t, html, "<b>Eve</b>")
	assert.Contains(t, html, "&lt;b&gt;Eve&lt;/b&gt;")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, _, err := Render("nope", EmailData{})
	assert.Error(t, err)
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "1 hour", humanDuration(time.Hour))
	assert.Equal(t, "2 hours", humanDuration(2*time.Hour))
	assert.Equal(t, "30 minutes", humanDuration(30*time.Minute))
	assert.Equal(t, "45 seconds", humanDuration(45*time.Second))
}

func TestDefaultFn(t *testing.T) {
	assert.Equal(t, "x", defaultFn("x", ""))
	assert.Equal(t, "x", defaultFn("x", nil))
	assert.Equal(t, "y", defaultFn("x", "y"))
	assert.Equal(t, "x", defaultFn("x", 0))
}
