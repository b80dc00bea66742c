package web

import (
	"errors"
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Walehamdi1/QNA/internal/dto"
)

var resetCodeRe = regexp.MustCompile(`\b(\d{6})\b`)

func TestForgotPasswordFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/user/forgot-password", "", dto.ForgotPasswordRequest{Email: "nobody@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	var unknown dto.MessageResponse
	decode(t, rec, &unknown)
	assert.Empty(t, s.mail.Sent, "unknown email must not send mail")

	rec = s.do(http.MethodPost, "/user/forgot-password", "", dto.ForgotPasswordRequest{Email: clientEmail})
	require.Equal(t, http.StatusOK, rec.Code)
	var known dto.MessageResponse
	decode(t, rec, &known)
	assert.Equal(t, unknown.Message, known.Message, "response must not reveal whether the email exists")

	msg, ok := s.mail.Last()
	require.True(t, ok)
	assert.Equal(t, clientEmail, msg.To)
	m := resetCodeRe.FindStringSubmatch(msg.Text)
	require.Len(t, m, 2, msg.Text)
	code := m[1]

	verify := func(c string) (int, dto.VerifyResponse) {
		rec := s.do(http.MethodPost, "/user/forgot-password/verify", "", dto.VerifyResetCodeRequest{Email: clientEmail, Code: c})
		var resp dto.VerifyResponse
		decode(t, rec, &resp)
		return rec.Code, resp
	}

	status, resp := verify("000000")
	if code == "000000" {
		status, resp = verify("111111")
	}
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, resp.Valid)
	assert.NotEmpty(t, resp.Error)

	status, resp = verify(code)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Valid)

	reset := dto.ResetPasswordRequest{Email: clientEmail, Code: code, NewPassword: "brandnew1", ConfirmPassword: "brandnew1"}
	rec = s.do(http.MethodPost, "/user/forgot-password/reset", "", reset)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/user/forgot-password/reset", "", reset)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "code is single use")

	s.login(clientEmail, "brandnew1")
	rec = s.do(http.MethodPost, "/user/auth", "", dto.AuthenticationRequest{Email: clientEmail, Password: "clientclient"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestResetPasswordMismatch(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/user/forgot-password/reset", "", dto.ResetPasswordRequest{
		Email: clientEmail, Code: "123456", NewPassword: "abcdef1", ConfirmPassword: "abcdef2",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForgotPasswordMailFailure(t *testing.T) {
	s := newTestServer(t)
	s.mail.Err = errors.New("smtp down")

	bodies := map[string]string{}
	for _, email := range []string{clientEmail, "nobody@example.com"} {
		rec := s.do(http.MethodPost, "/user/forgot-password", "", dto.ForgotPasswordRequest{Email: email})
		require.Equal(t, http.StatusOK, rec.Code, "%s: %s", email, rec.Body.String())
		bodies[email] = rec.Body.String()
	}
	assert.Equal(t, bodies["nobody@example.com"], bodies[clientEmail])

	rec := s.do(http.MethodPost, "/user/forgot-password", "", dto.ForgotPasswordRequest{Email: "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
