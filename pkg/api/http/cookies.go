package http

import (
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/aescanero/survey/pkg/domain"
	"github.com/google/uuid"
)

const (
	// sessionCookieName holds the session id
	sessionCookieName = "survey_session"

	// flashCookieName holds a one-time notice for the next rendered page
	flashCookieName = "survey_flash"

	completedValue = "yes"
)

// cookiePolicy carries the attributes shared by every cookie the server sets
type cookiePolicy struct {
	secure        bool
	completionTTL time.Duration
}

func (p cookiePolicy) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// readSessionCookie returns the session id when it is a well formed UUID
func readSessionCookie(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if _, err := uuid.Parse(value); err != nil {
		return "", false
	}
	return value, true
}

// writeSession sets the session cookie; it lives as long as the browser
func (p cookiePolicy) writeSession(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, p.cookie(sessionCookieName, sessionID, 0))
}

// writeFlash stores a notice for the next page render
func (p cookiePolicy) writeFlash(w http.ResponseWriter, notice string) {
	notice = strings.TrimSpace(notice)
	if notice == "" {
		return
	}
	http.SetCookie(w, p.cookie(flashCookieName, base64.RawURLEncoding.EncodeToString([]byte(notice)), 0))
}

// readAndClearFlash returns the pending notice and expires the flash cookie
func (p cookiePolicy) readAndClearFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return ""
	}
	http.SetCookie(w, p.cookie(flashCookieName, "", -1))

	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(cookie.Value))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(decoded))
}

// writeCompleted marks a survey as completed for completionTTL
func (p cookiePolicy) writeCompleted(w http.ResponseWriter, survey *domain.Survey) {
	maxAge := int(p.completionTTL / time.Second)
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, p.cookie(survey.CompletionCookieName(), completedValue, maxAge))
}

// completionCheck reports whether the request holds a completion cookie
func completionCheck(r *http.Request) func(code string) bool {
	return func(code string) bool {
		cookie, err := r.Cookie(domain.CompletionCookieName(code))
		return err == nil && cookie.Value != ""
	}
}
