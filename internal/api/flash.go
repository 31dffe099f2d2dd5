package api

import (
	"net/http"
	"net/url"
)

// Flash messages shown after a redirect.
const (
	flashProfileCreated  = "New monkey added"
	flashFriendAdded     = "Friend added"
	flashBestFriendSet   = "Best friend updated"
	flashFriendRemoved   = "Friendship removed"
	flashProfileUpdated  = "Monkey updated"
	flashProfileRemoved  = "Monkey removed"
	flashFormInvalid     = "Form not valid"
	flashRemoveFriendErr = "Couldnt remove friendship"
)

const defaultFlashCookie = "monkeyapp_flash"

func (s *Server) flashCookieName() string {
	if s.FlashCookie == "" {
		return defaultFlashCookie
	}
	return s.FlashCookie
}

// setFlash stores message for the next page render.
func (s *Server) setFlash(w http.ResponseWriter, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.flashCookieName(),
		Value:    url.QueryEscape(message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns the pending flash message, if any, and expires the cookie.
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(s.flashCookieName())
	if err != nil || cookie.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:   s.flashCookieName(),
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	message, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return message
}

// redirectWithFlash is the success path of every form handler.
func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, to, message string) {
	s.setFlash(w, message)
	http.Redirect(w, r, to, http.StatusSeeOther)
}
