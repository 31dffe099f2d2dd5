package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/vytor/monkeyapp/internal/errors"
	"github.com/vytor/monkeyapp/internal/logger"
	"github.com/vytor/monkeyapp/internal/models"
)

func formID(r *http.Request, field string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.PostFormValue(field)), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func containsProfile(profiles []models.Profile, id int64) bool {
	for _, p := range profiles {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) handleBestFriendRedirect(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		redirectNotFound(w, r)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/monkey/%d", id), http.StatusSeeOther)
}

// handleSetBestFriend sets the best friend to the chosen friend, or clears it
// when the user field is blank.
func (s *Server) handleSetBestFriend(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		redirectNotFound(w, r)
		return
	}
	ctx := r.Context()
	log := logger.FromContext(ctx)
	back := fmt.Sprintf("/monkey/%d", id)

	if _, err := s.ProfileService.GetProfile(ctx, id); err != nil {
		handleError(w, r, err)
		return
	}

	var target *int64
	if strings.TrimSpace(r.PostFormValue("user")) != "" {
		friendID, ok := formID(r, "user")
		if !ok {
			log.Debug("best friend rejected: id=%d, user=%q", id, r.PostFormValue("user"))
			s.redirectWithFlash(w, r, back, flashFormInvalid)
			return
		}
		target = &friendID
	}

	if err := s.GraphService.MakeBestFriend(ctx, id, target); err != nil {
		appErr, ok := errors.As(err)
		if ok && (appErr.Code == errors.ErrCodeNotFriends || appErr.Code == errors.ErrCodeValidation) {
			s.redirectWithFlash(w, r, back, flashFormInvalid)
			return
		}
		handleError(w, r, err)
		return
	}
	s.redirectWithFlash(w, r, back, flashBestFriendSet)
}

func (s *Server) handleRemoveFriendConfirm(w http.ResponseWriter, r *http.Request) {
	monkey1, monkey2, ok := s.friendPair(w, r)
	if !ok {
		return
	}
	friends, err := s.GraphService.AreFriends(r.Context(), monkey1.ID, monkey2.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	s.render(w, r, "pages/remove_friend.html", pageData{
		"title":   "Remove friendship",
		"monkey1": monkey1,
		"monkey2": monkey2,
		"friends": friends,
	})
}

func (s *Server) handleRemoveFriend(w http.ResponseWriter, r *http.Request) {
	monkey1, monkey2, ok := s.friendPair(w, r)
	if !ok {
		return
	}
	back := fmt.Sprintf("/monkey/%d", monkey1.ID)

	if err := s.GraphService.RemoveFriend(r.Context(), monkey1.ID, monkey2.ID); err != nil {
		if appErr, ok := errors.As(err); ok && appErr.Status < 500 {
			s.redirectWithFlash(w, r, back, flashRemoveFriendErr)
			return
		}
		handleError(w, r, err)
		return
	}
	s.redirectWithFlash(w, r, back, flashFriendRemoved)
}

// friendPair loads both profiles named in the URL. On failure the response
// has already been written.
func (s *Server) friendPair(w http.ResponseWriter, r *http.Request) (*models.Profile, *models.Profile, bool) {
	id1, ok1 := idParam(r, "id1")
	id2, ok2 := idParam(r, "id2")
	if !ok1 || !ok2 {
		redirectNotFound(w, r)
		return nil, nil, false
	}

	monkey1, err := s.ProfileService.GetProfile(r.Context(), id1)
	if err != nil {
		handleError(w, r, err)
		return nil, nil, false
	}
	monkey2, err := s.ProfileService.GetProfile(r.Context(), id2)
	if err != nil {
		handleError(w, r, err)
		return nil, nil, false
	}
	return monkey1, monkey2, true
}
