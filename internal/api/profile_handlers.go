package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/vytor/monkeyapp/internal/errors"
	"github.com/vytor/monkeyapp/internal/logger"
	"github.com/vytor/monkeyapp/internal/models"
)

func profileInput(r *http.Request) models.ProfileInput {
	return models.ProfileInput{
		Name:  r.PostFormValue("name"),
		Email: r.PostFormValue("email"),
		Age:   r.PostFormValue("age"),
	}
}

// formErrors returns the per-field messages of a rejected form, or false when
// err is not a form problem.
func formErrors(err error) (errors.FieldErrors, bool) {
	appErr, ok := errors.As(err)
	if !ok || appErr.Fields == nil {
		return nil, false
	}
	if appErr.Code != errors.ErrCodeValidation && appErr.Code != errors.ErrCodeConflict {
		return nil, false
	}
	return appErr.Fields, true
}

func (s *Server) handleMonkeys(w http.ResponseWriter, r *http.Request) {
	s.renderMonkeys(w, r, http.StatusOK, models.ProfileInput{}, errors.FieldErrors{})
}

func (s *Server) renderMonkeys(w http.ResponseWriter, r *http.Request, status int, form models.ProfileInput, fieldErrs errors.FieldErrors) {
	log := logger.FromContext(r.Context())
	log.Debug("rendering monkeys page")

	// Unknown ord values list the profiles unordered.
	order, _ := models.ParseProfileOrder(r.URL.Query().Get("ord"))
	listings, err := s.ProfileService.ListProfiles(r.Context(), order)
	if err != nil {
		handleError(w, r, err)
		return
	}

	s.renderStatus(w, r, status, "pages/monkeys.html", pageData{
		"title":   "Monkeys",
		"monkeys": listings,
		"order":   order,
		"form":    form,
		"errors":  fieldErrs,
	})
}

func (s *Server) handleCreateMonkey(w http.ResponseWriter, r *http.Request) {
	in := profileInput(r)
	if _, err := s.ProfileService.CreateProfile(r.Context(), in); err != nil {
		if fieldErrs, ok := formErrors(err); ok {
			s.renderMonkeys(w, r, http.StatusUnprocessableEntity, in, fieldErrs)
			return
		}
		handleError(w, r, err)
		return
	}
	s.redirectWithFlash(w, r, "/monkeys", flashProfileCreated)
}

func (s *Server) handleMonkey(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		redirectNotFound(w, r)
		return
	}

	ctx := r.Context()
	monkey, err := s.ProfileService.GetProfile(ctx, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	friends, err := s.GraphService.Friends(ctx, id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	nonFriends, err := s.GraphService.NonFriends(ctx, id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var bestFriend *models.Profile
	if monkey.BestFriendID != nil {
		for i := range friends {
			if friends[i].ID == *monkey.BestFriendID {
				bestFriend = &friends[i]
				break
			}
		}
	}

	s.render(w, r, "pages/monkey.html", pageData{
		"title":      monkey.Name,
		"monkey":     monkey,
		"bestFriend": bestFriend,
		"friends":    friends,
		"nonFriends": nonFriends,
	})
}

// handleAddFriend befriends the profile chosen in the user field. Only
// current non-friends are valid choices.
func (s *Server) handleAddFriend(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		redirectNotFound(w, r)
		return
	}
	ctx := r.Context()
	log := logger.FromContext(ctx)
	back := fmt.Sprintf("/monkey/%d", id)

	candidates, err := s.GraphService.NonFriends(ctx, id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	friendID, ok := formID(r, "user")
	if !ok || !containsProfile(candidates, friendID) {
		log.Debug("add friend rejected: id=%d, user=%q", id, r.PostFormValue("user"))
		s.redirectWithFlash(w, r, back, flashFormInvalid)
		return
	}

	if err := s.GraphService.AddFriend(ctx, id, friendID); err != nil {
		if appErr, ok := errors.As(err); ok && appErr.Status < 500 && appErr.Code != errors.ErrCodeNotFound {
			s.redirectWithFlash(w, r, back, flashFormInvalid)
			return
		}
		handleError(w, r, err)
		return
	}
	s.redirectWithFlash(w, r, back, flashFriendAdded)
}

func (s *Server) handleEditMonkey(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		redirectNotFound(w, r)
		return
	}
	monkey, err := s.ProfileService.GetProfile(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	form := models.ProfileInput{
		Name:  monkey.Name,
		Email: monkey.Email,
	}
	if monkey.Age != nil {
		form.Age = strconv.Itoa(*monkey.Age)
	}
	s.render(w, r, "pages/edit_monkey.html", pageData{
		"title":  "Edit " + monkey.Name,
		"monkey": monkey,
		"form":   form,
		"errors": errors.FieldErrors{},
	})
}

func (s *Server) handleUpdateMonkey(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		redirectNotFound(w, r)
		return
	}
	ctx := r.Context()
	monkey, err := s.ProfileService.GetProfile(ctx, id)
	if err != nil {
		handleError(w, r, err)
		return
	}

	in := profileInput(r)
	if _, err := s.ProfileService.UpdateProfile(ctx, id, in); err != nil {
		if fieldErrs, ok := formErrors(err); ok {
			s.renderStatus(w, r, http.StatusUnprocessableEntity, "pages/edit_monkey.html", pageData{
				"title":  "Edit " + monkey.Name,
				"monkey": monkey,
				"form":   in,
				"errors": fieldErrs,
			})
			return
		}
		handleError(w, r, err)
		return
	}
	s.redirectWithFlash(w, r, fmt.Sprintf("/monkey/%d", id), flashProfileUpdated)
}

func (s *Server) handleRemoveMonkeyConfirm(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		redirectNotFound(w, r)
		return
	}
	monkey, err := s.ProfileService.GetProfile(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	s.render(w, r, "pages/remove_monkey.html", pageData{
		"title":  "Remove " + monkey.Name,
		"monkey": monkey,
	})
}

func (s *Server) handleRemoveMonkey(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		redirectNotFound(w, r)
		return
	}
	if err := s.ProfileService.DeleteProfile(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	s.redirectWithFlash(w, r, "/monkeys", flashProfileRemoved)
}
