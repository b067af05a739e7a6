package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sardine-ai/go-webclient/controller"
	"github.com/sardine-ai/go-webclient/model"
	"github.com/sardine-ai/go-webclient/webclient"
)

type controllerReport struct {
	Kind    model.ReceiverType        `json:"kind"`
	Mode    model.ControllerModelMode `json:"mode"`
	Subject string                    `json:"subject"`
	IsValid bool                      `json:"isValid"`
	CanChat bool                      `json:"canChat"`
	CanEdit bool                      `json:"canEdit"`
}

func (s *Server) controllerOptions() controller.Options {
	return controller.Options{
		Service:        s.Service,
		Log:            s.log,
		ProfileEditing: s.Config.ProfileEditing,
	}
}

func (s *Server) lookupReceiver(r *http.Request) model.Receiver {
	vars := mux.Vars(r)
	switch vars["type"] {
	case "contact":
		if c, ok := s.Service.Contact(vars["id"]); ok {
			return c
		}
	case "group":
		if g, ok := s.Service.Group(vars["id"]); ok {
			return g
		}
	default:
		if me := s.Service.Me(); me != nil {
			return me
		}
	}
	return nil
}

func (s *Server) handleReceiver(w http.ResponseWriter, r *http.Request) {
	if s.Service == nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	mode := model.ModeView
	if m := r.URL.Query().Get("mode"); m != "" {
		mode = model.ControllerModelMode(m)
	}
	if !mode.Valid() {
		http.Error(w, "Invalid mode", http.StatusBadRequest)
		return
	}
	receiver := s.lookupReceiver(r)
	if receiver == nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	m := controller.New(s.controllerOptions(), mode, receiver)
	if m == nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, controllerReport{
		Kind:    m.Kind(),
		Mode:    m.Mode(),
		Subject: m.Subject(),
		IsValid: m.IsValid(),
		CanChat: m.CanChat(),
		CanEdit: m.CanEdit(),
	})
}

type profileRequest struct {
	Nickname string `json:"nickname"`
	// Avatar follows the controller convention: absent keeps, empty removes.
	Avatar []byte `json:"avatar"`
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	if s.Service == nil || s.Service.Me() == nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if !s.Config.ProfileEditing {
		http.Error(w, "Profile editing disabled", http.StatusForbidden)
		return
	}
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	m := controller.NewMe(s.controllerOptions(), model.ModeEdit, s.Service.Me())
	m.Nickname = req.Nickname
	if req.Avatar != nil {
		m.Avatar().SetAvatar(req.Avatar)
	}
	saved, err := m.Save(r.Context())
	switch {
	case errors.Is(err, webclient.ErrNicknameTooLong):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		s.log.WithError(err).Error("error saving profile")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, saved)
}
