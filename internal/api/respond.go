package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/Kerhoff/ListeDeNoel/internal/ledger"
	"github.com/Kerhoff/ListeDeNoel/internal/service"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"detail": message})
}

// respondServiceError maps service and ledger errors to HTTP statuses.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	default:
		switch ledger.KindOf(err) {
		case ledger.KindInvalidAmount:
			status = http.StatusBadRequest
		case ledger.KindInvalidContributor, ledger.KindForbidden:
			status = http.StatusForbidden
		case ledger.KindNotFound:
			status = http.StatusNotFound
		case ledger.KindConflict:
			status = http.StatusConflict
		}
	}

	if status == http.StatusInternalServerError {
		s.logger.WithError(err).WithField("request_id", requestIDFrom(r.Context())).
			Errorf("%s %s failed", r.Method, r.URL.Path)
		s.respondError(w, status, "erreur interne")
		return
	}

	s.respondError(w, status, detail(err))
}

// detail returns the user-facing message of err.
func detail(err error) string {
	if message, ok := service.UserMessage(err); ok {
		return message
	}
	return err.Error()
}

// decodeJSON reads and validates the request body into dst. It writes a 400
// response and returns false on failure.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		s.respondError(w, http.StatusBadRequest, "corps de requête vide")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("JSON invalide: %v", err))
		return false
	}
	if err := validate.Struct(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}

	messages := make([]string, 0, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s est obligatoire", field))
		case "email":
			messages = append(messages, fmt.Sprintf("%s doit être une adresse email valide", field))
		case "url":
			messages = append(messages, fmt.Sprintf("%s doit être une URL valide", field))
		case "max":
			messages = append(messages, fmt.Sprintf("%s dépasse %s caractères", field, fe.Param()))
		case "min":
			messages = append(messages, fmt.Sprintf("%s doit contenir au moins %s élément(s)", field, fe.Param()))
		case "gt":
			messages = append(messages, fmt.Sprintf("%s doit être supérieur à %s", field, fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s est invalide", field))
		}
	}
	return strings.Join(messages, "; ")
}

// pathID extracts a numeric path variable.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("identifiant %s invalide", name))
		return 0, false
	}
	return id, true
}
