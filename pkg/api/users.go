package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/getuserd/userd/pkg/directory"
	"github.com/getuserd/userd/pkg/validation"
)

// createRules are the built-in boundary checks for create bodies:
// name and email must be present, and email must be a valid address.
var createRules = &validation.Rules{
	Required: []string{"name", "email"},
	Fields: map[string]*validation.FieldValidator{
		"name":  {Type: "string", Required: true},
		"email": {Type: "string", Required: true, Format: "email"},
	},
}

// updateRules are the built-in boundary checks for update bodies. Both
// fields are optional and checked only when present.
var updateRules = &validation.Rules{
	Fields: map[string]*validation.FieldValidator{
		"name":  {Type: "string"},
		"email": {Type: "string", Format: "email"},
	},
}

func (a *API) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	limitedBody(w, r)

	if !a.cfg.ValidationEnabled() {
		// basic mode: decode straight into the record shape. Missing
		// fields, including a missing body, become zero values.
		var req CreateUserRequest
		if err := decodeJSONBody(r, &req, true); err != nil {
			writeDecodeError(w, err)
			return
		}
		u := a.store.Create(req.Name, req.Email)
		writeJSON(w, http.StatusOK, u)
		return
	}

	body, err := decodeBodyMap(r)
	if err != nil {
		writeDecodeError(w, err)
		return
	}

	result := a.createValidator.ValidateBody(body)
	result.Merge(a.extraValidator.ValidateBody(body))
	if result.HasErrors() {
		writeValidationError(w, result)
		return
	}

	// Validation guarantees both fields are present strings.
	name, _ := body["name"].(string)
	email, _ := body["email"].(string)
	u := a.store.Create(name, email)
	writeJSON(w, http.StatusCreated, u)
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	// Both modes return the bare array, never an envelope.
	writeJSON(w, http.StatusOK, a.store.List())
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := a.userID(w, r)
	if !ok {
		return
	}
	u := a.store.Get(id)
	if u == nil {
		a.writeAbsent(w, id)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	limitedBody(w, r)
	id, ok := a.userID(w, r)
	if !ok {
		return
	}

	if !a.cfg.ValidationEnabled() {
		// basic mode: replace the whole record. Omitted fields become
		// zero values, matching the decode-into-struct create path.
		var req UpdateUserRequest
		if err := decodeJSONBody(r, &req, true); err != nil {
			writeDecodeError(w, err)
			return
		}
		u := a.store.Update(id, req.Name, req.Email)
		if u == nil {
			a.writeAbsent(w, id)
			return
		}
		writeJSON(w, http.StatusOK, u)
		return
	}

	body, err := decodeBodyMap(r)
	if err != nil {
		writeDecodeError(w, err)
		return
	}

	if result := a.updateValidator.ValidateBody(body); result.HasErrors() {
		writeValidationError(w, result)
		return
	}

	// dto mode: merge only the fields the body carries. Validation has
	// already confirmed any present field is a string.
	var in directory.UpdateUser
	if v, exists := body["name"]; exists {
		if s, isString := v.(string); isString {
			in.Name = &s
		}
	}
	if v, exists := body["email"]; exists {
		if s, isString := v.(string); isString {
			in.Email = &s
		}
	}

	u := a.store.Patch(id, in)
	if u == nil {
		a.writeAbsent(w, id)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := a.userID(w, r)
	if !ok {
		return
	}
	// The response is a bare JSON boolean in both modes, even when the
	// id matched nothing.
	writeJSON(w, http.StatusOK, a.store.Delete(id))
}

// userID extracts the {id} path value. In dto mode a non-integer id is a
// 400 and the response is already written when ok is false. In basic mode
// a non-integer id can never match a record, so the lookup proceeds with
// an id outside the assigned range.
func (a *API) userID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		if a.cfg.ValidationEnabled() {
			writeError(w, http.StatusBadRequest, "invalid_id", "user id must be an integer")
			return 0, false
		}
		return 0, true
	}
	return id, true
}

// writeAbsent writes the absent-record response for the active mode:
// a 404 envelope in dto mode, a 200 with a JSON null in basic mode.
func (a *API) writeAbsent(w http.ResponseWriter, id int) {
	if a.cfg.ValidationEnabled() {
		nf := &directory.NotFoundError{ID: id}
		writeJSON(w, nf.StatusCode(), ErrorResponse{
			Error:   "not_found",
			Message: nf.Error(),
			Hint:    nf.Hint(),
		})
		return
	}
	writeJSON(w, http.StatusOK, json.RawMessage("null"))
}
