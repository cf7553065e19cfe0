package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/clubday/models"
)

func TestTableCRUD(t *testing.T) {
	s := newTestServer(t)
	admin := s.staffToken(models.RoleAdmin)

	code, resp := s.do(http.MethodPost, "/admin/tables", map[string]interface{}{"number": 7, "name": "Varanda"}, admin)
	require.Equal(t, http.StatusCreated, code, resp)
	assert.Equal(t, "Table created successfully", resp["message"])
	table := data(resp)
	assert.Equal(t, true, table["is_active"])
	id := idOf(table)

	code, resp = s.do(http.MethodPost, "/admin/tables", map[string]interface{}{"number": 7}, admin)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, false, resp["status"])

	code, resp = s.do(http.MethodGet, "/admin/tables", nil, admin)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "List of tables", resp["message"])
	assert.Len(t, list(resp), 1)

	code, resp = s.do(http.MethodPut, fmt.Sprintf("/admin/tables/%d/active", id), map[string]interface{}{"is_active": false}, admin)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, data(resp)["is_active"])

	code, _ = s.do(http.MethodDelete, fmt.Sprintf("/admin/tables/%d", id), nil, admin)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodGet, fmt.Sprintf("/admin/tables/%d", id), nil, admin)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestTableRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	waiter := s.staffToken(models.RoleWaiter)

	code, _ := s.do(http.MethodGet, "/admin/tables", nil, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(http.MethodGet, "/admin/tables", nil, waiter)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp := s.do(http.MethodGet, "/admin/tables/activity", nil, waiter)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 40, data(resp)["threshold_minutes"])
}

func TestInvalidTableID(t *testing.T) {
	s := newTestServer(t)

	code, resp := s.do(http.MethodGet, "/tables/abc/session?fingerprint=x", nil, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp["message"], "invalid id")
}
