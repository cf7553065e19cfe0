package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/clubday/models"
)

// openSession resolves an unknown fingerprint and names the session.
func (s *testServer) openSession(tableID uint, name string) uint {
	s.t.Helper()
	code, resp := s.do(http.MethodGet, fmt.Sprintf("/tables/%d/session?fingerprint=fp-%s", tableID, name), nil, "")
	require.Equal(s.t, http.StatusOK, code)
	require.Equal(s.t, true, data(resp)["needs_name"])

	code, resp = s.do(http.MethodPost, fmt.Sprintf("/tables/%d/session", tableID), map[string]interface{}{
		"fingerprint": "fp-" + name,
		"client_name": name,
	}, "")
	require.Equal(s.t, http.StatusCreated, code, resp)
	return idOf(data(resp))
}

func TestSessionResolveFindsExistingSession(t *testing.T) {
	s := newTestServer(t)
	table := s.createTable(3)
	sessionID := s.openSession(table.ID, "Ana")

	code, resp := s.do(http.MethodGet, fmt.Sprintf("/tables/%d/session?fingerprint=fp-Ana", table.ID), nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, data(resp)["needs_name"])
	session := data(resp)["session"].(map[string]interface{})
	assert.Equal(t, "Ana", session["client_name"])
	assert.EqualValues(t, sessionID, session["id"])

	code, _ = s.do(http.MethodPost, fmt.Sprintf("/tables/%d/session", table.ID), map[string]interface{}{
		"fingerprint": "fp-x",
		"client_name": " ",
	}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestCartCheckoutCreatesOrder(t *testing.T) {
	s := newTestServer(t)
	admin := s.staffToken(models.RoleAdmin)
	table := s.createTable(5)

	code, resp := s.do(http.MethodPost, "/admin/menu", map[string]interface{}{
		"name":     "Caipirinha",
		"category": "Drinks",
		"price":    18.5,
	}, admin)
	require.Equal(t, http.StatusCreated, code, resp)
	menuID := idOf(data(resp))

	sessionID := s.openSession(table.ID, "Bruno")
	cartPath := fmt.Sprintf("/sessions/%d/cart", sessionID)

	code, resp = s.do(http.MethodPost, cartPath+"/items", map[string]interface{}{"menu_item_id": menuID}, "")
	require.Equal(t, http.StatusOK, code, resp)
	code, resp = s.do(http.MethodPost, cartPath+"/items", map[string]interface{}{"menu_item_id": menuID}, "")
	require.Equal(t, http.StatusOK, code, resp)
	code, resp = s.do(http.MethodPost, cartPath+"/items", map[string]interface{}{
		"name":     "Porção de fritas",
		"price":    "R$ 25,00",
		"category": "Porções",
	}, "")
	require.Equal(t, http.StatusOK, code, resp)

	snap := data(resp)
	assert.EqualValues(t, 3, snap["total_items"])
	assert.Equal(t, "R$ 62,00", snap["total_formatted"])
	assert.Len(t, snap["lines"], 2)

	code, _ = s.do(http.MethodPost, cartPath+"/items", map[string]interface{}{"name": "Água", "price": "grátis"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = s.do(http.MethodPatch, cartPath+"/items/missing", map[string]interface{}{"quantity": 2}, "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(http.MethodPut, cartPath, map[string]interface{}{"notes": "sem gelo", "delivery_type": "counter"}, "")
	require.Equal(t, http.StatusOK, code)

	code, resp = s.do(http.MethodPost, cartPath+"/checkout", nil, "")
	require.Equal(t, http.StatusCreated, code, resp)
	order := data(resp)["order"].(map[string]interface{})
	assert.Equal(t, "pending", order["status"])
	assert.Equal(t, "counter", order["delivery_type"])
	assert.Equal(t, "sem gelo", order["notes"])
	assert.Len(t, order["order_items"], 2)

	code, resp = s.do(http.MethodGet, cartPath, nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, data(resp)["total_items"])

	code, _ = s.do(http.MethodPost, cartPath+"/checkout", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, resp = s.do(http.MethodGet, fmt.Sprintf("/sessions/%d/orders", sessionID), nil, "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, list(resp), 1)
}

func TestClosedSessionCannotUseCart(t *testing.T) {
	s := newTestServer(t)
	admin := s.staffToken(models.RoleAdmin)
	table := s.createTable(8)
	sessionID := s.openSession(table.ID, "Carla")

	code, _ := s.do(http.MethodDelete, fmt.Sprintf("/admin/sessions/%d", sessionID), nil, admin)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodGet, fmt.Sprintf("/sessions/%d/cart", sessionID), nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}
