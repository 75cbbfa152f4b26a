package handlers_test

import (
	"Chest/internal/handlers"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartners_RequireAuth(t *testing.T) {
	env := newTestEnv(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/partners"},
		{http.MethodPost, "/api/partners"},
		{http.MethodPut, "/api/partners/x"},
		{http.MethodDelete, "/api/partners/x"},
		{http.MethodGet, "/api/events"},
		{http.MethodGet, "/api/profile"},
		{http.MethodGet, "/api/shares"},
		{http.MethodDelete, "/api/account"},
		{http.MethodGet, "/api/stats"},
	} {
		rr := env.do(t, tc.method, tc.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, tc.method+" "+tc.path)
	}
}

func TestPartners_CreateDefaultsAndList(t *testing.T) {
	env := newTestEnv(t)

	p := env.createPartner(t, "alice", `{"name":"  Sam  "}`)
	assert.Equal(t, "Sam", p.Name)
	assert.Equal(t, "#000000", p.Color)
	assert.True(t, p.IsVisible)
	assert.False(t, p.IsDefault)
	assert.Equal(t, "alice", p.UserID)

	d := env.createPartner(t, "alice", `{"name":"Kim","color":"#ff0000","isDefault":true}`)
	assert.True(t, d.IsDefault)

	rr := env.do(t, http.MethodGet, "/api/partners", "alice", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[[]handlers.PartnerDTO](t, rr)
	require.Len(t, list, 2)
	defaults := 0
	for _, v := range list {
		if v.IsDefault {
			defaults++
			assert.Equal(t, d.ID, v.ID)
		}
	}
	assert.Equal(t, 1, defaults)

	// другой владелец партнёров alice не видит
	rr = env.do(t, http.MethodGet, "/api/partners", "bob", "")
	assert.Empty(t, decode[[]handlers.PartnerDTO](t, rr))
}

func TestPartners_HiddenCannotBeDefault(t *testing.T) {
	env := newTestEnv(t)

	p := env.createPartner(t, "alice", `{"name":"Sam","isVisible":false,"isDefault":true}`)
	assert.False(t, p.IsVisible)
	assert.False(t, p.IsDefault)

	d := env.createPartner(t, "alice", `{"name":"Kim","isDefault":true}`)
	rr := env.do(t, http.MethodPut, "/api/partners/"+d.ID, "alice", `{"isVisible":false}`)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[handlers.PartnerDTO](t, rr)
	assert.False(t, got.IsVisible)
	assert.False(t, got.IsDefault)
}

func TestPartners_SwitchDefault(t *testing.T) {
	env := newTestEnv(t)
	a := env.createPartner(t, "alice", `{"name":"A","isDefault":true}`)
	b := env.createPartner(t, "alice", `{"name":"B"}`)

	rr := env.do(t, http.MethodPut, "/api/partners/"+b.ID, "alice", `{"isDefault":true}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[handlers.PartnerDTO](t, rr).IsDefault)

	rr = env.do(t, http.MethodGet, "/api/partners/"+a.ID, "alice", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decode[handlers.PartnerDTO](t, rr).IsDefault)
}

func TestPartners_ValidationAndNotFound(t *testing.T) {
	env := newTestEnv(t)
	p := env.createPartner(t, "alice", `{"name":"Sam"}`)

	rr := env.do(t, http.MethodPost, "/api/partners", "alice", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "name is required", errorMessage(t, rr))

	rr = env.do(t, http.MethodPost, "/api/partners", "alice", `{"name":"X","color":"red"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPut, "/api/partners/"+p.ID, "alice", `{"name":null}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "name must not be null", errorMessage(t, rr))

	rr = env.do(t, http.MethodPost, "/api/partners", "alice", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid request body", errorMessage(t, rr))

	// чужой и несуществующий партнёр неразличимы
	for _, owner := range []string{"bob", "alice"} {
		id := p.ID
		if owner == "alice" {
			id = "missing"
		}
		rr = env.do(t, http.MethodGet, "/api/partners/"+id, owner, "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "not found", errorMessage(t, rr))
	}
	rr = env.do(t, http.MethodDelete, "/api/partners/"+p.ID, "bob", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPartners_DeleteClearsDefault(t *testing.T) {
	env := newTestEnv(t)
	p := env.createPartner(t, "alice", `{"name":"Sam","isDefault":true}`)

	rr := env.do(t, http.MethodDelete, "/api/partners/"+p.ID, "alice", "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/profile", "alice", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, decode[handlers.ProfileDTO](t, rr).DefaultPartnerID)

	rr = env.do(t, http.MethodGet, "/api/partners/"+p.ID, "alice", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
