package handlers_test

import (
	"Chest/internal/handlers"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvents_CreateUsesDefaultPartnerWhenAbsent(t *testing.T) {
	env := newTestEnv(t)
	d := env.createPartner(t, "alice", `{"name":"Kim","isDefault":true}`)

	e := env.createEvent(t, "alice", `{"date":"2025-03-01","intensity":4,"time_of_day":"night","is_cycle":true,"notes":"hi"}`)
	assert.Equal(t, "2025-03-01", e.Date)
	assert.Equal(t, 4, e.Intensity)
	assert.EqualValues(t, "night", e.TimeOfDay)
	assert.True(t, e.IsCycle)
	require.NotNil(t, e.Notes)
	assert.Equal(t, "hi", *e.Notes)
	assert.Equal(t, "alice", e.UserID)
	require.Len(t, e.Partners, 1)
	assert.Equal(t, d.ID, e.Partners[0].ID)

	// явный пустой список и null дают событие без партнёра
	for _, ids := range []string{`[]`, `null`} {
		e = env.createEvent(t, "alice", `{"date":"2025-03-02","intensity":2,"time_of_day":"day","partnerIds":`+ids+`}`)
		assert.Empty(t, e.Partners, ids)
	}
}

func TestEvents_CreateAcceptsRFC3339DateAndDedupesPartners(t *testing.T) {
	env := newTestEnv(t)
	p := env.createPartner(t, "alice", `{"name":"Sam"}`)

	e := env.createEvent(t, "alice", fmt.Sprintf(
		`{"date":"2025-03-01T23:30:00Z","intensity":3,"time_of_day":"day","partnerIds":[%q,%q]}`, p.ID, p.ID))
	assert.Equal(t, "2025-03-01", e.Date)
	require.Len(t, e.Partners, 1)
	assert.Equal(t, "Sam", e.Partners[0].Name)
}

func TestEvents_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	foreign := env.createPartner(t, "bob", `{"name":"Bob's"}`)

	cases := []struct {
		name, body, msg string
	}{
		{"missing date", `{"intensity":3,"time_of_day":"day"}`, "date is required"},
		{"bad date", `{"date":"01/03/2025","intensity":3,"time_of_day":"day"}`, `invalid date: "01/03/2025"`},
		{"intensity", `{"date":"2025-03-01","intensity":9,"time_of_day":"day"}`, ""},
		{"time of day", `{"date":"2025-03-01","intensity":3,"time_of_day":"noon"}`, ""},
		{"notes too long", `{"date":"2025-03-01","intensity":3,"time_of_day":"day","notes":"` + strings.Repeat("я", 301) + `"}`, ""},
		{"foreign partner", `{"date":"2025-03-01","intensity":3,"time_of_day":"day","partnerIds":["` + foreign.ID + `"]}`,
			"one or more partners do not belong to you"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/api/events", "alice", tc.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			if tc.msg != "" {
				assert.Equal(t, tc.msg, errorMessage(t, rr))
			}
		})
	}

	rr := env.do(t, http.MethodGet, "/api/events", "alice", "")
	assert.Empty(t, decode[[]handlers.EventDTO](t, rr))
}

func TestEvents_ListAppliesOwnerVisibility(t *testing.T) {
	env := newTestEnv(t)
	visible := env.createPartner(t, "alice", `{"name":"V"}`)
	hidden := env.createPartner(t, "alice", `{"name":"H","isVisible":false}`)

	ev := env.createEvent(t, "alice", `{"date":"2025-01-01","intensity":3,"time_of_day":"day","partnerIds":["`+visible.ID+`"]}`)
	eh := env.createEvent(t, "alice", `{"date":"2025-01-02","intensity":3,"time_of_day":"day","partnerIds":["`+hidden.ID+`"]}`)
	eb := env.createEvent(t, "alice", `{"date":"2025-01-03","intensity":3,"time_of_day":"day","partnerIds":["`+visible.ID+`","`+hidden.ID+`"]}`)
	en := env.createEvent(t, "alice", `{"date":"2025-01-04","intensity":3,"time_of_day":"day","partnerIds":[]}`)

	rr := env.do(t, http.MethodGet, "/api/events", "alice", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{ev.ID, eb.ID, en.ID}, eventIDs(decode[[]handlers.EventDTO](t, rr)))

	rr = env.do(t, http.MethodPut, "/api/profile", "alice", `{"include_no_partner_events":false}`)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = env.do(t, http.MethodGet, "/api/events", "alice", "")
	assert.Equal(t, []string{ev.ID, eb.ID}, eventIDs(decode[[]handlers.EventDTO](t, rr)))

	// Get не фильтрует
	rr = env.do(t, http.MethodGet, "/api/events/"+eh.ID, "alice", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestEvents_UpdatePartialAndReplacePartners(t *testing.T) {
	env := newTestEnv(t)
	a := env.createPartner(t, "alice", `{"name":"A"}`)
	b := env.createPartner(t, "alice", `{"name":"B"}`)
	e := env.createEvent(t, "alice", `{"date":"2025-01-01","intensity":3,"time_of_day":"day","notes":"x","partnerIds":["`+a.ID+`"]}`)

	rr := env.do(t, http.MethodPut, "/api/events/"+e.ID, "alice", `{"intensity":5,"notes":null}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decode[handlers.EventDTO](t, rr)
	assert.Equal(t, 5, got.Intensity)
	assert.Nil(t, got.Notes)
	assert.Equal(t, "2025-01-01", got.Date)
	require.Len(t, got.Partners, 1)
	assert.Equal(t, a.ID, got.Partners[0].ID)

	rr = env.do(t, http.MethodPut, "/api/events/"+e.ID, "alice", `{"partnerIds":["`+b.ID+`"]}`)
	require.Equal(t, http.StatusOK, rr.Code)
	got = decode[handlers.EventDTO](t, rr)
	require.Len(t, got.Partners, 1)
	assert.Equal(t, b.ID, got.Partners[0].ID)

	rr = env.do(t, http.MethodPut, "/api/events/"+e.ID, "alice", `{"intensity":null}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "intensity must not be null", errorMessage(t, rr))

	rr = env.do(t, http.MethodPut, "/api/events/"+e.ID, "bob", `{"intensity":1}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEvents_Delete(t *testing.T) {
	env := newTestEnv(t)
	e := env.createEvent(t, "alice", `{"date":"2025-01-01","intensity":3,"time_of_day":"day"}`)

	rr := env.do(t, http.MethodDelete, "/api/events/"+e.ID, "bob", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodDelete, "/api/events/"+e.ID, "alice", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/events/"+e.ID, "alice", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
