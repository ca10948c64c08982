package router

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dorianBody = `{
	"names": ["Dorian"],
	"description": "Minor mode with a raised sixth",
	"intervals": [
		{"name":"Second","quality":"Major","pitchOffset":1,"semitoneOffset":2},
		{"name":"Third","quality":"Minor","pitchOffset":2,"semitoneOffset":3},
		{"name":"Fourth","quality":"Perfect","pitchOffset":3,"semitoneOffset":5},
		{"name":"Fifth","quality":"Perfect","pitchOffset":4,"semitoneOffset":7},
		{"name":"Sixth","quality":"Major","pitchOffset":5,"semitoneOffset":9},
		{"name":"Seventh","quality":"Minor","pitchOffset":6,"semitoneOffset":10},
		{"name":"Octave","quality":"Perfect","pitchOffset":7,"semitoneOffset":12}
	]
}`

func createDorian(t *testing.T, ta *testApp) string {
	t.Helper()
	resp := ta.doAuthRequest(t, http.MethodPost, "/api/scales", dorianBody)
	assertStatus(t, resp, http.StatusCreated)
	id, ok := parseJSON(t, resp)["id"].(string)
	require.True(t, ok)
	return id
}

func TestScaleCreateRequiresAuth(t *testing.T) {
	ta := setupApp(t)
	resp := doRequest(t, ta.app, http.MethodPost, "/api/scales", dorianBody, nil)
	assertStatus(t, resp, http.StatusUnauthorized)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, resp))
}

func TestScaleCRUD(t *testing.T) {
	ta := setupApp(t)
	id := createDorian(t, ta)

	resp := doRequest(t, ta.app, http.MethodGet, "/api/scales/"+id, "", nil)
	assertStatus(t, resp, http.StatusOK)
	body := parseJSON(t, resp)
	assert.Equal(t, []interface{}{"Dorian"}, body["names"])
	assert.Len(t, body["intervals"], 7)

	resp = doRequest(t, ta.app, http.MethodGet, "/api/scales", "", nil)
	assertStatus(t, resp, http.StatusOK)
	assert.Equal(t, float64(1), parseJSON(t, resp)["total"])

	resp = ta.doAuthRequest(t, http.MethodPut, "/api/scales/"+id,
		`{"names":["Dorian","Russian Minor"],"intervals":[{"name":"Second","quality":"Major","pitchOffset":1,"semitoneOffset":2}]}`)
	assertStatus(t, resp, http.StatusOK)
	body = parseJSON(t, resp)
	assert.Equal(t, []interface{}{"Dorian", "Russian Minor"}, body["names"])
	assert.Len(t, body["intervals"], 1)

	resp = ta.doAuthRequest(t, http.MethodDelete, "/api/scales/"+id, "")
	assertStatus(t, resp, http.StatusNoContent)

	resp = doRequest(t, ta.app, http.MethodGet, "/api/scales/"+id, "", nil)
	assertStatus(t, resp, http.StatusNotFound)
	assert.Equal(t, "NOT_FOUND", errorCode(t, resp))
}

func TestScaleCreateValidation(t *testing.T) {
	ta := setupApp(t)
	tests := map[string]string{
		"no names":      `{"names":[],"intervals":[{"name":"Second","quality":"Major","pitchOffset":1,"semitoneOffset":2}]}`,
		"blank name":    `{"names":["   "],"intervals":[{"name":"Second","quality":"Major","pitchOffset":1,"semitoneOffset":2}]}`,
		"no intervals":  `{"names":["Empty"],"intervals":[]}`,
		"bad quality":   `{"names":["Odd"],"intervals":[{"name":"Second","quality":"Huge"}]}`,
		"invalid json":  `{"names":`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			resp := ta.doAuthRequest(t, http.MethodPost, "/api/scales", body)
			assertStatus(t, resp, http.StatusBadRequest)
			assert.Equal(t, "VALIDATION_ERROR", errorCode(t, resp))
		})
	}
}

func TestScaleNotFoundAndBadID(t *testing.T) {
	ta := setupApp(t)

	resp := doRequest(t, ta.app, http.MethodGet, "/api/scales/"+uuid.NewString(), "", nil)
	assertStatus(t, resp, http.StatusNotFound)

	resp = doRequest(t, ta.app, http.MethodGet, "/api/scales/not-a-uuid", "", nil)
	assertStatus(t, resp, http.StatusBadRequest)

	resp = ta.doAuthRequest(t, http.MethodDelete, "/api/scales/"+uuid.NewString(), "")
	assertStatus(t, resp, http.StatusNotFound)
}

func TestScalePitches(t *testing.T) {
	ta := setupApp(t)
	id := createDorian(t, ta)

	resp := doRequest(t, ta.app, http.MethodGet, "/api/scales/"+id+"/pitches?root=D", "", nil)
	assertStatus(t, resp, http.StatusOK)
	body := parseJSON(t, resp)
	assert.Equal(t, "Dorian", body["name"])
	assert.Equal(t, []interface{}{"D", "E", "F", "G", "A", "B", "C", "D"}, body["spelled"])

	resp = doRequest(t, ta.app, http.MethodGet, "/api/scales/"+id+"/pitches", "", nil)
	assertStatus(t, resp, http.StatusOK)
	assert.Equal(t, []interface{}{"C", "D", "Eb", "F", "G", "A", "Bb", "C"}, parseJSON(t, resp)["spelled"])

	resp = doRequest(t, ta.app, http.MethodGet, "/api/scales/"+id+"/pitches?root=H", "", nil)
	assertStatus(t, resp, http.StatusBadRequest)
}

func TestSeededCatalog(t *testing.T) {
	ta := setupApp(t)
	n, err := ta.scales.Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	resp := doRequest(t, ta.app, http.MethodGet, "/api/scales", "", nil)
	assertStatus(t, resp, http.StatusOK)
	assert.Equal(t, float64(12), parseJSON(t, resp)["total"])
}

func TestJobRoutesDisabledWithoutRedis(t *testing.T) {
	ta := setupApp(t)
	id := createDorian(t, ta)

	resp := ta.doAuthRequest(t, http.MethodPost, "/api/scales/"+id+"/pitch-table", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
