package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowsCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/bids/freelancers-bids", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"id":"b-1","status":"pending","amount":"100","actions":[]}]`))
	}))
	defer srv.Close()
	t.Setenv("API_BASE_URL", srv.URL)
	t.Setenv("API_TOKEN", "tok")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--role", "client", "rows"})
	require.NoError(t, root.Execute())

	var rows []rowView
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "b-1", rows[0].BidID)
	assert.Equal(t, []string{"accept-bid", "reject-bid"}, rows[0].Actions)
}

func TestTransitionCommandNeedsArguments(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"transition", "c-1"})
	assert.Error(t, root.Execute())
}

func TestRootRejectsUnknownRole(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--role", "admin", "rows"})
	assert.Error(t, root.Execute())
}
