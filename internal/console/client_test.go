package console

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientDo_DecodesEnvelopeData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":200,"message":"Success","data":{"access_token":"tok","token_type":"bearer","username":"admin","is_admin":true}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	sess, err := client.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.Token)
	assert.Equal(t, "admin", sess.Username)
	assert.True(t, sess.IsAdmin)
}

func TestClientDo_SendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"code":200,"message":"Success","data":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.FetchBuildings(context.Background(), Session{Token: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", gotAuth)
}

func TestClientDo_APIErrorPrefersDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":100004,"message":"Bad request","detail":"start time must be in HH:MM format"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	err := client.PostSchedule(context.Background(), Session{Token: "abc"}, 1, "oops")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "start time must be in HH:MM format", apiErr.Detail)
}

func TestClientDo_APIErrorFallsBackToMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":100005,"message":"Resource not found"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.FetchQuery(context.Background(), Session{Token: "abc"}, "nope")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, "Resource not found", apiErr.Detail)
}

func TestClientDo_UnauthorizedFiresCallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":100007,"message":"Invalid token"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	fired := false
	client.OnUnauthorized = func() { fired = true }

	_, err := client.FetchBuildings(context.Background(), Session{Token: "stale"})
	require.Error(t, err)
	assert.True(t, fired)
}

func TestClientDo_BusyHooksBracketEveryCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code":100002,"message":"Internal server error"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	starts, ends := 0, 0
	client.OnRequestStart = func() { starts++ }
	client.OnRequestEnd = func() { ends++ }

	_, err := client.FetchBuildings(context.Background(), Session{Token: "abc"})
	require.Error(t, err)
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, ends)
}

func TestFetchDevices_EscapesSearch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"code":200,"message":"Success","data":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.FetchDevices(context.Background(), Session{Token: "abc"}, 7, 100, "front door")
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "building=7")
	assert.Contains(t, gotQuery, "search=front+door")
}
