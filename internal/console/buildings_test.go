package console

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStatus(t *testing.T) {
	armed := Device{ReactiveState: 0}
	disarmed := Device{ReactiveState: 1}

	tests := []struct {
		name    string
		devices []Device
		want    Status
	}{
		{"empty list", nil, NoDevices},
		{"all armed", []Device{armed, armed}, AllArmed},
		{"all disarmed", []Device{disarmed, disarmed}, AllDisarmed},
		{"mixed", []Device{armed, disarmed}, PartiallyArmed},
		{"single armed", []Device{armed}, AllArmed},
		{"single disarmed", []Device{disarmed}, AllDisarmed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStatus(tt.devices))
		})
	}
}

func TestEmptyDevicesMessage(t *testing.T) {
	assert.Equal(t, "No proevents found.", EmptyDevicesMessage(""))
	assert.Equal(t, "No proevents found.", EmptyDevicesMessage("   "))
	assert.Equal(t, "No proevents found matching search.", EmptyDevicesMessage("door"))
}

func TestSearchBuildings_CaseInsensitiveSubstring(t *testing.T) {
	b := NewBuildings(NewClient("http://127.0.0.1:1"))
	b.buildings = []Building{
		{ID: 1, Name: "North Tower"},
		{ID: 2, Name: "South Annex"},
		{ID: 3, Name: "towering heights"},
	}

	matched := b.SearchBuildings("TOWER")
	require.Len(t, matched, 2)
	assert.Equal(t, 1, matched[0].ID)
	assert.Equal(t, 3, matched[1].ID)

	assert.Len(t, b.SearchBuildings(""), 3)
	assert.Empty(t, b.SearchBuildings("warehouse"))
}

func TestEnsureBuildings_FetchesOnlyWhenCacheEmpty(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"code":200,"message":"Success","data":[{"id":1,"name":"North Tower","start_time":""}]}`))
	}))
	defer srv.Close()

	b := NewBuildings(NewClient(srv.URL))
	sess := Session{Token: "t"}

	require.NoError(t, b.EnsureBuildings(context.Background(), sess))
	require.NoError(t, b.EnsureBuildings(context.Background(), sess))
	assert.Equal(t, 1, calls)

	// Search over the warm cache is purely client-side.
	assert.Len(t, b.SearchBuildings("north"), 1)
	assert.Equal(t, 1, calls)
}

func TestListDevices_CachesUnfilteredResults(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"code":200,"message":"Success","data":[{"id":10,"name":"Door","building_id":1,"reactive_state":0,"is_ignored":false}]}`))
	}))
	defer srv.Close()

	b := NewBuildings(NewClient(srv.URL))
	sess := Session{Token: "t"}

	_, err := b.ListDevices(context.Background(), sess, 1, 100, "")
	require.NoError(t, err)
	_, err = b.ListDevices(context.Background(), sess, 1, 100, "")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	b.InvalidateDevices(1)
	_, err = b.ListDevices(context.Background(), sess, 1, 100, "")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestListDevices_SearchBypassesAndInvalidatesCache(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"code":200,"message":"Success","data":[]}`))
	}))
	defer srv.Close()

	b := NewBuildings(NewClient(srv.URL))
	sess := Session{Token: "t"}

	_, err := b.ListDevices(context.Background(), sess, 1, 100, "")
	require.NoError(t, err)
	_, err = b.ListDevices(context.Background(), sess, 1, 100, "door")
	require.NoError(t, err)
	// The search dropped the cached list, so the next unfiltered read
	// goes back to the server.
	_, err = b.ListDevices(context.Background(), sess, 1, 100, "")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestUpdateSchedule_ValidatesBeforeNetwork(t *testing.T) {
	b := NewBuildings(NewClient("http://127.0.0.1:1"))
	sess := Session{Token: "t"}

	err := b.UpdateSchedule(context.Background(), sess, 1, "")
	assert.EqualError(t, err, "start time is required")

	err = b.UpdateSchedule(context.Background(), sess, 1, "25:00")
	assert.EqualError(t, err, "start time must be in HH:MM format")

	err = b.UpdateSchedule(context.Background(), sess, 1, "9:30")
	assert.EqualError(t, err, "start time must be in HH:MM format")
}

func TestUpdateSchedule_CacheUpdatedOnlyAfterConfirm(t *testing.T) {
	fail := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"code":100002,"message":"Internal server error"}`))
			return
		}
		w.Write([]byte(`{"code":200,"message":"Success"}`))
	}))
	defer srv.Close()

	b := NewBuildings(NewClient(srv.URL))
	b.buildings = []Building{{ID: 1, Name: "North", StartTime: "08:00"}}
	sess := Session{Token: "t"}

	err := b.UpdateSchedule(context.Background(), sess, 1, "09:30")
	require.Error(t, err)
	assert.Equal(t, "08:00", b.buildings[0].StartTime)

	fail = false
	require.NoError(t, b.UpdateSchedule(context.Background(), sess, 1, "09:30"))
	assert.Equal(t, "09:30", b.buildings[0].StartTime)
}

func TestSaveIgnoreEdits_NoChangesShortCircuits(t *testing.T) {
	// Unreachable base URL proves no network call is attempted.
	b := NewBuildings(NewClient("http://127.0.0.1:1"))
	_, err := b.SaveIgnoreEdits(context.Background(), Session{Token: "t"}, 1, nil, 5)
	assert.ErrorIs(t, err, ErrNoChanges)
}

func TestSaveIgnoreEdits_SaveStageFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":103010,"message":"No ignore updates provided"}`))
	}))
	defer srv.Close()

	b := NewBuildings(NewClient(srv.URL))
	edits := []IgnoreEdit{{ItemID: 10, BuildingID: 1, DeviceID: 10, Ignore: true}}
	_, err := b.SaveIgnoreEdits(context.Background(), Session{Token: "t"}, 1, edits, 5)

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageSave, stageErr.Stage)
}

func TestSaveIgnoreEdits_ApplyStageFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/proevents/ignore/bulk" {
			w.Write([]byte(`{"code":200,"message":"Success"}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"code":103011,"message":"Could not determine panel state"}`))
	}))
	defer srv.Close()

	b := NewBuildings(NewClient(srv.URL))
	edits := []IgnoreEdit{{ItemID: 10, BuildingID: 1, DeviceID: 10, Ignore: true}}
	_, err := b.SaveIgnoreEdits(context.Background(), Session{Token: "t"}, 1, edits, 5)

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StageApply, stageErr.Stage)
}

func TestSaveIgnoreEdits_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/proevents/ignore/bulk" {
			w.Write([]byte(`{"code":200,"message":"Success"}`))
			return
		}
		w.Write([]byte(`{"code":200,"message":"Success","data":{"operation_id":"op-1","building_id":1,"updated":3}}`))
	}))
	defer srv.Close()

	b := NewBuildings(NewClient(srv.URL))
	edits := []IgnoreEdit{{ItemID: 10, BuildingID: 1, DeviceID: 10, Ignore: true}}
	result, err := b.SaveIgnoreEdits(context.Background(), Session{Token: "t"}, 1, edits, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, result.BuildingID)
	assert.Equal(t, 3, result.Updated)
	assert.Equal(t, "op-1", result.OperationID)
}
