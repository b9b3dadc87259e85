package console

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedEditor(t *testing.T, sql string) *QueryEditor {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := json.Marshal(map[string]interface{}{
			"code":    200,
			"message": "Success",
			"data": map[string]interface{}{
				"query_name":  "panel_devices",
				"query_sql":   sql,
				"description": "test",
			},
		})
		require.NoError(t, err)
		w.Write(body)
	}))
	t.Cleanup(srv.Close)

	editor := NewQueryEditor(NewClient(srv.URL), "panel_devices")
	require.NoError(t, editor.Load(context.Background(), Session{Token: "t"}))
	return editor
}

func TestQueryEditor_BasicSubstitution(t *testing.T) {
	editor := loadedEditor(t, "SELECT * FROM Building_TBL WHERE dvcDeviceType_FRK = 5")
	editor.SwitchMode(ModeBasic)

	assert.Equal(t, "5", editor.DeviceType)
	assert.Equal(t, "Building_TBL", editor.SourceTable)

	editor.SetBasicFields("9", "Site_TBL")
	assert.Equal(t, "SELECT * FROM Site_TBL WHERE dvcDeviceType_FRK = 9", editor.BuildEffectiveSQL())
}

func TestQueryEditor_BasicSubstitutionReplacesAllOccurrences(t *testing.T) {
	editor := loadedEditor(t,
		"SELECT * FROM Device_TBL WHERE dvcDeviceType_FRK = 5 UNION SELECT * FROM Device_TBL WHERE dvcDeviceType_FRK = 5")
	editor.SwitchMode(ModeBasic)
	editor.SetBasicFields("9", "Panel_TBL")

	assert.Equal(t,
		"SELECT * FROM Panel_TBL WHERE dvcDeviceType_FRK = 9 UNION SELECT * FROM Panel_TBL WHERE dvcDeviceType_FRK = 9",
		editor.BuildEffectiveSQL())
}

func TestQueryEditor_AdvancedModeIsIdentity(t *testing.T) {
	editor := loadedEditor(t, "SELECT * FROM Building_TBL")
	raw := "SELECT a, b FROM X_TBL  -- whatever the operator typed\nWHERE a > 1"
	editor.SetSQL(raw)
	assert.Equal(t, raw, editor.BuildEffectiveSQL())
}

func TestQueryEditor_UnmatchedPatternIsNoOp(t *testing.T) {
	editor := loadedEditor(t, "SELECT Building_PRK FROM Building_TBL")
	editor.SwitchMode(ModeBasic)

	assert.Empty(t, editor.DeviceType)
	editor.SetBasicFields("42", "")
	// No device-type clause exists, so the field silently has no effect.
	assert.Equal(t, "SELECT Building_PRK FROM Building_TBL", editor.BuildEffectiveSQL())
	assert.Contains(t, editor.MissingFields(), "device type")
	assert.NotContains(t, editor.MissingFields(), "source table")
}

func TestQueryEditor_SwitchModeRederivesFields(t *testing.T) {
	editor := loadedEditor(t, "SELECT * FROM Device_TBL WHERE dvcDeviceType_FRK = 138")
	editor.SwitchMode(ModeBasic)
	editor.SetBasicFields("7", "Other_TBL")
	editor.SwitchMode(ModeAdvanced)
	assert.Equal(t, "SELECT * FROM Other_TBL WHERE dvcDeviceType_FRK = 7", editor.BuildEffectiveSQL())

	// Back to basic: fields are re-derived from the text, never stale.
	editor.SwitchMode(ModeBasic)
	assert.Equal(t, "138", editor.DeviceType)
	assert.Equal(t, "Device_TBL", editor.SourceTable)
}

func TestQueryEditor_ValidateRejectsNonSelect(t *testing.T) {
	editor := loadedEditor(t, "SELECT * FROM Building_TBL")
	assert.NoError(t, editor.Validate())

	editor.SetSQL("  DELETE FROM Building_TBL")
	assert.ErrorIs(t, editor.Validate(), ErrValidation)

	editor.SetSQL("\n  select 1")
	assert.NoError(t, editor.Validate())
}

func TestQueryEditor_DiscardRestoresLoadedText(t *testing.T) {
	editor := loadedEditor(t, "SELECT * FROM Building_TBL")
	editor.SetSQL("SELECT * FROM Other_TBL")
	require.Equal(t, Editing, editor.State())

	editor.Discard()
	assert.Equal(t, Discarded, editor.State())
	assert.Equal(t, "SELECT * FROM Building_TBL", editor.BuildEffectiveSQL())
}

func TestQueryTemplate_CustomizedFlag(t *testing.T) {
	updated := "2026-08-30T10:00:00Z"
	assert.False(t, QueryTemplate{}.Customized())
	assert.True(t, QueryTemplate{UpdatedAt: &updated}.Customized())
}
