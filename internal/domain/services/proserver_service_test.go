package services

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// fakeQueryService serves the built-in defaults without a database.
type fakeQueryService struct{}

func (f *fakeQueryService) GetQuery(name string) string        { return defaultQueries[name] }
func (f *fakeQueryService) GetDefaultQuery(name string) string { return defaultQueries[name] }
func (f *fakeQueryService) SetQuery(name, sql, desc string) error {
	return nil
}
func (f *fakeQueryService) DeleteQuery(name string) error            { return nil }
func (f *fakeQueryService) GetAllQueries() ([]QueryMetadata, error)  { return nil, nil }
func (f *fakeQueryService) GetQueryWithSQL(string) (*QueryDetail, error) {
	return nil, nil
}
func (f *fakeQueryService) ValidateQuerySyntax(string) (bool, string) { return true, "" }

func mockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return gdb, mock
}

func TestGetDistinctBuildings(t *testing.T) {
	gdb, mock := mockGorm(t)
	s := NewProServerService(gdb, &fakeQueryService{})

	mock.ExpectQuery(regexp.QuoteMeta("SELECT Building_PRK, bldBuildingName_TXT")).
		WillReturnRows(sqlmock.NewRows([]string{"Building_PRK", "bldBuildingName_TXT"}).
			AddRow(1, "North Tower").
			AddRow(2, "South Annex"))

	buildings, err := s.GetDistinctBuildings()
	require.NoError(t, err)
	require.Len(t, buildings, 2)
	assert.Equal(t, 1, buildings[0].ID)
	assert.Equal(t, "North Tower", buildings[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllLiveBuildingArmStates(t *testing.T) {
	gdb, mock := mockGorm(t)
	s := NewProServerService(gdb, &fakeQueryService{})

	armed := "AreaArmingStates.1"
	disarmed := "  AreaArmingStates.2  "
	mock.ExpectQuery(regexp.QuoteMeta("SELECT dvcBuilding_FRK, dvcCurrentState_TXT")).
		WillReturnRows(sqlmock.NewRows([]string{"dvcBuilding_FRK", "dvcCurrentState_TXT"}).
			AddRow(1, armed).
			AddRow(2, disarmed).
			AddRow(3, nil).
			AddRow(nil, armed).
			AddRow(0, armed))

	states, err := s.GetAllLiveBuildingArmStates()
	require.NoError(t, err)

	// Rows with a nil or zero building id are skipped; a nil state reads
	// as armed since only AreaArmingStates.2 means disarmed.
	assert.Equal(t, map[int]bool{1: true, 2: false, 3: true}, states)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetProEventReactiveStateBulk(t *testing.T) {
	gdb, mock := mockGorm(t)
	s := NewProServerService(gdb, &fakeQueryService{})

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE ProEvent_TBL SET pevReactive_FRK = ? WHERE ProEvent_PRK = ?")).
		WithArgs(1, 10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE ProEvent_TBL SET pevReactive_FRK = ? WHERE ProEvent_PRK = ?")).
		WithArgs(0, 11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.SetProEventReactiveStateBulk([]TargetState{
		{ID: 10, State: 1},
		{ID: 11, State: 0},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetProEventReactiveStateBulk_EmptyIsNoOp(t *testing.T) {
	gdb, mock := mockGorm(t)
	s := NewProServerService(gdb, &fakeQueryService{})

	require.NoError(t, s.SetProEventReactiveStateBulk(nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBindNamed(t *testing.T) {
	got := bindNamed("SELECT x FROM t WHERE a = :building_id OR b = :building_id")
	assert.Equal(t, "SELECT x FROM t WHERE a = @building_id OR b = @building_id", got)
}
