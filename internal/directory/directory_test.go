package directory

import (
	"context"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/new-arrivals-chi/arrivals/internal/filter"
	"github.com/new-arrivals-chi/arrivals/internal/testutil"
)

func openTestStore(t *testing.T) *SQLStore {
	t.Helper()
	ctx := context.Background()
	store, err := Open(ctx, Config{Driver: "sqlite", DSN: ":memory:"}, testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))
	return store
}

func seedTestStore(t *testing.T, store Store) []*Resource {
	t.Helper()
	f, err := os.Open("testdata/seed.yaml")
	require.NoError(t, err)
	defer f.Close()

	resources, err := LoadSeed(f)
	require.NoError(t, err)
	n, err := Seed(context.Background(), store, resources)
	require.NoError(t, err)
	require.Equal(t, len(resources), n)
	return resources
}

// =============================================================================
// Resource
// =============================================================================

func TestResource_Field(t *testing.T) {
	r := &Resource{
		ID:        "r1",
		Name:      "Pilsen Food Pantry",
		ZipCode:   "60608",
		Supplies:  []string{"Food", "Clothing"},
		Languages: []string{"Spanish"},
		Status:    StatusActive,
	}

	tests := []struct {
		field string
		want  string
	}{
		{"name", "Pilsen Food Pantry"},
		{"organization", "Pilsen Food Pantry"},
		{"zip_code", "60608"},
		{"supplies", "Food, Clothing"},
		{"languages", "Spanish"},
		{"status", "ACTIVE"},
		{"unknown", ""},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Field(tt.field))
		})
	}
}

func TestRows_FeedTokenFilter(t *testing.T) {
	p, ok := filter.FindProfile(filter.DefaultProfiles(), "supplies")
	require.True(t, ok)

	resources := []*Resource{
		{ID: "a", Name: "Pantry", Supplies: []string{"Food", "Clothing"}, Neighborhood: "Pilsen", Languages: []string{"Spanish"}},
		{ID: "b", Name: "Closet", Supplies: []string{"Clothing"}, Neighborhood: "Uptown"},
	}
	rows := Rows(p, resources)
	require.Len(t, rows, 2)
	assert.Equal(t, "Food, Clothing", rows[0].Cells[0])
	assert.Equal(t, "Spanish", rows[0].Cells[2])

	f := p.Filter()
	assert.Equal(t, []bool{true, false}, f.Apply(filter.Criteria{"food"}, rows))
	assert.Equal(t, []bool{true, true}, f.Apply(filter.Criteria{"cloth"}, rows))
}

func TestRows_ProfileDelimiter(t *testing.T) {
	p, ok := filter.FindProfile(filter.DefaultProfiles(), "supplies")
	require.True(t, ok)
	p.Delimiter = "; "

	resources := []*Resource{
		{ID: "a", Name: "Pantry", Supplies: []string{"Food", "Clothing"}, Languages: []string{"Spanish", "English"}},
		{ID: "b", Name: "Closet", Supplies: []string{"Hygiene products"}},
	}
	rows := Rows(p, resources)
	assert.Equal(t, "Food; Clothing", rows[0].Cells[0])
	assert.Equal(t, "Spanish; English", rows[0].Cells[2])
	assert.Equal(t, "Food, Clothing", resources[0].Field("supplies"), "Field keeps the default delimiter")

	assert.Equal(t, []string{"Clothing", "Food", "Hygiene products"}, p.Options(0, rows))

	f := p.Filter()
	assert.Equal(t, []bool{true, false}, f.Apply(filter.Criteria{"Clothing"}, rows))
	assert.Equal(t, []bool{false, true}, f.Apply(filter.Criteria{"hygiene"}, rows))
	assert.Equal(t, []bool{true, false}, f.Apply(filter.Criteria{"", "", "English"}, rows))
}

func TestRows_TrimsCells(t *testing.T) {
	p, ok := filter.FindProfile(filter.DefaultProfiles(), "health")
	require.True(t, ok)

	resources := []*Resource{
		{ID: "a", Name: "Clinic", StreetAddress: "1 N State St ", ZipCode: " 60602", City: "Chicago ", State: "IL"},
		{ID: "b", Name: "Annex", ZipCode: "60661", City: "Chicago", State: "IL"},
	}
	rows := Rows(p, resources)
	assert.Equal(t, [filter.Columns]string{"1 N State St", "60602", "Chicago", "IL"}, rows[0].Cells)

	opts := p.Options(1, rows)
	require.Equal(t, []string{"60602", "60661"}, opts)
	assert.Equal(t, []bool{true, false}, p.Filter().Apply(filter.Criteria{"", opts[0]}, rows))
}

func TestStatus(t *testing.T) {
	st, err := ParseStatus(" hidden ")
	require.NoError(t, err)
	assert.Equal(t, StatusHidden, st)

	_, err = ParseStatus("VISIBLE")
	assert.Error(t, err)

	assert.Equal(t, StatusSuspended, StatusActive.Toggled())
	assert.Equal(t, StatusActive, StatusSuspended.Toggled())
	assert.Equal(t, StatusActive, StatusHidden.Toggled())
}

// =============================================================================
// Seed
// =============================================================================

func TestLoadSeed(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    int
		wantErr string
	}{
		{name: "empty", yaml: "", want: 0},
		{name: "defaults status", yaml: "resources:\n  - name: A\n", want: 1},
		{name: "missing name", yaml: "resources:\n  - phone: '1'\n", wantErr: "name is required"},
		{name: "bad status", yaml: "resources:\n  - name: A\n    status: gone\n", wantErr: "unknown status"},
		{name: "unknown field", yaml: "resources:\n  - name: A\n    color: red\n", wantErr: "color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadSeed(strings.NewReader(tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
			for _, r := range got {
				assert.Equal(t, StatusActive, r.Status)
			}
		})
	}
}

// =============================================================================
// SQLite store
// =============================================================================

func TestSQLStore_SQLite(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	seeded := seedTestStore(t, store)

	all, err := store.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Alivio Medical Center", all[0].Name)
	assert.Equal(t, []string{"Food", "Clothing"}, all[1].Supplies)
	assert.False(t, all[0].CreatedAt.IsZero())

	active, err := store.List(ctx, ListOptions{Status: StatusActive})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	got, err := store.Get(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "60608", got.ZipCode)
	assert.Equal(t, []string{"English", "Spanish"}, got.Languages)
}

func TestSQLStore_UpsertKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	r := &Resource{Name: "Clinic", City: "Chicago"}
	require.NoError(t, store.Upsert(ctx, r))
	require.NotEmpty(t, r.ID)
	assert.Equal(t, StatusActive, r.Status)

	first, err := store.Get(ctx, r.ID)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	r.City = "Evanston"
	r.CreatedAt = time.Time{}
	require.NoError(t, store.Upsert(ctx, r))

	second, err := store.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Evanston", second.City)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))

	all, err := store.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLStore_ToggleStatus(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	seeded := seedTestStore(t, store)
	id := seeded[0].ID

	st, err := store.ToggleStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusSuspended, st)

	st, err = store.ToggleStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, st)

	_, err = store.ToggleStatus(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_ToggleStatusIsLogged(t *testing.T) {
	ctx := context.Background()
	logger, logs := testutil.NewRecorder(t)
	store, err := Open(ctx, Config{Driver: "sqlite", DSN: ":memory:"}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))
	id := seedTestStore(t, store)[0].ID

	_, err = store.ToggleStatus(ctx, id)
	require.NoError(t, err)

	e, ok := logs.Find(slog.LevelInfo, "resource status changed")
	require.True(t, ok)
	assert.Equal(t, id, e.Attrs["id"])
	assert.Equal(t, "ACTIVE", e.Attrs["from"])
	assert.Equal(t, "SUSPENDED", e.Attrs["to"])
}

func TestSQLStore_GetNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_NotOpened(t *testing.T) {
	store := &SQLStore{}
	ctx := context.Background()

	assert.Error(t, store.Migrate(ctx))
	_, err := store.List(ctx, ListOptions{})
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}

// =============================================================================
// Postgres dialect (sqlmock)
// =============================================================================

func TestDialect_Rebind(t *testing.T) {
	q := "UPDATE t SET a = ?, b = ? WHERE id = ?"
	assert.Equal(t, q, DialectSQLite.rebind(q))
	assert.Equal(t, "UPDATE t SET a = $1, b = $2 WHERE id = $3", DialectPostgres.rebind(q))
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"", DialectSQLite, false},
		{"sqlite3", DialectSQLite, false},
		{"Postgres", DialectPostgres, false},
		{"pgx", DialectPostgres, false},
		{"mysql", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDialect(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func resourceRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "phone", "street_address", "zip_code", "city", "state", "neighborhood",
		"supplies", "hours", "languages", "status", "created_at", "updated_at",
	}).AddRow("r1", "Pantry", "", "", "60608", "Chicago", "IL", "Pilsen",
		"Food, Clothing", "Sat", "", "ACTIVE", now, now)
}

func TestSQLStore_PostgresList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	store := NewSQLStore(db, DialectPostgres, testutil.NewTestLogger(t))
	defer store.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM resources WHERE status = $1 ORDER BY name, id")).
		WithArgs("ACTIVE").
		WillReturnRows(resourceRows(now))

	got, err := store.List(context.Background(), ListOptions{Status: StatusActive})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Food", "Clothing"}, got[0].Supplies)
	assert.Nil(t, got[0].Languages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_PostgresToggle(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		want      Status
		wantErr   error
	}{
		{
			name: "suspends active",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM resources WHERE id = $1")).
					WithArgs("r1").
					WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("ACTIVE"))
				mock.ExpectExec(regexp.QuoteMeta("UPDATE resources SET status = $1, updated_at = $2 WHERE id = $3")).
					WithArgs("SUSPENDED", sqlmock.AnyArg(), "r1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			want: StatusSuspended,
		},
		{
			name: "missing resource",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM resources WHERE id = $1")).
					WithArgs("r1").
					WillReturnRows(sqlmock.NewRows([]string{"status"}))
				mock.ExpectRollback()
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			store := NewSQLStore(db, DialectPostgres, nil)

			tt.setupMock(mock)

			got, err := store.ToggleStatus(context.Background(), "r1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
