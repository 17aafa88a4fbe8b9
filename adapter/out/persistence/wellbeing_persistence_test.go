package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"wellbeing_server/core/domain"
	"wellbeing_server/infra/database"
	"wellbeing_server/pkg/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	return newTestDBAt(t, "")
}

func newTestDBAt(t *testing.T, dsn string) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewSQLite(ctx, dsn)
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func createEmployee(t *testing.T, repo *EmployeeAdapter, first, last string) *domain.Employee {
	t.Helper()
	e, err := repo.Create(context.Background(), &domain.NewEmployee{
		FirstName: first,
		LastName:  last,
		BirthDate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return e
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestSchemaFor_Dialects(t *testing.T) {
	pg := schemaFor("pgx")
	lite := schemaFor("sqlite")

	if len(pg) != len(lite) {
		t.Fatalf("statement count differs: %d vs %d", len(pg), len(lite))
	}
	if got := pg[0]; !strings.Contains(got, "BIGSERIAL") || !strings.Contains(got, "TIMESTAMPTZ") {
		t.Errorf("postgres employees DDL = %s", got)
	}
	if got := lite[0]; !strings.Contains(got, "AUTOINCREMENT") || strings.Contains(got, "{{") {
		t.Errorf("sqlite employees DDL = %s", got)
	}
}

func TestEmployeeAdapter_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewEmployeeAdapter(newTestDB(t))

	alice := createEmployee(t, repo, "Alice", "Martin")
	createEmployee(t, repo, "Bob", "Durand")

	got, err := repo.GetByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.FullName() != "Alice Martin" || got.TotalWordsCount != 0 {
		t.Errorf("GetByID() = %+v", got)
	}
	if got.BirthDate.Year() != 1990 {
		t.Errorf("BirthDate = %v, want 1990", got.BirthDate)
	}

	if _, err := repo.GetByID(ctx, 9999); !errors.Is(err, domain.ErrEmployeeNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrEmployeeNotFound", err)
	}

	list, total, err := repo.List(ctx, 1, 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 2 || len(list) != 1 || list[0].FirstName != "Bob" {
		t.Errorf("List(1,1) = %d items, total %d", len(list), total)
	}
}

func TestEmployeeAdapter_GetOrCreateByName(t *testing.T) {
	ctx := context.Background()
	repo := NewEmployeeAdapter(newTestDB(t))
	input := &domain.NewEmployee{FirstName: "Utilisateur", LastName: "Test", BirthDate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)}

	first, created, err := repo.GetOrCreateByName(ctx, input)
	if err != nil || !created {
		t.Fatalf("first GetOrCreateByName() created = %v, err = %v", created, err)
	}
	second, created, err := repo.GetOrCreateByName(ctx, input)
	if err != nil || created {
		t.Fatalf("second GetOrCreateByName() created = %v, err = %v", created, err)
	}
	if first.ID != second.ID {
		t.Errorf("ids differ: %d vs %d", first.ID, second.ID)
	}
}

func TestThemeAdapter_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewThemeAdapter(newTestDB(t))

	th, created, err := repo.GetOrCreate(ctx, "stress", "Tension")
	if err != nil || !created {
		t.Fatalf("GetOrCreate() created = %v, err = %v", created, err)
	}
	again, created, err := repo.GetOrCreate(ctx, "stress", "autre")
	if err != nil || created {
		t.Fatalf("GetOrCreate(dup) created = %v, err = %v", created, err)
	}
	if again.ID != th.ID || again.Description != "Tension" {
		t.Errorf("GetOrCreate(dup) = %+v", again)
	}

	if _, _, err := repo.GetOrCreate(ctx, "", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("GetOrCreate(empty) error = %v", err)
	}

	n, err := repo.Count(ctx)
	if err != nil || n != 1 {
		t.Errorf("Count() = %d, %v", n, err)
	}
}

func TestStatsAdapter_ApplyStats(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	employees := NewEmployeeAdapter(db)
	themes := NewThemeAdapter(db)
	stats := NewStatsAdapter(db)

	e := createEmployee(t, employees, "Alice", "Martin")
	stress, _, _ := themes.GetOrCreate(ctx, "stress", "")
	conflit, _, _ := themes.GetOrCreate(ctx, "conflit", "")

	now := time.Now()
	deltas := []*domain.StatsDelta{
		{EmployeeID: e.ID, TokenCount: 5, ViolentWords: []string{"idiot", "idiot"}, ThemeIDs: []int64{stress.ID}, At: now},
		{EmployeeID: e.ID, TokenCount: 3, ViolentWords: []string{"nul"}, ThemeIDs: []int64{stress.ID, conflit.ID}, At: now.Add(time.Second)},
	}
	for _, d := range deltas {
		if err := stats.ApplyStats(ctx, d); err != nil {
			t.Fatalf("ApplyStats() error = %v", err)
		}
	}

	got, _ := employees.GetByID(ctx, e.ID)
	if got.TotalWordsCount != 8 || got.ViolentWordsCount != 3 {
		t.Errorf("counters = %d/%d, want 8/3", got.TotalWordsCount, got.ViolentWordsCount)
	}

	words, err := employees.RecentViolentWords(ctx, e.ID, 10)
	if err != nil {
		t.Fatalf("RecentViolentWords() error = %v", err)
	}
	if len(words) != 3 || words[0].Word != "nul" {
		t.Errorf("RecentViolentWords() = %d words, first %q", len(words), words[0].Word)
	}

	counters, err := employees.ThemeCounters(ctx, e.ID)
	if err != nil {
		t.Fatalf("ThemeCounters() error = %v", err)
	}
	if len(counters) != 2 || counters[0].ThemeName != "stress" || counters[0].Count != 2 || counters[1].Count != 1 {
		t.Errorf("ThemeCounters() = %+v", counters)
	}
}

func TestStatsAdapter_ApplyStats_UnknownEmployee(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	stats := NewStatsAdapter(db)

	err := stats.ApplyStats(ctx, &domain.StatsDelta{EmployeeID: 42, TokenCount: 3, ViolentWords: []string{"idiot"}, At: time.Now()})
	if !errors.Is(err, domain.ErrEmployeeNotFound) {
		t.Fatalf("ApplyStats() error = %v, want ErrEmployeeNotFound", err)
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM violent_word_occurrences`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("occurrences persisted = %d, want 0", n)
	}
}

func TestStatsAdapter_ConcurrentIncrements(t *testing.T) {
	tests := []struct {
		name string
		dsn  func(t *testing.T) string
	}{
		{"memory", func(*testing.T) string { return "" }},
		{"file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "wellbeing.db") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			db := newTestDBAt(t, tt.dsn(t))
			employees := NewEmployeeAdapter(db)
			themes := NewThemeAdapter(db)
			stats := NewStatsAdapter(db)
			e := createEmployee(t, employees, "Alice", "Martin")
			stress, _, err := themes.GetOrCreate(ctx, "stress", "")
			if err != nil {
				t.Fatal(err)
			}

			const workers = 20
			var wg sync.WaitGroup
			errs := make(chan error, workers)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					errs <- stats.ApplyStats(ctx, &domain.StatsDelta{
						EmployeeID:   e.ID,
						TokenCount:   4,
						ViolentWords: []string{"idiot"},
						ThemeIDs:     []int64{stress.ID},
						At:           time.Now(),
					})
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				if err != nil {
					t.Fatalf("ApplyStats() error = %v", err)
				}
			}

			got, _ := employees.GetByID(ctx, e.ID)
			if got.TotalWordsCount != 4*workers || got.ViolentWordsCount != workers {
				t.Errorf("counters = %d/%d, want %d/%d", got.TotalWordsCount, got.ViolentWordsCount, 4*workers, workers)
			}

			var occurrences int64
			if err := db.GetContext(ctx, &occurrences, db.Rebind(`SELECT COUNT(*) FROM violent_word_occurrences WHERE employee_id = ?`), e.ID); err != nil {
				t.Fatal(err)
			}
			if occurrences != got.ViolentWordsCount {
				t.Errorf("occurrence rows = %d, violent_words_count = %d", occurrences, got.ViolentWordsCount)
			}

			counters, err := employees.ThemeCounters(ctx, e.ID)
			if err != nil {
				t.Fatal(err)
			}
			if len(counters) != 1 || counters[0].Count != workers {
				t.Errorf("ThemeCounters() = %+v, want one counter at %d", counters, workers)
			}
		})
	}
}

func TestStatsAdapter_ResetAll(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	employees := NewEmployeeAdapter(db)
	themes := NewThemeAdapter(db)
	stats := NewStatsAdapter(db)

	a := createEmployee(t, employees, "Alice", "Martin")
	createEmployee(t, employees, "Bob", "Durand")
	th, _, _ := themes.GetOrCreate(ctx, "stress", "")
	if err := stats.ApplyStats(ctx, &domain.StatsDelta{EmployeeID: a.ID, TokenCount: 6, ViolentWords: []string{"idiot"}, ThemeIDs: []int64{th.ID}, At: time.Now()}); err != nil {
		t.Fatal(err)
	}

	affected, err := stats.ResetAll(ctx)
	if err != nil {
		t.Fatalf("ResetAll() error = %v", err)
	}
	if affected != 2 {
		t.Errorf("ResetAll() = %d, want 2", affected)
	}

	got, _ := employees.GetByID(ctx, a.ID)
	if got.TotalWordsCount != 0 || got.ViolentWordsCount != 0 {
		t.Errorf("counters after reset = %d/%d", got.TotalWordsCount, got.ViolentWordsCount)
	}
	words, _ := employees.RecentViolentWords(ctx, a.ID, 10)
	if len(words) != 0 {
		t.Errorf("violent words after reset = %d", len(words))
	}
	counters, _ := employees.ThemeCounters(ctx, a.ID)
	if len(counters) != 1 || counters[0].Count != 1 {
		t.Errorf("theme counters after reset = %+v", counters)
	}
}

type countingThemes struct {
	*ThemeAdapter
	lists int
}

func (c *countingThemes) List(ctx context.Context) ([]*domain.PsychologicalTheme, error) {
	c.lists++
	return c.ThemeAdapter.List(ctx)
}

func TestCachedThemeAdapter(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	delegate := &countingThemes{ThemeAdapter: NewThemeAdapter(newTestDB(t))}
	cached := NewCachedThemeAdapter(delegate, cache.NewRedisCache(client), time.Minute)

	if _, _, err := cached.GetOrCreate(ctx, "stress", ""); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		list, err := cached.List(ctx)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(list) != 1 || list[0].Name != "stress" {
			t.Fatalf("List() = %+v", list)
		}
	}
	if delegate.lists != 1 {
		t.Errorf("delegate List calls = %d, want 1", delegate.lists)
	}

	if _, created, _ := cached.GetOrCreate(ctx, "conflit", ""); !created {
		t.Fatal("expected conflit to be created")
	}
	if mr.Exists(themeRegistryKey) {
		t.Error("registry key should be invalidated after create")
	}

	list, _ := cached.List(ctx)
	if len(list) != 2 || delegate.lists != 2 {
		t.Errorf("List() after invalidation = %d themes, %d delegate calls", len(list), delegate.lists)
	}
}
