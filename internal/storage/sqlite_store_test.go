package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denisok6893-rgb/renovation-advisor/internal/domain"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "leads.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

func sampleLead(id string, created time.Time) domain.Lead {
	sqft := 1800
	return domain.Lead{
		ID:             id,
		Address:        "12 Oak Lane",
		Step:           domain.StepAddress,
		Overrides:      domain.FormOverrides{SquareFootage: &sqft},
		Attributes:     domain.Attributes{YearBuilt: 1960, SquareFootage: 1800},
		EstimatedValue: 250000,
		RecordFound:    true,
		Record:         []byte(`{"yearBuilt":1960}`),
		Recommendations: []domain.Recommendation{
			{ID: "basement-finishing", Strategy: "Basement Finishing", CostEstimate: "$52,000 - $78,000", ROIEstimate: "1.8 - 2.6x investment", Score: 80},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestSQLiteStore_CreateGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateLead(ctx, sampleLead("lead-1", created)))

	got, err := s.GetLead(ctx, "lead-1")
	require.NoError(t, err)
	assert.Equal(t, "12 Oak Lane", got.Address)
	assert.Equal(t, domain.StepAddress, got.Step)
	require.NotNil(t, got.Overrides.SquareFootage)
	assert.Equal(t, 1800, *got.Overrides.SquareFootage)
	assert.Equal(t, 1960, got.Attributes.YearBuilt)
	assert.True(t, got.RecordFound)
	assert.JSONEq(t, `{"yearBuilt":1960}`, string(got.Record))
	require.Len(t, got.Recommendations, 1)
	assert.Equal(t, 80, got.Recommendations[0].Score)
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetLead(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_CorruptRowIsAnError(t *testing.T) {
	cases := map[string]string{
		"recommendations": `UPDATE leads SET recommendations_json = '[{"score":' WHERE id = ?`,
		"contact":         `UPDATE leads SET contact_json = 'oops' WHERE id = ?`,
		"created_at":      `UPDATE leads SET created_at = 'yesterday' WHERE id = ?`,
	}
	for name, stmt := range cases {
		t.Run(name, func(t *testing.T) {
			s := openTestStore(t)
			ctx := context.Background()
			require.NoError(t, s.CreateLead(ctx, sampleLead("lead-1", time.Now())))
			_, err := s.db.ExecContext(ctx, stmt, "lead-1")
			require.NoError(t, err)

			_, err = s.GetLead(ctx, "lead-1")
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrNotFound)
			assert.Contains(t, err.Error(), "lead-1")

			_, _, err = s.ListLeads(ctx, ListParams{})
			assert.Error(t, err)
		})
	}
}

func TestSQLiteStore_DuplicateIDFails(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	l := sampleLead("dup", time.Now())
	require.NoError(t, s.CreateLead(ctx, l))
	assert.Error(t, s.CreateLead(ctx, l))
}

func TestSQLiteStore_Update(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	l := sampleLead("lead-1", created)
	require.NoError(t, s.CreateLead(ctx, l))

	l.Step = domain.StepContact
	l.Contact = domain.Contact{Name: "Sam", Email: "sam@example.com"}
	l.UpdatedAt = created.Add(time.Hour)
	require.NoError(t, s.UpdateLead(ctx, l))

	got, err := s.GetLead(ctx, "lead-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepContact, got.Step)
	assert.Equal(t, "sam@example.com", got.Contact.Email)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.True(t, created.Add(time.Hour).Equal(got.UpdatedAt))

	missing := sampleLead("ghost", created)
	assert.ErrorIs(t, s.UpdateLead(ctx, missing), ErrNotFound)
}

func TestSQLiteStore_ListPagesNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		l := sampleLead(fmt.Sprintf("lead-%d", i), base.Add(time.Duration(i)*time.Minute))
		if i%2 == 0 {
			l.Step = domain.StepDetails
		}
		require.NoError(t, s.CreateLead(ctx, l))
	}

	n, err := s.CountLeads(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	page, total, err := s.ListLeads(ctx, ListParams{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "lead-3", page[0].ID)
	assert.Equal(t, "lead-2", page[1].ID)

	details, total, err := s.ListLeads(ctx, ListParams{Step: domain.StepDetails})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, details, 3)

	empty, total, err := s.ListLeads(ctx, ListParams{Offset: 50})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, empty)
}

func TestSQLiteStore_Delete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateLead(ctx, sampleLead("lead-1", time.Now())))

	ok, err := s.DeleteLead(ctx, "lead-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.DeleteLead(ctx, "lead-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadRecordFromFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "record.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"yearBuilt": 1960}`), 0o600))
	require.NoError(t, os.WriteFile(bad, []byte(`{"yearBuilt":`), 0o600))

	raw, err := LoadRecordFromFile(good)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "1960")

	_, err = LoadRecordFromFile(bad)
	assert.Error(t, err)

	_, err = LoadRecordFromFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
