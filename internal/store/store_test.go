package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/assessment/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResponse(slug string) *models.Response {
	score := 3.0
	return &models.Response{
		AssessmentSlug: slug,
		Answers: models.Answers{
			"ship": {
				Question: "Do you ship weekly?",
				Option:   &models.OptionPayload{ID: "yes", Text: "Yes", Tag: "ships", Value: "ships", Score: &score},
				Tags:     []string{"ships"},
				Score:    3,
			},
		},
		Lead:   &models.Lead{Name: "Ada", Email: "ada@example.com"},
		Result: "Elite",
	}
}

func TestNewStore(t *testing.T) {
	tests := []struct {
		name    string
		dbPath  string
		wantErr bool
	}{
		{name: "creates database successfully", dbPath: filepath.Join(t.TempDir(), "test.db")},
		{name: "handles in-memory database", dbPath: ":memory:"},
		{name: "creates parent directories if needed", dbPath: filepath.Join(t.TempDir(), "nested", "dir", "test.db")},
		{name: "returns error for unwritable path", dbPath: "/proc/nonexistent/deep/db.db", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(tt.dbPath)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer store.Close()

			version, err := store.GetLatestVersion()
			require.NoError(t, err)
			assert.Equal(t, len(migrations), version)
			assert.Equal(t, tt.dbPath, store.Path())
		})
	}
}

func TestSchemaIdempotency(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "responses.db")

	first, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, first.Create(context.Background(), sampleResponse("readiness")))
	require.NoError(t, first.Close())

	second, err := NewStore(dbPath)
	require.NoError(t, err)
	defer second.Close()

	count, err := second.CountForAssessment(context.Background(), "readiness")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreateAndFind(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	resp := sampleResponse("readiness")
	require.NoError(t, store.Create(ctx, resp))

	assert.NotZero(t, resp.ID)
	_, err := uuid.Parse(resp.UUID)
	assert.NoError(t, err, "generated uuid must be valid")
	assert.False(t, resp.CreatedAt.IsZero())

	found, err := store.FindByUUID(ctx, "readiness", resp.UUID)
	require.NoError(t, err)

	assert.Equal(t, resp.ID, found.ID)
	assert.Equal(t, resp.UUID, found.UUID)
	assert.Equal(t, "Elite", found.Result)
	assert.Equal(t, resp.Answers, found.Answers)
	assert.Equal(t, []string{"ships"}, found.Tags())
	assert.Equal(t, 3.0, found.Score())
	require.NotNil(t, found.Lead)
	assert.Equal(t, "Ada", found.Lead.Name)
	assert.Equal(t, "ada@example.com", found.Lead.Email)
	assert.WithinDuration(t, resp.CreatedAt, found.CreatedAt, time.Millisecond)
}

func TestCreateKeepsExplicitUUID(t *testing.T) {
	store := newTestStore(t)
	resp := sampleResponse("readiness")
	resp.UUID = "fixed-id"

	require.NoError(t, store.Create(context.Background(), resp))
	assert.Equal(t, "fixed-id", resp.UUID)

	dup := sampleResponse("readiness")
	dup.UUID = "fixed-id"
	assert.Error(t, store.Create(context.Background(), dup), "uuid is unique")
}

func TestCreateWithoutLead(t *testing.T) {
	store := newTestStore(t)
	resp := sampleResponse("readiness")
	resp.Lead = &models.Lead{Name: "  "}
	resp.Answers = nil

	require.NoError(t, store.Create(context.Background(), resp))

	found, err := store.FindByUUID(context.Background(), "readiness", resp.UUID)
	require.NoError(t, err)
	assert.Nil(t, found.Lead)
	assert.Empty(t, found.Answers)
	assert.Equal(t, []string{}, found.Tags())
}

func TestCreateRequiresSlug(t *testing.T) {
	store := newTestStore(t)
	err := store.Create(context.Background(), &models.Response{})
	assert.Error(t, err)
}

func TestFindByUUIDNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	resp := sampleResponse("readiness")
	require.NoError(t, store.Create(ctx, resp))

	tests := []struct {
		name string
		slug string
		id   string
	}{
		{name: "unknown uuid", slug: "readiness", id: "missing"},
		{name: "uuid under another assessment", slug: "other", id: resp.UUID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.FindByUUID(ctx, tt.slug, tt.id)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestListForAssessment(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		resp := sampleResponse("readiness")
		resp.Result = fmt.Sprintf("r%d", i)
		require.NoError(t, store.Create(ctx, resp))
	}
	require.NoError(t, store.Create(ctx, sampleResponse("other")))

	all, err := store.ListForAssessment(ctx, "readiness", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "r2", all[0].Result, "most recent first")

	limited, err := store.ListForAssessment(ctx, "readiness", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := store.ListForAssessment(ctx, "unknown", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCreateConcurrent(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "concurrent.db"))
	require.NoError(t, err)
	defer store.Close()

	const writers = 10
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.Create(context.Background(), sampleResponse("readiness"))
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	count, err := store.CountForAssessment(context.Background(), "readiness")
	require.NoError(t, err)
	assert.Equal(t, writers, count)
}
