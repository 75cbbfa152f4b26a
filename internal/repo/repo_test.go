package repo

import (
	"Chest/internal/model"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// newTestDB открывает SQLite (modernc.org/sqlite) во временном каталоге и применяет миграции
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "test.db"), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("failed to init sqlite (modernc): %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func mkPartner(t *testing.T, db *gorm.DB, owner, name string, visible bool) model.Partner {
	t.Helper()
	p := model.Partner{ID: uuid.NewString(), OwnerID: owner, Name: name, Color: "#000000", IsVisible: visible}
	require.NoError(t, NewPartnerRepository(db).Create(context.Background(), &p))
	return p
}

func mkEvent(t *testing.T, db *gorm.DB, owner string, date time.Time, partnerIDs ...string) model.Event {
	t.Helper()
	ctx := context.Background()
	r := NewEventRepository(db)
	e := model.Event{
		ID:        uuid.NewString(),
		OwnerID:   owner,
		Date:      model.DateOnly(date),
		Intensity: 3,
		TimeOfDay: model.TimeOfDayDay,
	}
	require.NoError(t, r.Create(ctx, &e))
	require.NoError(t, r.ReplacePartners(ctx, e.ID, partnerIDs))
	return e
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
