package service

import (
	"Chest/internal/model"
	"Chest/internal/repo"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fixture собирает сервисы поверх настоящей SQLite во временном каталоге
type fixture struct {
	db       *gorm.DB
	partners *PartnerService
	profiles *ProfileService
	events   *EventService
	shares   *ShareService
	accounts *AccountService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zap.NewNop().Sugar()
	db, err := repo.InitDB(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close(db) })

	tx := repo.NewTxManager(db)
	partnerRepo := repo.NewPartnerRepository(db)
	profileRepo := repo.NewProfileRepository(db)
	eventRepo := repo.NewEventRepository(db)

	partners := NewPartnerService(partnerRepo, profileRepo, tx, log)
	profiles := NewProfileService(profileRepo, partners, tx, log)
	return &fixture{
		db:       db,
		partners: partners,
		profiles: profiles,
		events:   NewEventService(eventRepo, partnerRepo, profiles, tx, log),
		shares:   NewShareService(repo.NewShareLinkRepository(db), eventRepo, tx, log),
		accounts: NewAccountService(repo.NewAccountRepository(db), tx, log),
	}
}

func ptr[T any](v T) *T { return &v }

func (f *fixture) partner(t *testing.T, owner, name string, in PartnerInput) PartnerView {
	t.Helper()
	in.Name = name
	p, err := f.partners.Create(context.Background(), owner, in)
	require.NoError(t, err)
	return *p
}

func (f *fixture) event(t *testing.T, owner string, date time.Time, in EventInput) model.Event {
	t.Helper()
	in.Date = date
	if in.Intensity == 0 {
		in.Intensity = 3
	}
	if in.TimeOfDay == "" {
		in.TimeOfDay = model.TimeOfDayDay
	}
	e, err := f.events.Create(context.Background(), owner, in)
	require.NoError(t, err)
	return *e
}

func (f *fixture) linkCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.EventPartner{}).Count(&n).Error)
	return n
}

func ids(events []model.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
