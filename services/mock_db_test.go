package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pqrssi-portal/models"
)

// newMockDB wraps sqlmock with GORM using the same settings as config.GormConfig.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 sqlDB,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			SkipDefaultTransaction: true,
			Logger:                 logger.Default.LogMode(logger.Silent),
		},
	)
	if err != nil {
		t.Fatalf("failed to create gorm db: %v", err)
	}
	return gormDB, mock
}

func verifyMock(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unfulfilled expectations: %v", err)
	}
}

type fakeCatalog struct {
	categories map[int]bool
	statuses   map[int]models.Status
	err        error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		categories: map[int]bool{1: true, 2: true},
		statuses: map[int]models.Status{
			1: {StatusID: 1, Name: "Radicada"},
			2: {StatusID: 2, Name: "En revisión"},
			3: {StatusID: 3, Name: "Resuelta"},
		},
	}
}

func (f *fakeCatalog) CategoryExists(_ context.Context, id int) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.categories[id], nil
}

func (f *fakeCatalog) StatusByID(_ context.Context, id int) (*models.Status, error) {
	if f.err != nil {
		return nil, f.err
	}
	st, ok := f.statuses[id]
	if !ok {
		return nil, ErrUnknownStatus
	}
	return &st, nil
}

type recordingNotifier struct {
	changes []StatusChange
	err     error
	sent    chan struct{}
}

func newRecordingNotifier(err error) *recordingNotifier {
	return &recordingNotifier{err: err, sent: make(chan struct{}, 1)}
}

func (n *recordingNotifier) StatusChanged(_ context.Context, change StatusChange) error {
	n.changes = append(n.changes, change)
	if n.sent != nil {
		n.sent <- struct{}{}
	}
	return n.err
}

// blockingNotifier holds StatusChanged until release is closed.
type blockingNotifier struct {
	release chan struct{}
	sent    chan StatusChange
}

func (n *blockingNotifier) StatusChanged(_ context.Context, change StatusChange) error {
	<-n.release
	n.sent <- change
	return nil
}
