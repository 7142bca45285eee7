package postgres

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")
	require.NoError(t, db.AutoMigrate(
		&entity.OTPCode{},
		&entity.Participant{},
		&entity.KilometerEntry{},
		&entity.Club{},
		&entity.Admin{},
		&entity.Event{},
		&entity.Photo{},
		&entity.RowingRegistration{},
	))
	return db
}
