package repo

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*/*.sql
var migrations embed.FS

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// DialectFromDSN определяет СУБД по строке подключения.
func DialectFromDSN(dsn string) string {
	d := strings.TrimSpace(dsn)
	switch {
	case strings.HasPrefix(d, "postgres://"), strings.HasPrefix(d, "postgresql://"):
		return DialectPostgres
	case strings.Contains(d, "host=") && strings.Contains(d, "dbname="):
		return DialectPostgres
	default:
		return DialectSQLite
	}
}

// InitDB открывает соединение и применяет миграции.
func InitDB(dsn string, logger *zap.SugaredLogger) (*gorm.DB, error) {
	dialect := DialectFromDSN(dsn)

	var dial gorm.Dialector
	switch dialect {
	case DialectPostgres:
		dial = postgres.Open(dsn)
	default:
		// modernc.org/sqlite (без cgo) через gorm-диалектор
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: sqliteDSN(dsn)}
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	if err := Migrate(db, dialect, logger); err != nil {
		_ = Close(db)
		return nil, err
	}
	return db, nil
}

// Migrate применяет встроенные миграции goose для указанной СУБД.
func Migrate(db *gorm.DB, dialect string, logger *zap.SugaredLogger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}

	gooseDialect := "sqlite3"
	if dialect == DialectPostgres {
		gooseDialect = "postgres"
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{logger})
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(sqlDB, "migrations/"+dialect); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Close закрывает пул соединений.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping проверяет доступность БД.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// sqliteDSN включает внешние ключи и ожидание блокировок, если они не заданы явно.
func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = "chest.db"
	}
	var params []string
	if !strings.Contains(dsn, "foreign_keys") {
		params = append(params, "_pragma=foreign_keys(1)")
	}
	if !strings.Contains(dsn, "busy_timeout") {
		params = append(params, "_pragma=busy_timeout(5000)")
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// gooseLogger направляет вывод goose в zap.
type gooseLogger struct {
	s *zap.SugaredLogger
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.s.Fatalf(format, v...)
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.s.Infof(strings.TrimSpace(format), v...)
}
