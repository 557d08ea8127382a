package pgstore

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
	"github.com/preston-bernstein/twin-reveal-service/internal/logging"
	"github.com/preston-bernstein/twin-reveal-service/internal/store"
)

// NotifyChannel carries the id of each inserted guess.
const NotifyChannel = "gender_guess_changed"

const (
	listenerMinReconnect = 10 * time.Second
	listenerMaxReconnect = time.Minute
	listenerPingInterval = 90 * time.Second
)

// Store persists guesses in PostgreSQL and pushes changes with LISTEN/NOTIFY.
type Store struct {
	db     *gorm.DB
	dsn    string
	newID  func() string
	logger *slog.Logger
}

// Open connects, migrates the gender_guesses table and returns a Store.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(16)
	sqlDB.SetMaxIdleConns(8)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := db.WithContext(ctx).AutoMigrate(&GenderGuess{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate gender_guesses: %w", err)
	}
	return &Store{db: db, dsn: dsn, newID: uuid.NewString, logger: logger}, nil
}

func (s *Store) List(ctx context.Context) ([]guesses.Guess, error) {
	var rows []GenderGuess
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, store.LoadError(store.BackendPostgres, store.KindPersistence, err)
	}
	return guessesFromRows(rows), nil
}

func (s *Store) Create(ctx context.Context, in guesses.Input) (guesses.Guess, error) {
	row := rowFromGuess(in.WithID(s.newID()))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return tx.Exec("SELECT pg_notify(?, ?)", NotifyChannel, row.ID).Error
	})
	if err != nil {
		return guesses.Guess{}, store.SubmitError(store.BackendPostgres, store.KindPersistence, err)
	}
	return row.Guess(), nil
}

// Subscribe listens on NotifyChannel and re-lists after each notification.
// A nil notification means the listener reconnected and may have missed events.
func (s *Store) Subscribe(ctx context.Context, onChange func([]guesses.Guess)) error {
	listener := pq.NewListener(s.dsn, listenerMinReconnect, listenerMaxReconnect, s.listenerEvent)
	defer listener.Close()

	if err := listener.Listen(NotifyChannel); err != nil {
		return &store.Error{Op: store.OpSubscribe, Backend: store.BackendPostgres, Kind: store.KindPersistence, Err: err}
	}

	deliver := store.Monotonic(onChange)
	refresh := func() error {
		list, err := s.List(ctx)
		if err != nil {
			return err
		}
		deliver(list)
		return nil
	}
	if err := refresh(); err != nil {
		return err
	}

	ping := time.NewTicker(listenerPingInterval)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-listener.Notify:
			if err := refresh(); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		case <-ping.C:
			go func() {
				if err := listener.Ping(); err != nil {
					logging.Warn(s.logger, "postgres listener ping failed", slog.String(logging.FieldBackend, store.BackendPostgres), slog.Any("err", err))
				}
			}()
		}
	}
}

func (s *Store) listenerEvent(ev pq.ListenerEventType, err error) {
	if err == nil {
		return
	}
	logging.Warn(s.logger, "postgres listener event",
		slog.String(logging.FieldBackend, store.BackendPostgres),
		slog.String("event", listenerEventName(ev)),
		slog.Any("err", err),
	)
}

func listenerEventName(ev pq.ListenerEventType) string {
	switch ev {
	case pq.ListenerEventConnected:
		return "connected"
	case pq.ListenerEventDisconnected:
		return "disconnected"
	case pq.ListenerEventReconnected:
		return "reconnected"
	case pq.ListenerEventConnectionAttemptFailed:
		return "connection_attempt_failed"
	default:
		return "unknown"
	}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
