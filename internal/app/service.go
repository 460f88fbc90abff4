// Package service provides the core service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/items/internal/adapters/repository"
	"github.com/okian/items/internal/domain/fault"
	"github.com/okian/items/internal/domain/model"
	"github.com/okian/items/pkg/logger"
	"github.com/okian/items/pkg/metrics"
)

// Store operation names used for metrics and logs.
const (
	opList   = "list"
	opInsert = "insert"
	opDelete = "delete"
	opPing   = "ping"
)

const defaultConnectTimeout = 10 * time.Second

// Service owns the single store handle shared by every handler.
type Service struct {
	mu sync.RWMutex

	store repository.Store

	// Mongo settings, used by Start when no store was injected.
	mongoURI        string
	mongoDatabase   string
	mongoCollection string
	connectTimeout  time.Duration

	operationTimeout time.Duration

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects the store; Start will not open one.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithMongo makes Start connect to MongoDB.
func WithMongo(uri, database, collection string) Option {
	return func(s *Service) {
		s.mongoURI = uri
		s.mongoDatabase = database
		s.mongoCollection = collection
	}
}

// WithConnectTimeout bounds the startup ping.
func WithConnectTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.connectTimeout = d
		}
	}
}

// WithOperationTimeout bounds each store operation. Zero disables it.
func WithOperationTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.operationTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Without WithStore or WithMongo the service
// keeps items in memory.
func New(opts ...Option) *Service {
	s := &Service{
		connectTimeout: defaultConnectTimeout,
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store if none was injected.
//
// A connection failure is logged and is not returned: the service keeps
// running and each request fails on its own until the store is reachable.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	switch {
	case s.store != nil:
		s.logger.Info(ctx, "using injected store")
	case s.mongoURI != "":
		s.store = s.openMongo(ctx)
	default:
		s.store = repository.NewMemoryStore()
		s.logger.Info(ctx, "using in-memory store")
	}

	s.started = true
	return nil
}

func (s *Service) openMongo(ctx context.Context) repository.Store {
	store, err := repository.OpenMongo(ctx, s.mongoURI,
		repository.WithDatabase(s.mongoDatabase),
		repository.WithCollection(s.mongoCollection),
	)
	if err != nil {
		s.logger.Error(ctx, "mongodb connection error", logger.Error(err))
		metrics.SetStoreUp(false)
		return repository.Unavailable(err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		s.logger.Error(ctx, "mongodb connection error", logger.Error(err), logger.String("database", store.Database()))
		metrics.SetStoreUp(false)
		return store
	}
	metrics.SetStoreUp(true)
	s.logger.Info(ctx, "mongodb connected", logger.String("database", store.Database()))
	return store
}

// Stop closes the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false
	if err := s.store.Close(ctx); err != nil {
		s.logger.Warn(ctx, "closing store failed", logger.Error(err))
		return err
	}
	s.logger.Info(ctx, "store closed")
	return nil
}

// ListItems returns every item, newest first.
func (s *Service) ListItems(ctx context.Context) ([]model.Item, error) {
	store, err := s.current(opList)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	items, err := store.List(ctx)
	s.observe(ctx, opList, start, err)
	if err != nil {
		return nil, err
	}
	metrics.RecordItemsListed(len(items))
	return items, nil
}

// CreateItem persists a new item.
func (s *Service) CreateItem(ctx context.Context, in model.NewItem) (model.Item, error) {
	if err := in.Validate(); err != nil {
		return model.Item{}, err
	}
	store, err := s.current(opInsert)
	if err != nil {
		return model.Item{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	item, err := store.Insert(ctx, in)
	s.observe(ctx, opInsert, start, err)
	if err != nil {
		return model.Item{}, err
	}
	metrics.RecordItemCreated()
	s.logger.Debug(ctx, "item created", logger.String("id", item.ID))
	return item, nil
}

// DeleteItem removes the item with the given id.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	store, err := s.current(opDelete)
	if err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	err = store.Delete(ctx, id)
	s.observe(ctx, opDelete, start, err)
	if err != nil {
		return err
	}
	metrics.RecordItemDeleted()
	s.logger.Debug(ctx, "item deleted", logger.String("id", id))
	return nil
}

// Ready pings the store.
func (s *Service) Ready(ctx context.Context) error {
	store, err := s.current(opPing)
	if err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	err = store.Ping(ctx)
	s.observe(ctx, opPing, start, err)
	metrics.SetStoreUp(err == nil)
	return err
}

func (s *Service) current(op string) (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started || s.store == nil {
		return nil, fault.New("service."+op, fault.KindConnection, ErrNotStarted)
	}
	return s.store, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.operationTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.operationTimeout)
}

// observe records latency and failure metrics for one store call.
func (s *Service) observe(ctx context.Context, op string, start time.Time, err error) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
	if err == nil {
		return
	}
	kind := fault.KindOf(err)
	metrics.RecordStoreError(op, kind.String())

	fields := []logger.Field{logger.String("operation", op), logger.String("kind", kind.String()), logger.Error(err)}
	switch kind {
	case fault.KindNotFound, fault.KindValidation:
		s.logger.Debug(ctx, "store rejected request", fields...)
	default:
		s.logger.Warn(ctx, "store operation failed", fields...)
	}
}
