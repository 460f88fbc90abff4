package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	mongooptions "go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/okian/items/internal/domain/fault"
	"github.com/okian/items/internal/domain/model"
)

// documentValidationFailure is the server code for a write rejected by a
// collection validator.
const documentValidationFailure = 121

// itemDocument is the BSON shape of an item.
type itemDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        *string            `bson:"name,omitempty"`
	Description *string            `bson:"description,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d itemDocument) item() model.Item {
	return model.Item{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   model.Timestamp(d.CreatedAt),
	}
}

// MongoStore persists items in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	opts   options
}

var _ Store = (*MongoStore)(nil)

// OpenMongo creates a client for uri and binds it to the items collection.
//
// The driver connects lazily, so a nil error does not mean the server is
// reachable; use Ping for that. The database is taken from the URI path
// unless overridden with WithDatabase.
func OpenMongo(ctx context.Context, uri string, opts ...Option) (*MongoStore, error) {
	const op = "repository.mongo.open"
	o := newOptions(opts)

	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fault.New(op, fault.KindConnection, fmt.Errorf("parse mongo uri: %w", err))
	}
	db := o.database
	if db == "" {
		db = cs.Database
	}
	if db == "" {
		db = defaultDatabase
	}

	client, err := mongo.Connect(ctx, mongooptions.Client().ApplyURI(uri))
	if err != nil {
		return nil, fault.New(op, fault.KindConnection, fmt.Errorf("connect: %w", err))
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(db).Collection(o.collection),
		opts:   o,
	}, nil
}

// Database returns the name of the database in use.
func (s *MongoStore) Database() string { return s.coll.Database().Name() }

// List returns every item, newest first.
func (s *MongoStore) List(ctx context.Context) ([]model.Item, error) {
	const op = "repository.mongo.list"
	findOpts := mongooptions.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, classify(op, err)
	}
	var docs []itemDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, classify(op, err)
	}
	items := make([]model.Item, 0, len(docs))
	for _, d := range docs {
		items = append(items, d.item())
	}
	return items, nil
}

// Insert writes a new item document.
func (s *MongoStore) Insert(ctx context.Context, in model.NewItem) (model.Item, error) {
	const op = "repository.mongo.insert"
	now := model.Timestamp(s.opts.clock())
	doc := itemDocument{
		ID:          newID(now),
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   now,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return model.Item{}, classify(op, err)
	}
	return doc.item().Clone(), nil
}

// Delete removes the document with the given id.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	const op = "repository.mongo.delete"
	oid, err := parseID(op, id)
	if err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return classify(op, err)
	}
	if res.DeletedCount == 0 {
		return fault.Newf(op, fault.KindNotFound, "%w: %s", ErrNotFound, id)
	}
	return nil
}

// Ping round-trips to the primary.
func (s *MongoStore) Ping(ctx context.Context) error {
	return classify("repository.mongo.ping", s.client.Ping(ctx, readpref.Primary()))
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return classify("repository.mongo.close", s.client.Disconnect(ctx))
}

// classify maps driver errors onto fault kinds.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se mongo.ServerError
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return fault.New(op, fault.KindNotFound, err)
	case errors.Is(err, primitive.ErrInvalidHex),
		mongo.IsDuplicateKeyError(err),
		errors.As(err, &se) && se.HasErrorCode(documentValidationFailure):
		return fault.New(op, fault.KindValidation, err)
	case errors.Is(err, mongo.ErrClientDisconnected),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		mongo.IsTimeout(err),
		mongo.IsNetworkError(err):
		return fault.New(op, fault.KindConnection, err)
	default:
		return fault.New(op, fault.KindUnknown, err)
	}
}
