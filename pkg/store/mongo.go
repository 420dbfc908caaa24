package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/speakerbox/pkg/errors"
)

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// Defaults for MongoConfig fields left empty.
const (
	DefaultMongoDatabase   = "speakerbox"
	DefaultMongoCollection = "calculations"
	DefaultMongoTimeout    = 10 * time.Second
)

// MongoStore keeps calculations in a MongoDB collection with a unique index
// on name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// NewMongoStore connects to MongoDB and ensures the name index exists.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeMissingInput, "mongo URI is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultMongoTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetTimeout(cfg.Timeout))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "create mongo indexes")
	}

	return &MongoStore{client: client, coll: coll, now: time.Now}, nil
}

func (s *MongoStore) Save(ctx context.Context, c Calculation) (Calculation, error) {
	c, err := prepare(c, s.now)
	if err != nil {
		return Calculation{}, err
	}

	// The replacement carries a new _id, which MongoDB refuses on an
	// update, so the old record is removed first.
	if _, err := s.coll.DeleteOne(ctx, bson.M{"name": c.Name}); err != nil {
		return Calculation{}, errors.Wrap(errors.ErrCodeNetwork, err, "replace calculation %q", c.Name)
	}
	if _, err := s.coll.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Calculation{}, errors.Wrap(errors.ErrCodeConflict, err, "calculation %q was saved concurrently", c.Name)
		}
		return Calculation{}, errors.Wrap(errors.ErrCodeNetwork, err, "save calculation %q", c.Name)
	}
	return c, nil
}

func (s *MongoStore) List(ctx context.Context) ([]Calculation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "name", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list calculations")
	}
	calcs := []Calculation{}
	if err := cur.All(ctx, &calcs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "decode calculations")
	}
	return calcs, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (Calculation, error) {
	var c Calculation
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return Calculation{}, notFound(id)
	}
	if err != nil {
		return Calculation{}, errors.Wrap(errors.ErrCodeNetwork, err, "get calculation %q", id)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "delete calculation %q", id)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultMongoTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
