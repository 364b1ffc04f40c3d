package writer

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/omniscale/osmdoc/log"
	"github.com/omniscale/osmdoc/shape"
)

const (
	DefaultDatabase   = "osm"
	DefaultCollection = "documents"
)

// Mongo inserts the documents into a MongoDB collection in batches.
type Mongo struct {
	ctx    context.Context
	client *mongo.Client
	coll   *mongo.Collection
	buf    *batchBuffer
	count  int
}

// OpenMongo connects to uri. The context is used for all operations of
// the sink.
func OpenMongo(ctx context.Context, uri, database, collection string) (*Mongo, error) {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, errors.Wrap(err, "connecting to mongodb")
	}
	m := &Mongo{
		ctx:    ctx,
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
	m.buf = newBatchBuffer(bufferSize, m.insert)
	return m, nil
}

func (m *Mongo) insert(docs []shape.Document) error {
	batch := make([]interface{}, len(docs))
	for i, d := range docs {
		batch[i] = map[string]interface{}(d)
	}
	opts := options.InsertMany().SetOrdered(true)
	if _, err := m.coll.InsertMany(m.ctx, batch, opts); err != nil {
		return errors.Wrapf(err, "inserting into %s", m.coll.Name())
	}
	m.count += len(docs)
	return nil
}

func (m *Mongo) Write(doc shape.Document) error {
	return m.buf.Add(doc)
}

func (m *Mongo) Close() error {
	defer m.client.Disconnect(context.Background())
	if err := m.buf.Flush(); err != nil {
		return err
	}
	log.Printf("[info] Inserted %d documents into %s", m.count, m.coll.Name())
	return nil
}
