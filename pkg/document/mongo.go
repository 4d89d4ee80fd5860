package document

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists a document as a single MongoDB document. Commit is one
// ReplaceOne upsert, so the stored document changes in a single atomic write.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	docID  string
}

// mongoRecord wraps the wire record with the collection key.
type mongoRecord struct {
	DocID  string `bson:"_id"`
	Record Record `bson:"document"`
}

// NewMongoStore connects to uri and binds the store to one document in the
// given database and collection.
func NewMongoStore(ctx context.Context, uri, database, collection, docID string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping %s: %w", uri, err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
		docID:  docID,
	}, nil
}

// Close releases the underlying connection.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Begin loads the stored document into a working copy. A missing document
// starts empty, matching the file store.
func (s *MongoStore) Begin(ctx context.Context) (Txn, error) {
	var rec mongoRecord
	err := s.coll.FindOne(ctx, bson.M{"_id": s.docID}).Decode(&rec)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return &mongoTxn{Document: NewDocument(), store: s}, nil
	case err != nil:
		return nil, fmt.Errorf("load document %s: %w", s.docID, err)
	}
	doc, err := decodeDocument(rec.Record)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", s.docID, err)
	}
	return &mongoTxn{Document: doc, store: s}, nil
}

// mongoTxn is a transaction over a MongoDB-backed document.
type mongoTxn struct {
	*Document
	store *MongoStore
	done  bool
}

// Commit replaces the stored document with the working copy in one upsert.
func (t *mongoTxn) Commit(ctx context.Context) error {
	if t.done {
		return fmt.Errorf("transaction already finished")
	}
	t.done = true

	rec := mongoRecord{DocID: t.store.docID, Record: encodeDocument(t.Document)}
	_, err := t.store.coll.ReplaceOne(ctx,
		bson.M{"_id": t.store.docID}, rec,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("commit document %s: %w", t.store.docID, err)
	}
	return nil
}

// Rollback discards the working copy. The stored document is untouched.
func (t *mongoTxn) Rollback(ctx context.Context) error {
	t.done = true
	return nil
}

var (
	_ Store = (*MongoStore)(nil)
	_ Txn   = (*mongoTxn)(nil)
)
