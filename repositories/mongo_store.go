package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var mongoOperators = map[Operator]string{
	OpEqual:          "$eq",
	OpGreaterOrEqual: "$gte",
	OpLess:           "$lt",
}

// MongoStore is the DocumentStore backed by MongoDB. CommitBatch needs a
// replica set or sharded cluster because it runs inside a transaction.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

func NewMongoStore(client *mongo.Client, dbName string, logger *zap.Logger) *MongoStore {
	return &MongoStore{client: client, db: client.Database(dbName), logger: logger}
}

func (s *MongoStore) Find(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	cursor, err := s.db.Collection(collection).Find(ctx, buildMongoFilter(filters))
	if err != nil {
		return nil, fmt.Errorf("mongo find %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var docs []Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("mongo decode %s: %w", collection, err)
		}
		docs = append(docs, mongoDocument(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongo cursor %s: %w", collection, err)
	}
	return docs, nil
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, idFilter(id)).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo get %s/%s: %w", collection, id, err)
	}
	doc := mongoDocument(raw)
	return &doc, nil
}

func (s *MongoStore) Create(ctx context.Context, collection, id string, data map[string]interface{}) error {
	doc := bson.M{"_id": id}
	for k, v := range data {
		doc[k] = v
	}
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongo insert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	return s.update(ctx, collection, id, fields)
}

func (s *MongoStore) update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	res, err := s.db.Collection(collection).UpdateOne(ctx, idFilter(id), bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("mongo update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("mongo update %s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

// CommitBatch applies the updates in one multi-document transaction.
func (s *MongoStore) CommitBatch(ctx context.Context, updates []Update) error {
	if len(updates) == 0 {
		return nil
	}
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("mongo start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, u := range updates {
			if err := s.update(sc, u.Collection, u.ID, u.Fields); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("mongo batch of %d updates: %w", len(updates), err)
	}
	s.logger.Debug("mongo batch committed", zap.Int("updates", len(updates)))
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func buildMongoFilter(filters []Filter) bson.D {
	filter := bson.D{}
	index := make(map[string]int)
	for _, f := range filters {
		cond := bson.E{Key: mongoOperators[f.Op], Value: f.Value}
		if i, ok := index[f.Field]; ok {
			filter[i].Value = append(filter[i].Value.(bson.D), cond)
			continue
		}
		index[f.Field] = len(filter)
		filter = append(filter, bson.E{Key: f.Field, Value: bson.D{cond}})
	}
	return filter
}

// idFilter matches string ids and, for documents created by older tooling,
// the equivalent ObjectID.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{id, oid}}}
	}
	return bson.M{"_id": id}
}

func mongoDocument(raw bson.M) Document {
	var id string
	switch v := raw["_id"].(type) {
	case string:
		id = v
	case primitive.ObjectID:
		id = v.Hex()
	default:
		id = fmt.Sprint(v)
	}
	delete(raw, "_id")

	data := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		data[k] = plainValue(v)
	}
	return Document{ID: id, Data: data}
}

// plainValue turns driver container types into plain maps and slices so
// readers see the same shapes as with the other drivers.
func plainValue(v interface{}) interface{} {
	switch t := v.(type) {
	case primitive.D:
		m := make(map[string]interface{}, len(t))
		for _, e := range t {
			m[e.Key] = plainValue(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			m[k] = plainValue(e)
		}
		return m
	case primitive.A:
		l := make([]interface{}, len(t))
		for i, e := range t {
			l[i] = plainValue(e)
		}
		return l
	case primitive.DateTime:
		return t.Time()
	}
	return v
}
