// Package store persists loaded graphs in MongoDB. Each saved graph is one
// document holding the deterministic export form plus a name and timestamps,
// keyed by a generated UUID.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/matzehuels/graphweave/pkg/errors"
	"github.com/matzehuels/graphweave/pkg/export"
	"github.com/matzehuels/graphweave/pkg/graph"
	"github.com/matzehuels/graphweave/pkg/metadata"
)

const collectionName = "graphs"

// Record is the stored shape of one graph.
type Record struct {
	ID        string           `bson:"_id"`
	Name      string           `bson:"name"`
	CreatedAt time.Time        `bson:"created_at"`
	Document  *export.Document `bson:"document"`
}

// Summary is the listing view of a stored graph.
type Summary struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	CreatedAt time.Time `bson:"created_at"`
	Vertices  int       `bson:"vertices"`
	Edges     int       `bson:"edges"`
}

// GraphStore is a MongoDB-backed graph repository.
type GraphStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Open connects to MongoDB at uri and uses the given database. The
// connection is verified with a ping before returning.
func Open(ctx context.Context, uri, database string) (*GraphStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "connect to %s", uri)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "ping %s", uri)
	}
	return &GraphStore{
		client: client,
		coll:   client.Database(database).Collection(collectionName),
	}, nil
}

// Close disconnects from MongoDB.
func (s *GraphStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Save stores the graph under a new UUID and returns the ID. types may be
// nil.
func (s *GraphStore) Save(ctx context.Context, name string, g *graph.Graph, types *metadata.Registry) (string, error) {
	rec := Record{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Document:  export.NewDocument(g, types),
	}
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, err, "insert graph %q", name)
	}
	return rec.ID, nil
}

// Load retrieves a stored graph by ID and rebuilds it.
func (s *GraphStore) Load(ctx context.Context, id string) (*graph.Graph, *Record, error) {
	var rec Record
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, apperrors.New(apperrors.ErrCodeGraphNotFound, "graph %s not found", id)
	}
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "load graph %s", id)
	}
	g, err := rec.Document.Graph()
	if err != nil {
		return nil, nil, fmt.Errorf("rebuild graph %s: %w", id, err)
	}
	return g, &rec, nil
}

// List returns summaries of all stored graphs, newest first.
func (s *GraphStore) List(ctx context.Context) ([]Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "name", Value: 1},
			{Key: "created_at", Value: 1},
			{Key: "vertices", Value: bson.D{{Key: "$size", Value: "$document.vertices"}}},
			{Key: "edges", Value: bson.D{{Key: "$size", Value: "$document.edges"}}},
		}}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "list graphs")
	}
	defer cursor.Close(ctx)

	var out []Summary
	if err := cursor.All(ctx, &out); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "decode graph summaries")
	}
	return out, nil
}

// Delete removes a stored graph.
func (s *GraphStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "delete graph %s", id)
	}
	if res.DeletedCount == 0 {
		return apperrors.New(apperrors.ErrCodeGraphNotFound, "graph %s not found", id)
	}
	return nil
}
