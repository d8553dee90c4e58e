package report

import (
	"context"
	stderrors "errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/uiadoption/pkg/errors"
	"github.com/matzehuels/uiadoption/pkg/inventory"
)

// MongoSink stores each report as one document.
type MongoSink struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoSink connects to uri and verifies the connection.
func NewMongoSink(ctx context.Context, uri, database, collection string) (*MongoSink, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSinkFailed, err, "connect to mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeSinkFailed, err, "ping mongo")
	}
	return &MongoSink{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Write implements Sink.
func (s *MongoSink) Write(ctx context.Context, r *inventory.Report) error {
	if _, err := s.coll.InsertOne(ctx, r); err != nil {
		return errors.Wrap(errors.ErrCodeSinkFailed, err, "insert report %s", r.RunID)
	}
	return nil
}

// Latest returns the most recently generated report.
func (s *MongoSink) Latest(ctx context.Context) (*inventory.Report, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "generatedAt", Value: -1}})
	var r inventory.Report
	err := s.coll.FindOne(ctx, bson.D{}, opts).Decode(&r)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.New(errors.ErrCodeReportNotFound, "no reports in %s", s.coll.Name())
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "query latest report")
	}
	return &r, nil
}

// Close disconnects the client.
func (s *MongoSink) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
