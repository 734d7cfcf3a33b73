package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/TIMOVIS/mandarin-exam/internal/profile"
)

// MongoProfileRepo stores profiles in a MongoDB collection, one document
// per student keyed by a unique name.
type MongoProfileRepo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// OpenMongo connects to uri and prepares the students collection.
func OpenMongo(ctx context.Context, uri, database string) (*MongoProfileRepo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	repo := NewMongoProfileRepo(client, database)
	if err := repo.ensureIndexes(connectCtx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return repo, nil
}

// NewMongoProfileRepo wraps an existing client.
func NewMongoProfileRepo(client *mongo.Client, database string) *MongoProfileRepo {
	return &MongoProfileRepo{
		client:     client,
		collection: client.Database(database).Collection("students"),
	}
}

func (r *MongoProfileRepo) ensureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("students_name_unique"),
	})
	if err != nil {
		return fmt.Errorf("create students index: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (r *MongoProfileRepo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoProfileRepo) Get(ctx context.Context, name string) (*profile.Profile, error) {
	var p profile.Profile
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find student %s: %w", name, err)
	}
	return &p, nil
}

func (r *MongoProfileRepo) Save(ctx context.Context, p profile.Profile) error {
	if p.Name == "" {
		return profile.ErrInvalidName
	}
	stampUpdated(&p)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"name": p.Name}, p, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save student %s: %w", p.Name, err)
	}
	return nil
}

func (r *MongoProfileRepo) Create(ctx context.Context, p profile.Profile) error {
	if p.Name == "" {
		return profile.ErrInvalidName
	}
	stampUpdated(&p)
	if _, err := r.collection.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("create student %s: %w", p.Name, err)
	}
	return nil
}

func (r *MongoProfileRepo) Delete(ctx context.Context, name string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"name": name}); err != nil {
		return fmt.Errorf("delete student %s: %w", name, err)
	}
	return nil
}

func (r *MongoProfileRepo) Roster(ctx context.Context) ([]RosterEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetProjection(bson.M{"name": 1, "age": 1, "comments": 1, "tests.id": 1})
	cur, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer cur.Close(ctx)

	var out []RosterEntry
	for cur.Next(ctx) {
		var p profile.Profile
		if err := cur.Decode(&p); err != nil {
			return nil, fmt.Errorf("decode student: %w", err)
		}
		out = append(out, rosterEntry(p))
	}
	return out, cur.Err()
}

func stampUpdated(p *profile.Profile) {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
}
