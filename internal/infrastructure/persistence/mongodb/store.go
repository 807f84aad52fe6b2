// Package mongodb provides a MongoDB-backed roster store. The roster is one
// document in the rosters collection, replaced as a whole on every save.
package mongodb

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/alem-hub/gradebook/internal/domain/roster"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
	"github.com/alem-hub/gradebook/internal/infrastructure/persistence/record"
)

const (
	collectionName = "rosters"
	rosterDocID    = "roster"
)

// rosterDocument is the stored shape. Students stay raw on read so one
// undecodable element does not fail the whole document.
type rosterDocument struct {
	ID        string     `bson:"_id"`
	Students  []bson.Raw `bson:"students"`
	UpdatedAt int64      `bson:"updatedAt"`
}

// Store persists the roster in MongoDB.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ roster.Store = (*Store)(nil)

// Open connects to the MongoDB server at url and uses database dbName.
func Open(ctx context.Context, url, dbName string) (*Store, error) {
	if url == "" || dbName == "" {
		return nil, shared.Persistence("Open", "invalid mongodb settings", errors.New("url and database name are required"))
	}

	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(url).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, shared.Persistence("Open", "connect to mongodb", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, shared.Persistence("Open", "ping mongodb", err)
	}

	return &Store{
		client:     client,
		collection: client.Database(dbName).Collection(collectionName),
	}, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Load reads the roster document. A missing document is reported as Missing.
func (s *Store) Load(ctx context.Context) (*roster.LoadResult, error) {
	var doc rosterDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": rosterDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &roster.LoadResult{Students: []*student.Student{}, Missing: true}, nil
	}
	if err != nil {
		return nil, shared.Persistence("Load", "read roster document", err)
	}
	return decodeStudents(doc.Students), nil
}

// Save replaces the roster document, creating it if needed.
func (s *Store) Save(ctx context.Context, students []*student.Student) error {
	doc, err := newDocument(students, time.Now())
	if err != nil {
		return shared.Persistence("Save", "encode roster", err)
	}

	_, err = s.collection.ReplaceOne(ctx, bson.M{"_id": rosterDocID}, doc, options.Replace().SetUpsert(true))
	return shared.Persistence("Save", "replace roster document", err)
}

func newDocument(students []*student.Student, now time.Time) (*rosterDocument, error) {
	doc := &rosterDocument{
		ID:        rosterDocID,
		Students:  make([]bson.Raw, 0, len(students)),
		UpdatedAt: now.Unix(),
	}
	for _, st := range students {
		raw, err := bson.Marshal(record.FromStudent(st))
		if err != nil {
			return nil, fmt.Errorf("bson.Marshal %s: %w", st.ID(), err)
		}
		doc.Students = append(doc.Students, raw)
	}
	return doc, nil
}

func decodeStudents(elements []bson.Raw) *roster.LoadResult {
	records := make([]record.Record, 0, len(elements))
	positions := make([]int, 0, len(elements))
	result := &roster.LoadResult{}

	for i, raw := range elements {
		var rec record.Record
		if err := bson.Unmarshal(raw, &rec); err != nil {
			result.Skipped = append(result.Skipped, roster.Skipped{
				Position: i + 1,
				Raw:      record.Truncate(raw.String()),
				Reason:   shared.WrapError("store", "Decode", shared.ErrInvalidFormat, "entry is not a valid student record", err),
			})
			continue
		}
		records = append(records, rec)
		positions = append(positions, i+1)
	}

	collected := record.Collect(records)
	// Collect numbers positions within records; map them back to the array.
	for _, s := range collected.Skipped {
		s.Position = positions[s.Position-1]
		result.Skipped = append(result.Skipped, s)
	}
	slices.SortFunc(result.Skipped, func(a, b roster.Skipped) int { return cmp.Compare(a.Position, b.Position) })
	result.Students = collected.Students
	return result
}
