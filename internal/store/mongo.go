package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mohitgusain8671/VoiceNote/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps users, tokens and notes in three collections. Tx needs a
// replica set or sharded cluster since it relies on multi-document
// transactions.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

func NewMongo(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{
		client: client,
		db:     client.Database(database),
		now:    time.Now,
	}
}

func (s *MongoStore) users() *mongo.Collection  { return s.db.Collection("users") }
func (s *MongoStore) tokens() *mongo.Collection { return s.db.Collection("tokens") }
func (s *MongoStore) notes() *mongo.Collection  { return s.db.Collection("notes") }

// EnsureIndexes creates the indexes the queries below rely on
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.users(): {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		s.tokens(): {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "kind", Value: 1}}},
			{Keys: bson.D{{Key: "value", Value: 1}}},
			{Keys: bson.D{{Key: "expires_at", Value: 1}}},
		},
		s.notes(): {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "audio_file.file_path", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s, %w", coll.Name(), err)
		}
	}

	return nil
}

func mongoErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	}

	return err
}

func matched(r *mongo.UpdateResult, err error) error {
	if err != nil {
		return mongoErr(err)
	}

	if r.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func deleted(r *mongo.DeleteResult, err error) error {
	if err != nil {
		return mongoErr(err)
	}

	if r.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// Tx runs fn inside a session transaction. The ctx passed to fn carries the
// session, which is how every operation below joins the transaction. fn runs
// exactly once, a transient commit failure is returned to the caller.
func (s *MongoStore) Tx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start mongo session, %w", err)
	}
	defer sess.EndSession(ctx)

	if err := sess.StartTransaction(); err != nil {
		return fmt.Errorf("failed to start mongo transaction, %w", err)
	}

	sc := mongo.NewSessionContext(ctx, sess)

	if err := fn(sc, s); err != nil {
		// Ending the session aborts as well, so a failed abort is not reported
		_ = sess.AbortTransaction(context.WithoutCancel(ctx))
		return err
	}

	if err := sess.CommitTransaction(sc); err != nil {
		return fmt.Errorf("failed to commit mongo transaction, %w", mongoErr(err))
	}

	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

//
// Users
//

func (s *MongoStore) CreateUser(ctx context.Context, u *model.User) error {
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now

	_, err := s.users().InsertOne(ctx, u)
	return mongoErr(err)
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*model.User, error) {
	var u model.User
	if err := s.users().FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, mongoErr(err)
	}

	return &u, nil
}

func (s *MongoStore) UserByID(ctx context.Context, id string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *MongoStore) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) setUser(ctx context.Context, id string, fields bson.M) error {
	fields["updated_at"] = s.now()
	return matched(s.users().UpdateByID(ctx, id, bson.M{"$set": fields}))
}

func (s *MongoStore) MarkUserVerified(ctx context.Context, id string) error {
	return s.setUser(ctx, id, bson.M{"verified": true})
}

func (s *MongoStore) UpdatePassword(ctx context.Context, id, hash string) error {
	return s.setUser(ctx, id, bson.M{"password_hash": hash})
}

func (s *MongoStore) DeleteUser(ctx context.Context, id string) error {
	return deleted(s.users().DeleteOne(ctx, bson.M{"_id": id}))
}

//
// Tokens
//

func (s *MongoStore) CreateToken(ctx context.Context, t *model.Token) error {
	t.CreatedAt = s.now()

	_, err := s.tokens().InsertOne(ctx, t)
	return mongoErr(err)
}

func (s *MongoStore) findToken(ctx context.Context, filter bson.M) (*model.Token, error) {
	var t model.Token
	if err := s.tokens().FindOne(ctx, filter).Decode(&t); err != nil {
		return nil, mongoErr(err)
	}

	return &t, nil
}

func (s *MongoStore) TokenByID(ctx context.Context, id string) (*model.Token, error) {
	return s.findToken(ctx, bson.M{"_id": id})
}

func (s *MongoStore) UsableToken(ctx context.Context, kind model.TokenKind, userID, value string, now time.Time) (*model.Token, error) {
	filter := bson.M{
		"kind":       kind,
		"value":      value,
		"expires_at": bson.M{"$gt": now},
	}
	if userID != "" {
		filter["user_id"] = userID
	}

	return s.findToken(ctx, filter)
}

func (s *MongoStore) ExtendToken(ctx context.Context, id string, expiresAt time.Time) error {
	return matched(s.tokens().UpdateByID(ctx, id, bson.M{"$set": bson.M{"expires_at": expiresAt}}))
}

func (s *MongoStore) DeleteToken(ctx context.Context, id string) error {
	return deleted(s.tokens().DeleteOne(ctx, bson.M{"_id": id}))
}

func (s *MongoStore) DeleteUserTokens(ctx context.Context, userID string) error {
	_, err := s.tokens().DeleteMany(ctx, bson.M{"user_id": userID})
	return mongoErr(err)
}

func (s *MongoStore) DeleteUserTokensOfKind(ctx context.Context, userID string, kind model.TokenKind) error {
	_, err := s.tokens().DeleteMany(ctx, bson.M{"user_id": userID, "kind": kind})
	return mongoErr(err)
}

func (s *MongoStore) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	r, err := s.tokens().DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, mongoErr(err)
	}

	return r.DeletedCount, nil
}

//
// Notes
//

func (s *MongoStore) CreateNote(ctx context.Context, n *model.Note) error {
	now := s.now()
	n.CreatedAt, n.UpdatedAt = now, now

	_, err := s.notes().InsertOne(ctx, n)
	return mongoErr(err)
}

func (s *MongoStore) NotesByUser(ctx context.Context, userID string) ([]model.Note, error) {
	cur, err := s.notes().Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}),
	)
	if err != nil {
		return nil, mongoErr(err)
	}

	notes := []model.Note{}
	if err := cur.All(ctx, &notes); err != nil {
		return nil, mongoErr(err)
	}

	return notes, nil
}

func (s *MongoStore) NoteByID(ctx context.Context, userID, id string) (*model.Note, error) {
	var n model.Note

	err := s.notes().FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&n)
	if err != nil {
		return nil, mongoErr(err)
	}

	return &n, nil
}

func (s *MongoStore) setNote(ctx context.Context, filter, fields bson.M) error {
	fields["updated_at"] = s.now()
	return matched(s.notes().UpdateOne(ctx, filter, bson.M{"$set": fields}))
}

func (s *MongoStore) EditNote(ctx context.Context, userID, id string, e NoteEdit) error {
	fields := bson.M{}
	if e.Title != nil {
		fields["title"] = *e.Title
	}
	if e.Transcription != nil {
		fields["transcription"] = *e.Transcription
		fields["summary"] = nil
	}

	if len(fields) == 0 {
		return nil
	}

	return s.setNote(ctx, bson.M{"_id": id, "user_id": userID}, fields)
}

func (s *MongoStore) SetSummary(ctx context.Context, userID, id, transcription, summary string) error {
	return s.setNote(ctx,
		bson.M{"_id": id, "user_id": userID, "transcription": transcription},
		bson.M{"summary": summary},
	)
}

func (s *MongoStore) SetAudio(ctx context.Context, userID, id string, a model.Attachment) error {
	return s.setNote(ctx, bson.M{"_id": id, "user_id": userID}, bson.M{"audio_file": a})
}

func (s *MongoStore) AudioInUse(ctx context.Context, path string) (bool, error) {
	n, err := s.notes().CountDocuments(ctx,
		bson.M{"audio_file.file_path": path},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, mongoErr(err)
	}

	return n > 0, nil
}

func (s *MongoStore) DeleteNote(ctx context.Context, userID, id string) error {
	return deleted(s.notes().DeleteOne(ctx, bson.M{"_id": id, "user_id": userID}))
}

func (s *MongoStore) NoteStats(ctx context.Context, userID string) (*model.NoteStats, error) {
	cur, err := s.notes().Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": 1},
			"with_summary": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$ne": bson.A{bson.M{"$ifNull": bson.A{"$summary", nil}}, nil}}, 1, 0},
			}},
		}}},
	})
	if err != nil {
		return nil, mongoErr(err)
	}

	var rows []struct {
		Total       int64 `bson:"total"`
		WithSummary int64 `bson:"with_summary"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, mongoErr(err)
	}

	stats := &model.NoteStats{}
	if len(rows) > 0 {
		stats.TotalNotes = rows[0].Total
		stats.NotesWithSummary = rows[0].WithSummary
	}

	stats.NotesWithoutSummary = stats.TotalNotes - stats.NotesWithSummary
	return stats, nil
}

func (s *MongoStore) AudioPaths(ctx context.Context) ([]string, error) {
	cur, err := s.notes().Find(ctx,
		bson.M{"audio_file.file_path": bson.M{"$nin": bson.A{nil, ""}}},
		options.Find().SetProjection(bson.M{"audio_file.file_path": 1}),
	)
	if err != nil {
		return nil, mongoErr(err)
	}

	var rows []struct {
		AudioFile struct {
			FilePath string `bson:"file_path"`
		} `bson:"audio_file"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, mongoErr(err)
	}

	paths := make([]string, 0, len(rows))
	for _, r := range rows {
		paths = append(paths, r.AudioFile.FilePath)
	}

	return paths, nil
}
