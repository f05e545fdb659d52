package services

import (
	"AlterMoodGo/analytics"
	"AlterMoodGo/models"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionEmotions 情绪记录集合，字段名与客户端文档一致
const CollectionEmotions = "emotions"

type emotionDocument struct {
	ID        string    `bson:"_id"`
	SubjectID string    `bson:"alter_id"`
	OwnerID   string    `bson:"system_id"`
	Emotion   string    `bson:"emotion"`
	Emotions  []string  `bson:"emotions,omitempty"`
	Intensity int       `bson:"intensity"`
	Note      string    `bson:"note,omitempty"`
	CreatedAt time.Time `bson:"created_at"`

	// 服务端写入时间
	LastModified time.Time `bson:"last_modified"`
}

func toDocument(rec models.EmotionRecord) emotionDocument {
	doc := emotionDocument{
		ID:           rec.ID,
		SubjectID:    rec.SubjectID,
		OwnerID:      rec.OwnerID,
		Emotion:      rec.Emotion,
		Emotions:     rec.Emotions,
		Intensity:    rec.Intensity,
		Note:         rec.Note,
		CreatedAt:    rec.CreatedAt,
		LastModified: rec.LastModified,
	}
	if doc.LastModified.IsZero() {
		doc.LastModified = time.Now().UTC()
	}
	return doc
}

func (d emotionDocument) toModel() models.EmotionRecord {
	return models.EmotionRecord{
		ID:           d.ID,
		OwnerID:      d.OwnerID,
		SubjectID:    d.SubjectID,
		Emotion:      d.Emotion,
		Emotions:     d.Emotions,
		Intensity:    d.Intensity,
		Note:         d.Note,
		CreatedAt:    d.CreatedAt,
		LastModified: d.LastModified,
	}
}

// MongoEmotionStore 基于文档库的实现
type MongoEmotionStore struct {
	coll *mongo.Collection
}

func NewMongoEmotionStore(db *mongo.Database) *MongoEmotionStore {
	return &MongoEmotionStore{coll: db.Collection(CollectionEmotions)}
}

// EnsureIndexes 创建查询需要的复合索引
func (s *MongoEmotionStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "system_id", Value: 1},
			{Key: "alter_id", Value: 1},
			{Key: "created_at", Value: -1},
		}},
		{Keys: bson.D{
			{Key: "system_id", Value: 1},
			{Key: "last_modified", Value: 1},
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to create emotion index: %w", err)
	}
	return nil
}

func (s *MongoEmotionStore) Create(ctx context.Context, rec models.EmotionRecord) error {
	if _, err := s.coll.InsertOne(ctx, toDocument(rec)); err != nil {
		return fmt.Errorf("failed to create emotion record: %w", err)
	}
	return nil
}

// CreateBatch 在会话事务中写入，需要副本集部署
func (s *MongoEmotionStore) CreateBatch(ctx context.Context, recs []models.EmotionRecord) (int, error) {
	session, err := s.coll.Database().Client().StartSession()
	if err != nil {
		return 0, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return s.insertNew(sc, recs)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create emotion records: %w", err)
	}
	return result.(int), nil
}

// insertNew 跳过已存在的 ID，事务重试时重新计数
func (s *MongoEmotionStore) insertNew(ctx context.Context, recs []models.EmotionRecord) (int, error) {
	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.ID)
	}
	existing, err := s.coll.Distinct(ctx, "_id", bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, id := range existing {
		if sid, ok := id.(string); ok {
			seen[sid] = true
		}
	}

	docs := make([]interface{}, 0, len(recs))
	for _, rec := range recs {
		if seen[rec.ID] {
			continue
		}
		seen[rec.ID] = true
		docs = append(docs, toDocument(rec))
	}
	if len(docs) == 0 {
		return 0, nil
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}

func (s *MongoEmotionStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.EmotionRecord, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []emotionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	recs := make([]models.EmotionRecord, 0, len(docs))
	for _, d := range docs {
		recs = append(recs, d.toModel())
	}
	return recs, nil
}

func (s *MongoEmotionStore) FindRange(ctx context.Context, ownerID, subjectID string, r analytics.Range) ([]models.EmotionRecord, error) {
	filter := bson.M{
		"system_id":  ownerID,
		"alter_id":   subjectID,
		"created_at": bson.M{"$gte": r.Start, "$lte": r.End},
	}
	recs, err := s.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query emotion records: %w", err)
	}
	return recs, nil
}

func (s *MongoEmotionStore) Latest(ctx context.Context, ownerID, subjectID string) (*models.EmotionRecord, error) {
	var doc emotionDocument
	err := s.coll.FindOne(ctx,
		bson.M{"system_id": ownerID, "alter_id": subjectID},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest emotion: %w", err)
	}
	rec := doc.toModel()
	return &rec, nil
}

func (s *MongoEmotionStore) RecentByOwner(ctx context.Context, ownerID string, limit int) ([]models.EmotionRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	recs, err := s.find(ctx, bson.M{"system_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent emotions: %w", err)
	}
	return recs, nil
}

func (s *MongoEmotionStore) FindByOwnerSince(ctx context.Context, ownerID string, since time.Time) ([]models.EmotionRecord, error) {
	filter := bson.M{
		"system_id":     ownerID,
		"last_modified": bson.M{"$gt": since},
	}
	sort := bson.D{{Key: "last_modified", Value: 1}, {Key: "created_at", Value: 1}}
	recs, err := s.find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("failed to query emotion updates: %w", err)
	}
	return recs, nil
}

func (s *MongoEmotionStore) ActiveSubjects(ctx context.Context, since time.Time) ([]models.SubjectRef, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"last_modified": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{"_id": bson.M{"system_id": "$system_id", "alter_id": "$alter_id"}}}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate active subjects: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID struct {
			OwnerID   string `bson:"system_id"`
			SubjectID string `bson:"alter_id"`
		} `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode active subjects: %w", err)
	}

	refs := make([]models.SubjectRef, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, models.SubjectRef{OwnerID: row.ID.OwnerID, SubjectID: row.ID.SubjectID})
	}
	return refs, nil
}
