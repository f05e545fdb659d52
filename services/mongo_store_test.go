package services

import (
	"AlterMoodGo/models"
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func startedCommands(mt *mtest.T) []string {
	var names []string
	for evt := mt.GetStartedEvent(); evt != nil; evt = mt.GetStartedEvent() {
		names = append(names, evt.CommandName)
	}
	return names
}

func TestMongoCreateBatch(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	batch := []models.EmotionRecord{
		row("e1", "sys", "alter-a", "happy", 4, fixedNow),
		row("e2", "sys", "alter-a", "sad", 2, fixedNow),
	}

	mt.Run("skips existing in one transaction", func(mt *mtest.T) {
		store := &MongoEmotionStore{coll: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "values", Value: bson.A{"e1"}}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(),
		)

		created, err := store.CreateBatch(context.Background(), batch)
		if err != nil {
			mt.Fatalf("CreateBatch error: %v", err)
		}
		if created != 1 {
			mt.Fatalf("created=%d, want 1", created)
		}
		got := startedCommands(mt)
		want := []string{"distinct", "insert", "commitTransaction"}
		if len(got) != len(want) {
			mt.Fatalf("commands=%v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				mt.Fatalf("commands=%v, want %v", got, want)
			}
		}
	})

	mt.Run("write error aborts", func(mt *mtest.T) {
		store := &MongoEmotionStore{coll: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "values", Value: bson.A{}}),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 1, Code: 2, Message: "bad value"}),
			mtest.CreateSuccessResponse(),
		)

		created, err := store.CreateBatch(context.Background(), batch)
		if err == nil {
			mt.Fatal("expected error")
		}
		if created != 0 {
			mt.Fatalf("created=%d, want 0", created)
		}
		for _, name := range startedCommands(mt) {
			if name == "commitTransaction" {
				mt.Fatal("transaction committed after write error")
			}
		}
	})
}
