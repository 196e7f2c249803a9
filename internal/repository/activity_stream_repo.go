package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/eduquery-api/internal/models"
)

const activityStreamMaxLen = 10000

type activityStreamRepository struct {
	client    *redis.Client
	streamKey string
	termsKey  string
}

// NewActivityStreamRepository stores activity in a Redis stream and keeps search-term counts in a
// sorted set. prefix namespaces both keys.
func NewActivityStreamRepository(client *redis.Client, prefix string) ActivityLogRepository {
	if prefix == "" {
		prefix = "eduquery"
	}
	return &activityStreamRepository{
		client:    client,
		streamKey: prefix + ":activity",
		termsKey:  prefix + ":search_terms",
	}
}

func (r *activityStreamRepository) Append(ctx context.Context, entry models.ActivityLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(entry.Data)
	if err != nil {
		return fmt.Errorf("encode activity data: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: r.streamKey,
		MaxLen: activityStreamMaxLen,
		Values: map[string]interface{}{
			"action":    entry.Action,
			"term":      entry.Term,
			"timestamp": entry.Timestamp.UTC().Format(time.RFC3339Nano),
			"data":      string(data),
		},
	})
	if entry.Action == models.ActionSearch && entry.Term != "" {
		pipe.ZIncrBy(ctx, r.termsKey, 1, entry.Term)
	}

	_, err = pipe.Exec(ctx)
	return err
}

func (r *activityStreamRepository) Recent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	var (
		messages []redis.XMessage
		err      error
	)
	if limit > 0 {
		messages, err = r.client.XRevRangeN(ctx, r.streamKey, "+", "-", int64(limit)).Result()
	} else {
		messages, err = r.client.XRevRange(ctx, r.streamKey, "+", "-").Result()
	}
	if err != nil {
		return nil, err
	}

	entries := make([]models.ActivityLog, 0, len(messages))
	for _, message := range messages {
		entries = append(entries, decodeActivityMessage(message))
	}
	return entries, nil
}

func (r *activityStreamRepository) PopularTerms(ctx context.Context, limit int) ([]models.TermCount, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	scored, err := r.client.ZRevRangeWithScores(ctx, r.termsKey, 0, stop).Result()
	if err != nil {
		return nil, err
	}

	terms := make([]models.TermCount, 0, len(scored))
	for _, item := range scored {
		term, _ := item.Member.(string)
		terms = append(terms, models.TermCount{Term: term, Count: int64(item.Score)})
	}
	return terms, nil
}

func decodeActivityMessage(message redis.XMessage) models.ActivityLog {
	entry := models.ActivityLog{
		Action: stringValue(message.Values["action"]),
		Term:   stringValue(message.Values["term"]),
	}

	if ts, err := time.Parse(time.RFC3339Nano, stringValue(message.Values["timestamp"])); err == nil {
		entry.Timestamp = ts
	}

	if raw := stringValue(message.Values["data"]); raw != "" {
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &data); err == nil {
			entry.Data = data
		}
	}
	return entry
}

func stringValue(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}
