package contracts

import (
	"context"
	"time"
)

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만

// RecommendationRepository persists evaluation results
type RecommendationRepository interface {
	Save(ctx context.Context, rec *Recommendation) error
	SaveBatch(ctx context.Context, recs []*Recommendation) error
	GetLatest(ctx context.Context, ticker string) (*Recommendation, error)
	ListByDate(ctx context.Context, date time.Time) ([]*Recommendation, error)
}
