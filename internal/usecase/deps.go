package usecase

import (
	"context"
	"io"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }

// 振込金額に足す照合コード（1〜999）
type CodeGenerator interface {
	Next() int
}

type randomCode struct{}

func (randomCode) Next() int { return rand.IntN(999) + 1 }

func RandomCodeGenerator() CodeGenerator { return randomCode{} }

type IDGenerator interface {
	NewString() string
}

type uuidGen struct{}

func (uuidGen) NewString() string { return uuid.NewString() }

func UUIDGenerator() IDGenerator { return uuidGen{} }

// 振込明細画像の置き場所（ローカル or MinIO）
type ProofStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// メトリクス。*metrics.OrderMetrics が実装する
type OrderObserver interface {
	ObservePlaced(amount float64)
	ObserveConflict(reason string)
	ObserveTransition(to string)
	ObserveBookStatus(to string)
}

type noopObserver struct{}

func (noopObserver) ObservePlaced(float64) {}
func (noopObserver) ObserveConflict(string) {}
func (noopObserver) ObserveTransition(string) {}
func (noopObserver) ObserveBookStatus(string) {}

func observerOrNoop(o OrderObserver) OrderObserver {
	if o == nil {
		return noopObserver{}
	}
	return o
}
