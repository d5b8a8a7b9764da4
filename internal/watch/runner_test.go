package watch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/you/fx-signals/internal/dash"
	"github.com/you/fx-signals/internal/quotes"
	"go.uber.org/zap"
)

type fakeQuoter struct {
	batch []quotes.Quote
}

func (f *fakeQuoter) GetAllQuotes(_ context.Context) []quotes.Quote {
	return f.batch
}

type fakePublisher struct {
	published []string
	err       error
}

func (f *fakePublisher) PublishQuote(_ context.Context, q quotes.Quote, _ int64) error {
	f.published = append(f.published, q.Pair)
	return f.err
}

func testBatch() []quotes.Quote {
	now := time.Now()
	return []quotes.Quote{
		{Pair: "EURUSD", Price: 1.0850, Spread: 0.0002, Timestamp: now},
		{Pair: "XAUUSD", Price: 2650, Spread: 0.53, Timestamp: now},
	}
}

func TestRefresh_UpdatesStoreAndPublishes(t *testing.T) {
	store := dash.NewStore()
	pub := &fakePublisher{}

	refresh(context.Background(), &fakeQuoter{batch: testBatch()}, store, pub, zap.NewNop())

	rows := store.List()
	assert.Len(t, rows, 2)
	assert.Equal(t, []string{"EURUSD", "XAUUSD"}, pub.published)
}

func TestRefresh_NilPublisher(t *testing.T) {
	store := dash.NewStore()
	refresh(context.Background(), &fakeQuoter{batch: testBatch()}, store, nil, zap.NewNop())
	assert.Len(t, store.List(), 2)
}

func TestRefresh_PublishErrorDoesNotStopBatch(t *testing.T) {
	store := dash.NewStore()
	pub := &fakePublisher{err: errors.New("feed down")}

	refresh(context.Background(), &fakeQuoter{batch: testBatch()}, store, pub, zap.NewNop())

	assert.Len(t, pub.published, 2, "every quote is attempted despite errors")
	assert.Len(t, store.List(), 2)
}
