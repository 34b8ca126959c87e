package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wojak-labs/meme-rag/models"
)

type fakeRetriever struct {
	mu    sync.Mutex
	docs  map[models.Side]*models.RetrievedDocument
	errs  map[models.Side]error
	calls map[models.Side]int
}

func newFakeRetriever() *fakeRetriever {
	return &fakeRetriever{
		docs:  map[models.Side]*models.RetrievedDocument{},
		errs:  map[models.Side]error{},
		calls: map[models.Side]int{},
	}
}

func (f *fakeRetriever) RetrieveTop(ctx context.Context, side models.Side, query string) (*models.RetrievedDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[side]++
	if err := f.errs[side]; err != nil {
		return nil, err
	}
	return f.docs[side], nil
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeGenerator) Generate(ctx context.Context, systemMessage, userMessage string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "answer for: " + userMessage, nil
}

func newTestRAGService(t *testing.T, retriever DocumentRetriever, generator TextGenerator) RAGService {
	t.Helper()
	cache, err := NewPromptCache(DefaultCacheSize)
	require.NoError(t, err)
	return NewRAGService(retriever, generator, cache)
}

func TestQueryTextPairsResponsesWithSources(t *testing.T) {
	retriever := newFakeRetriever()
	retriever.docs[models.SideRed] = &models.RetrievedDocument{
		Text: "Focus on economy", Source: "https://example.com/red", Side: models.SideRed,
	}
	retriever.docs[models.SideBlue] = &models.RetrievedDocument{
		Text: "Focus on climate", Source: "https://example.com/blue", Side: models.SideBlue,
	}
	generator := &fakeGenerator{}
	svc := newTestRAGService(t, retriever, generator)

	response, err := svc.QueryText(context.Background(), "gas prices")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/red", response.RedLink)
	assert.Equal(t, "https://example.com/blue", response.BlueLink)
	assert.NotEmpty(t, response.RedResponse)
	assert.NotEmpty(t, response.BlueResponse)
	assert.Contains(t, response.RedResponse, "Focus on economy")
	assert.Contains(t, response.BlueResponse, "Focus on climate")
}

func TestQueryTextCallsEachSideExactlyOnce(t *testing.T) {
	retriever := newFakeRetriever()
	retriever.docs[models.SideRed] = &models.RetrievedDocument{Text: "red doc", Source: "r", Side: models.SideRed}
	retriever.docs[models.SideBlue] = &models.RetrievedDocument{Text: "blue doc", Source: "b", Side: models.SideBlue}
	generator := &fakeGenerator{}
	svc := newTestRAGService(t, retriever, generator)

	_, err := svc.QueryText(context.Background(), "healthcare")
	require.NoError(t, err)

	assert.Equal(t, 1, retriever.calls[models.SideRed])
	assert.Equal(t, 1, retriever.calls[models.SideBlue])
	assert.Equal(t, 2, generator.calls, "one generation per side")
}

func TestQueryTextSecondIdenticalQueryHitsCache(t *testing.T) {
	retriever := newFakeRetriever()
	retriever.docs[models.SideRed] = &models.RetrievedDocument{Text: "red doc", Source: "r", Side: models.SideRed}
	retriever.docs[models.SideBlue] = &models.RetrievedDocument{Text: "blue doc", Source: "b", Side: models.SideBlue}
	generator := &fakeGenerator{}
	svc := newTestRAGService(t, retriever, generator)

	first, err := svc.QueryText(context.Background(), "tariffs")
	require.NoError(t, err)
	second, err := svc.QueryText(context.Background(), "tariffs")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, generator.calls, "repeat query must not re-generate")
	assert.Equal(t, 2, retriever.calls[models.SideRed], "retrieval itself is not cached")
}

func TestQueryTextFailsWhollyOnOneSidedRetrievalFailure(t *testing.T) {
	retriever := newFakeRetriever()
	retriever.docs[models.SideBlue] = &models.RetrievedDocument{Text: "blue doc", Source: "b", Side: models.SideBlue}
	retriever.errs[models.SideRed] = fmt.Errorf("red collection: %w", ErrNoMatch)
	generator := &fakeGenerator{}
	svc := newTestRAGService(t, retriever, generator)

	response, err := svc.QueryText(context.Background(), "immigration")
	require.Error(t, err)
	assert.Nil(t, response, "no partial comparison is ever returned")
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.Equal(t, 0, generator.calls, "generation must not run without both contexts")
}

func TestQueryTextPropagatesGenerationFailure(t *testing.T) {
	retriever := newFakeRetriever()
	retriever.docs[models.SideRed] = &models.RetrievedDocument{Text: "red doc", Source: "r", Side: models.SideRed}
	retriever.docs[models.SideBlue] = &models.RetrievedDocument{Text: "blue doc", Source: "b", Side: models.SideBlue}
	upstream := errors.New("completion endpoint down")
	generator := &fakeGenerator{err: upstream}
	svc := newTestRAGService(t, retriever, generator)

	response, err := svc.QueryText(context.Background(), "energy")
	require.Error(t, err)
	assert.Nil(t, response)
	assert.ErrorIs(t, err, upstream)
}
