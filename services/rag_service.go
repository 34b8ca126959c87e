package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wojak-labs/meme-rag/models"
)

// queryTimeout caps one whole comparison pipeline: both retrievals plus
// both generations.
const queryTimeout = 60 * time.Second

// RAGService answers a query with one generated response per side,
// each grounded in that side's most relevant scraped document.
type RAGService interface {
	QueryText(ctx context.Context, query string) (*models.QueryTextResponse, error)
}

// ragServiceImpl holds the dependencies it needs to do its job.
type ragServiceImpl struct {
	retriever DocumentRetriever
	generator TextGenerator
	cache     *PromptCache
}

// NewRAGService creates the orchestrator with injected collaborators.
func NewRAGService(retriever DocumentRetriever, generator TextGenerator, cache *PromptCache) RAGService {
	return &ragServiceImpl{
		retriever: retriever,
		generator: generator,
		cache:     cache,
	}
}

// QueryText implements RAGService. Both sides are retrieved in
// parallel, then both answers are generated in parallel; if either side
// fails at either stage the whole call fails. There is no partial
// result.
func (r *ragServiceImpl) QueryText(ctx context.Context, query string) (*models.QueryTextResponse, error) {
	log.Printf("SERVICE: Querying RAG with: '%s'", query)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var redDoc, blueDoc *models.RetrievedDocument
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		redDoc, err = r.retriever.RetrieveTop(gctx, models.SideRed, query)
		return err
	})
	g.Go(func() error {
		var err error
		blueDoc, err = r.retriever.RetrieveTop(gctx, models.SideBlue, query)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("could not retrieve context: %w", err)
	}

	var redResponse, blueResponse string
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		redResponse, err = r.generateForDocument(gctx, redDoc, query)
		return err
	})
	g.Go(func() error {
		var err error
		blueResponse, err = r.generateForDocument(gctx, blueDoc, query)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("could not generate response: %w", err)
	}

	return &models.QueryTextResponse{
		BlueResponse: blueResponse,
		RedResponse:  redResponse,
		BlueLink:     blueDoc.Source,
		RedLink:      redDoc.Source,
	}, nil
}

// generateForDocument builds the fixed-shape prompt for one side and
// runs it through the cache-wrapped generator.
func (r *ragServiceImpl) generateForDocument(ctx context.Context, doc *models.RetrievedDocument, query string) (string, error) {
	userMessage := fmt.Sprintf("Context: %s\n\nQuery: %s\n\nResponse:", doc.Text, query)
	return r.cache.GetOrCompute(comparisonSystemPrompt, userMessage, func() (string, error) {
		return r.generator.Generate(ctx, comparisonSystemPrompt, userMessage)
	})
}
