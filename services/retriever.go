package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"

	"github.com/wojak-labs/meme-rag/models"
)

var (
	// ErrNoMatch is returned when a side's collection yields no result
	// for the query (empty collection included).
	ErrNoMatch = errors.New("no documents matched the query")

	// ErrMissingSource is returned when the top match carries no source
	// metadata; a comparison answer without provenance is useless.
	ErrMissingSource = errors.New("retrieved document has no source metadata")
)

// DocumentRetriever finds the single most relevant document for a query
// within one side's partition of the store.
type DocumentRetriever interface {
	RetrieveTop(ctx context.Context, side models.Side, query string) (*models.RetrievedDocument, error)
}

// chromaRetriever issues top-1 similarity queries against per-side
// Chroma collections. Embedding happens server-side from the query text.
type chromaRetriever struct {
	collections map[models.Side]chromago.Collection
}

// NewChromaRetriever builds a retriever over the two side collections.
func NewChromaRetriever(red, blue chromago.Collection) DocumentRetriever {
	return &chromaRetriever{
		collections: map[models.Side]chromago.Collection{
			models.SideRed:  red,
			models.SideBlue: blue,
		},
	}
}

func (r *chromaRetriever) RetrieveTop(ctx context.Context, side models.Side, query string) (*models.RetrievedDocument, error) {
	collection, ok := r.collections[side]
	if !ok {
		return nil, fmt.Errorf("no collection configured for side %q", side)
	}

	results, err := collection.Query(ctx,
		chromago.WithQueryTexts(query),
		chromago.WithNResults(1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s collection: %w", side, err)
	}

	var text string
	if groups := results.GetDocumentsGroups(); len(groups) > 0 && len(groups[0]) > 0 {
		text = groups[0][0].ContentString()
	}
	var metadata chromago.DocumentMetadata
	if groups := results.GetMetadatasGroups(); len(groups) > 0 && len(groups[0]) > 0 {
		metadata = groups[0][0]
	}
	return buildRetrievedDocument(side, text, metadata)
}

// buildRetrievedDocument validates the top match for one side. Zero
// results (empty text included) and missing provenance are distinct
// failures; a match without a source link is unusable.
func buildRetrievedDocument(side models.Side, text string, metadata chromago.DocumentMetadata) (*models.RetrievedDocument, error) {
	if text == "" {
		return nil, fmt.Errorf("%s collection: %w", side, ErrNoMatch)
	}
	source := sourceFromMetadata(metadata)
	if source == "" {
		return nil, fmt.Errorf("%s collection: %w", side, ErrMissingSource)
	}
	return &models.RetrievedDocument{Text: text, Source: source, Side: side}, nil
}

// sourceFromMetadata pulls the "source" attribute out of a document's
// metadata. The metadata type has no public accessor for arbitrary
// keys, so it goes through a JSON round trip to a plain map.
func sourceFromMetadata(metadata chromago.DocumentMetadata) string {
	if metadata == nil {
		return ""
	}
	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		log.Printf("WARN: could not marshal document metadata: %v", err)
		return ""
	}
	var metadataMap map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &metadataMap); err != nil {
		log.Printf("WARN: could not unmarshal document metadata: %v", err)
		return ""
	}
	source, _ := metadataMap["source"].(string)
	return source
}
