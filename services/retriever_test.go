package services

import (
	"testing"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wojak-labs/meme-rag/models"
)

func TestSourceFromMetadata(t *testing.T) {
	metadata := chromago.NewDocumentMetadata(
		chromago.NewStringAttribute("source", "https://example.com/article"),
	)
	assert.Equal(t, "https://example.com/article", sourceFromMetadata(metadata))
}

func TestSourceFromMetadataWithoutSourceAttribute(t *testing.T) {
	metadata := chromago.NewDocumentMetadata(
		chromago.NewStringAttribute("file_hash", "abc123"),
	)
	assert.Empty(t, sourceFromMetadata(metadata))
}

func TestSourceFromMetadataNil(t *testing.T) {
	assert.Empty(t, sourceFromMetadata(nil))
}

func TestBuildRetrievedDocument(t *testing.T) {
	metadata := chromago.NewDocumentMetadata(
		chromago.NewStringAttribute("source", "https://example.com/red"),
	)
	doc, err := buildRetrievedDocument(models.SideRed, "Focus on economy", metadata)
	require.NoError(t, err)

	assert.Equal(t, "Focus on economy", doc.Text)
	assert.Equal(t, "https://example.com/red", doc.Source)
	assert.Equal(t, models.SideRed, doc.Side)
}

func TestBuildRetrievedDocumentNoMatch(t *testing.T) {
	// An empty collection yields no document groups, which reaches the
	// builder as empty text.
	doc, err := buildRetrievedDocument(models.SideBlue, "", nil)
	require.Error(t, err)
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.Contains(t, err.Error(), "Blue")
}

func TestBuildRetrievedDocumentMissingProvenance(t *testing.T) {
	doc, err := buildRetrievedDocument(models.SideRed, "Focus on economy", nil)
	require.Error(t, err)
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, ErrMissingSource)
}

func TestBuildRetrievedDocumentProvenanceWithoutSource(t *testing.T) {
	metadata := chromago.NewDocumentMetadata(
		chromago.NewStringAttribute("created_by", "rag_service"),
	)
	_, err := buildRetrievedDocument(models.SideRed, "Focus on economy", metadata)
	assert.ErrorIs(t, err, ErrMissingSource)
}
