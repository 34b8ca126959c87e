package controller

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wojak-labs/meme-rag/models"
	"github.com/wojak-labs/meme-rag/services"
)

// RAGController handles the HTTP requests for the meme generator. It
// depends on the RAG service for comparisons and the meme generator for
// images; neither handler contains business logic of its own.
type RAGController struct {
	ragService    services.RAGService
	memeGenerator services.MemeGenerator
}

// NewRAGController is a constructor function that injects the service
// dependencies from main.
func NewRAGController(ragService services.RAGService, memeGenerator services.MemeGenerator) *RAGController {
	return &RAGController{
		ragService:    ragService,
		memeGenerator: memeGenerator,
	}
}

// QueryText is the gin handler for POST /query/text. It returns one
// generated answer per side plus the source links that grounded them.
// Internal failures map to a fixed message; the underlying error is
// only logged.
func (c *RAGController) QueryText(ctx *gin.Context) {
	var req models.QueryTextRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Query == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No query provided"})
		return
	}

	response, err := c.ragService.QueryText(ctx.Request.Context(), req.Query)
	if err != nil {
		log.Printf("CONTROLLER: error processing text query: %v", err)
		ctx.JSON(http.StatusUnauthorized, "Couldn't process query!")
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// QueryImage is the gin handler for POST /query/image. The two per-side
// contexts come back from a previous /query/text call; they are
// combined into one meme prompt. An exhausted credential rotation is
// not an error: the response then carries a null meme.
func (c *RAGController) QueryImage(ctx *gin.Context) {
	var req models.QueryImageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.RedContext == "" || req.BlueContext == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No context provided"})
		return
	}

	memeContext := services.BuildMemeContext(req.RedContext, req.BlueContext)
	url, ok := c.memeGenerator.Generate(ctx.Request.Context(), memeContext, req.Query)

	response := models.QueryImageResponse{}
	if ok {
		response.Meme = &url
	} else {
		log.Printf("CONTROLLER: failed to generate meme for query '%s'", req.Query)
	}
	ctx.JSON(http.StatusOK, response)
}
