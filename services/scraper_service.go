package services

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/wojak-labs/meme-rag/models"
	"google.golang.org/genai"
)

// articleChunkSize caps how much article text is handed to the
// summarizer; anything past the first chunk is discarded.
const articleChunkSize = 6000

// summaryPause spaces out summarization calls to stay under the
// generation API's rate limits.
const summaryPause = 4 * time.Second

// Summarizer condenses raw article text under a per-side instruction.
type Summarizer interface {
	Summarize(ctx context.Context, instruction, text string) (string, error)
}

// geminiSummarizer runs summaries through a Gemini model with a low
// temperature to keep the output factual.
type geminiSummarizer struct {
	client *genai.Client
	model  string
}

// NewGeminiSummarizer wraps a Gemini client for article summarization.
func NewGeminiSummarizer(client *genai.Client) Summarizer {
	return &geminiSummarizer{client: client, model: "gemini-2.5-flash"}
}

func (s *geminiSummarizer) Summarize(ctx context.Context, instruction, text string) (string, error) {
	contents := genai.Text(instruction)
	if len(contents) == 0 {
		return "", fmt.Errorf("empty summarization instruction")
	}
	result, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(text), &genai.GenerateContentConfig{
		SystemInstruction: contents[0],
		Temperature:       genai.Ptr(float32(0.3)),
	})
	if err != nil {
		return "", fmt.Errorf("gemini summarization failed: %w", err)
	}
	summary := result.Text()
	if summary == "" {
		return "", fmt.Errorf("gemini returned an empty summary")
	}
	return summary, nil
}

// SummaryStore persists one side's article summaries with their source
// links.
type SummaryStore interface {
	AddSummary(ctx context.Context, side models.Side, summary, source string) error
}

// chromaSummaryStore writes summaries into the per-side Chroma
// collections. Documents are embedded server-side from their text.
type chromaSummaryStore struct {
	collections map[models.Side]chromago.Collection
}

// NewChromaSummaryStore builds a store over the two side collections.
func NewChromaSummaryStore(red, blue chromago.Collection) SummaryStore {
	return &chromaSummaryStore{
		collections: map[models.Side]chromago.Collection{
			models.SideRed:  red,
			models.SideBlue: blue,
		},
	}
}

func (s *chromaSummaryStore) AddSummary(ctx context.Context, side models.Side, summary, source string) error {
	collection, ok := s.collections[side]
	if !ok {
		return fmt.Errorf("no collection configured for side %q", side)
	}

	document, err := json.Marshal(map[string]string{"summary": summary})
	if err != nil {
		return fmt.Errorf("failed to marshal summary document: %w", err)
	}

	err = collection.Add(ctx,
		chromago.WithIDs(chromago.DocumentID(uuid.New().String())),
		chromago.WithTexts(string(document)),
		chromago.WithMetadatas(chromago.NewDocumentMetadata(
			chromago.NewStringAttribute("source", source),
		)),
	)
	if err != nil {
		return fmt.Errorf("failed to add summary to chromadb: %w", err)
	}
	return nil
}

// ScraperService fetches articles, summarizes them per side, and feeds
// the summaries into the document store.
type ScraperService struct {
	httpClient *http.Client
	summarizer Summarizer
	store      SummaryStore
	splitter   textsplitter.RecursiveCharacter
	pause      time.Duration
}

// NewScraperService creates the ingestion pipeline with injected
// collaborators.
func NewScraperService(httpClient *http.Client, summarizer Summarizer, store SummaryStore) *ScraperService {
	return &ScraperService{
		httpClient: httpClient,
		summarizer: summarizer,
		store:      store,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(articleChunkSize),
			textsplitter.WithChunkOverlap(0),
		),
		pause: summaryPause,
	}
}

// ScrapeArticle fetches a URL and returns the article body: the joined
// text of every paragraph tag.
func (s *ScraperService) ScrapeArticle(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create article request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("article fetch returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse article html: %w", err)
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, " "), nil
}

// IngestLink runs one article through the full pipeline: scrape,
// truncate, summarize with the side's instruction, store with the link
// as provenance.
func (s *ScraperService) IngestLink(ctx context.Context, side models.Side, link string) error {
	article, err := s.ScrapeArticle(ctx, link)
	if err != nil {
		return err
	}
	if article == "" {
		return fmt.Errorf("article at %s contained no paragraph text", link)
	}

	chunks, err := s.splitter.SplitText(article)
	if err != nil {
		return fmt.Errorf("failed to split article text: %w", err)
	}
	if len(chunks) > 0 {
		article = chunks[0]
	}

	summary, err := s.summarizer.Summarize(ctx, scrapePromptFor(side), article)
	if err != nil {
		return err
	}

	return s.store.AddSummary(ctx, side, summary, link)
}

// IngestLinkFile reads newline-separated links from a file and ingests
// each one. Per-link failures are logged and skipped so one dead link
// doesn't abort a whole batch; the pause between links keeps the
// summarizer under its rate limit.
func (s *ScraperService) IngestLinkFile(ctx context.Context, side models.Side, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open links file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		link := strings.TrimSpace(scanner.Text())
		if link == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.IngestLink(ctx, side, link); err != nil {
			log.Printf("SCRAPER: error processing %s: %v", link, err)
		} else {
			log.Printf("SCRAPER: added doc: %s", link)
		}
		if s.pause > 0 {
			time.Sleep(s.pause)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read links file: %w", err)
	}
	return nil
}
