package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/fsnotify/fsnotify"
	"google.golang.org/genai"

	"github.com/wojak-labs/meme-rag/config"
	"github.com/wojak-labs/meme-rag/models"
	"github.com/wojak-labs/meme-rag/services"
)

func main() {
	linksDir := flag.String("links", "links", "directory of per-side link files (red*.txt, blue*.txt)")
	watch := flag.Bool("watch", false, "keep running and ingest link files as they change")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	if err := cfg.RequireGemini(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.ChromaURL))
	if err != nil {
		log.Fatalf("FATAL: Failed to create chroma client: %v", err)
	}
	defer func() {
		if err := chromaClient.Close(); err != nil {
			log.Printf("Warning: Failed to close chroma client: %v", err)
		}
	}()

	redCollection, err := chromaClient.GetOrCreateCollection(ctx, cfg.RedCollection)
	if err != nil {
		log.Fatalf("FATAL: Failed to get or create %s collection: %v", cfg.RedCollection, err)
	}
	blueCollection, err := chromaClient.GetOrCreateCollection(ctx, cfg.BlueCollection)
	if err != nil {
		log.Fatalf("FATAL: Failed to get or create %s collection: %v", cfg.BlueCollection, err)
	}

	geminiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to create Gemini client: %v", err)
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}
	store := services.NewChromaSummaryStore(redCollection, blueCollection)
	summarizer := services.NewGeminiSummarizer(geminiClient)
	scraper := services.NewScraperService(httpClient, summarizer, store)

	ingestDirectory(ctx, scraper, *linksDir)

	if *watch {
		watchDirectory(ctx, scraper, *linksDir)
	}
}

// ingestDirectory runs every recognized link file in the directory
// through the scraper once.
func ingestDirectory(ctx context.Context, scraper *services.ScraperService, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("FATAL: Failed to read links directory %s: %v", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		side, ok := sideForFile(path)
		if !ok {
			continue
		}
		log.Printf("SCRAPER: Starting %s links from %s", side, path)
		if err := scraper.IngestLinkFile(ctx, side, path); err != nil {
			log.Printf("SCRAPER: error ingesting %s: %v", path, err)
		}
		log.Printf("SCRAPER: Finished %s", path)
	}
}

// watchDirectory keeps the scraper running and re-ingests a link file
// whenever it is written or created. Blocks until the context is
// cancelled.
func watchDirectory(ctx context.Context, scraper *services.ScraperService, dir string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				side, known := sideForFile(event.Name)
				if !known {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					log.Printf("WATCHER: Link file changed: %s. Ingesting...", event.Name)
					if err := scraper.IngestLinkFile(ctx, side, event.Name); err != nil {
						log.Printf("WATCHER ERROR: Failed to ingest %s: %v", event.Name, err)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("WATCHER ERROR: %v", err)
			case <-ctx.Done():
				log.Println("WATCHER: Context cancelled, shutting down watcher.")
				return
			}
		}
	}()

	log.Printf("WATCHER: Watching directory: %s", dir)
	if err := watcher.Add(dir); err != nil {
		log.Printf("WATCHER ERROR: Failed to add path to watcher: %v", err)
		return
	}

	<-ctx.Done()
}

// sideForFile maps a link-file name to its side: red*.txt feeds the Red
// collection, blue*.txt feeds Blue. Anything else is ignored.
func sideForFile(path string) (models.Side, bool) {
	name := strings.ToLower(filepath.Base(path))
	if !strings.HasSuffix(name, ".txt") {
		return "", false
	}
	switch {
	case strings.HasPrefix(name, "red"):
		return models.SideRed, true
	case strings.HasPrefix(name, "blue"):
		return models.SideBlue, true
	default:
		return "", false
	}
}
