package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bookify/internal/adapter"
	"bookify/internal/core"
	"bookify/internal/notify"
	"bookify/pkg/database"
	"bookify/pkg/http_client"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	var (
		addr      string
		dbPath    string
		booksPath string
		geminiKey string
		jwtSecret string
	)

	root := &cobra.Command{
		Use:   "bookify-api",
		Short: "Book catalog and reading API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(addr, dbPath, booksPath, geminiKey, jwtSecret)
		},
	}
	root.Flags().StringVar(&addr, "addr", getenv("ADDR", ":8080"), "listen address")
	root.Flags().StringVar(&dbPath, "db", getenv("DB_PATH", "bookify.db"), "sqlite database path")
	root.Flags().StringVar(&booksPath, "books", os.Getenv("BOOKS_PATH"), "catalog JSON file (built-in catalog when empty)")
	root.Flags().StringVar(&geminiKey, "gemini-key", os.Getenv("GEMINI_API_KEY"), "Gemini API key (assistant falls back to canned replies when empty)")
	root.Flags().StringVar(&jwtSecret, "jwt-secret", getenv("JWT_SECRET", "dev-secret-change-me"), "HMAC secret for session tokens")

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func run(addr, dbPath, booksPath, geminiKey, jwtSecret string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := database.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		return err
	}

	books := adapter.SeedBooks()
	if booksPath != "" {
		books, err = adapter.LoadBooksFromJSON(booksPath)
		if err != nil {
			return err
		}
	}
	bookRepo := adapter.NewBookRepo(books)

	catalog := core.NewCatalogService(bookRepo)
	library := core.NewLibraryService(adapter.NewLibraryStore(), adapter.NewFavoritesRepo(db), bookRepo)

	gemini := adapter.NewGeminiClient(geminiKey, "", 2, http_client.CreateHTTPClient(30*time.Second))
	assistant := core.NewAssistantService(gemini, logger)

	hub := notify.NewHub(logger)
	go hub.Run()
	library.OnChange(hub.Publish)

	h := adapter.NewHandler(catalog, library, assistant, adapter.NewUserRepo(db), hub.Handler(), []byte(jwtSecret), logger)

	logger.Info("listening", "addr", addr, "books", len(books), "assistant_configured", gemini.Configured())
	return http.ListenAndServe(addr, h.Routes())
}
