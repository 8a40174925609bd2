package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/gorbit99/wics-extension-sub000/cache"
	"github.com/gorbit99/wics-extension-sub000/catalog"
	"github.com/gorbit99/wics-extension-sub000/config"
	"github.com/gorbit99/wics-extension-sub000/handlers"
	"github.com/gorbit99/wics-extension-sub000/middleware"
	"github.com/gorbit99/wics-extension-sub000/queue"
	"github.com/gorbit99/wics-extension-sub000/storage"
	"github.com/gorbit99/wics-extension-sub000/wanikani"
)

func init() {
	// Load .env file if not in production environment
	if os.Getenv("RAILWAY_ENVIRONMENT_NAME") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Printf("Warning: .env file not found, environment variables might not be loaded: %v", err)
		}
	}
}

func main() {
	env := config.Load()

	db, err := config.Connect(env)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	store, err := storage.NewGormStore(db)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	client := wanikani.NewClient(env.WaniKaniAPIURL, env.WaniKaniToken)
	subjects := cache.New(store, "wkof/subjects", cache.SubjectCacheTime, client.Subjects)
	assignments := cache.New(store, "wkof/assignments", cache.AssignmentCacheTime, client.Assignments)

	repo := storage.NewDeckRepository(store, catalog.NewSubjectCatalog(subjects))

	placement, err := queue.ParsePlacement(env.Placement)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	reconciler := queue.NewReconciler(repo, placement, env.UserLevel)

	api := &handlers.APIHandler{
		Repo:        repo,
		Reconciler:  reconciler,
		Subjects:    subjects,
		Assignments: assignments,
	}
	tokens := &handlers.TokenHandler{Secret: env.JWTSecret}
	guard := func(next http.HandlerFunc) http.Handler {
		return middleware.RequireToken(env.JWTSecret, next)
	}

	mux := http.NewServeMux()

	// Token
	mux.HandleFunc("POST /api/token", tokens.IssueToken)

	// Decks
	mux.HandleFunc("GET /api/decks", api.GetDecks)
	mux.Handle("POST /api/decks", guard(api.CreateDeck))
	mux.HandleFunc("GET /api/decks/{deckName}", api.GetDeckByName)
	mux.HandleFunc("GET /api/decks/{deckName}/stats", api.GetDeckStats)
	mux.Handle("PUT /api/decks/{deckName}", guard(api.UpdateDeckByName))
	mux.Handle("DELETE /api/decks/{deckName}", guard(api.DeleteDeckByName))
	mux.HandleFunc("GET /api/decks/{deckName}/export", api.ExportDeck)
	mux.Handle("POST /api/decks/import", guard(api.ImportDeck))

	// Items
	mux.Handle("POST /api/decks/{deckName}/items", guard(api.CreateItem))
	mux.HandleFunc("GET /api/decks/{deckName}/items/{itemID}", api.GetItem)
	mux.Handle("PUT /api/decks/{deckName}/items/{itemID}", guard(api.UpdateItem))
	mux.Handle("DELETE /api/decks/{deckName}/items/{itemID}", guard(api.DeleteItem))
	mux.HandleFunc("GET /api/decks/{deckName}/items/{itemID}/fields/{field}", api.GetItemField)
	mux.Handle("PUT /api/decks/{deckName}/items/{itemID}/fields/{field}", guard(api.SetItemField))

	// Queues
	mux.HandleFunc("POST /api/queue/reviews", api.MergeReviews)
	mux.HandleFunc("POST /api/queue/lessons", api.MergeLessons)
	mux.Handle("POST /api/queue/reviews/outcomes", guard(api.RecordProgress))
	mux.Handle("POST /api/queue/lessons/completions", guard(api.RecordLessonCompletions))

	// Catalog
	mux.HandleFunc("GET /api/subjects", api.GetSubjects)
	mux.Handle("POST /api/sync", guard(api.SyncCaches))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   env.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(mux)

	serverAddr := "127.0.0.1:" + env.Port
	log.Printf("listening on %s", serverAddr)
	if err := http.ListenAndServe(serverAddr, corsHandler); err != nil {
		log.Fatal(err)
	}
}
