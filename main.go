package main

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"boardhub-api/api"
	"boardhub-api/domain"
	"boardhub-api/storage"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}
	connStr := os.Getenv("STORAGE_CONNECTION_STRING")
	tables := storage.Tables{
		Workspaces: os.Getenv("WORKSPACES_TABLE"),
		Boards:     os.Getenv("BOARDS_TABLE"),
		BoardLists: os.Getenv("BOARD_LISTS_TABLE"),
		Tasks:      os.Getenv("TASKS_TABLE"),
		Activities: os.Getenv("ACTIVITIES_TABLE"),
	}
	if connStr == "" || tables.Workspaces == "" || tables.Boards == "" ||
		tables.BoardLists == "" || tables.Tasks == "" || tables.Activities == "" {
		log.Fatal("missing storage config")
	}
	feedQueueName := os.Getenv("ACTIVITY_FEED_QUEUE")

	store, err := storage.New(connStr, tables, feedQueueName)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	var rc *redis.Client
	if redisConn := os.Getenv("REDIS_CONNECTION_STRING"); redisConn != "" {
		rc = redis.NewClient(redisOptions(redisConn))
	}

	cacheTTL := 5 * time.Minute
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			log.Fatalf("invalid CACHE_TTL: %v", err)
		}
		cacheTTL = d
	}

	var boardStore domain.BoardStore = store.Boards()
	var taskStore domain.TaskStore = store.Tasks()
	if rc != nil {
		boardStore = storage.NewCachedBoardStore(boardStore, rc, cacheTTL)
		taskStore = storage.NewCachedTaskStore(taskStore, rc, cacheTTL)
	}

	var deduper api.Deduper
	if rc != nil {
		dedupeTTL := 24 * time.Hour
		if v := os.Getenv("DEDUPER_TTL"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				log.Fatalf("invalid DEDUPER_TTL: %v", err)
			}
			dedupeTTL = d
		}
		deduper = api.NewRedisDeduper(rc, dedupeTTL)
	}

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	logger := log.New()

	var feed domain.FeedPublisher
	if pub := store.Feed(); pub != nil {
		feed = pub
	}
	recorder := domain.NewRecorder(store.Activities(), feed, logger)
	defer recorder.Close()

	workspaces := domain.NewWorkspaceService(store.Workspaces(), recorder)
	services := api.Services{
		Workspaces: workspaces,
		Boards:     domain.NewBoardService(boardStore, workspaces, recorder),
		BoardLists: domain.NewBoardListService(store.BoardLists(), workspaces),
		Tasks:      domain.NewTaskService(taskStore, workspaces),
	}

	var auth *api.Auth
	if os.Getenv("LOCAL_AUTH_MODE") != "" {
		auth = api.NewAuth(nil, "", "")
	} else {
		audience := os.Getenv("AUTH_AUDIENCE")
		authDomain := os.Getenv("AUTH_DOMAIN")
		if audience == "" || authDomain == "" {
			log.Fatal("missing auth config")
		}
		jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", authDomain)
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			log.Fatalf("jwks: %v", err)
		}
		auth = api.NewAuth(jwks, audience, "https://"+authDomain+"/")
	}

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddleware("boardhub"))
	e.GET("/metrics", echoprometheus.NewHandler())

	api.Register(e, services, auth, deduper, logger)

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("FUNCTIONS_CUSTOMHANDLER_PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}

// redisOptions parses either a redis URL or the Azure-style
// "host:port,password=...,ssl=true" connection string.
func redisOptions(conn string) *redis.Options {
	opts, err := redis.ParseURL(conn)
	if err == nil {
		return opts
	}
	parts := strings.Split(conn, ",")
	opts = &redis.Options{Addr: parts[0]}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(kv[0]) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.ToLower(kv[1]) == "true" {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts
}
