package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/bsparty/bullshit-services/configs"
	"github.com/bsparty/bullshit-services/internal/comm"
	nats "github.com/bsparty/bullshit-services/internal/nats"
	"github.com/bsparty/bullshit-services/internal/roundsvc/broker"
	"github.com/bsparty/bullshit-services/internal/roundsvc/db"
	handlers "github.com/bsparty/bullshit-services/internal/roundsvc/handlers"
	"github.com/bsparty/bullshit-services/internal/roundsvc/service"
	"github.com/bsparty/bullshit-services/internal/roundsvc/store"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "round"

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	// pg connection
	dbpool, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	// mongo holds the prompt bank
	mongoDB, mongoCancel, err := db.ConnectMongo()
	if err != nil {
		log.Fatalf("Failed to connect to Mongo: %v", err)
	}
	defer mongoCancel()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		mongoDB.Client().Disconnect(ctx)
	}()
	log.Printf("mongo connection established successfully")

	roundStore := store.NewRoundStore(dbpool)
	answerStore := store.NewAnswerStore(dbpool)
	voteStore := store.NewVoteStore(dbpool)
	scoreStore := store.NewScoreStore(dbpool)
	playerStore := store.NewPlayerStore(dbpool)
	gameStore := store.NewGameStore(dbpool)
	promptStore := store.NewPromptStore(mongoDB)

	gameService := service.NewGameService(gameStore)
	submissionService := service.NewSubmissionService(answerStore, voteStore)
	scoreService := service.NewScoreService(roundStore, scoreStore, answerStore, voteStore, promptStore)
	roundService := service.NewRoundService(roundStore, answerStore, voteStore,
		playerStore, promptStore, scoreService, config.ResultsSeconds())

	// Connect to NATS
	n, err := nats.Connect(SERVICE_NAME)
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	// init peer message broker
	b := broker.NewBroker(n.Conn, roundService, submissionService, scoreService)

	// subscribe to socket gateway requests
	subGateway, err := b.SubscribeGateway(comm.SubjectRoundService)
	if err != nil {
		log.Errorf("Error: unable to subscribe to queue %v", err)
		os.Exit(0)
	}

	// subscribe to the outbound stream for session echo merging
	subEvents, err := b.SubscribeEvents(comm.SubjectGateway)
	if err != nil {
		log.Errorf("Error: unable to subscribe to queue %v", err)
		os.Exit(0)
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(roundService, scoreService, gameService)
	h.InitAuth()
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + os.Getenv("ROUND_SERVICE_PORT"),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	subGateway.Unsubscribe()
	subEvents.Unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
