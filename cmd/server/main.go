package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/dispatch/internal/agents"
	"github.com/eldtechnologies/dispatch/internal/api"
	"github.com/eldtechnologies/dispatch/internal/config"
	"github.com/eldtechnologies/dispatch/internal/engine"
	"github.com/eldtechnologies/dispatch/internal/queue"
	"github.com/eldtechnologies/dispatch/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Initialize key-value store
	var kv store.KV
	if cfg.RedisURL != "" {
		redisStore, err := store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		kv = redisStore
		logger.Info().Msg("connected to Redis")
	} else {
		kv = store.NewMemstore()
		logger.Warn().Msg("REDIS_URL not set, using in-memory store")
	}
	defer kv.Close()

	// Initialize record store
	var records store.RecordStore
	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		records = pgStore
		logger.Info().Msg("connected to PostgreSQL")
	} else {
		sqliteStore, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		records = sqliteStore
		logger.Info().Str("path", cfg.SQLitePath).Msg("using SQLite record store")
	}
	defer records.Close()

	// Initialize reasoning engine client
	eng := engine.NewClient(cfg.EngineURL, cfg.EngineAPIKey, cfg.EngineModel, cfg.EngineTimeout)

	// Wire up the agent layer
	registry := queue.NewRegistry(kv, cfg.WorkerInterval, logger)
	memory := agents.NewMemory(kv)
	tools := agents.NewTools(records, registry, logger)
	agentRouter := agents.NewRouter(memory, tools, eng, records, logger)

	registerJobHandlers(registry, agentRouter, logger)
	registry.StartAll()
	defer registry.StopAll()

	// Create router
	router := api.NewRouter(logger, agentRouter, kv, records, api.Config{
		MessageRateLimit:  cfg.MessageRateLimit,
		MessageRateWindow: cfg.MessageRateWindow,
	})

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting dispatch server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}

// registerJobHandlers attaches a handler to each background topic.
func registerJobHandlers(registry *queue.Registry, agentRouter *agents.Router, logger zerolog.Logger) {
	registry.Register(queue.TopicWorkflows, workflowJobHandler(logger))
	registry.Register(queue.TopicAgents, agentJobHandler(agentRouter, logger))
	registry.Register(queue.TopicVoice, voiceJobHandler(logger))
}

// workflowJobHandler drains the workflows topic. There is no automatic
// retry: a failed job is logged and dropped by the worker, and recovery is
// an explicit retry_workflow job scheduled by the caller.
func workflowJobHandler(logger zerolog.Logger) queue.Handler {
	return func(ctx context.Context, job *queue.Job) error {
		var payload struct {
			Type               string         `json:"type"`
			WorkflowInstanceID string         `json:"workflowInstanceId"`
			Data               map[string]any `json:"data"`
		}
		if err := json.Unmarshal(job.Data, &payload); err != nil {
			return err
		}

		// Tool-triggered jobs carry the workflow name inside data.
		instanceID := payload.WorkflowInstanceID
		if instanceID == "" {
			instanceID, _ = payload.Data["workflow_type"].(string)
		}

		switch payload.Type {
		case queue.JobExecuteWorkflow, queue.JobRetryWorkflow:
			logger.Info().
				Str("workflow_instance_id", instanceID).
				Str("type", payload.Type).
				Msg("executing workflow")
			return executeWorkflow(ctx, instanceID, payload.Data)
		case queue.JobCleanupWorkflow:
			logger.Info().Str("workflow_instance_id", instanceID).Msg("cleaning up workflow")
			return nil
		default:
			logger.Warn().Str("type", payload.Type).Msg("unknown workflow job type")
			return nil
		}
	}
}

// agentJobHandler drains the agents topic. Queued messages go through the
// same routing pipeline as the HTTP entry point.
func agentJobHandler(agentRouter *agents.Router, logger zerolog.Logger) queue.Handler {
	return func(ctx context.Context, job *queue.Job) error {
		var payload struct {
			Type        string               `json:"type"`
			WorkspaceID string               `json:"workspaceId"`
			UserID      string               `json:"userId"`
			Message     string               `json:"message"`
			Business    *agents.BusinessInfo `json:"business,omitempty"`
		}
		if err := json.Unmarshal(job.Data, &payload); err != nil {
			return err
		}

		switch payload.Type {
		case queue.JobProcessMessage:
			reply := agentRouter.Route(ctx, payload.Message, agents.Context{
				WorkspaceID: payload.WorkspaceID,
				UserID:      payload.UserID,
				Business:    payload.Business,
			})
			logger.Info().
				Str("workspace_id", payload.WorkspaceID).
				Int("intents", len(reply.Intents)).
				Msg("processed queued message")
			return nil
		case queue.JobTrainAgent, queue.JobUpdateMemory:
			logger.Info().Str("type", payload.Type).Str("workspace_id", payload.WorkspaceID).Msg("agent maintenance job")
			return nil
		default:
			logger.Warn().Str("type", payload.Type).Msg("unknown agent job type")
			return nil
		}
	}
}

// voiceJobHandler drains the voice topic.
func voiceJobHandler(logger zerolog.Logger) queue.Handler {
	return func(ctx context.Context, job *queue.Job) error {
		var payload struct {
			Type   string `json:"type"`
			CallID string `json:"callId"`
		}
		if err := json.Unmarshal(job.Data, &payload); err != nil {
			return err
		}

		switch payload.Type {
		case queue.JobProcessCall, queue.JobTranscribeAudio, queue.JobGenerateResponse:
			logger.Info().Str("type", payload.Type).Str("call_id", payload.CallID).Msg("voice job")
			return nil
		default:
			logger.Warn().Str("type", payload.Type).Msg("unknown voice job type")
			return nil
		}
	}
}

// executeWorkflow runs the named workflow instance's steps.
func executeWorkflow(ctx context.Context, instanceID string, data map[string]any) error {
	if instanceID == "" {
		return errors.New("workflow job missing workflowInstanceId")
	}
	// Workflow definitions live with the caller; the queue's job here is
	// guaranteed delivery. Step execution happens through the workflow
	// responder's intents.
	_ = ctx
	_ = data
	return nil
}
