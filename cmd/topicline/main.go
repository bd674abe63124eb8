package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/topicline/topicline/pkg/config"
	"github.com/topicline/topicline/pkg/crm"
	"github.com/topicline/topicline/pkg/logger"
	"github.com/topicline/topicline/pkg/relay"
	"github.com/topicline/topicline/pkg/server"
	"github.com/topicline/topicline/pkg/telegram"
)

const component = "main"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Environment)

	gateway, err := telegram.NewGateway(cfg.BotToken, cfg.GroupID, telegram.Options{})
	if err != nil {
		logger.ErrorCF(component, "Failed to create Telegram gateway", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	orchestrator := relay.NewOrchestrator(gateway, telegram.IsTopicInvalid)
	filter := relay.NewFilter(cfg.IsTeamSender)
	crmClient := crm.NewClient(cfg.CrmBaseURL, cfg.CrmAPIKey)

	srv := server.New(orchestrator, filter, crmClient, cfg.StrictInboundValidation)
	srv.Start(cfg.Port)
	logger.InfoCF(component, "Relay started", map[string]interface{}{
		"port":        cfg.Port,
		"group_id":    cfg.GroupID,
		"environment": cfg.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registerWebhook(ctx, gateway, cfg)

	if !cfg.IsProduction() {
		go selfTest(cfg.Port)
	}

	<-ctx.Done()
	logger.InfoC(component, "Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Best effort: Telegram keeps retrying deliveries to a dead webhook,
	// so try to deregister, but never let a failure block shutdown.
	if err := gateway.DeregisterWebhook(shutdownCtx); err != nil {
		logger.WarnCF(component, "Webhook cleanup failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.WarnCF(component, "HTTP shutdown error", map[string]interface{}{
			"error": err.Error(),
		})
	}
	logger.InfoC(component, "Shutdown complete")
}

// registerWebhook points Telegram at our webhook endpoint. Failure is not
// fatal: local setups without HTTPS can still exercise the send path.
func registerWebhook(ctx context.Context, gateway *telegram.Gateway, cfg *config.Config) {
	if cfg.WebhookBaseURL == "" {
		logger.WarnC(component, "WEBHOOK_BASE_URL not set, skipping webhook registration")
		return
	}

	regCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := gateway.RegisterWebhook(regCtx, cfg.WebhookBaseURL); err != nil {
		logger.WarnCF(component, "Webhook registration failed (HTTPS is required in production)", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// selfTest fires one request at our own send endpoint so a fresh dev setup
// immediately shows whether the bot can reach the group. Disabled in
// production.
func selfTest(port int) {
	time.Sleep(2 * time.Second)

	client := resty.New().SetTimeout(30 * time.Second)
	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"chat_id":        0,
			"message":        "Startup self-test: the relay can reach this group.",
			"bubble_chat_id": "relay-self-test",
			"owner":          "Relay",
		}).
		Post(fmt.Sprintf("http://localhost:%d/api/telegram/send", port))
	if err != nil {
		logger.WarnCF(component, "Self-test request failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if resp.IsError() {
		logger.WarnCF(component, "Self-test endpoint returned an error", map[string]interface{}{
			"status": resp.StatusCode(),
			"body":   resp.String(),
		})
		return
	}
	logger.InfoCF(component, "Self-test succeeded", map[string]interface{}{
		"response": resp.String(),
	})
}
