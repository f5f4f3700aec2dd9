package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/stahnma/gh-starneighbours/internal/commands"
	"github.com/stahnma/gh-starneighbours/internal/config"
	lambdapkg "github.com/stahnma/gh-starneighbours/internal/lambda"
	"github.com/stahnma/gh-starneighbours/internal/logging"
)

var (
	GitSHA   string
	GitDirty string
)

func main() {
	cfg := config.FromEnvironment()
	logging.Setup(logging.Config{Debug: cfg.DebugMode, Format: cfg.LogFormat})

	app, err := commands.NewApp(cfg, GitSHA, GitDirty)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing application")
	}

	if os.Getenv("LAMBDA_TASK_ROOT") != "" {
		awslambda.Start(lambdapkg.NewHandler(app, nil))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := app.NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
	if err := app.SaveCache(); err != nil {
		log.Fatal().Err(err).Msg("Error saving cache")
	}
}
