package main

import (
	"context"
	"embed"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/urfave/cli/v3"

	"github.com/dawnlightpress/pages/internal/feat/admin"
	"github.com/dawnlightpress/pages/internal/feat/content"
	"github.com/dawnlightpress/pages/internal/feat/site"
	"github.com/dawnlightpress/pages/internal/web"
	"github.com/dawnlightpress/pages/pkg/dp/app"
	"github.com/dawnlightpress/pages/pkg/dp/config"
	"github.com/dawnlightpress/pages/pkg/dp/database"
	"github.com/dawnlightpress/pages/pkg/dp/git"
	"github.com/dawnlightpress/pages/pkg/dp/i18n"
	"github.com/dawnlightpress/pages/pkg/dp/logger"
	"github.com/dawnlightpress/pages/pkg/dp/middleware"
)

//go:embed assets/migrations/sqlite/*.sql
var migrationsFS embed.FS

//go:embed assets/templates/site/*.html
var templatesFS embed.FS

// set via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx := context.Background()

	cmd := &cli.Command{
		Name:  "pages",
		Usage: "Content manager and static site generator for Dawnlight Press",
		Commands: []*cli.Command{
			{
				Name:  "version",
				Usage: "Print version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Printf("pages version %s\n", version)
					return nil
				},
			},
			{
				Name:  "build",
				Usage: "Generate the static site once",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Value: false, Usage: "Watch the content tree and regenerate on change"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runBuild(ctx, cmd.Bool("watch"))
				},
			},
			{
				Name:  "serve",
				Usage: "Run the admin API and the site preview server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runServe(ctx)
				},
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runBuild(ctx context.Context, watch bool) error {
	cfg := config.Load()
	log := logger.New(cfg.Log.Level)

	store := content.NewFSStore(cfg.Content.Root, log)
	svc := content.NewService(store, log)

	gen, err := site.NewGenerator(templatesFS, cfg, svc, log)
	if err != nil {
		return err
	}

	result, err := gen.Generate(ctx)
	if err != nil {
		return err
	}
	log.Infof("Generated %d/%d pages into %s", result.PagesGenerated, result.TotalRoutes, cfg.Site.OutputDir)

	if !watch {
		if len(result.Errors) > 0 {
			return fmt.Errorf("%d routes failed", len(result.Errors))
		}
		return nil
	}

	watcher, err := site.NewWatcher(gen, cfg.Content.Root, log)
	if err != nil {
		return err
	}

	watchCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Infof("Watching %s for changes", cfg.Content.Root)
	return watcher.Run(watchCtx)
}

func runServe(ctx context.Context) error {
	cfg := config.Load()
	log := logger.New(cfg.Log.Level)

	log.Infof("Starting Pages [%s mode]", cfg.Env)
	log.Infof("Database: %s", cfg.Database.Path)
	log.Infof("Content root: %s", cfg.Content.Root)

	db := database.New(migrationsFS, cfg, log)
	db.SetMigrationPath("assets/migrations/sqlite")

	contentStore := content.NewFSStore(cfg.Content.Root, log)
	contentSvc := content.NewService(contentStore, log)

	gen, err := site.NewGenerator(templatesFS, cfg, contentSvc, log)
	if err != nil {
		return err
	}

	adminStore := admin.NewStore(db)
	adminSvc := admin.NewService(cfg, adminStore, contentStore, gen, git.NewClient(log), log)
	adminHandler := admin.NewHandler(adminSvc, log)
	scheduler := admin.NewScheduler(adminSvc, log)

	catalog := i18n.New(cfg.Site.Locales, cfg.Site.DefaultLocale)
	fileServer, err := web.NewFileServer(templatesFS, cfg, catalog, log)
	if err != nil {
		return err
	}

	router := chi.NewRouter()
	middleware.DefaultStack(router)

	deps := []any{db, adminHandler, scheduler}

	starts, stops, registrars := app.Setup(ctx, router, deps...)
	if err := app.Start(ctx, log, starts, stops, registrars, router); err != nil {
		log.Errorf("Startup failed: %v", err)
		return err
	}

	previewRouter := chi.NewRouter()
	fileServer.RegisterRoutes(previewRouter)

	adminSrv := app.NewServer(router, cfg.Server.Addr)
	previewSrv := app.NewServer(previewRouter, cfg.Server.PreviewAddr)

	go app.Serve(adminSrv)
	log.Infof("Admin API listening on %s", cfg.Server.Addr)

	go app.Serve(previewSrv)
	log.Infof("Preview server listening on %s", cfg.Server.PreviewAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Shutdown(log, stops, adminSrv, previewSrv)
	log.Info("Server stopped")
	return nil
}
