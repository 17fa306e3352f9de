package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/klubi/folio/internal/apiserver"
	"github.com/klubi/folio/internal/config"
	"github.com/klubi/folio/internal/content"
	"github.com/klubi/folio/internal/controller"
	"github.com/klubi/folio/internal/slot"
	"github.com/klubi/folio/internal/store"
	v1alpha1 "github.com/klubi/folio/pkg/apis/v1alpha1"
	"github.com/klubi/folio/pkg/manifest"
)

func newServeCmd() *cobra.Command {
	var (
		port      int
		host      string
		dataDir   string
		storeType string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the folio content server",
		Long:  "Start the folio API server and the slot syncer.",
		RunE: func(cmd *cobra.Command, args []string) error {
			// 1. Apply CLI overrides on top of the loaded configuration.
			cfg := appConfig
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("data-dir") {
				cfg.Store.DataDir = dataDir
			}
			if cmd.Flags().Changed("store") {
				cfg.Store.Type = storeType
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			// 2. Create logger.
			logger, err := config.NewLogger(cfg.Log)
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			defer logger.Sync()

			// 3. Open the storage backend.
			backend, err := cfg.OpenBackend(logger)
			if err != nil {
				return err
			}
			defer backend.Close()

			// 4. Build and load the content stores.
			provider, err := buildProvider(cfg, backend, logger)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			provider.Load(ctx)

			// 5. Start the syncer so writes from other processes show up here.
			syncer := controller.NewSyncer(logger)
			if err := syncer.Register(provider.Posts); err != nil {
				return err
			}
			if err := syncer.Register(provider.Projects); err != nil {
				return err
			}
			if err := syncer.SetResyncInterval(cfg.Content.ResyncInterval); err != nil {
				return err
			}
			if err := syncer.Start(ctx); err != nil {
				return fmt.Errorf("starting syncer: %w", err)
			}

			// 6. Create and start API server.
			addr := cfg.ServerAddress()
			apiSrv := apiserver.NewServer(addr, provider, logger)

			banner := color.New(color.FgCyan, color.Bold)
			banner.Println("Folio Content Server")
			fmt.Printf("   API Server: http://%s\n", addr)
			fmt.Printf("   Store:      %s\n", cfg.Store.Type)
			if cfg.Store.Type != config.StoreMemory {
				fmt.Printf("   Data Dir:   %s\n", cfg.Store.DataDir)
			}
			fmt.Printf("   Posts:      %d\n", len(provider.Posts.List()))
			fmt.Printf("   Projects:   %d\n", len(provider.Projects.List()))
			fmt.Println()

			errCh := make(chan error, 1)
			go func() {
				if err := apiSrv.Start(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			// 7. Wait for interrupt signal for graceful shutdown.
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case sig := <-sigCh:
				logger.Info("received shutdown signal", zap.String("signal", sig.String()))
			case err := <-errCh:
				logger.Error("API server error", zap.Error(err))
				cancel()
				syncer.Stop()
				return err
			}

			fmt.Println()
			logger.Info("shutting down gracefully...")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()

			syncer.Stop()

			if err := apiSrv.Shutdown(shutdownCtx); err != nil {
				logger.Error("API server shutdown error", zap.Error(err))
			}

			cancel()

			logger.Info("folio stopped")
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 7117, "API server port")
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "API server host")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Data directory (default: ~/.folio/data)")
	cmd.Flags().StringVar(&storeType, "store", "", "Store type: bolt|sqlite|file|memory")

	return cmd
}

// buildProvider creates both content stores over one backend. Each store
// gets its own origin so the syncer can tell local writes from foreign ones.
// A configured seed file replaces the bundled defaults; its records get the
// same key derivation and date stamping as records added through a store.
func buildProvider(cfg *config.Config, backend store.Backend, logger *zap.Logger) (*content.Provider, error) {
	defaultPosts := content.DefaultPosts()
	defaultProjects := content.DefaultProjects()

	if cfg.Content.SeedFile != "" {
		docs, err := manifest.ParseFile(cfg.Content.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("reading seed file: %w", err)
		}
		posts, projects, legacy := manifest.Split(docs)
		now := time.Now()
		if defaultPosts, err = content.SeedPosts(posts, now); err != nil {
			return nil, fmt.Errorf("reading seed file: %w", err)
		}
		projects = append(projects, content.ConvertLegacyProjects(legacy)...)
		if defaultProjects, err = content.SeedProjects(projects, now); err != nil {
			return nil, fmt.Errorf("reading seed file: %w", err)
		}
		logger.Info("using seed file",
			zap.String("path", cfg.Content.SeedFile),
			zap.Int("posts", len(defaultPosts)),
			zap.Int("projects", len(defaultProjects)))
	}

	postAdapter := slot.New[v1alpha1.Post](backend, slot.NewOrigin(), logger)
	projectAdapter := slot.New[v1alpha1.Project](backend, slot.NewOrigin(), logger)

	posts := content.NewPostStore(postAdapter, cfg.Content.PostsSlot, defaultPosts,
		content.WithLogger(logger))
	projects := content.NewProjectStore(projectAdapter, cfg.Content.ProjectsSlot, defaultProjects,
		content.WithLogger(logger),
		content.WithLoadTimeout(cfg.Content.LoadTimeout))

	return content.NewProvider(posts, projects), nil
}
