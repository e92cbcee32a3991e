package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/clock"
	"github.com/pawonsalam/restosuite/internal/auth"
	"github.com/pawonsalam/restosuite/internal/hr"
	"github.com/pawonsalam/restosuite/internal/httpapi"
	"github.com/pawonsalam/restosuite/internal/logger"
	"github.com/pawonsalam/restosuite/internal/models"
	"github.com/pawonsalam/restosuite/internal/repositories"
	"github.com/pawonsalam/restosuite/internal/repositories/memory"
	"github.com/pawonsalam/restosuite/internal/repositories/postgres"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveHRCmd = &cobra.Command{
	Use:   "serve-hr",
	Short: "Run the RestoHRIS employee API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runHR(ctx, cfg)
	},
}

func init() {
	f := serveHRCmd.Flags()
	f.String("addr", ":5000", "Listen address")
	f.Bool("auto-migrate", false, "Apply database migrations on start")

	viper.BindPFlag("hr.addr", f.Lookup("addr"))
	viper.BindPFlag("database.auto_migrate", f.Lookup("auto-migrate"))

	rootCmd.AddCommand(serveHRCmd)
}

type userStore struct {
	users       repositories.UserRepository
	restaurants repositories.RestaurantRepository
	close       func()
}

func openUserStore(ctx context.Context, cfg models.DatabaseConfig) (*userStore, error) {
	switch cfg.Driver {
	case "", "memory":
		logger.GetLogger().Warn("using in-memory user store, data is lost on exit")
		store := memory.NewStore()
		return &userStore{users: store.Users(), restaurants: store.Restaurants(), close: func() {}}, nil
	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := postgres.ApplyMigrations(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return &userStore{
			users:       postgres.NewUserRepository(pool),
			restaurants: postgres.NewRestaurantRepository(pool),
			close:       pool.Close,
		}, nil
	default:
		return nil, errors.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func runHR(ctx context.Context, cfg *models.Config) error {
	log := logger.GetLogger()

	store, err := openUserStore(ctx, cfg.Database)
	if err != nil {
		return errors.Wrap(err, "opening user store")
	}
	defer store.close()

	clk := clock.WallClock
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, clk)
	svc := hr.NewService(store.users, store.restaurants, tokens, auth.NewLoginThrottle(clk), clk)

	created, err := svc.Bootstrap(ctx, cfg.Auth.BootstrapEmail, cfg.Auth.BootstrapPassword)
	if err != nil {
		return err
	}
	if created {
		log.Infow("created owner account", "email", cfg.Auth.BootstrapEmail)
	}

	srv := httpapi.NewHRServer(svc, tokens, nil)
	log.Infow("starting hr server", "addr", cfg.HR.Addr, "database", cfg.Database.Driver)
	return httpapi.Serve(ctx, httpapi.NewHTTPServer(cfg.HR.Addr, srv.Handler()))
}
