package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/clock"
	"github.com/pawonsalam/restosuite/internal/cart"
	"github.com/pawonsalam/restosuite/internal/catalog"
	"github.com/pawonsalam/restosuite/internal/cloudwriter"
	"github.com/pawonsalam/restosuite/internal/events"
	"github.com/pawonsalam/restosuite/internal/httpapi"
	"github.com/pawonsalam/restosuite/internal/kvstore"
	"github.com/pawonsalam/restosuite/internal/logger"
	"github.com/pawonsalam/restosuite/internal/models"
	"github.com/pawonsalam/restosuite/internal/orders"
	"github.com/pawonsalam/restosuite/internal/upload"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveMenuCmd = &cobra.Command{
	Use:   "serve-menu",
	Short: "Run the guest menu API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runMenu(ctx, cfg)
	},
}

func init() {
	f := serveMenuCmd.Flags()
	f.String("addr", ":8080", "Listen address")
	f.String("storage", "memory", "Local state backend (memory or sqlite)")
	f.String("sqlite-path", "pawonsalam.db", "SQLite file for the sqlite backend")
	f.String("uploads", "local", "Upload storage (local or s3)")
	f.String("uploads-dir", "public/uploads", "Directory for local uploads")
	f.Bool("kafka-enabled", false, "Publish order and menu events to Kafka")
	f.String("kafka-broker-list", "localhost:9092", "Kafka broker list")

	viper.BindPFlag("menu.addr", f.Lookup("addr"))
	viper.BindPFlag("storage.driver", f.Lookup("storage"))
	viper.BindPFlag("storage.sqlite_path", f.Lookup("sqlite-path"))
	viper.BindPFlag("uploads.driver", f.Lookup("uploads"))
	viper.BindPFlag("uploads.dir", f.Lookup("uploads-dir"))
	viper.BindPFlag("kafka.enabled", f.Lookup("kafka-enabled"))
	viper.BindPFlag("kafka.broker_list", f.Lookup("kafka-broker-list"))

	rootCmd.AddCommand(serveMenuCmd)
}

func runMenu(ctx context.Context, cfg *models.Config) error {
	log := logger.GetLogger()

	kv, err := kvstore.Open(cfg.Storage.Driver, cfg.Storage.SQLitePath)
	if err != nil {
		return errors.Wrap(err, "opening local store")
	}
	defer kv.Close()

	output, err := newEventOutput(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := output.Close(); err != nil {
			log.Warnw("failed to close event output", "error", err)
		}
	}()

	images, uploadDir, err := newImageStore(ctx, cfg.Uploads)
	if err != nil {
		return err
	}

	clk := clock.WallClock
	menu := catalog.NewService(kv, clk, output, cfg.Kafka.MenuTopic)
	if _, err := menu.Load(ctx); err != nil {
		log.Warnw("catalog unavailable, serving defaults", "error", err)
	}

	srv := httpapi.NewMenuServer(httpapi.MenuDeps{
		Catalog:   menu,
		AdminMode: catalog.NewAdminMode(kv),
		Carts:     cart.NewRegistry(kv),
		Orders:    orders.NewService(kv, clk, output, cfg.Kafka.OrdersTopic),
		Uploads:   upload.NewService(images, clk),
		UploadDir: uploadDir,
	})
	log.Infow("starting menu server", "addr", cfg.Menu.Addr, "storage", cfg.Storage.Driver, "uploads", cfg.Uploads.Driver)
	return httpapi.Serve(ctx, httpapi.NewHTTPServer(cfg.Menu.Addr, srv.Handler()))
}

// newEventOutput fans order and menu events out to Kafka (or the console when
// Kafka is off) and to the kitchen Telegram chat when a bot is configured.
func newEventOutput(cfg *models.Config) (events.OutputDestination, error) {
	var outputs events.FanOut
	if cfg.Kafka.Enabled {
		producer, err := events.NewSaramaProducer(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, producer)
	} else {
		outputs = append(outputs, events.NewConsoleOutput(os.Stdout))
	}

	if cfg.Telegram.Token != "" {
		notifier, err := events.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID, cfg.Kafka.OrdersTopic)
		if err != nil {
			outputs.Close()
			return nil, err
		}
		outputs = append(outputs, notifier)
	}
	return outputs, nil
}

func newImageStore(ctx context.Context, cfg models.UploadsConfig) (upload.ImageStore, string, error) {
	switch cfg.Driver {
	case "", "local":
		store, err := upload.NewLocalStore(cfg.Dir)
		if err != nil {
			return nil, "", err
		}
		return store, store.Dir(), nil
	case "s3":
		if cfg.Bucket == "" {
			return nil, "", errors.New("uploads.bucket is required for s3 uploads")
		}
		factory, err := cloudwriter.NewS3WriterFactory(ctx, cfg.Region)
		if err != nil {
			return nil, "", err
		}
		return upload.NewS3Store(factory, cfg.Bucket, cfg.PublicBaseURL), "", nil
	default:
		return nil, "", errors.Errorf("unknown uploads driver %q", cfg.Driver)
	}
}
