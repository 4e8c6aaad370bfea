package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appanalytics "github.com/jhoicas/pos-inventario-api/internal/application/analytics"
	"github.com/jhoicas/pos-inventario-api/internal/application/auth"
	"github.com/jhoicas/pos-inventario-api/internal/application/inventory"
	"github.com/jhoicas/pos-inventario-api/internal/application/returns"
	"github.com/jhoicas/pos-inventario-api/internal/application/sales"
	"github.com/jhoicas/pos-inventario-api/internal/application/settings"
	"github.com/jhoicas/pos-inventario-api/internal/application/usecase"
	"github.com/jhoicas/pos-inventario-api/internal/domain/repository"
	"github.com/jhoicas/pos-inventario-api/internal/infrastructure/cache"
	"github.com/jhoicas/pos-inventario-api/internal/infrastructure/export"
	"github.com/jhoicas/pos-inventario-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/pos-inventario-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pos-inventario-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pos-inventario-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/pos-inventario-api/internal/interfaces/http"
	"github.com/jhoicas/pos-inventario-api/pkg/config"
	"github.com/jhoicas/pos-inventario-api/pkg/logger"
)

// dataLayer lo que cada backend de persistencia entrega a los casos de uso.
type dataLayer struct {
	tx          inventory.TxRunner
	repos       repository.Repositories
	users       repository.UserRepository
	analytics   repository.AnalyticsRepository
	snapshotter settings.Snapshotter
	close       func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	loc := cfg.App.Location()
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Str("timezone", loc.String()).
		Msg("iniciando aplicación")

	ctx := context.Background()

	data, err := openDataLayer(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("capa de datos")
	}
	defer data.close()

	backupStore, err := openBackupStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento de backups")
	}

	kpiCache := openKPICache(ctx, cfg, log)

	engine := inventory.NewEngine()
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()

	settingsUC := settings.NewUseCase(data.tx, data.repos.Settings, log.Component("settings"))
	backupUC := settings.NewBackupUseCase(data.snapshotter, backupStore, log.Component("backup"), loc)
	registerMovementUC := inventory.NewRegisterMovementUseCase(data.tx, engine, data.repos.Movements, data.repos.Products, log.Component("inventory"))
	productUC := usecase.NewProductUseCase(data.tx, engine, data.repos.Products, data.repos.Categories, settingsUC, log.Component("products"))
	categoryUC := usecase.NewCategoryUseCase(data.repos.Categories, data.repos.Products)
	imageUploadUC := usecase.NewImageUploadUseCase(cfg.Upload.Dir, cfg.Upload.MaxBytes)
	salesUC := sales.NewUseCase(data.tx, engine, data.repos.Sales, pdfGenerator, settingsUC, log.Component("sales"), loc)
	returnsUC := returns.NewUseCase(data.tx, engine, data.repos.Returns, data.repos.Sales, log.Component("returns"), loc)
	dashboardUC := appanalytics.NewDashboardUseCase(data.analytics, kpiCache, cfg.Redis.KPITTL, log.Component("dashboard"), loc)
	salesUC.SetKPIInvalidator(dashboardUC)
	returnsUC.SetKPIInvalidator(dashboardUC)
	reportUC := appanalytics.NewReportUseCase(data.analytics, map[string]appanalytics.ReportRenderer{
		appanalytics.FormatPDF:   pdfGenerator,
		appanalytics.FormatExcel: export.ExcelRenderer{},
		appanalytics.FormatCSV:   export.CSVRenderer{},
	}, settingsUC, log.Component("reports"), loc)
	userUC := usecase.NewUserUseCase(data.users)
	authUC := auth.NewAuthUseCase(data.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("auth"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    int(cfg.Upload.MaxBytes) + 1024*1024,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "POS Inventario API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "db_driver": cfg.DB.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:           authUC,
		UserUC:           userUC,
		ProductUC:        productUC,
		CategoryUC:       categoryUC,
		ImageUpload:      imageUploadUC,
		RegisterMovement: registerMovementUC,
		SalesUC:          salesUC,
		ReturnsUC:        returnsUC,
		DashboardUC:      dashboardUC,
		ReportUC:         reportUC,
		SettingsUC:       settingsUC,
		BackupUC:         backupUC,
		JWTSecret:        cfg.JWT.Secret,
		UploadDir:        cfg.Upload.Dir,
		Location:         loc,
	})

	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()
	if cfg.Storage.AutoBackupCheck > 0 {
		go backupUC.RunAutoBackups(bgCtx, settingsUC, cfg.Storage.AutoBackupCheck)
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stopBackground()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openDataLayer PostgreSQL (con migraciones opcionales) o el store en memoria.
func openDataLayer(ctx context.Context, cfg *config.Config, log *logger.Logger) (*dataLayer, error) {
	if cfg.DB.Driver == "memory" {
		store := memory.NewStore()
		log.Warn().Msg("usando store en memoria: los datos se pierden al reiniciar")
		return &dataLayer{
			tx:          store,
			repos:       store.Repositories(),
			users:       store.Users(),
			analytics:   store.Analytics(),
			snapshotter: store,
			close:       func() {},
		}, nil
	}

	if cfg.DB.AutoMigrate {
		migrator, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log.Component("migrate"))
		if err != nil {
			return nil, err
		}
		upErr := migrator.Up()
		if err := migrator.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
		if upErr != nil {
			return nil, upErr
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &dataLayer{
		tx:          postgres.NewTxRunner(pool),
		repos:       postgres.NewRepositories(pool),
		users:       postgres.NewUserRepository(pool),
		analytics:   postgres.NewAnalyticsRepository(pool),
		snapshotter: postgres.NewSnapshotter(pool),
		close:       pool.Close,
	}, nil
}

// openBackupStore directorio local o bucket S3 según BACKUP_BACKEND.
func openBackupStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (settings.BackupStore, error) {
	if cfg.Storage.Backend == "s3" {
		store, err := storage.NewS3BackupStore(ctx, cfg.Storage.S3, log.Component("s3"))
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}
	return storage.NewLocalBackupStore(cfg.Storage.BackupDir)
}

// openKPICache Redis si REDIS_ADDR está configurado y responde; si no, sin caché.
func openKPICache(ctx context.Context, cfg *config.Config, log *logger.Logger) appanalytics.KPICache {
	if cfg.Redis.Addr == "" {
		return cache.NoopKPICache{}
	}
	redisCache := cache.NewRedisKPICache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := redisCache.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, KPIs sin caché")
		_ = redisCache.Close()
		return cache.NoopKPICache{}
	}
	log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.KPITTL).Msg("caché de KPIs en redis")
	return redisCache
}
