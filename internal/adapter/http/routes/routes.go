package routes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "linksphere/docs" // swag-generated
	"linksphere/internal/adapter/http/handlers"
	"linksphere/internal/adapter/http/middleware"
	"linksphere/internal/adapter/persistence/repository"
	"linksphere/internal/config"
	"linksphere/internal/infrastructure/database"
	"linksphere/internal/infrastructure/events"
	"linksphere/internal/infrastructure/payments"
	"linksphere/internal/usecase"
	"linksphere/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const shutdownTimeout = 10 * time.Second

// Handlers groups everything the router serves.
type Handlers struct {
	Contracts *handlers.ContractHandler
	Bids      *handlers.BidHandler
	Payments  *handlers.PaymentHandler
	Events    *handlers.EventsHandler
}

// Run wires the service from cfg and serves until SIGINT/SIGTERM.
func Run(cfg *config.Config, logger zerolog.Logger) error {
	if err := cfg.ValidateServer(); err != nil {
		return err
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ddb, err := database.ConnectDynamoDB(ctx, database.Options{
		Region:          cfg.AWSRegion,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		Endpoint:        cfg.DynamoEndpoint,
	})
	if err != nil {
		return fmt.Errorf("connect dynamodb: %w", err)
	}

	bus := events.NewBus(cfg.EventBufferSize, logger)
	defer bus.Close()

	h := getHandlers(cfg, logger, ddb, bus)
	router := gin.New()
	setMiddlewares(router, logger)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	getRoutes(router, h, middleware.Auth(cfg.JWTSecret, cfg.JWTIssuer))

	srv := &http.Server{Addr: cfg.ServerAddr, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start the application: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	bus.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func getHandlers(cfg *config.Config, logger zerolog.Logger, ddb repository.DynamoAPI, bus *events.Bus) Handlers {
	contractRepo := repository.NewContractDynamoRepository(ddb, cfg.ContractsTable, cfg.BidsTable)
	bidRepo := repository.NewBidDynamoRepository(ddb, cfg.BidsTable)
	paymentRepo := repository.NewPaymentDynamoRepository(ddb, cfg.PaymentsTable)

	var gateway interfaces.IPaymentGateway
	mp, err := payments.NewMercadoPagoGateway(payments.Options{
		AccessToken: cfg.MercadoPagoAccessToken,
		PublicKey:   cfg.MercadoPagoPublicKey,
		Mock:        cfg.PaymentGatewayMock,
	}, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("mercado pago gateway not configured; payments disabled")
	} else {
		gateway = mp
	}

	contractUseCase := usecase.NewContractUseCase(contractRepo, bidRepo, logger)
	bidUseCase := usecase.NewBidUseCase(bidRepo, contractRepo, logger)
	paymentUseCase := usecase.NewPaymentUseCase(paymentRepo, contractRepo, gateway, bus, cfg.PaymentCurrency, logger)

	return Handlers{
		Contracts: handlers.NewContractHandler(contractUseCase),
		Bids:      handlers.NewBidHandler(bidUseCase),
		Payments:  handlers.NewPaymentHandler(paymentUseCase, logger),
		Events:    handlers.NewEventsHandler(bus, contractUseCase, 0, logger),
	}
}

func getRoutes(router *gin.Engine, h Handlers, auth gin.HandlerFunc) {
	// Rotas publicas
	v1 := router.Group("/v1")
	addPingRoutes(v1)

	// Rotas autenticadas
	v1.GET(PathEvents, auth, h.Events.Stream)
	api := router.Group("/api", auth)
	addContractRoutes(api, h.Contracts)
	addBidRoutes(api, h.Bids)
	addPaymentRoutes(api, h.Payments)
}

func setMiddlewares(router *gin.Engine, logger zerolog.Logger) {
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Recovery(logger))
}
