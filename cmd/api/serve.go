package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"storefront/internal/handler"
	"storefront/internal/infra/payment"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/middleware"
	"storefront/internal/server"
	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to :<app.port>)")
	return cmd
}

func runServe(ctx context.Context, addr string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg, log := rt.cfg, rt.log

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(rt.gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(rt.gormDB)
	settingsRepo := infraRepo.NewSettingsGormRepository(rt.gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(rt.gormDB)
	txm := infraRepo.NewTxManagerGorm(rt.gormDB)

	carts, closeCarts, err := rt.cartStore()
	if err != nil {
		return err
	}
	defer closeCarts()

	images, err := rt.imageStore(ctx)
	if err != nil {
		return err
	}

	gateway, err := payment.NewPaystackAdapter(payment.PaystackConfig{
		BaseURL:   cfg.Payment.BaseURL,
		SecretKey: cfg.Payment.SecretKey,
		Timeout:   cfg.Payment.Timeout,
	}, payment.WithLogger(log))
	if err != nil {
		return fmt.Errorf("init payment gateway: %w", err)
	}

	//管理者（bcrypt + JWT cookie）
	passwordHash, err := auth.ResolvePasswordHash(auth.NewBcryptPasswordHasher(bcrypt.DefaultCost), cfg.Admin.Password, cfg.Admin.PasswordHash)
	if err != nil {
		return fmt.Errorf("admin password hash: %w", err)
	}
	issuer := auth.NewJWTIssuer(cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)
	loginUC := auth.NewLoginUsecase(cfg.Admin.Username, passwordHash, auth.NewBcryptPasswordVerifier(), issuer, auth.RealClock{})

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo, txm, images)
	cartUC := usecase.NewCartUsecase(carts, productRepo)
	checkoutUC := usecase.NewCheckoutUsecase(carts, orderRepo, gateway,
		usecase.WithCheckoutLogger(log),
		usecase.WithRequireSignature(cfg.Payment.RequireSignature),
	)
	settingsUC := usecase.NewSettingsUsecase(settingsRepo, txm, images)
	adminOrderUC := usecase.NewAdminOrderUsecase(orderRepo, productRepo, txm, cfg.Orders.StrictTransitions)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)

	if err := settingsUC.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	//Handler生成
	e := server.New(server.Deps{
		Logger:        log,
		SessionStore:  middleware.NewVisitorCookieStore(cfg.Session),
		AdminParser:   issuer,
		Products:      handler.NewProductHandler(productUC),
		Cart:          handler.NewCartHandler(cartUC),
		Payment:       handler.NewPaymentHandler(checkoutUC, cfg.App.BaseURL),
		Settings:      handler.NewSettingsHandler(settingsUC),
		AdminAuth:     handler.NewAdminAuthHandler(loginUC, cfg.Session.Secure),
		AdminProducts: handler.NewAdminProductHandler(productUC),
		AdminOrders:   handler.NewAdminOrderHandler(adminOrderUC),
		AuditLogs:     handler.NewAuditLogHandler(auditUC),
		UploadDir:     images.uploadDir,
		PublicPath:    images.publicPath,
	})

	//Server起動
	if addr == "" {
		addr = ":" + cfg.App.Port
	}
	return server.Start(ctx, e, addr, log)
}
