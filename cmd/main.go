package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"siab/config"
	"siab/internal/pkg/cache"
	"siab/internal/pkg/database"
	"siab/internal/pkg/logger"
	"siab/internal/pkg/middleware"
	"siab/internal/pkg/token"

	"siab/internal/api/asignacion"
	"siab/internal/api/auditoria"
	"siab/internal/api/bien"
	"siab/internal/api/desincorporacion"
	"siab/internal/api/referencia"
	"siab/internal/api/router"
	"siab/internal/api/transferencia"
	"siab/internal/api/usuario"
	"siab/internal/repository/asignacionrepo"
	"siab/internal/repository/auditoriarepo"
	"siab/internal/repository/bienrepo"
	"siab/internal/repository/desincorporacionrepo"
	"siab/internal/repository/referenciarepo"
	"siab/internal/repository/transferenciarepo"
	"siab/internal/repository/usuariorepo"
	"siab/internal/service/asignacionservice"
	"siab/internal/service/auditoriaservice"
	"siab/internal/service/bienservice"
	"siab/internal/service/desincorporacionservice"
	"siab/internal/service/referenciaservice"
	"siab/internal/service/transferenciaservice"
	"siab/internal/service/usuarioservice"
)

func main() {
	stdlog.Println("Inicializando SIAB...")

	if err := godotenv.Load(); err != nil {
		stdlog.Println("Aviso: archivo .env no encontrado. Se usan solo las variables del ambiente.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configuraciones cargadas.", nil)

	// Infraestructura.
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falla al conectar al banco de datos.", err)
	}
	defer db.Close()
	log.Info("Conexión PostgreSQL establecida.", nil)

	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexión Redis establecida.", nil)

	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)

	// Repositorios.
	bienRepo := bienrepo.NewBienRepository(db, cfg.DBTimeout, log)
	referenciaRepo := referenciarepo.NewReferenciaRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTimeout, log)
	asignacionRepo := asignacionrepo.NewAsignacionRepository(db, cfg.DBTimeout, log)
	transferenciaRepo := transferenciarepo.NewTransferenciaRepository(db, cfg.DBTimeout, log)
	desincorporacionRepo := desincorporacionrepo.NewDesincorporacionRepository(db, cfg.DBTimeout, log)
	auditoriaRepo := auditoriarepo.NewAuditoriaRepository(db, cfg.DBTimeout, log)
	usuarioRepo := usuariorepo.NewUsuarioRepository(db, cfg.DBTimeout, log)

	// El almacén central se resuelve una sola vez al arrancar. Si el código
	// configurado no existe en la tabla de ubicaciones el servicio no puede
	// operar el flujo de asignación y es preferible fallar acá.
	ctxArranque, cancelArranque := context.WithTimeout(context.Background(), 10*time.Second)
	almacen, err := referenciaRepo.ObtenerUbicacionPorCodigo(ctxArranque, cfg.CodigoAlmacen)
	cancelArranque()
	if err != nil {
		log.Fatal("La unidad de almacén central no está registrada. Verifique CODIGO_ALMACEN.", err)
	}
	log.Info("Almacén central resuelto.", map[string]interface{}{"codigo": almacen.Codigo, "id": almacen.ID})

	// Servicios.
	bienSvc := bienservice.NewService(bienRepo, referenciaRepo, auditoriaRepo, log)
	referenciaSvc := referenciaservice.NewService(referenciaRepo, log)
	asignacionSvc := asignacionservice.NewService(asignacionRepo, bienRepo, referenciaRepo, auditoriaRepo, almacen.ID, log)
	transferenciaSvc := transferenciaservice.NewService(transferenciaRepo, bienRepo, referenciaRepo, auditoriaRepo, log)
	desincorporacionSvc := desincorporacionservice.NewService(desincorporacionRepo, bienRepo, auditoriaRepo, log)
	auditoriaSvc := auditoriaservice.NewService(auditoriaRepo, log)
	usuarioSvc := usuarioservice.NewService(usuarioRepo, tokenSvc, log)

	// Handlers y router.
	handlers := router.Handlers{
		Usuario:          usuario.NewHandler(usuarioSvc, log),
		Bien:             bien.NewHandler(bienSvc, log),
		Asignacion:       asignacion.NewHandler(asignacionSvc, log),
		Transferencia:    transferencia.NewHandler(transferenciaSvc, log),
		Desincorporacion: desincorporacion.NewHandler(desincorporacionSvc, log),
		Referencia:       referencia.NewHandler(referenciaSvc, log),
		Auditoria:        auditoria.NewHandler(auditoriaSvc, log),
	}
	middlewares := router.Middlewares{
		Auth:      middleware.NewAuthMiddleware(tokenSvc),
		RateLimit: middleware.RateLimiter(cacheClient, cfg.RateLimitMaxRequests, cfg.RateLimitPeriod),
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.NewRouter(handlers, middlewares),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Servidor SIAB escuchando.", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("El servidor falló.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Señal de apagado recibida. Cerrando el servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Apagado forzado del servidor.", err)
	}

	log.Info("Servidor cerrado.", nil)
}
