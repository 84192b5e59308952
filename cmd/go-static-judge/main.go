// Command go-static-judge starts a http server that judges submitted source code
// against the rules of a curriculum task.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/criyle/go-static-judge/archive"
	"github.com/criyle/go-static-judge/cmd/go-static-judge/config"
	grpcjudge "github.com/criyle/go-static-judge/cmd/go-static-judge/grpc_judge"
	restjudge "github.com/criyle/go-static-judge/cmd/go-static-judge/rest_judge"
	"github.com/criyle/go-static-judge/cmd/go-static-judge/version"
	wsjudge "github.com/criyle/go-static-judge/cmd/go-static-judge/ws_judge"
	"github.com/criyle/go-static-judge/judge"
	"github.com/criyle/go-static-judge/rule"
	"github.com/criyle/go-static-judge/store"
	"github.com/criyle/go-static-judge/submission"
	"github.com/criyle/go-static-judge/worker"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	grpc_auth "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/grpclog"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

var logger *zap.Logger

func main() {
	conf := loadConf()
	if conf.Version {
		fmt.Println(version.Version)
		return
	}
	initLogger(conf)
	defer logger.Sync()
	if ce := logger.Check(zap.InfoLevel, "Config loaded"); ce != nil {
		ce.Write(zap.String("config", fmt.Sprintf("%+v", redact(*conf))))
	}

	bank := newBank(conf)
	st := newStore(conf)
	ledger := submission.NewLedger(st)
	work := newWorker(conf, bank, ledger)
	work.Start()
	logger.Info("Worker started",
		zap.Int("parallelism", conf.Parallelism),
		zap.String("store", conf.Store),
		zap.Duration("retention", conf.Retention))

	servers := []initFunc{
		cleanUpWorker(work, st),
		initHTTPServer(conf, work, ledger, bank),
		initMonitorHTTPServer(conf),
		initGRPCServer(conf, work, ledger),
	}

	// Gracefully shutdown, with signal / HTTP server / gRPC server / Monitor HTTP server
	sig := make(chan os.Signal, 1+len(servers))

	stops := []stopFunc{}
	for _, s := range servers {
		start, stop := s()
		if start != nil {
			go func() {
				start()
				sig <- os.Interrupt
			}()
		}
		if stop != nil {
			stops = append(stops, stop)
		}
	}

	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	signal.Reset(syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Shutting Down...")

	ctx, cancel := context.WithTimeout(context.TODO(), time.Second*3)
	defer cancel()

	var eg errgroup.Group
	for _, s := range stops {
		eg.Go(func() error {
			return s(ctx)
		})
	}

	go func() {
		logger.Info("Shutdown Finished", zap.Error(eg.Wait()))
		cancel()
	}()
	<-ctx.Done()
}

func loadConf() *config.Config {
	var conf config.Config
	if err := conf.Load(); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		log.Fatalln("load config failed ", err)
	}
	return &conf
}

// redact hides secrets before the config is logged
func redact(conf config.Config) config.Config {
	if conf.AuthToken != "" {
		conf.AuthToken = "***"
	}
	if conf.ArchiveSecretKey != "" {
		conf.ArchiveSecretKey = "***"
	}
	return conf
}

type (
	stopFunc func(ctx context.Context) error
	initFunc func() (start func(), cleanUp stopFunc)
)

// cleanUpWorker closes the store once the running judges have finished
func cleanUpWorker(work worker.Worker, st store.Store) initFunc {
	return func() (start func(), cleanUp stopFunc) {
		return nil, func(ctx context.Context) error {
			work.Shutdown()
			logger.Info("Worker shutdown")
			err := st.Close()
			logger.Info("Store closed", zap.Error(err))
			return err
		}
	}
}

func initHTTPServer(conf *config.Config, work worker.Worker, ledger *submission.Ledger, bank *rule.Bank) initFunc {
	return func() (start func(), cleanUp stopFunc) {
		r := initHTTPMux(conf, work, ledger, bank)
		srv := http.Server{
			Addr:    conf.HTTPAddr,
			Handler: r,
		}

		return func() {
				lis, err := net.Listen("tcp", conf.HTTPAddr)
				if err != nil {
					logger.Error("Http server listen failed", zap.Error(err))
					return
				}
				logger.Info("Starting http server", zap.String("addr", lis.Addr().String()))
				if err := srv.Serve(lis); errors.Is(err, http.ErrServerClosed) {
					logger.Info("Http server stopped", zap.Error(err))
				} else {
					logger.Error("Http server stopped", zap.Error(err))
				}
			}, func(ctx context.Context) error {
				logger.Info("Http server shutting down")
				return srv.Shutdown(ctx)
			}
	}
}

func initMonitorHTTPServer(conf *config.Config) initFunc {
	return func() (start func(), cleanUp stopFunc) {
		mr := initMonitorHTTPMux(conf)
		if mr == nil {
			return nil, nil
		}
		msrv := http.Server{
			Addr:    conf.MonitorAddr,
			Handler: mr,
		}
		return func() {
				lis, err := net.Listen("tcp", conf.MonitorAddr)
				if err != nil {
					logger.Error("Monitoring http listen failed", zap.Error(err))
					return
				}
				logger.Info("Starting monitoring http server", zap.String("addr", lis.Addr().String()))
				logger.Info("Monitoring http server stopped", zap.Error(msrv.Serve(lis)))
			}, func(ctx context.Context) error {
				logger.Info("Monitoring http server shutdown")
				return msrv.Shutdown(ctx)
			}
	}
}

func initGRPCServer(conf *config.Config, work worker.Worker, ledger *submission.Ledger) initFunc {
	return func() (start func(), cleanUp stopFunc) {
		if !conf.EnableGRPC {
			return nil, nil
		}
		grpcServer := newGRPCServer(conf, grpcjudge.New(work, ledger, logger))

		return func() {
				lis, err := net.Listen("tcp", conf.GRPCAddr)
				if err != nil {
					logger.Error("gRPC listen failed: ", zap.Error(err))
					return
				}
				logger.Info("Starting gRPC server", zap.String("addr", lis.Addr().String()))
				logger.Info("gRPC server stopped", zap.Error(grpcServer.Serve(lis)))
			}, func(ctx context.Context) error {
				grpcServer.GracefulStop()
				logger.Info("GRPC server shutdown")
				return nil
			}
	}
}

func initLogger(conf *config.Config) {
	if conf.Silent {
		logger = zap.NewNop()
		return
	}

	var err error
	if conf.Release {
		logger, err = zap.NewProduction()
	} else {
		config := zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if !conf.EnableDebug {
			config.Level.SetLevel(zap.InfoLevel)
		}
		logger, err = config.Build()
	}
	if err != nil {
		log.Fatalln("init logger failed ", err)
	}
}

func newBank(conf *config.Config) *rule.Bank {
	if conf.RulesFile == "" {
		return rule.Default()
	}
	b, err := rule.Load(conf.RulesFile)
	if err != nil {
		logger.Fatal("load rules failed", zap.String("file", conf.RulesFile), zap.Error(err))
	}
	logger.Info("Rules loaded", zap.String("file", conf.RulesFile), zap.Strings("groups", b.Groups()))
	return b
}

func newStore(conf *config.Config) store.Store {
	const timeoutCheckInterval = 15 * time.Second

	var (
		st  store.Store
		err error
	)
	switch conf.Store {
	case "", "memory":
		st = store.NewMemoryStore()
	case "badger":
		st, err = store.NewBadgerStore(store.BadgerConfig{
			Path:       conf.StorePath,
			SyncWrites: conf.StoreSyncWrites,
			Logger:     logger,
		})
	case "sqlite":
		st, err = store.NewSQLiteStore(context.Background(), conf.StorePath)
	default:
		err = fmt.Errorf("unknown store type %q", conf.Store)
	}
	if err != nil {
		logger.Fatal("create submission store failed", zap.Error(err))
	}
	if conf.EnableMetrics {
		st = newMetricsStore(st)
	}
	if conf.Retention > 0 {
		st = store.NewTimeout(st, conf.Retention, timeoutCheckInterval)
	}
	return st
}

func newArchiver(conf *config.Config) worker.Archiver {
	if conf.ArchiveEndpoint == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a, err := archive.NewMinio(ctx, archive.Config{
		Endpoint:  conf.ArchiveEndpoint,
		AccessKey: conf.ArchiveAccessKey,
		SecretKey: conf.ArchiveSecretKey,
		Bucket:    conf.ArchiveBucket,
		Prefix:    conf.ArchivePrefix,
		Secure:    conf.ArchiveSecure,
	})
	if err != nil {
		logger.Fatal("create archive failed", zap.Error(err))
	}
	logger.Info("Archive submissions", zap.String("endpoint", conf.ArchiveEndpoint), zap.String("bucket", conf.ArchiveBucket))
	return a
}

func newWorker(conf *config.Config, bank *rule.Bank, ledger *submission.Ledger) worker.Worker {
	wc := worker.Config{
		Engine:      judge.New(bank),
		Ledger:      ledger,
		Parallelism: conf.Parallelism,
		Logger:      logger,
		Archiver:    newArchiver(conf),
	}
	if conf.EnableMetrics {
		wc.JudgeObserver = judgeObserve
	}
	w := worker.New(wc)
	if conf.EnableMetrics {
		w = newMetricsWorker(w)
	}
	return w
}

func initHTTPMux(conf *config.Config, work worker.Worker, ledger *submission.Ledger, bank *rule.Bank) http.Handler {
	var r *gin.Engine
	if conf.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	r = gin.New()
	r.Use(ginzap.Ginzap(logger, "", false))
	r.Use(ginzap.RecoveryWithZap(logger, true))

	// Metrics Handle
	if conf.EnableMetrics {
		initGinMetrics(r)
	}

	// Version handle
	r.GET("/version", handleVersion)
	r.GET("/", handleBanner)

	// Add auth token
	if conf.AuthToken != "" {
		r.Use(tokenAuth(conf.AuthToken))
		logger.Info("Attach token auth")
	}

	api := r.Group("/api/judge")

	// Rest Handle
	restjudge.NewJudgeHandle(work, ledger, bank, logger).Register(api)

	// WebSocket Handle
	wsjudge.New(work, logger).Register(api)

	return r
}

func initMonitorHTTPMux(conf *config.Config) http.Handler {
	if !conf.EnableMetrics && !conf.EnableDebug {
		return nil
	}
	mux := http.NewServeMux()
	if conf.EnableMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}
	if conf.EnableDebug {
		initDebugRoute(mux)
	}
	return mux
}

func initDebugRoute(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
}

func InterceptorLogger(l *zap.Logger) grpc_logging.Logger {
	return grpc_logging.LoggerFunc(func(ctx context.Context, lvl grpc_logging.Level, msg string, fields ...any) {
		f := make([]zap.Field, 0, len(fields)/2)

		for i := 0; i < len(fields); i += 2 {
			key := fields[i]
			value := fields[i+1]

			switch v := value.(type) {
			case string:
				f = append(f, zap.String(key.(string), v))
			case int:
				f = append(f, zap.Int(key.(string), v))
			case bool:
				f = append(f, zap.Bool(key.(string), v))
			default:
				f = append(f, zap.Any(key.(string), v))
			}
		}

		logger := l.WithOptions(zap.AddCallerSkip(1)).With(f...)

		switch lvl {
		case grpc_logging.LevelDebug:
			logger.Debug(msg)
		case grpc_logging.LevelInfo:
			logger.Info(msg)
		case grpc_logging.LevelWarn:
			logger.Warn(msg)
		case grpc_logging.LevelError:
			logger.Error(msg)
		default:
			panic(fmt.Sprintf("unknown level %v", lvl))
		}
	})
}

func newGRPCServer(conf *config.Config, js grpcjudge.JudgeServer) *grpc.Server {
	prom := grpc_prometheus.NewServerMetrics(grpc_prometheus.WithServerHandlingTimeHistogram())
	grpclog.SetLoggerV2(zapgrpc.NewLogger(logger))
	streamMiddleware := []grpc.StreamServerInterceptor{
		prom.StreamServerInterceptor(),
		grpc_logging.StreamServerInterceptor(InterceptorLogger(logger)),
		grpc_recovery.StreamServerInterceptor(),
	}
	unaryMiddleware := []grpc.UnaryServerInterceptor{
		prom.UnaryServerInterceptor(),
		grpc_logging.UnaryServerInterceptor(InterceptorLogger(logger)),
		grpc_recovery.UnaryServerInterceptor(),
	}
	if conf.AuthToken != "" {
		authFunc := grpcTokenAuth(conf.AuthToken)
		streamMiddleware = append(streamMiddleware, grpc_auth.StreamServerInterceptor(authFunc))
		unaryMiddleware = append(unaryMiddleware, grpc_auth.UnaryServerInterceptor(authFunc))
	}
	grpcServer := grpc.NewServer(
		grpc.ChainStreamInterceptor(streamMiddleware...),
		grpc.ChainUnaryInterceptor(unaryMiddleware...),
	)
	grpcjudge.RegisterJudgeServer(grpcServer, js)
	healthpb.RegisterHealthServer(grpcServer, health.NewServer())
	reflection.Register(grpcServer)
	if conf.EnableMetrics {
		prom.InitializeMetrics(grpcServer)
		prometheus.MustRegister(prom)
	}
	return grpcServer
}

func initGinMetrics(r *gin.Engine) {
	p := ginprometheus.NewWithConfig(ginprometheus.Config{
		Subsystem:          "gin",
		DisableBodyReading: true,
	})
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		return c.FullPath()
	}
	r.Use(p.HandlerFunc())
}

func tokenAuth(token string) gin.HandlerFunc {
	const bearer = "Bearer "
	return func(c *gin.Context) {
		reqToken := c.GetHeader("Authorization")
		if strings.HasPrefix(reqToken, bearer) && reqToken[len(bearer):] == token {
			c.Next()
			return
		}
		c.AbortWithStatus(http.StatusUnauthorized)
	}
}

func grpcTokenAuth(token string) func(context.Context) (context.Context, error) {
	return func(ctx context.Context) (context.Context, error) {
		reqToken, err := grpc_auth.AuthFromMD(ctx, "bearer")
		if err != nil {
			return nil, err
		}
		if reqToken != token {
			return nil, status.Errorf(codes.Unauthenticated, "invalid auth token")
		}
		return ctx, nil
	}
}

func handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"buildVersion": version.Version,
		"goVersion":    runtime.Version(),
		"platform":     runtime.GOARCH,
		"os":           runtime.GOOS,
	})
}

func handleBanner(c *gin.Context) {
	c.String(http.StatusOK, "go-static-judge %s is running", version.Version)
}
