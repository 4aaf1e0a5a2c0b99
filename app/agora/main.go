package main

import (
	"context"
	"net/http"
	"syscall"

	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-kit/kit/endpoint"

	authDeliveryHTTP "github.com/agora-community/agora/auth/delivery/http"
	accountMySQLRepo "github.com/agora-community/agora/auth/repository/account/mysql"
	sessionRepo "github.com/agora-community/agora/auth/repository/session"
	tokenRepo "github.com/agora-community/agora/auth/repository/token"
	accountUseCaseLib "github.com/agora-community/agora/auth/usecase/account"
	authUseCaseLib "github.com/agora-community/agora/auth/usecase/auth"
	boardDeliveryHTTP "github.com/agora-community/agora/board/delivery/http"
	postMySQLRepo "github.com/agora-community/agora/board/repository/post/mysql"
	postUseCaseLib "github.com/agora-community/agora/board/usecase/post"
	"github.com/agora-community/agora/domain"
	httpKit "github.com/agora-community/agora/kit/http"
	httpMiddlewareKit "github.com/agora-community/agora/kit/http/middleware"
	httpTransportKit "github.com/agora-community/agora/kit/http/transport"
	loggerKit "github.com/agora-community/agora/kit/logger"
	ormKit "github.com/agora-community/agora/kit/orm"
	redisKit "github.com/agora-community/agora/kit/redis"
	traceKit "github.com/agora-community/agora/kit/trace"
	utilKit "github.com/agora-community/agora/kit/util"
)

const (
	SYSTEM_NAME  = "agora"
	SERVICE_NAME = "backend"
)

func main() {
	var (
		env          = utilKit.GetEnvString("ENV", "development")
		enableMetric = utilKit.GetEnvBool("ENABLE_METRIC", false)
		addr         = utilKit.GetEnvString("ADDR", ":9092")
		mysqlDSN     = utilKit.GetEnvString("MYSQL_DSN", "root:example@tcp(127.0.0.1:3306)/agora?charset=utf8mb4&parseTime=True&loc=Local")
		redisAddr    = utilKit.GetEnvString("REDIS_ADDR", "localhost:6379")
		redisPass    = utilKit.GetEnvString("REDIS_PASSWORD", "")

		accessTokenSecret  = utilKit.GetRequireEnvString("ACCESS_TOKEN_SECRET")
		refreshTokenSecret = utilKit.GetRequireEnvString("REFRESH_TOKEN_SECRET")
		accessTokenTTL     = utilKit.GetEnvDuration("ACCESS_TOKEN_TTL", 0)
		refreshTokenTTL    = utilKit.GetEnvDuration("REFRESH_TOKEN_TTL", 0)
		tokenIssuer        = utilKit.GetEnvString("TOKEN_ISSUER", "agora")
		tokenAudience      = utilKit.GetEnvString("TOKEN_AUDIENCE", "agora-web")
	)

	logLevel := loggerKit.InfoLevel
	if env == "development" {
		logLevel = loggerKit.DebugLevel
	}
	logger, err := loggerKit.NewLogger("./go.log", logLevel)
	if err != nil {
		panic(err)
	}

	singletonDB, err := ormKit.CreateDB(ormKit.UseMySQL(mysqlDSN))
	if err != nil {
		panic(err)
	}

	// the session cache is volatile state only. an unreachable cache is
	// a degradation, not a startup failure: the process serves traffic
	// on signature checks alone until an operator re-triggers a connect.
	singletonCache := redisKit.CreateCache(redisKit.Config{
		Address:  redisAddr,
		Password: redisPass,
	})
	if err := singletonCache.Connect(context.Background()); err != nil {
		logger.Warn("session cache unreachable, starting degraded", loggerKit.Error(err))
	}
	defer singletonCache.Close()

	accountRepoInstance := accountMySQLRepo.CreateAccountRepo(singletonDB)
	tokenRepoInstance, err := tokenRepo.CreateTokenRepo(tokenRepo.Config{
		AccessTokenSecret:    accessTokenSecret,
		RefreshTokenSecret:   refreshTokenSecret,
		AccessTokenDuration:  accessTokenTTL,
		RefreshTokenDuration: refreshTokenTTL,
		Issuer:               tokenIssuer,
		Audience:             tokenAudience,
	})
	if err != nil {
		panic(err)
	}
	sessionRepoInstance := sessionRepo.CreateSessionRepo(singletonCache)
	postRepoInstance := postMySQLRepo.CreatePostRepo(singletonDB)

	accountUseCase, err := accountUseCaseLib.CreateAccountUseCase(accountRepoInstance, logger)
	if err != nil {
		panic(err)
	}
	authUseCase, err := authUseCaseLib.CreateAuthUseCase(accountRepoInstance, tokenRepoInstance, sessionRepoInstance, logger)
	if err != nil {
		panic(err)
	}
	postUseCase, err := postUseCaseLib.CreatePostUseCase(postRepoInstance, logger)
	if err != nil {
		panic(err)
	}

	tracer := traceKit.CreateNoOpTracer()

	customMiddleware := endpoint.Chain(
		httpMiddlewareKit.CreateLoggingMiddleware(logger),
		httpMiddlewareKit.CreateMetrics(SYSTEM_NAME, SERVICE_NAME),
	)
	authMiddleware := httpMiddlewareKit.CreateAuthMiddleware(authUseCase.Verify)
	optionalAuthMiddleware := httpMiddlewareKit.CreateOptionalAuthMiddleware(authUseCase.Verify)
	approvedOnlyMiddleware := httpMiddlewareKit.CreateStatusGuardMiddleware(domain.ACCOUNT_STATUS_APPROVED)

	r := mux.NewRouter()
	options := []httptransport.ServerOption{
		httptransport.ServerBefore(httpKit.CustomBeforeCtx(tracer)),
		httptransport.ServerAfter(httpKit.CustomAfterCtx),
		httptransport.ServerErrorEncoder(httpKit.EncodeHTTPErrorResponse()),
	}
	r.Methods("POST").Path("/api/v1/account/register").Handler(
		httptransport.NewServer(
			customMiddleware(authDeliveryHTTP.MakeAccountRegisterEndpoint(accountUseCase)),
			authDeliveryHTTP.DecodeAccountRegisterRequest,
			httpMiddlewareKit.EncodeResponseSetSuccessHTTPCode(authDeliveryHTTP.EncodeAccountRegisterResponse),
			options...,
		))
	r.Methods("POST").Path("/api/v1/auth/login").Handler(
		httptransport.NewServer(
			customMiddleware(authDeliveryHTTP.MakeAuthLoginEndpoint(authUseCase)),
			authDeliveryHTTP.DecodeAuthLoginRequest,
			httpMiddlewareKit.EncodeResponseSetSuccessHTTPCode(authDeliveryHTTP.EncodeAuthLoginResponse),
			options...,
		))
	r.Methods("POST").Path("/api/v1/auth/logout").Handler(
		httptransport.NewServer(
			customMiddleware(authDeliveryHTTP.MakeAuthLogoutEndpoint(authUseCase)),
			httpTransportKit.DecodeEmptyRequest,
			httpTransportKit.EncodeEmptyResponse,
			options...,
		))
	r.Methods("POST").Path("/api/v1/auth/refresh").Handler(
		httptransport.NewServer(
			customMiddleware(authDeliveryHTTP.MakeRefreshTokenPairEndpoint(authUseCase)),
			authDeliveryHTTP.DecodeRefreshTokenPairRequest,
			httpMiddlewareKit.EncodeResponseSetSuccessHTTPCode(authDeliveryHTTP.EncodeRefreshTokenPairResponse),
			options...,
		))
	r.Methods("GET").Path("/api/v1/account/me").Handler(
		httptransport.NewServer(
			customMiddleware(authMiddleware(authDeliveryHTTP.MakeAccountMeEndpoint(accountUseCase))),
			httpTransportKit.DecodeEmptyRequest,
			httpMiddlewareKit.EncodeResponseSetSuccessHTTPCode(authDeliveryHTTP.EncodeAccountMeResponse),
			options...,
		))
	r.Methods("PUT").Path("/api/v1/account/password").Handler(
		httptransport.NewServer(
			customMiddleware(authMiddleware(authDeliveryHTTP.MakeAccountChangePasswordEndpoint(accountUseCase))),
			authDeliveryHTTP.DecodeAccountChangePasswordRequest,
			httpTransportKit.EncodeEmptyResponse,
			options...,
		))
	r.Methods("GET").Path("/api/v1/posts").Handler(
		httptransport.NewServer(
			customMiddleware(optionalAuthMiddleware(boardDeliveryHTTP.MakePostListEndpoint(postUseCase))),
			boardDeliveryHTTP.DecodePostListRequest,
			httpMiddlewareKit.EncodeResponseSetSuccessHTTPCode(boardDeliveryHTTP.EncodePostListResponse),
			options...,
		))
	r.Methods("POST").Path("/api/v1/posts").Handler(
		httptransport.NewServer(
			customMiddleware(authMiddleware(approvedOnlyMiddleware(boardDeliveryHTTP.MakePostCreateEndpoint(postUseCase)))),
			boardDeliveryHTTP.DecodePostCreateRequest,
			httpMiddlewareKit.EncodeResponseSetSuccessHTTPCode(boardDeliveryHTTP.EncodePostCreateResponse),
			options...,
		))
	r.Methods("DELETE").Path("/api/v1/posts/{id}").Handler(
		httptransport.NewServer(
			customMiddleware(authMiddleware(boardDeliveryHTTP.MakePostDeleteEndpoint(postUseCase))),
			boardDeliveryHTTP.DecodePostDeleteRequest,
			httpTransportKit.EncodeEmptyResponse,
			options...,
		))
	if enableMetric {
		r.Handle("/metrics", promhttp.Handler())
	}

	var g run.Group
	{
		httpSrv := http.Server{
			Addr:    addr,
			Handler: r,
		}
		g.Add(func() error {
			return httpSrv.ListenAndServe()
		}, func(err error) {
			if err != nil {
				logger.Error(err.Error())
			}
			httpSrv.Close()
		})
	}
	g.Add(run.SignalHandler(context.Background(), syscall.SIGINT, syscall.SIGTERM))
	if err := g.Run(); err != nil {
		logger.Error(err.Error())
	}
}
