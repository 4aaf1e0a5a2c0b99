package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/agora-community/agora/domain"
	"github.com/agora-community/agora/kit/code"
	utilKit "github.com/agora-community/agora/kit/util"
)

type ctxKeyType int

const (
	_CTX_IP_KEY ctxKeyType = iota
	_CTX_URL_PATH
	_CTX_TRACE_ID
	_CTX_TOKEN
	_CTX_REQUEST_ID
	_CTX_CLAIMS
)

const _BEARER_SCHEME = "Bearer "

func ReadUserIP(r *http.Request) string {
	IPAddress := r.Header.Get("X-Real-Ip")
	if IPAddress == "" {
		IPAddress = r.Header.Get("X-Forwarded-For")
	}
	if IPAddress == "" {
		IPAddress = r.RemoteAddr
	}
	return strings.Split(IPAddress, ":")[0]
}

// ReadBearerToken pulls the token out of the Authorization header.
// A missing header or a non-bearer scheme yields an empty token, the
// auth middleware turns that into a client error.
func ReadBearerToken(r *http.Request) string {
	authorization := r.Header.Get("Authorization")
	if !strings.HasPrefix(authorization, _BEARER_SCHEME) {
		return ""
	}
	return strings.TrimPrefix(authorization, _BEARER_SCHEME)
}

func CustomBeforeCtx(tracer trace.Tracer) func(ctx context.Context, r *http.Request) context.Context {
	return func(ctx context.Context, r *http.Request) context.Context {
		ctx = context.WithValue(ctx, _CTX_TOKEN, ReadBearerToken(r))
		ctx = context.WithValue(ctx, _CTX_URL_PATH, r.URL.Path)
		ctx = context.WithValue(ctx, _CTX_IP_KEY, ReadUserIP(r))
		ctx = AddRequestID(ctx)

		ctx, span := tracer.Start(ctx, GetURL(ctx))
		defer span.End()

		ctx = AddTraceID(ctx, span.SpanContext().TraceID().String())

		return ctx
	}
}

func CustomAfterCtx(ctx context.Context, w http.ResponseWriter) context.Context {
	w.Header().Add("X-B3-TraceId", trace.SpanContextFromContext(ctx).TraceID().String())
	return ctx
}

func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(_CTX_TRACE_ID).(string)
	return traceID
}

func GetIP(ctx context.Context) string {
	ip, _ := ctx.Value(_CTX_IP_KEY).(string)
	return ip
}

func AddTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, _CTX_TRACE_ID, traceID)
}

func GetURL(ctx context.Context) string {
	url, _ := ctx.Value(_CTX_URL_PATH).(string)
	return url
}

func AddToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, _CTX_TOKEN, token)
}

func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(_CTX_TOKEN).(string)
	return token
}

// AddClaims attaches the verified identity to the request context as a
// typed value. GetClaims returns nil for unauthenticated requests.
func AddClaims(ctx context.Context, claims *domain.TokenClaims) context.Context {
	return context.WithValue(ctx, _CTX_CLAIMS, claims)
}

func GetClaims(ctx context.Context) *domain.TokenClaims {
	claims, _ := ctx.Value(_CTX_CLAIMS).(*domain.TokenClaims)
	return claims
}

func AddRequestID(ctx context.Context) context.Context {
	uniqueIDGenerate, err := utilKit.GetUniqueIDGenerate()
	if err != nil {
		return ctx
	}
	return context.WithValue(ctx, _CTX_REQUEST_ID, uniqueIDGenerate.Generate().GetInt64())
}

func GetRequestID(ctx context.Context) int64 {
	requestID, _ := ctx.Value(_CTX_REQUEST_ID).(int64)
	return requestID
}

func EncodeHTTPErrorResponse() func(ctx context.Context, err error, w http.ResponseWriter) {
	return func(ctx context.Context, err error, w http.ResponseWriter) {
		if err == nil {
			panic("encodeError with nil error")
		}

		ctx = CustomAfterCtx(ctx, w)

		errorCode := code.ParseErrorCode(err)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(errorCode.HTTPCode)
		json.NewEncoder(w).Encode(errorCode)
	}
}
