package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nhc-it/assetlend-backend/api/responses"
	pkgerrors "github.com/nhc-it/assetlend-backend/pkg/errors"
	"github.com/nhc-it/assetlend-backend/pkg/logger"
	pkgredis "github.com/nhc-it/assetlend-backend/pkg/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	// asset-moving transitions keep their replay window longer
	criticalTTLFactor = 7
	// matches the JSON decoder limit in api/validators
	maxIdempotentBody = 1 << 20
)

type routeMatcher func(string) bool

type idempotencyRule struct {
	method   string
	matcher  routeMatcher
	critical bool
}

var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, matcher: matchExact("/api/v1/requests")},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/requests/", "/cancel")},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/staff/requests/", "/assign")},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/staff/requests/", "/reject")},
	{method: http.MethodPost, matcher: matchExact("/api/v1/staff/assets")},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/staff/assets/", "/maintenance")},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/staff/maintenance/", "/complete")},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/staff/requests/", "/approve"), critical: true},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/staff/requests/", "/return"), critical: true},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/staff/returns/", "/regrade"), critical: true},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/staff/assets/", "/retire"), critical: true},
}

type idempotencyRecord struct {
	Status      int               `json:"status"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency replays the stored response when a lifecycle POST is retried with
// the same Idempotency-Key. The key is reserved before the handler runs, so a
// concurrent retry gets a conflict instead of a second transition. ttl is the
// base retention; critical routes keep records criticalTTLFactor times longer.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, ok := matchRequest(r)
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if clientKey == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxIdempotentBody))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "request body too large"))
					return
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			fingerprint := hashBody(body)
			key := store.IdempotencyKey(buildScope(r), clientKey)

			reserved, err := store.Reserve(ctx, key, rule.ttl(ttl))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key"))
				return
			}
			if !reserved {
				replay(ctx, logg, w, store, key, fingerprint)
				return
			}

			settled := false
			defer func() {
				if settled {
					return
				}
				if err := store.Release(context.WithoutCancel(ctx), key); err != nil {
					logError(ctx, logg, "release idempotency key", err)
				}
			}()

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := defaultStatus(rec.status)
			// only settled outcomes are replayed; dependency failures may be retried
			if status >= http.StatusInternalServerError {
				return
			}

			payload, err := json.Marshal(idempotencyRecord{
				Status:      status,
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				Headers:     replayHeaders(rec.Header()),
				RequestHash: fingerprint,
			})
			if err != nil {
				logError(ctx, logg, "marshal idempotency record", err)
				return
			}
			if err := store.Save(context.WithoutCancel(ctx), key, string(payload), rule.ttl(ttl)); err != nil {
				logError(ctx, logg, "persist idempotency record", err)
				return
			}
			settled = true
		})
	}
}

// replay answers a request whose key is already taken.
func replay(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, store pkgredis.IdempotencyStore, key, fingerprint string) {
	slot, err := store.Load(ctx, key)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idempotency record"))
		return
	}
	if slot.Pending || slot.Empty() {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "a request with this Idempotency-Key is still in progress"))
		return
	}

	var record idempotencyRecord
	if err := json.Unmarshal([]byte(slot.Record), &record); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	if record.RequestHash != fingerprint {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
		return
	}
	writeStoredResponse(w, &record)
}

func replayHeaders(h http.Header) map[string]string {
	out := map[string]string{}
	for _, name := range []string{"Content-Type", "Location"} {
		if v := h.Get(name); v != "" {
			out[name] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (rule idempotencyRule) ttl(base time.Duration) time.Duration {
	if rule.critical {
		return base * criticalTTLFactor
	}
	return base
}

func buildScope(r *http.Request) string {
	return strings.Join([]string{UserIDFromContext(r.Context()), r.Method, r.URL.Path}, "|")
}

func writeStoredResponse(w http.ResponseWriter, record *idempotencyRecord) {
	for name, value := range record.Headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func defaultStatus(value int) int {
	if value == 0 {
		return http.StatusOK
	}
	return value
}

// matchRequest tries the raw path first; mid-routing chi only knows a partial
// pattern such as /api/v1/*.
func matchRequest(r *http.Request) (idempotencyRule, bool) {
	if rule, ok := matchRule(r.Method, r.URL.Path); ok {
		return rule, true
	}
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		return matchRule(r.Method, ctx.RoutePattern())
	}
	return idempotencyRule{}, false
}

func matchRule(method, pattern string) (idempotencyRule, bool) {
	if pattern == "" {
		return idempotencyRule{}, false
	}
	for _, rule := range idempotencyRules {
		if rule.method == method && rule.matcher(pattern) {
			return rule, true
		}
	}
	return idempotencyRule{}, false
}

func matchExact(path string) routeMatcher {
	return func(pattern string) bool {
		return pattern == path
	}
}

func matchPrefixSuffix(prefix, suffix string) routeMatcher {
	return func(pattern string) bool {
		return strings.HasPrefix(pattern, prefix) && strings.HasSuffix(pattern, suffix)
	}
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
