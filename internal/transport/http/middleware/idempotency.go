package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"printerp/internal/transport/http/api"
)

var ErrIdempotencyConflict = errors.New("idempotency key conflicts with existing request")

const IdempotencyKeyHeader = "Idempotency-Key"

type IdempotencyStore interface {
	Check(ctx context.Context, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, userID, endpoint, key, requestHash string, response json.RawMessage) error
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Idempotent replays the stored response for a repeated Idempotency-Key,
// carrying the current request id. Requests without the header are
// untouched; only 2xx responses are kept.
func Idempotent(store IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyKeyHeader)
			if key == "" || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			requestID := GetRequestID(r.Context())

			body, err := io.ReadAll(r.Body)
			if err != nil {
				api.Fail(w, http.StatusBadRequest, "invalid_body", "request body could not be read", requestID)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			userID := ""
			if user, ok := GetUser(r.Context()); ok {
				userID = user.UserID
			}
			endpoint := r.Method + " " + r.URL.Path
			hash := RequestHash(body)

			stored, found, err := store.Check(r.Context(), userID, endpoint, key, hash)
			if errors.Is(err, ErrIdempotencyConflict) {
				api.Fail(w, http.StatusConflict, "idempotency_conflict", err.Error(), requestID)
				return
			}
			if err != nil {
				api.Fail(w, http.StatusInternalServerError, "idempotency_error", "idempotency check failed", requestID)
				return
			}
			if found {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Idempotent-Replayed", "true")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write(withRequestID(stored, requestID))
				return
			}

			capture := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(capture, r)
			if capture.status < 200 || capture.status >= 300 {
				return
			}
			if err := store.Save(r.Context(), userID, endpoint, key, hash, capture.body.Bytes()); err != nil {
				slog.Warn("idempotency save failed", "endpoint", endpoint, "err", err)
			}
		})
	}
}

// withRequestID stamps the replaying request's id onto a stored envelope so
// the response correlates with the caller's logs. Bodies that are not JSON
// objects are returned unchanged.
func withRequestID(stored json.RawMessage, requestID string) []byte {
	if requestID == "" {
		return stored
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(stored, &envelope); err != nil || envelope == nil {
		return stored
	}
	id, err := json.Marshal(requestID)
	if err != nil {
		return stored
	}
	envelope["requestId"] = id
	out, err := json.Marshal(envelope)
	if err != nil {
		return stored
	}
	return out
}

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *captureWriter) Write(p []byte) (int, error) {
	c.body.Write(p)
	return c.ResponseWriter.Write(p)
}

type PgIdempotencyStore struct {
	db *pgxpool.Pool
}

func NewPgIdempotencyStore(db *pgxpool.Pool) *PgIdempotencyStore {
	return &PgIdempotencyStore{db: db}
}

func (s *PgIdempotencyStore) Check(ctx context.Context, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	var storedHash string
	var stored json.RawMessage
	err := s.db.QueryRow(ctx, `
    SELECT request_hash, response_json
    FROM idempotency_keys
    WHERE user_id = $1 AND key = $2 AND endpoint = $3
  `, userID, key, endpoint).Scan(&storedHash, &stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if storedHash != requestHash {
		return nil, false, ErrIdempotencyConflict
	}
	return stored, true, nil
}

func (s *PgIdempotencyStore) Save(ctx context.Context, userID, endpoint, key, requestHash string, response json.RawMessage) error {
	tag, err := s.db.Exec(ctx, `
    INSERT INTO idempotency_keys (user_id, key, endpoint, request_hash, response_json)
    VALUES ($1, $2, $3, $4, $5)
    ON CONFLICT (user_id, key, endpoint)
    DO UPDATE SET response_json = EXCLUDED.response_json
    WHERE idempotency_keys.request_hash = EXCLUDED.request_hash
  `, userID, key, endpoint, requestHash, response)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdempotencyConflict
	}
	return nil
}

type memoryEntry struct {
	hash     string
	response json.RawMessage
}

// MemoryIdempotencyStore keeps keys for the life of the process.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{entries: map[string]memoryEntry{}}
}

func (s *MemoryIdempotencyStore) Check(_ context.Context, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[userID+"\x00"+endpoint+"\x00"+key]
	if !ok {
		return nil, false, nil
	}
	if entry.hash != requestHash {
		return nil, false, ErrIdempotencyConflict
	}
	return entry.response, true, nil
}

func (s *MemoryIdempotencyStore) Save(_ context.Context, userID, endpoint, key, requestHash string, response json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := userID + "\x00" + endpoint + "\x00" + key
	if entry, ok := s.entries[id]; ok && entry.hash != requestHash {
		return ErrIdempotencyConflict
	}
	s.entries[id] = memoryEntry{hash: requestHash, response: append(json.RawMessage(nil), response...)}
	return nil
}
