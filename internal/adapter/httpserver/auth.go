package httpserver

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2Params defines parameters for Argon2id password hashing
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// DefaultArgon2Params are used by HashPassword callers that have no
// stronger requirements.
var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024, // 64 MB
	Iterations:  3,
	Parallelism: 2,
	SaltLen:     16,
	KeyLen:      32,
}

// HashPassword creates an Argon2id hash of the password in the form
// argon2id$iterations$memory$parallelism$salt$hash (raw std base64).
func HashPassword(password string, params Argon2Params) (string, error) {
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLen)
	return fmt.Sprintf("argon2id$%d$%d$%d$%s$%s",
		params.Iterations,
		params.Memory,
		params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyPassword verifies a password against its Argon2id hash
func VerifyPassword(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "argon2id" {
		return false
	}
	iters, err1 := parseUint32(parts[1])
	mem, err2 := parseUint32(parts[2])
	par64, err3 := parseUint32(parts[3])
	if err1 != nil || err2 != nil || err3 != nil || iters == 0 || par64 == 0 {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expectedHash) == 0 {
		return false
	}

	// Clamp parallelism to uint8 range to avoid overflow
	par := uint8(math.MaxUint8)
	if par64 < math.MaxUint8 {
		par = uint8(par64)
	}
	actualHash := argon2.IDKey([]byte(password), salt, iters, mem, par, uint32(len(expectedHash))) //nolint:gosec // len bounded by decoded hash
	return subtle.ConstantTimeCompare(actualHash, expectedHash) == 1
}

// BasicAuthGuard requires HTTP Basic credentials matching the configured
// user and Argon2id hash. It passes everything through when auth is not
// configured.
func (s *Server) BasicAuthGuard() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !s.Cfg.AuthEnabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.Cfg.APIUsername)) == 1
			if !ok || !userOK || !VerifyPassword(pass, s.Cfg.APIPasswordHash) {
				LoggerFrom(r).Warn("agent route authentication failed",
					slog.String("path", r.URL.Path),
					slog.Bool("credentials_present", ok))
				w.Header().Set("WWW-Authenticate", `Basic realm="ai-interview-agent", charset="UTF-8"`)
				writeJSON(w, http.StatusUnauthorized, errorEnvelope{Error: apiError{Code: "UNAUTHORIZED", Message: "authentication required"}})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// parseUint32 parses a decimal string into uint32; returns error on failure
func parseUint32(s string) (uint32, error) {
	x, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse")
	}
	return uint32(x), nil
}
