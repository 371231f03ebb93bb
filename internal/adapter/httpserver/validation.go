package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/ai-interview-agent/internal/domain"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// maxIDLength bounds session and user identifiers.
const maxIDLength = 100

var validID = regexp.MustCompile(`^[a-zA-Z0-9_.@:-]+$`)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidateID validates a session or user identifier taken from a path or body.
func ValidateID(field, id string) ValidationResult {
	invalid := func(code, msg string) ValidationResult {
		return ValidationResult{Errors: []ValidationError{{Field: field, Code: code, Message: msg}}}
	}
	switch {
	case id == "":
		return invalid("REQUIRED", field+" is required")
	case len(id) > maxIDLength:
		return invalid("TOO_LONG", fmt.Sprintf("%s is too long (max %d characters)", field, maxIDLength))
	case !validID.MatchString(id):
		return invalid("INVALID_FORMAT", field+" contains invalid characters")
	}
	return ValidationResult{Valid: true}
}

// SanitizeString sanitizes a string input
func SanitizeString(input string) string {
	// Remove null bytes and control characters
	input = strings.ReplaceAll(input, "\x00", "")

	// Trim whitespace
	input = strings.TrimSpace(input)

	// Limit length to prevent DoS
	if len(input) > 1000 {
		input = input[:1000]
	}

	// Ensure valid UTF-8
	if !utf8.ValidString(input) {
		input = strings.ToValidUTF8(input, "")
	}

	return input
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() {
		vld = validator.New()
		vld.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return vld
}

// decodeJSON reads a JSON body into dst and validates its struct tags.
// Failures are ErrInvalidArgument with per-field details.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) ([]ValidationError, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: request body required", domain.ErrInvalidArgument)
		}
		return nil, fmt.Errorf("%w: invalid json: %v", domain.ErrInvalidArgument, err)
	}
	if err := getValidator().Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			out := make([]ValidationError, 0, len(verrs))
			for _, fe := range verrs {
				out = append(out, ValidationError{
					Field:   fe.Field(),
					Code:    strings.ToUpper(fe.Tag()),
					Message: fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()),
				})
			}
			return out, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, out[0].Message)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return nil, nil
}
