package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/pkg/observability"
	"github.com/sony/gobreaker/v2"
)

// ErrRemoteRejected is returned for back-office errors without a more
// specific sentinel.
var ErrRemoteRejected = errors.New("back office returned an error")

// HTTPGatewayConfig configures the HTTP gateway and its circuit breaker.
type HTTPGatewayConfig struct {
	BaseURL string
	Client  *http.Client

	// Timeout bounds each request.
	Timeout time.Duration

	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state.
	Interval time.Duration

	// OpenTimeout is how long the breaker stays open.
	OpenTimeout time.Duration

	// FailureThreshold trips the breaker after that many consecutive
	// transport or server failures.
	FailureThreshold uint32

	Logger *slog.Logger
}

// DefaultHTTPGatewayConfig returns the default breaker settings for baseURL.
func DefaultHTTPGatewayConfig(baseURL string) HTTPGatewayConfig {
	return HTTPGatewayConfig{
		BaseURL:          baseURL,
		Timeout:          10 * time.Second,
		MaxRequests:      1,
		Interval:         time.Minute,
		OpenTimeout:      30 * time.Second,
		FailureThreshold: 5,
	}
}

// HTTPGateway talks to a back-office lesson API. Every call goes through a
// circuit breaker; while it is open calls fail fast with
// domain.ErrBackOfficeUnavailable. Calls are never retried.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *slog.Logger
}

var (
	_ domain.LessonGateway = (*HTTPGateway)(nil)
	_ domain.LessonSource  = (*HTTPGateway)(nil)
)

// NewHTTPGateway creates a gateway for cfg.BaseURL.
func NewHTTPGateway(cfg HTTPGatewayConfig) (*HTTPGateway, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("back-office URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid back-office URL: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	settings := gobreaker.Settings{
		Name:        "backoffice",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			var apiErr *apiError
			if errors.As(err, &apiErr) {
				return apiErr.status < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &HTTPGateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		logger:  logger,
	}, nil
}

// BreakerState reports the circuit breaker state.
func (g *HTTPGateway) BreakerState() string {
	return g.breaker.State().String()
}

// Update sends a PATCH /api/v1/lessons/{id}.
func (g *HTTPGateway) Update(ctx context.Context, b domain.Booking, action domain.LifecycleAction) (domain.Booking, error) {
	var dto queries.LessonDTO
	path := "/api/v1/lessons/" + strconv.FormatInt(int64(b.ID()), 10)
	if err := g.do(ctx, http.MethodPatch, path, commands.NewUpdateLessonRequest(b, action), &dto); err != nil {
		return domain.Booking{}, err
	}
	return dto.Booking()
}

// Create sends a POST /api/v1/lessons.
func (g *HTTPGateway) Create(ctx context.Context, draft domain.LessonDraft) (domain.Booking, error) {
	var dto queries.LessonDTO
	if err := g.do(ctx, http.MethodPost, "/api/v1/lessons", commands.NewCreateLessonRequest(draft), &dto); err != nil {
		return domain.Booking{}, err
	}
	return dto.Booking()
}

// FindLesson fetches one lesson.
func (g *HTTPGateway) FindLesson(ctx context.Context, id domain.BookingID) (domain.Booking, error) {
	var dto queries.LessonDTO
	if err := g.do(ctx, http.MethodGet, "/api/v1/lessons/"+strconv.FormatInt(int64(id), 10), nil, &dto); err != nil {
		return domain.Booking{}, err
	}
	return dto.Booking()
}

// ListInstructors fetches every instructor.
func (g *HTTPGateway) ListInstructors(ctx context.Context) ([]domain.Resource, error) {
	var dtos []queries.InstructorDTO
	if err := g.do(ctx, http.MethodGet, "/api/v1/instructors", nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.Resource, len(dtos))
	for i, dto := range dtos {
		out[i] = dto.ToResource()
	}
	return out, nil
}

// ListLessons fetches the lessons dated within [from, to].
func (g *HTTPGateway) ListLessons(ctx context.Context, from, to domain.Date, resources []domain.ResourceID) ([]domain.Booking, error) {
	params := url.Values{}
	params.Set("from", from.String())
	params.Set("to", to.String())
	for _, id := range resources {
		params.Add("instructor_id", strconv.FormatInt(int64(id), 10))
	}

	var dtos []queries.LessonDTO
	if err := g.do(ctx, http.MethodGet, "/api/v1/lessons?"+params.Encode(), nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(dtos))
	for _, dto := range dtos {
		b, err := dto.Booking()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// apiError is a non-2xx answer of the back office.
type apiError struct {
	status  int
	kind    string
	message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("back office returned %d: %s", e.status, e.message)
}

// Unwrap maps the error kind reported by the back office to the matching
// domain sentinel.
func (e *apiError) Unwrap() error {
	switch e.kind {
	case commands.KindConflict:
		return domain.ErrLessonConflict
	case commands.KindTransition:
		return domain.ErrInvalidTransition
	case commands.KindNotFound:
		return domain.ErrLessonNotFound
	case commands.KindUnavailable:
		return domain.ErrBackOfficeUnavailable
	}
	if e.status == http.StatusNotFound {
		return domain.ErrLessonNotFound
	}
	return ErrRemoteRejected
}

func (g *HTTPGateway) do(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	start := time.Now()
	payload, err := g.breaker.Execute(func() ([]byte, error) {
		return g.roundTrip(ctx, method, path, body)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", domain.ErrBackOfficeUnavailable, err)
	}
	if err != nil {
		g.logger.WarnContext(ctx, "back-office call failed",
			"method", method,
			"path", path,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode back-office response: %w", err)
	}
	return nil
}

func (g *HTTPGateway) roundTrip(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := observability.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, responseError(resp.StatusCode, payload)
	}
	return payload, nil
}

func responseError(status int, payload []byte) error {
	var body struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(payload))
		if body.Error == "" {
			body.Error = http.StatusText(status)
		}
	}
	return &apiError{status: status, kind: body.Kind, message: body.Error}
}
