package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/godilite/mind-compass/internal/quiz"
	"github.com/godilite/mind-compass/internal/repository/models"
	"github.com/godilite/mind-compass/internal/service"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	defaultCacheDuration = time.Minute
	defaultGRPCTimeout   = 10 * time.Second
)

type CacheKeyType string

const cacheKeyWeeklyStats CacheKeyType = "grpc:weekly_stats"

type GRPCHandlers struct {
	quiz     QuizService
	stats    StatsService
	cache    Cacher
	logger   *zap.Logger
	sfGroup  singleflight.Group
	cacheTTL time.Duration
	now      func() time.Time
}

// NewGRPCHandlers initializes the gRPC handlers.
func NewGRPCHandlers(quizSvc QuizService, stats StatsService, cache Cacher, logger *zap.Logger, ttl time.Duration) *GRPCHandlers {
	if quizSvc == nil || stats == nil {
		panic("nil service provided to NewGRPCHandlers")
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandlers{
		quiz:     quizSvc,
		stats:    stats,
		cache:    cache,
		logger:   logger.Named("grpc-handler"),
		cacheTTL: ttl,
		now:      time.Now,
	}
}

// weeklyKey scopes cached stats to the UTC day the window ends on.
func weeklyKey(now time.Time) string {
	return fmt.Sprintf("%s:%s", cacheKeyWeeklyStats, now.UTC().Format(models.DayLayout))
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, service.ErrUnknownEventType), errors.Is(err, quiz.ErrUnknownType):
		s.logger.Info("invalid argument", zap.String("op", op), zap.Error(err))
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrStatsUnavailable):
		s.logger.Error("stats unavailable", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Unavailable, "stats backend unavailable")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

// toStruct renders v through its JSON form so field names match the HTTP API.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}

type questionView struct {
	ID         int                    `json:"id"`
	Text       string                 `json:"text"`
	Dimensions map[quiz.Dimension]int `json:"dimensions"`
}

func (s *GRPCHandlers) ListQuestions(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	questions := s.quiz.Bank().Questions()
	views := make([]questionView, len(questions))
	for i, q := range questions {
		views[i] = questionView{ID: q.ID, Text: q.Text, Dimensions: q.Weights}
	}

	out, err := toStruct(map[string]any{
		"questions": views,
		"scale":     map[string]int{"min": quiz.MinResponse, "max": quiz.MaxResponse},
	})
	if err != nil {
		return nil, s.handleError(ctx, "ListQuestions", err)
	}
	return out, nil
}

// maxAnswerMagnitude bounds responses so the float to int conversion is exact.
const maxAnswerMagnitude = 1 << 53

// parseAnswers reads {"<question id>": <response>} into quiz answers.
func parseAnswers(v *structpb.Value) (quiz.Answers, error) {
	answers := quiz.Answers{}
	if v == nil {
		return answers, nil
	}
	fields := v.GetStructValue().GetFields()
	for k, raw := range fields {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("answer key %q is not a question id", k)
		}
		n, ok := raw.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("answer %q must be a number", k)
		}
		v := n.NumberValue
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || math.Abs(v) > maxAnswerMagnitude {
			return nil, fmt.Errorf("answer %q must be a whole number", k)
		}
		answers[id] = int(v)
	}
	return answers, nil
}

func (s *GRPCHandlers) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	answers, err := parseAnswers(fields["answers"])
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	var startedAt time.Time
	if raw := fields["started_at"].GetStringValue(); raw != "" {
		startedAt, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "started_at must be an RFC 3339 timestamp")
		}
	}

	session := s.quiz.Session(ctx, fields["session_token"].GetStringValue())
	outcome := s.quiz.Evaluate(ctx, session, answers, startedAt)

	body := map[string]any{"outcome": outcome}
	if session != nil {
		body["session_token"] = session.Token
	}
	out, err := toStruct(body)
	if err != nil {
		return nil, s.handleError(ctx, "Evaluate", err)
	}
	return out, nil
}

func (s *GRPCHandlers) Track(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	fields := req.GetFields()

	var payload any
	if p := fields["payload"].GetStructValue(); p != nil {
		payload = p.AsMap()
	}

	session := s.quiz.Session(ctx, fields["session_token"].GetStringValue())
	if err := s.quiz.Track(ctx, session, fields["type"].GetStringValue(), payload); err != nil {
		return nil, s.handleError(ctx, "Track", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCHandlers) WeeklyStats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	rows, err := FindAndCache(ctx, s.cache, &s.sfGroup, weeklyKey(s.now()), s.cacheTTL, s.logger, func(fetchCtx context.Context) ([]models.DailyAggregate, error) {
		return s.stats.LastSevenDays(fetchCtx)
	})
	if err != nil {
		return nil, s.handleError(ctx, "WeeklyStats", err)
	}

	out, err := toStruct(map[string]any{"days": rows})
	if err != nil {
		return nil, s.handleError(ctx, "WeeklyStats", err)
	}
	return out, nil
}
