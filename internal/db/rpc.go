package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/yigit/dancestudio/internal/pkg/apperrors"
	"github.com/yigit/dancestudio/internal/pkg/dberrors"
)

// Remote procedures owned by the studio database.
const (
	ProcBookCourse         = "book_course"
	ProcCancelBooking      = "cancel_booking"
	ProcPerformCheckin     = "perform_course_checkin"
	ProcCreateCourse       = "create_course"
	ProcUpdateCourseStatus = "update_course_status"
	ProcSetUserRole        = "set_user_role"
	ProcReviewVerification = "review_verification"
	ProcSubmitVerification = "submit_verification"
)

// ErrEmptyResult is returned when a procedure yields SQL NULL
var ErrEmptyResult = errors.New("procedure returned no result")

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Querier is the part of pgxpool.Pool the invoker needs
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Arg is one named procedure argument
type Arg struct {
	Name  string
	Value any
}

// Args keeps procedure arguments in call order
type Args []Arg

// Invoker calls a named remote procedure and decodes its JSON result into out
type Invoker interface {
	Invoke(ctx context.Context, procedure string, args Args, out any) error
}

// ProcedureInvoker runs remote procedures as `SELECT schema.proc(name => $n, ...)`.
// Exactly one round trip per call; no retries.
type ProcedureInvoker struct {
	db     Querier
	schema string
	sb     squirrel.StatementBuilderType
	logger zerolog.Logger
}

// NewProcedureInvoker creates an invoker bound to a schema
func NewProcedureInvoker(db Querier, schema string, logger zerolog.Logger) *ProcedureInvoker {
	if schema == "" {
		schema = "public"
	}
	return &ProcedureInvoker{
		db:     db,
		schema: schema,
		sb:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		logger: logger.With().Str("component", "rpc").Logger(),
	}
}

// buildCall renders the SELECT for a procedure call using named notation
func (p *ProcedureInvoker) buildCall(procedure string, args Args) (string, []interface{}, error) {
	if !identifierPattern.MatchString(procedure) || !identifierPattern.MatchString(p.schema) {
		return "", nil, fmt.Errorf("invalid procedure name %q", procedure)
	}

	parts := make([]string, 0, len(args))
	values := make([]interface{}, 0, len(args))
	for _, arg := range args {
		if !identifierPattern.MatchString(arg.Name) {
			return "", nil, fmt.Errorf("invalid argument name %q for %s", arg.Name, procedure)
		}
		parts = append(parts, arg.Name+" => ?")
		values = append(values, arg.Value)
	}

	call := fmt.Sprintf("%s.%s(%s)::jsonb", p.schema, procedure, strings.Join(parts, ", "))
	return p.sb.Select().Column(squirrel.Expr(call, values...)).ToSql()
}

// Invoke implements Invoker.
// A RAISE EXCEPTION inside the procedure comes back as *apperrors.RemoteError;
// every other failure is returned wrapped and must not be shown to members.
func (p *ProcedureInvoker) Invoke(ctx context.Context, procedure string, args Args, out any) error {
	sql, values, err := p.buildCall(procedure, args)
	if err != nil {
		return err
	}

	start := time.Now()
	var raw []byte
	err = p.db.QueryRow(ctx, sql, values...).Scan(&raw)
	elapsed := time.Since(start)

	if err != nil {
		if msg, ok := dberrors.RaisedException(err); ok {
			p.logger.Debug().Str("procedure", procedure).Dur("elapsed", elapsed).Str("reason", msg).Msg("Procedure rejected request")
			return apperrors.NewRemoteError(procedure, msg)
		}
		return fmt.Errorf("invoke %s: %w", procedure, err)
	}

	p.logger.Debug().Str("procedure", procedure).Dur("elapsed", elapsed).Msg("Procedure invoked")

	if len(raw) == 0 {
		return fmt.Errorf("invoke %s: %w", procedure, ErrEmptyResult)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s result: %w", procedure, err)
	}
	return nil
}
