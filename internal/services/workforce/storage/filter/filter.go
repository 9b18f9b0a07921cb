// Package filter parses AIP-160 filter expressions into parameterized
// SQL conditions for the workforce list queries.
package filter

import (
	"fmt"
	"strings"
	"time"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	apperrors "github.com/PedroJIzGar/timelogic/internal/platform/errors"
)

// Condition is a SQL WHERE fragment with its positional parameters.
type Condition struct {
	Clause string
	Params []any
}

// Schema declares the filterable fields of one entity and how they map
// onto SQL columns.
type Schema struct {
	declarations *filtering.Declarations
	columns      map[string]string
}

type fieldSpec struct {
	name   string
	kind   *expr.Type
	column string
}

func newSchema(fields []fieldSpec) (Schema, error) {
	opts := []filtering.DeclarationOption{filtering.DeclareStandardFunctions()}
	columns := make(map[string]string, len(fields))
	for _, f := range fields {
		opts = append(opts, filtering.DeclareIdent(f.name, f.kind))
		columns[f.name] = f.column
	}
	decls, err := filtering.NewDeclarations(opts...)
	if err != nil {
		return Schema{}, fmt.Errorf("create declarations: %w", err)
	}
	return Schema{declarations: decls, columns: columns}, nil
}

func mustSchema(fields []fieldSpec) Schema {
	s, err := newSchema(fields)
	if err != nil {
		panic(err)
	}
	return s
}

// Employees declares the roster filter fields.
func Employees() Schema {
	return mustSchema([]fieldSpec{
		{"first_name", filtering.TypeString, "first_name"},
		{"last_name", filtering.TypeString, "last_name"},
		{"email", filtering.TypeString, "email"},
		{"position", filtering.TypeString, "position"},
		{"department", filtering.TypeString, "department"},
		{"active", filtering.TypeBool, "active"},
		{"created_at", filtering.TypeTimestamp, "created_at"},
	})
}

// Tasks declares the task filter fields.
func Tasks() Schema {
	return mustSchema([]fieldSpec{
		{"status", filtering.TypeString, "status"},
		{"assignee_id", filtering.TypeString, "assignee_employee_id"},
		{"title", filtering.TypeString, "title"},
		{"due_at", filtering.TypeTimestamp, "due_at"},
	})
}

// Requests declares the time-off request filter fields.
func Requests() Schema {
	return mustSchema([]fieldSpec{
		{"status", filtering.TypeString, "status"},
		{"kind", filtering.TypeString, "kind"},
		{"employee_id", filtering.TypeString, "employee_id"},
		{"starts_at", filtering.TypeTimestamp, "starts_at"},
		{"ends_at", filtering.TypeTimestamp, "ends_at"},
	})
}

// Parse compiles an AIP-160 expression against the schema. An empty
// expression yields an empty condition. Parse and translation failures
// carry FILTER_INVALID so callers can surface them as bad input.
func (s Schema) Parse(filterStr string) (Condition, error) {
	if strings.TrimSpace(filterStr) == "" {
		return Condition{}, nil
	}
	parsed, err := filtering.ParseFilterString(filterStr, s.declarations)
	if err != nil {
		return Condition{}, apperrors.Wrap(apperrors.CodeFilterInvalid, "parse filter", err)
	}
	cond, err := s.translateExpr(parsed.CheckedExpr.Expr)
	if err != nil {
		return Condition{}, apperrors.Wrap(apperrors.CodeFilterInvalid, "translate filter", err)
	}
	return cond, nil
}

func (s Schema) translateExpr(e *expr.Expr) (Condition, error) {
	if e == nil {
		return Condition{}, nil
	}
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return s.translateCall(kind.CallExpr)
	default:
		return Condition{}, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func (s Schema) translateCall(call *expr.Expr_Call) (Condition, error) {
	switch call.Function {
	case "_&&_", "AND":
		return s.translateLogical(call.Args, "AND")
	case "_||_", "OR":
		return s.translateLogical(call.Args, "OR")
	case "_==_", "=":
		return s.translateComparison(call.Args, "=")
	case "_!=_", "!=":
		return s.translateComparison(call.Args, "!=")
	case "_<_", "<":
		return s.translateComparison(call.Args, "<")
	case "_<=_", "<=":
		return s.translateComparison(call.Args, "<=")
	case "_>_", ">":
		return s.translateComparison(call.Args, ">")
	case "_>=_", ">=":
		return s.translateComparison(call.Args, ">=")
	default:
		return Condition{}, fmt.Errorf("unsupported function: %s", call.Function)
	}
}

func (s Schema) translateLogical(args []*expr.Expr, op string) (Condition, error) {
	if len(args) != 2 {
		return Condition{}, fmt.Errorf("%s requires 2 arguments", op)
	}
	left, err := s.translateExpr(args[0])
	if err != nil {
		return Condition{}, err
	}
	right, err := s.translateExpr(args[1])
	if err != nil {
		return Condition{}, err
	}
	return Condition{
		Clause: fmt.Sprintf("(%s %s %s)", left.Clause, op, right.Clause),
		Params: append(left.Params, right.Params...),
	}, nil
}

func (s Schema) translateComparison(args []*expr.Expr, op string) (Condition, error) {
	if len(args) != 2 {
		return Condition{}, fmt.Errorf("comparison requires 2 arguments")
	}
	field, err := extractFieldName(args[0])
	if err != nil {
		return Condition{}, err
	}
	column, ok := s.columns[field]
	if !ok {
		return Condition{}, fmt.Errorf("unknown field: %s", field)
	}
	value, err := extractValue(args[1])
	if err != nil {
		return Condition{}, err
	}
	return Condition{
		Clause: fmt.Sprintf("%s %s ?", column, op),
		Params: []any{value},
	}, nil
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression")
	}
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_IdentExpr:
		return kind.IdentExpr.Name, nil
	default:
		return "", fmt.Errorf("expected identifier, got %T", kind)
	}
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		return extractConstValue(kind.ConstExpr)
	case *expr.Expr_CallExpr:
		if kind.CallExpr.Function == "timestamp" && len(kind.CallExpr.Args) == 1 {
			return extractTimestampValue(kind.CallExpr.Args[0])
		}
		return nil, fmt.Errorf("unsupported function in value position: %s", kind.CallExpr.Function)
	default:
		return nil, fmt.Errorf("expected constant or timestamp, got %T", kind)
	}
}

func extractConstValue(c *expr.Constant) (any, error) {
	if c == nil {
		return nil, fmt.Errorf("nil constant")
	}
	switch kind := c.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return kind.Uint64Value, nil
	case *expr.Constant_DoubleValue:
		return kind.DoubleValue, nil
	case *expr.Constant_BoolValue:
		// Booleans are stored as 0/1 integer columns.
		if kind.BoolValue {
			return int64(1), nil
		}
		return int64(0), nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}

// extractTimestampValue resolves timestamp("...") calls to the integer
// millisecond representation the stores persist.
func extractTimestampValue(e *expr.Expr) (int64, error) {
	if e == nil {
		return 0, fmt.Errorf("nil timestamp argument")
	}
	constExpr, ok := e.ExprKind.(*expr.Expr_ConstExpr)
	if !ok {
		return 0, fmt.Errorf("timestamp argument must be a constant string")
	}
	strVal, ok := constExpr.ConstExpr.ConstantKind.(*expr.Constant_StringValue)
	if !ok {
		return 0, fmt.Errorf("timestamp argument must be a string")
	}
	t, err := time.Parse(time.RFC3339, strVal.StringValue)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, strVal.StringValue)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp format: %s", strVal.StringValue)
		}
	}
	return t.UTC().UnixMilli(), nil
}
