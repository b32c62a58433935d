package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/go-productivity/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var uniqueKeyPattern = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// ErrCode returns the Code of the first *Error in err's chain, or Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	return Other
}

// ConvertPgError normalizes a server error reported by pgx.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// tableError remembers which table a query ran against so a missing row can
// be reported as "Note not found" instead of a generic message.
type tableError struct {
	table string
	err   error
}

func (e *tableError) Error() string { return fmt.Sprintf("%s: %v", e.table, e.err) }
func (e *tableError) Unwrap() error { return e.err }

// WithTable annotates err with the table it came from. A nil err stays nil.
func WithTable(table string, err error) error {
	if err == nil {
		return nil
	}
	return &tableError{table: table, err: err}
}

// errorCode builds codes like NOTE_NOT_FOUND or FLOW_ALREADY_EXISTS.
func errorCode(table string, code Code) string {
	domain := strings.ToUpper(singular(table))
	if domain == "" {
		domain = "RECORD"
	}

	action := "ERROR"
	switch code {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, InvalidText:
		action = "INVALID"
	}

	return domain + "_" + action
}

func userMessage(sqlErr *Error) string {
	entity := entityName(sqlErr.TableName, sqlErr.ColumnName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		return fmt.Sprintf("The referenced %s does not exist", entity)
	case UniqueViolation:
		if column := uniqueColumn(sqlErr.ConstraintName); column != "" {
			return fmt.Sprintf("A %s with this %s already exists", entity, humanize(column))
		}
		return fmt.Sprintf("A %s with this identifier already exists", entity)
	case NotNullViolation:
		field := humanize(sqlErr.ColumnName)
		if field == "" {
			field = "field"
		}
		return fmt.Sprintf("The %s is required", field)
	case CheckViolation:
		if field := humanize(sqlErr.ColumnName); field != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", field)
		}
		return "One or more values do not meet required conditions"
	case InvalidText:
		return "One or more values have an invalid format"
	default:
		return "An error occurred while processing your request"
	}
}

// entityName prefers the referenced entity of a *_id column ("flow_id" ->
// "Flow") and falls back to the singular table name.
func entityName(table, column string) string {
	lower := strings.ToLower(column)
	if strings.HasSuffix(lower, "_id") {
		return humanize(strings.TrimSuffix(lower, "_id"))
	}
	if table != "" {
		return humanize(singular(table))
	}
	return "record"
}

// singular drops a trailing "s"; table names here are regular plurals.
func singular(name string) string {
	if len(name) > 1 && strings.HasSuffix(name, "s") {
		return name[:len(name)-1]
	}
	return name
}

func humanize(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// uniqueColumn reads the column out of "unique_<table>_<column>" or
// "<table>_<column>_key" constraint names.
func uniqueColumn(constraint string) string {
	if strings.HasPrefix(constraint, "unique_") {
		if parts := strings.Split(constraint, "_"); len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}
	if m := uniqueKeyPattern.FindStringSubmatch(constraint); len(m) > 1 {
		return m[1]
	}
	return ""
}

// HandleError maps a repository error to an *errs.HTTPError.
//
// HTTP errors pass through, constraint violations become 400s with a
// generated code, missing rows become 404s and everything else a 500.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		sqlErr := ConvertPgError(pgErr)
		code := errorCode(sqlErr.TableName, sqlErr.Code)
		message := userMessage(sqlErr)

		switch sqlErr.Code {
		case ForeignKeyViolation:
			return errs.NewBadRequestError(message, false, &code, nil, nil)
		case UniqueViolation, CheckViolation, InvalidText:
			return errs.NewBadRequestError(message, true, &code, nil, nil)
		case NotNullViolation:
			return errs.NewBadRequestError(message, true, &code, []errs.FieldError{
				{Field: strings.ToLower(sqlErr.ColumnName), Error: "is required"},
			}, nil)
		default:
			return errs.NewInternalServerError()
		}
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		var te *tableError
		if errors.As(err, &te) {
			code := errorCode(te.table, Other)
			code = strings.TrimSuffix(code, "_ERROR") + "_NOT_FOUND"
			return errs.NewNotFoundError(fmt.Sprintf("%s not found", entityName(te.table, "")), true, &code)
		}
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}
