package repository

import (
	"errors"
	"fmt"

	"catalog-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductNotFound   = fmt.Errorf("product %w", domain.ErrNotFound)
	ErrCategoryNotFound  = fmt.Errorf("category %w", domain.ErrNotFound)
	ErrMaterialNotFound  = fmt.Errorf("material %w", domain.ErrNotFound)
	ErrCategoriesMissing = fmt.Errorf("one or more categories %w", domain.ErrNotFound)
	ErrMaterialsMissing  = fmt.Errorf("one or more materials %w", domain.ErrNotFound)

	ErrNoCategories = fmt.Errorf("%w: product must belong to at least one category", domain.ErrValidation)
	ErrMissingID    = fmt.Errorf("%w: product id must be set by the caller", domain.ErrValidation)
	ErrInvalidPrice = fmt.Errorf("%w: price must be greater than 0 and at most 9999999999.99", domain.ErrValidation)

	ErrCategoryAlreadyExists = fmt.Errorf("%w: category with this name already exists", domain.ErrConflict)
	ErrMaterialAlreadyExists = fmt.Errorf("%w: material with this name already exists", domain.ErrConflict)
	ErrCategoryInUse         = fmt.Errorf("%w: category is still referenced by products", domain.ErrConflict)
)

// SQLSTATE codes the repositories react to
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
	pgNumericOutOfRange   = "22003"
)

func pgErrorCode(err error) (string, *pgconn.PgError) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr
	}
	return "", nil
}

func isUniqueViolation(err error) bool {
	code, _ := pgErrorCode(err)
	return code == pgUniqueViolation
}

// classifyLinkError turns a foreign key violation raised while writing
// relation rows into the matching NotFound error. It happens when a category
// or material disappears between the existence check and the insert.
func classifyLinkError(op string, err error) error {
	code, pgErr := pgErrorCode(err)
	if code == pgForeignKeyViolation {
		switch pgErr.TableName {
		case productCategoryTable:
			return ErrCategoriesMissing
		case productMaterialTable:
			return ErrMaterialsMissing
		}
	}
	return domain.NewStorageError(op, err)
}

// classifyProductRowError maps value errors raised by the products row
// constraints to ErrInvalidPrice. The price column is the only one they
// guard.
func classifyProductRowError(op string, err error) error {
	switch code, _ := pgErrorCode(err); code {
	case pgCheckViolation, pgNumericOutOfRange:
		return ErrInvalidPrice
	}
	return domain.NewStorageError(op, err)
}
