package storage

import (
	"database/sql/driver"
	"errors"

	"github.com/GoArmGo/EcoFinds/internal/domain"
	"github.com/lib/pq"
)

// Имена ограничений из миграций; по ним выбирается текст ошибки
const (
	constraintUsersEmail       = "users_email_key"
	constraintUsersUsername    = "users_username_key"
	constraintProductSeller    = "products_seller_id_fkey"
	constraintCartProduct      = "cart_product_id_fkey"
	constraintCartUser         = "cart_user_id_fkey"
	constraintPurchasesProduct = "purchases_product_id_fkey"
)

// mapError переводит ошибку драйвера в прикладную ошибку или *domain.StoreError
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return &domain.StoreError{Op: op, Err: err, Retryable: errors.Is(err, driver.ErrBadConn)}
	}

	switch pqErr.Code {
	case "23505": // unique_violation
		switch pqErr.Constraint {
		case constraintUsersEmail:
			return domain.NewConflictError("email is already registered")
		case constraintUsersUsername:
			return domain.NewConflictError("username is already taken")
		default:
			return domain.NewConflictError("record already exists")
		}
	case "23503": // foreign_key_violation
		switch pqErr.Constraint {
		case constraintPurchasesProduct:
			return domain.NewConflictError("product has purchase history and cannot be deleted")
		case constraintCartProduct:
			return domain.NewNotFoundError("product not found")
		case constraintProductSeller, constraintCartUser:
			return domain.NewValidationError("referenced user does not exist")
		default:
			return domain.NewValidationError("referenced record does not exist")
		}
	case "23514", "22P02", "22003": // check_violation, invalid_text_representation, numeric_value_out_of_range
		return domain.NewValidationError("invalid field value")
	case "57P01": // admin_shutdown
		return &domain.StoreError{Op: op, Err: err, Retryable: true}
	}

	switch pqErr.Code.Class() {
	case "08", "40", "53": // connection_exception, transaction_rollback, insufficient_resources
		return &domain.StoreError{Op: op, Err: err, Retryable: true}
	}

	return &domain.StoreError{Op: op, Err: err}
}

// escapeLike экранирует спецсимволы шаблона LIKE (экранирующий символ по умолчанию - обратный слэш)
func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '\\', '%', '_':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
