package service

import (
	"Chest/internal/repo"
	"context"

	"go.uber.org/zap"
)

// AccountService удаляет все журнальные данные владельца. Учётная запись
// у провайдера идентичности удаляется вне этого сервиса.
type AccountService struct {
	accounts repo.AccountRepository
	tx       repo.TxManager
	logger   *zap.SugaredLogger
}

// NewAccountService создаёт сервис учётной записи.
func NewAccountService(accounts repo.AccountRepository, tx repo.TxManager, logger *zap.SugaredLogger) *AccountService {
	return &AccountService{accounts: accounts, tx: tx, logger: logger}
}

// Delete удаляет ссылки, события, партнёров и профиль владельца одной транзакцией.
// Повторный вызов для пустого владельца не ошибка.
func (s *AccountService) Delete(ctx context.Context, ownerID string) (err error) {
	ctx, span := startSpan(ctx, "AccountService.Delete", ownerID)
	defer func() { endSpan(span, err) }()

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.accounts.DeleteOwnerData(ctx, ownerID)
	})
	if err != nil {
		return wrapErr("delete account data", err)
	}
	s.logger.Infow("account data deleted", "owner_id", ownerID)
	return nil
}
