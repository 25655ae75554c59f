package usecase

import (
	"context"

	secretsDomain "github.com/allisson/secrethold/internal/secrets/domain"
)

// NoTx is the transaction handle of callers that never pass one. Outer surfaces work in
// terms of SecretUseCase[NoTx, T] so they do not depend on a storage driver.
type NoTx struct{}

// TxRunner runs fn inside a backend transaction, committing when fn returns nil and
// rolling back otherwise. database.TxManager satisfies TxRunner[*sql.Tx].
type TxRunner[Tx any] interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type noTxRunner[Tx any] struct{}

// NoTxRunner returns a TxRunner that calls fn directly with the zero Tx.
func NoTxRunner[Tx any]() TxRunner[Tx] {
	return noTxRunner[Tx]{}
}

func (noTxRunner[Tx]) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	var zero Tx
	return fn(ctx, zero)
}

type storageWithoutTx[Tx any] struct {
	next Storage[Tx]
}

// WithoutTx adapts a storage so it can be used with NoTx handles. Writes and deletes are
// forwarded with the zero Tx, which storages treat as "no transaction".
func WithoutTx[Tx any](next Storage[Tx]) Storage[NoTx] {
	return &storageWithoutTx[Tx]{next: next}
}

func (s *storageWithoutTx[Tx]) Read(ctx context.Context, id secretsDomain.ID) (string, error) {
	return s.next.Read(ctx, id)
}

func (s *storageWithoutTx[Tx]) Write(ctx context.Context, id secretsDomain.ID, encryptedData string, _ NoTx) error {
	var zero Tx
	return s.next.Write(ctx, id, encryptedData, zero)
}

func (s *storageWithoutTx[Tx]) Delete(ctx context.Context, id secretsDomain.ID, _ NoTx) error {
	var zero Tx
	return s.next.Delete(ctx, id, zero)
}

type transactionalSecretUseCase[Tx any, T any] struct {
	next   SecretUseCase[Tx, T]
	runner TxRunner[Tx]
}

// NewTransactionalSecretUseCase runs every mutation of next inside a transaction opened
// by runner. Reads and cache-only operations are forwarded as is.
func NewTransactionalSecretUseCase[Tx any, T any](
	next SecretUseCase[Tx, T],
	runner TxRunner[Tx],
) SecretUseCase[NoTx, T] {
	if runner == nil {
		runner = NoTxRunner[Tx]()
	}
	return &transactionalSecretUseCase[Tx, T]{next: next, runner: runner}
}

func (t *transactionalSecretUseCase[Tx, T]) GetSecret(
	ctx context.Context,
	id secretsDomain.ID,
	pin string,
) (T, bool, error) {
	return t.next.GetSecret(ctx, id, pin)
}

func (t *transactionalSecretUseCase[Tx, T]) SetSecret(
	ctx context.Context,
	id secretsDomain.ID,
	secret, pin string,
	_ NoTx,
) error {
	return t.runner.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return t.next.SetSecret(ctx, id, secret, pin, tx)
	})
}

func (t *transactionalSecretUseCase[Tx, T]) ChangePin(
	ctx context.Context,
	id secretsDomain.ID,
	oldPin, newPin string,
	_ NoTx,
) error {
	return t.runner.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return t.next.ChangePin(ctx, id, oldPin, newPin, tx)
	})
}

func (t *transactionalSecretUseCase[Tx, T]) DeleteSecret(ctx context.Context, id secretsDomain.ID, _ NoTx) error {
	return t.runner.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return t.next.DeleteSecret(ctx, id, tx)
	})
}

func (t *transactionalSecretUseCase[Tx, T]) Cached(ctx context.Context, id secretsDomain.ID) (bool, error) {
	return t.next.Cached(ctx, id)
}

func (t *transactionalSecretUseCase[Tx, T]) DeleteCachedSecret(ctx context.Context, id secretsDomain.ID) error {
	return t.next.DeleteCachedSecret(ctx, id)
}

func (t *transactionalSecretUseCase[Tx, T]) CleanCache(ctx context.Context) error {
	return t.next.CleanCache(ctx)
}

