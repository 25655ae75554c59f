package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	secretsDomain "github.com/allisson/secrethold/internal/secrets/domain"
	secretsUseCase "github.com/allisson/secrethold/internal/secrets/usecase"
	customValidation "github.com/allisson/secrethold/internal/validation"
)

// SecretDeps bundles what the secret commands need from the container.
type SecretDeps struct {
	UseCase secretsUseCase.SecretUseCase[secretsUseCase.NoTx, string]
	Logger  *slog.Logger
	IO      IOTuple
}

// ErrSecretNotFound is returned by get-secret when nothing is stored under the id.
var ErrSecretNotFound = errors.New("secret not found")

// RunSetSecret encrypts secret under pin and stores it. An empty id mints a UUIDv7.
// Missing secret and PIN values are prompted for.
func RunSetSecret(ctx context.Context, deps SecretDeps, rawID, secret, pin, format string) error {
	if rawID == "" {
		generated, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate secret id: %w", err)
		}
		rawID = generated.String()
	}
	id, err := secretsDomain.ParseID(rawID)
	if err != nil {
		return err
	}

	p := newPrompter(deps.IO)
	if secret, err = p.value(secret, "Secret"); err != nil {
		return err
	}
	if pin, err = readPin(p, pin, "PIN"); err != nil {
		return err
	}

	if err := deps.UseCase.SetSecret(ctx, id, secret, pin, secretsUseCase.NoTx{}); err != nil {
		return fmt.Errorf("failed to set secret: %w", err)
	}

	deps.Logger.Info("secret stored", slog.String("id", id.String()))

	if format == "json" {
		return writeJSON(deps.IO.Writer, map[string]string{"id": id.String()})
	}
	_, _ = fmt.Fprintf(deps.IO.Writer, "Secret stored with ID: %s\n", id)
	return nil
}

// RunGetSecret decrypts and prints the secret stored under rawID.
func RunGetSecret(ctx context.Context, deps SecretDeps, rawID, pin, format string) error {
	id, err := secretsDomain.ParseID(rawID)
	if err != nil {
		return err
	}

	if pin, err = readPin(newPrompter(deps.IO), pin, "PIN"); err != nil {
		return err
	}

	secret, found, err := deps.UseCase.GetSecret(ctx, id, pin)
	if err != nil {
		return fmt.Errorf("failed to get secret: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrSecretNotFound, id)
	}

	if format == "json" {
		return writeJSON(deps.IO.Writer, map[string]string{"id": id.String(), "secret": secret})
	}
	_, _ = fmt.Fprintln(deps.IO.Writer, secret)
	return nil
}

// RunChangePin re-encrypts the secret stored under rawID with newPin.
func RunChangePin(ctx context.Context, deps SecretDeps, rawID, oldPin, newPin string) error {
	id, err := secretsDomain.ParseID(rawID)
	if err != nil {
		return err
	}

	p := newPrompter(deps.IO)
	if oldPin, err = readPin(p, oldPin, "Current PIN"); err != nil {
		return err
	}
	if newPin, err = readPin(p, newPin, "New PIN"); err != nil {
		return err
	}

	if err := deps.UseCase.ChangePin(ctx, id, oldPin, newPin, secretsUseCase.NoTx{}); err != nil {
		return fmt.Errorf("failed to change pin: %w", err)
	}

	deps.Logger.Info("secret pin changed", slog.String("id", id.String()))
	_, _ = fmt.Fprintf(deps.IO.Writer, "PIN changed for ID: %s\n", id)
	return nil
}

// RunDeleteSecret removes the secret stored under rawID. Deleting a missing id succeeds.
func RunDeleteSecret(ctx context.Context, deps SecretDeps, rawID string) error {
	id, err := secretsDomain.ParseID(rawID)
	if err != nil {
		return err
	}

	if err := deps.UseCase.DeleteSecret(ctx, id, secretsUseCase.NoTx{}); err != nil {
		return fmt.Errorf("failed to delete secret: %w", err)
	}

	deps.Logger.Info("secret deleted", slog.String("id", id.String()))
	_, _ = fmt.Fprintf(deps.IO.Writer, "Secret deleted: %s\n", id)
	return nil
}

func readPin(p *prompter, pin, label string) (string, error) {
	pin, err := p.value(pin, label)
	if err != nil {
		return "", err
	}
	if err := validation.Validate(pin, customValidation.Pin...); err != nil {
		return "", customValidation.WrapValidationError(fmt.Errorf("%s: %w", label, err))
	}
	return pin, nil
}
