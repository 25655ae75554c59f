package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/secrethold/internal/errors"
	secretsDomain "github.com/allisson/secrethold/internal/secrets/domain"
	secretsUseCase "github.com/allisson/secrethold/internal/secrets/usecase"
	"github.com/allisson/secrethold/internal/secrets/usecase/mocks"
)

func newSecretDeps(
	t *testing.T,
	input string,
) (SecretDeps, *mocks.MockSecretUseCase[secretsUseCase.NoTx, string], *bytes.Buffer) {
	t.Helper()
	useCase := mocks.NewMockSecretUseCase[secretsUseCase.NoTx, string](t)
	out := &bytes.Buffer{}
	return SecretDeps{
		UseCase: useCase,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		IO:      IOTuple{Reader: strings.NewReader(input), Writer: out},
	}, useCase, out
}

func TestRunSetSecret(t *testing.T) {
	ctx := context.Background()

	t.Run("flags", func(t *testing.T) {
		deps, useCase, out := newSecretDeps(t, "")
		useCase.On("SetSecret", ctx, secretsDomain.ID("42"), "secret message", "123456abcdef", secretsUseCase.NoTx{}).
			Return(nil)

		err := RunSetSecret(ctx, deps, "42", "secret message", "123456abcdef", "text")
		require.NoError(t, err)
		assert.Equal(t, "Secret stored with ID: 42\n", out.String())
	})

	t.Run("prompted values and generated id", func(t *testing.T) {
		deps, useCase, out := newSecretDeps(t, "secret message\n123456abcdef\n")
		useCase.On("SetSecret", ctx, mock.AnythingOfType("domain.ID"), "secret message", "123456abcdef", secretsUseCase.NoTx{}).
			Return(nil)

		err := RunSetSecret(ctx, deps, "", "", "", "json")
		require.NoError(t, err)

		output := out.String()
		jsonStart := strings.Index(output, "{")
		require.GreaterOrEqual(t, jsonStart, 0)

		var result map[string]string
		require.NoError(t, json.Unmarshal([]byte(output[jsonStart:]), &result))
		parsed, err := uuid.Parse(result["id"])
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())
	})

	t.Run("invalid pin", func(t *testing.T) {
		deps, _, _ := newSecretDeps(t, "")

		err := RunSetSecret(ctx, deps, "42", "secret message", "bad\x00pin", "text")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("missing prompted pin", func(t *testing.T) {
		deps, _, _ := newSecretDeps(t, "secret message\n")

		err := RunSetSecret(ctx, deps, "42", "", "", "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pin is required")
	})
}

func TestRunGetSecret(t *testing.T) {
	ctx := context.Background()

	t.Run("text", func(t *testing.T) {
		deps, useCase, out := newSecretDeps(t, "")
		useCase.On("GetSecret", ctx, secretsDomain.ID("42"), "123456abcdef").Return("secret message", true, nil)

		require.NoError(t, RunGetSecret(ctx, deps, "42", "123456abcdef", "text"))
		assert.Equal(t, "secret message\n", out.String())
	})

	t.Run("json", func(t *testing.T) {
		deps, useCase, out := newSecretDeps(t, "")
		useCase.On("GetSecret", ctx, secretsDomain.ID("42"), "123456abcdef").Return("secret message", true, nil)

		require.NoError(t, RunGetSecret(ctx, deps, "42", "123456abcdef", "json"))

		var result map[string]string
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, map[string]string{"id": "42", "secret": "secret message"}, result)
	})

	t.Run("not found", func(t *testing.T) {
		deps, useCase, _ := newSecretDeps(t, "")
		useCase.On("GetSecret", ctx, secretsDomain.ID("42"), "123456abcdef").Return(nil, false, nil)

		err := RunGetSecret(ctx, deps, "42", "123456abcdef", "text")
		assert.ErrorIs(t, err, ErrSecretNotFound)
	})

	t.Run("wrong pin", func(t *testing.T) {
		deps, useCase, _ := newSecretDeps(t, "wrong\n")
		useCase.On("GetSecret", ctx, secretsDomain.ID("42"), "wrong").Return(nil, false, secretsDomain.ErrWrongPin)

		err := RunGetSecret(ctx, deps, "42", "", "text")
		assert.ErrorIs(t, err, secretsDomain.ErrWrongPin)
	})

	t.Run("invalid id", func(t *testing.T) {
		deps, _, _ := newSecretDeps(t, "")

		err := RunGetSecret(ctx, deps, " ", "123456abcdef", "text")
		assert.ErrorIs(t, err, secretsDomain.ErrInvalidID)
	})
}

func TestRunChangePin(t *testing.T) {
	ctx := context.Background()

	t.Run("prompted", func(t *testing.T) {
		deps, useCase, out := newSecretDeps(t, "123456abcdef\nnew_pin\n")
		useCase.On("ChangePin", ctx, secretsDomain.ID("42"), "123456abcdef", "new_pin", secretsUseCase.NoTx{}).
			Return(nil)

		require.NoError(t, RunChangePin(ctx, deps, "42", "", ""))
		assert.Contains(t, out.String(), "PIN changed for ID: 42")
	})

	t.Run("wrong id", func(t *testing.T) {
		deps, useCase, _ := newSecretDeps(t, "")
		useCase.On("ChangePin", ctx, secretsDomain.ID("42"), "123456abcdef", "new_pin", secretsUseCase.NoTx{}).
			Return(secretsDomain.ErrWrongID)

		err := RunChangePin(ctx, deps, "42", "123456abcdef", "new_pin")
		assert.ErrorIs(t, err, secretsDomain.ErrWrongID)
	})
}

func TestRunDeleteSecret(t *testing.T) {
	ctx := context.Background()

	deps, useCase, out := newSecretDeps(t, "")
	useCase.On("DeleteSecret", ctx, secretsDomain.ID("42"), secretsUseCase.NoTx{}).Return(nil)

	require.NoError(t, RunDeleteSecret(ctx, deps, "42"))
	assert.Equal(t, "Secret deleted: 42\n", out.String())
}
