package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/allisson/secrethold/internal/crypto/domain"
	cryptoService "github.com/allisson/secrethold/internal/crypto/service"
)

// RunCreateMasterKey generates a random 32-byte master key and prints it as MASTER_KEY.
//
// When kmsKeyURI is set the key is wrapped with that KMS key first and the output also
// carries KMS_PROVIDER and KMS_KEY_URI. For local development use
// kmsProvider="localsecrets" with kmsKeyURI="base64key://...". Key material is zeroed
// once encoded.
func RunCreateMasterKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	kmsProvider string,
	kmsKeyURI string,
) error {
	if (kmsProvider == "") != (kmsKeyURI == "") {
		return fmt.Errorf("--kms-provider and --kms-key-uri are required together")
	}

	masterKey := make([]byte, cryptoDomain.KeySize)
	defer cryptoDomain.Zero(masterKey)
	if _, err := rand.Read(masterKey); err != nil {
		return fmt.Errorf("failed to generate master key: %w", err)
	}

	if kmsKeyURI == "" {
		logger.Warn("master key generated without KMS, store it in a secrets manager")

		_, _ = fmt.Fprintln(writer, "# Master Key Configuration")
		_, _ = fmt.Fprintln(writer, "# Copy this environment variable to your .env file or secrets manager")
		_, _ = fmt.Fprintln(writer)
		_, _ = fmt.Fprintf(writer, "MASTER_KEY=\"%s\"\n", base64.StdEncoding.EncodeToString(masterKey))
		return nil
	}

	logger.Info("wrapping master key with KMS", slog.String("kms_provider", kmsProvider))

	ciphertext, err := kmsService.WrapMasterKey(ctx, kmsKeyURI, masterKey)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(writer, "# Master Key Configuration (KMS Mode)")
	_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintf(writer, "KMS_PROVIDER=\"%s\"\n", kmsProvider)
	_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	_, _ = fmt.Fprintf(writer, "MASTER_KEY=\"%s\"\n", base64.StdEncoding.EncodeToString(ciphertext))

	return nil
}
