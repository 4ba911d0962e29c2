// Package secrets reads provider API keys from Azure Key Vault or, for local
// runs, from environment variables.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

// Secret names used by the services.
const (
	OpenAIAPIKey    = "openai-api-key"
	AzureAPIKey     = "azure-api-key"
	AnthropicAPIKey = "anthropic-api-key"
)

// Sentinel errors for secret retrieval.
var (
	// ErrNotFound indicates the secret does not exist in the source.
	ErrNotFound = errors.New("secret not found")

	// ErrInvalidConfig indicates invalid Key Vault configuration.
	ErrInvalidConfig = errors.New("invalid secrets configuration")
)

// Source returns secret values by name.
type Source interface {
	Secret(ctx context.Context, name string) (string, error)
}

// secretGetter is the subset of *azsecrets.Client used by KeyVault.
type secretGetter interface {
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

// KeyVault reads the latest version of secrets from an Azure Key Vault,
// authenticating as a user-assigned managed identity.
type KeyVault struct {
	vaultURL string
	client   secretGetter
}

// NewKeyVault creates a KeyVault for vaultURL using the managed identity with
// client ID managedIdentityClientID.
func NewKeyVault(vaultURL, managedIdentityClientID string) (*KeyVault, error) {
	if vaultURL == "" {
		return nil, fmt.Errorf("%w: vault URL is required", ErrInvalidConfig)
	}
	if managedIdentityClientID == "" {
		return nil, fmt.Errorf("%w: managed identity client ID is required", ErrInvalidConfig)
	}

	cred, err := azidentity.NewManagedIdentityCredential(&azidentity.ManagedIdentityCredentialOptions{
		ID: azidentity.ClientID(managedIdentityClientID),
	})
	if err != nil {
		return nil, fmt.Errorf("create managed identity credential: %w", err)
	}

	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create key vault client: %w", err)
	}

	return &KeyVault{vaultURL: vaultURL, client: client}, nil
}

// Secret returns the current value of the secret called name.
func (kv *KeyVault) Secret(ctx context.Context, name string) (string, error) {
	resp, err := kv.client.GetSecret(ctx, name, "", nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("%w: %s in %s", ErrNotFound, name, kv.vaultURL)
		}
		return "", fmt.Errorf("get secret %s from %s: %w", name, kv.vaultURL, err)
	}

	if resp.Value == nil {
		return "", fmt.Errorf("%w: %s in %s has no value", ErrNotFound, name, kv.vaultURL)
	}
	return *resp.Value, nil
}

// Env reads secrets from environment variables. A secret name maps to the
// upper-cased name with dashes replaced by underscores, so openai-api-key is
// read from OPENAI_API_KEY.
type Env struct {
	// Prefix is prepended to every variable name.
	Prefix string
}

// Secret returns the value of the environment variable for name. Unset and
// empty variables are reported as ErrNotFound.
func (e Env) Secret(_ context.Context, name string) (string, error) {
	key := e.VarName(name)
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s (set %s)", ErrNotFound, name, key)
	}
	return value, nil
}

// VarName returns the environment variable read for name.
func (e Env) VarName(name string) string {
	return e.Prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// Chain tries each source in order and returns the first value found. Errors
// other than ErrNotFound stop the search.
type Chain []Source

// Secret returns the first value any source in the chain holds for name.
func (c Chain) Secret(ctx context.Context, name string) (string, error) {
	for _, src := range c {
		value, err := src.Secret(ctx, name)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}
