package secrets

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

type fakeVault struct {
	values map[string]string
	err    error
	names  []string
}

func (f *fakeVault) GetSecret(_ context.Context, name, version string, _ *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error) {
	f.names = append(f.names, name)
	if f.err != nil {
		return azsecrets.GetSecretResponse{}, f.err
	}
	value, ok := f.values[name]
	if !ok {
		return azsecrets.GetSecretResponse{}, &azcore.ResponseError{StatusCode: http.StatusNotFound, ErrorCode: "SecretNotFound"}
	}
	var resp azsecrets.GetSecretResponse
	resp.Value = &value
	return resp, nil
}

func TestKeyVault_Secret(t *testing.T) {
	vault := &fakeVault{values: map[string]string{OpenAIAPIKey: "sk-vault"}}
	kv := &KeyVault{vaultURL: "https://kv.vault.azure.net/", client: vault}

	got, err := kv.Secret(context.Background(), OpenAIAPIKey)
	if err != nil {
		t.Fatalf("Secret() error = %v", err)
	}
	if got != "sk-vault" {
		t.Errorf("Secret() = %q, want %q", got, "sk-vault")
	}

	_, err = kv.Secret(context.Background(), AzureAPIKey)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Secret(missing) error = %v, want ErrNotFound", err)
	}
}

func TestKeyVault_SecretError(t *testing.T) {
	denied := &azcore.ResponseError{StatusCode: http.StatusForbidden, ErrorCode: "Forbidden"}
	kv := &KeyVault{vaultURL: "https://kv.vault.azure.net/", client: &fakeVault{err: denied}}

	_, err := kv.Secret(context.Background(), OpenAIAPIKey)
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("Secret() error = %v, want a non-NotFound error", err)
	}
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) || respErr.StatusCode != http.StatusForbidden {
		t.Errorf("error %v does not wrap the response error", err)
	}
}

func TestNewKeyVault_InvalidConfig(t *testing.T) {
	if _, err := NewKeyVault("", "client-id"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewKeyVault(no url) error = %v, want ErrInvalidConfig", err)
	}
	if _, err := NewKeyVault("https://kv.vault.azure.net/", ""); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewKeyVault(no client id) error = %v, want ErrInvalidConfig", err)
	}
}

func TestEnv_Secret(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("CHATWEET_AZURE_API_KEY", "az-env")
	t.Setenv("ANTHROPIC_API_KEY", "")

	tests := []struct {
		name    string
		env     Env
		secret  string
		want    string
		wantErr error
	}{
		{name: "mapped name", env: Env{}, secret: OpenAIAPIKey, want: "sk-env"},
		{name: "prefixed name", env: Env{Prefix: "CHATWEET_"}, secret: AzureAPIKey, want: "az-env"},
		{name: "empty variable", env: Env{}, secret: AnthropicAPIKey, wantErr: ErrNotFound},
		{name: "unset variable", env: Env{}, secret: "nope", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.env.Secret(context.Background(), tt.secret)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Secret() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Secret() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Secret() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChain_Secret(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	vault := &KeyVault{client: &fakeVault{values: map[string]string{AzureAPIKey: "az-vault"}}}
	chain := Chain{vault, Env{}}

	got, err := chain.Secret(context.Background(), OpenAIAPIKey)
	if err != nil || got != "sk-env" {
		t.Errorf("Secret(openai) = %q, %v, want env fallback", got, err)
	}

	got, err = chain.Secret(context.Background(), AzureAPIKey)
	if err != nil || got != "az-vault" {
		t.Errorf("Secret(azure) = %q, %v, want vault value", got, err)
	}

	_, err = chain.Secret(context.Background(), "missing-key")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Secret(missing) error = %v, want ErrNotFound", err)
	}
}

func TestChain_StopsOnHardError(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	boom := errors.New("vault unreachable")
	chain := Chain{&KeyVault{client: &fakeVault{err: boom}}, Env{}}

	_, err := chain.Secret(context.Background(), OpenAIAPIKey)
	if !errors.Is(err, boom) {
		t.Errorf("Secret() error = %v, want %v", err, boom)
	}
}
