package googlesheets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ServiceAccountKey is the service account JSON key file issued by Google Cloud.
type ServiceAccountKey struct {
	Type                    string `json:"type"`
	ProjectID               string `json:"project_id"`
	PrivateKeyID            string `json:"private_key_id"`
	PrivateKey              string `json:"private_key"`
	ClientEmail             string `json:"client_email"`
	ClientID                string `json:"client_id"`
	AuthURI                 string `json:"auth_uri"`
	TokenURI                string `json:"token_uri"`
	AuthProviderX509CertURL string `json:"auth_provider_x509_cert_url"`
	ClientX509CertURL       string `json:"client_x509_cert_url"`
}

// NewWithJSONKeyFile authenticates with a JSON key file. An empty path falls
// back to GOOGLE_APPLICATION_CREDENTIALS. Extra options, such as an endpoint,
// are passed to the Sheets client after the token source.
func NewWithJSONKeyFile(ctx context.Context, config Config, jsonPath string, opts ...option.ClientOption) (*SheetsTransport, error) {
	if jsonPath == "" {
		jsonPath = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
		if jsonPath == "" {
			return nil, fmt.Errorf("no JSON key file path provided and GOOGLE_APPLICATION_CREDENTIALS not set")
		}
	}
	ts, err := createTokenSourceFromFile(ctx, jsonPath)
	if err != nil {
		return nil, err
	}
	return newWithTokenSource(ctx, config, ts, opts)
}

// NewWithJSONKeyData authenticates with the contents of a JSON key file.
func NewWithJSONKeyData(ctx context.Context, config Config, jsonData []byte, opts ...option.ClientOption) (*SheetsTransport, error) {
	ts, err := createTokenSourceFromJSON(ctx, jsonData)
	if err != nil {
		return nil, err
	}
	return newWithTokenSource(ctx, config, ts, opts)
}

// NewWithServiceAccountKey authenticates as a service account given its
// email and PEM private key. Invalid keys surface on the first API call.
func NewWithServiceAccountKey(ctx context.Context, config Config, email string, privateKey string, opts ...option.ClientOption) (*SheetsTransport, error) {
	ts, err := createTokenSourceFromKey(ctx, &ServiceAccountKey{ClientEmail: email, PrivateKey: privateKey})
	if err != nil {
		return nil, err
	}
	return newWithTokenSource(ctx, config, ts, opts)
}

// NewWithDefaultCredentials authenticates with Application Default Credentials:
// GOOGLE_APPLICATION_CREDENTIALS, gcloud credentials, or the GCE metadata server.
func NewWithDefaultCredentials(ctx context.Context, config Config, opts ...option.ClientOption) (*SheetsTransport, error) {
	ts, err := google.DefaultTokenSource(ctx, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to get default token source: %w", err)
	}
	return newWithTokenSource(ctx, config, ts, opts)
}

func newWithTokenSource(ctx context.Context, config Config, ts oauth2.TokenSource, opts []option.ClientOption) (*SheetsTransport, error) {
	return NewSheetsTransport(ctx, config, append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)...)
}

// ParseServiceAccountJSON parses and checks a service account key.
func ParseServiceAccountJSON(jsonData []byte) (*ServiceAccountKey, error) {
	var key ServiceAccountKey
	if err := json.Unmarshal(jsonData, &key); err != nil {
		return nil, fmt.Errorf("failed to parse service account JSON: %w", err)
	}
	if key.Type != "service_account" {
		return nil, fmt.Errorf("invalid key type: %s (expected: service_account)", key.Type)
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, fmt.Errorf("missing required fields in service account key")
	}
	return &key, nil
}

// CreateTokenSource builds a token source from a key file path (string),
// key file contents ([]byte) or a parsed *ServiceAccountKey.
func CreateTokenSource(ctx context.Context, credentials any) (oauth2.TokenSource, error) {
	switch cred := credentials.(type) {
	case string:
		return createTokenSourceFromFile(ctx, cred)
	case []byte:
		return createTokenSourceFromJSON(ctx, cred)
	case *ServiceAccountKey:
		return createTokenSourceFromKey(ctx, cred)
	default:
		return nil, fmt.Errorf("unsupported credential type: %T", credentials)
	}
}

func createTokenSourceFromFile(ctx context.Context, path string) (oauth2.TokenSource, error) {
	jsonData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return createTokenSourceFromJSON(ctx, jsonData)
}

func createTokenSourceFromJSON(ctx context.Context, jsonData []byte) (oauth2.TokenSource, error) {
	creds, err := google.CredentialsFromJSON(ctx, jsonData, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return creds.TokenSource, nil
}

// createTokenSourceFromKey exchanges a signed JWT at the key's token URI,
// or at Google's when the key has none.
func createTokenSourceFromKey(ctx context.Context, key *ServiceAccountKey) (oauth2.TokenSource, error) {
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, fmt.Errorf("service account email and private key are required")
	}
	tokenURL := key.TokenURI
	if tokenURL == "" {
		tokenURL = google.JWTTokenURL
	}
	cfg := &jwt.Config{
		Email:        key.ClientEmail,
		PrivateKey:   []byte(key.PrivateKey),
		PrivateKeyID: key.PrivateKeyID,
		Scopes:       []string{sheets.SpreadsheetsScope},
		TokenURL:     tokenURL,
	}
	return cfg.TokenSource(ctx), nil
}
