package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load(map[string]string{})

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 180*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.AcceptedOrigins)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, 30*24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "session", cfg.Session.CookieName)
	assert.Equal(t, 10, cfg.Session.BcryptCost)
	assert.Empty(t, cfg.Database.DSN)
}

func TestLoadOverrides(t *testing.T) {
	cfg := Load(map[string]string{
		"PORT":                  "9000",
		"ACCEPTED_ORIGINS":      "https://a.dev, ,https://b.dev",
		"DATABASE_URL":          "postgres://u:p@db/showcase",
		"DATABASE_REPLICA_URLS": "postgres://r1/showcase,postgres://r2/showcase",
		"AUTO_MIGRATE":          "false",
		"COOKIE_SECURE":         "true",
		"SESSION_TTL_HOURS":     "1",
		"MAX_UPLOAD_MB":         "2",
		"DB_MAX_OPEN_CONNS":     "not-a-number",
	})

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, []string{"https://a.dev", "https://b.dev"}, cfg.AcceptedOrigins)
	assert.Equal(t, "postgres://u:p@db/showcase", cfg.Database.DSN)
	assert.Len(t, cfg.Database.ReplicaDSNs, 2)
	assert.False(t, cfg.AutoMigrate)
	assert.True(t, cfg.Session.CookieSecure)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, int64(2<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns, "unparsable ints fall back to the default")
}

func TestLoadBuildsKeywordDSN(t *testing.T) {
	cfg := Load(map[string]string{
		"DB_HOST":                    "db.internal",
		"DB_USER":                    "app",
		"DB_PASSWORD":                "pw",
		"DB_NAME":                    "showcase",
		"DB_SSLMODE":                 "disable",
		"DB_CONNECT_TIMEOUT_SECONDS": "3",
	})

	assert.Equal(t,
		"host=db.internal user=app password=pw dbname=showcase port=5432 sslmode=disable connect_timeout=3",
		cfg.Database.DSN)
}

func TestValidate(t *testing.T) {
	cfg := Load(map[string]string{})
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")

	cfg = Load(map[string]string{
		"DATABASE_URL": "postgres://localhost/showcase",
		"JWT_SECRET":   "short",
	})
	assert.ErrorContains(t, cfg.Validate(), "at least 32 bytes")

	cfg = Load(map[string]string{
		"DATABASE_URL": "postgres://localhost/showcase",
		"JWT_SECRET":   "0123456789abcdef0123456789abcdef",
	})
	assert.NoError(t, cfg.Validate())
}

type fakeSSM struct {
	pages [][]types.Parameter
	calls int
	err   error
}

func (f *fakeSSM) GetParametersByPath(_ context.Context, in *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := &ssm.GetParametersByPathOutput{Parameters: f.pages[f.calls]}
	f.calls++
	if f.calls < len(f.pages) {
		out.NextToken = aws.String("next")
	}
	return out, nil
}

func TestOverlaySSM(t *testing.T) {
	client := &fakeSSM{pages: [][]types.Parameter{
		{
			{Name: aws.String("/showcase/prod/jwt-secret"), Value: aws.String("from-ssm")},
			{Name: aws.String("/showcase/prod/port"), Value: aws.String("9999")},
		},
		{
			{Name: aws.String("/showcase/prod/db/db-password"), Value: aws.String("hunter2")},
		},
	}}
	env := map[string]string{"PORT": "8081"}

	applied, err := OverlaySSM(context.Background(), client, "/showcase/prod", env)
	require.NoError(t, err)

	assert.Equal(t, 2, applied)
	assert.Equal(t, 2, client.calls)
	assert.Equal(t, "from-ssm", env["JWT_SECRET"])
	assert.Equal(t, "hunter2", env["DB_PASSWORD"])
	assert.Equal(t, "8081", env["PORT"], "environment wins over ssm")
}

func TestOverlaySSMError(t *testing.T) {
	client := &fakeSSM{err: errors.New("access denied")}

	_, err := OverlaySSM(context.Background(), client, "/showcase/prod", map[string]string{})
	assert.ErrorContains(t, err, "access denied")
}
