package config

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

func TestGetters(t *testing.T) {
	req := require.New(t)
	cfg := map[string]string{
		"PORT":             "9090",
		"BAD_INT":          "nine",
		"AUTO_MIGRATE":     "true",
		"ACCEPTED_ORIGINS": "https://a.example, ,https://b.example",
		"EMPTY":            "",
	}

	req.Equal(9090, GetInt(cfg, "PORT", 8080))
	req.Equal(8080, GetInt(cfg, "BAD_INT", 8080))
	req.Equal(8080, GetInt(nil, "PORT", 8080))
	req.True(GetBool(cfg, "AUTO_MIGRATE", false))
	req.False(GetBool(cfg, "MISSING", false))
	req.Equal("fallback", GetString(cfg, "EMPTY", "fallback"))
	req.Equal([]string{"https://a.example", "https://b.example"}, GetList(cfg, "ACCEPTED_ORIGINS"))
	req.Nil(GetList(cfg, "MISSING"))
}

type fakeSSM struct {
	pages [][]types.Parameter
	calls int
	err   error
}

func (f *fakeSSM) GetParametersByPath(_ context.Context, _ *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
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

func TestOverlayParameters(t *testing.T) {
	t.Run("should fill missing keys from every page", func(t *testing.T) {
		req := require.New(t)
		client := &fakeSSM{pages: [][]types.Parameter{
			{{Name: aws.String("/portfolio/prod/JWT_SECRET"), Value: aws.String("s3cret")}},
			{{Name: aws.String("/portfolio/prod/DATABASE_URL"), Value: aws.String("postgres://ssm")}},
		}}
		cfg := map[string]string{"DATABASE_URL": "postgres://env"}

		err := overlayParameters(context.Background(), client, "/portfolio/prod", cfg)

		req.NoError(err)
		req.Equal(2, client.calls)
		req.Equal("s3cret", cfg["JWT_SECRET"])
		req.Equal("postgres://env", cfg["DATABASE_URL"])
	})

	t.Run("should surface ssm failures", func(t *testing.T) {
		req := require.New(t)
		client := &fakeSSM{err: errors.New("access denied")}

		err := overlayParameters(context.Background(), client, "/portfolio/prod", map[string]string{})

		req.ErrorContains(err, "access denied")
	})
}
