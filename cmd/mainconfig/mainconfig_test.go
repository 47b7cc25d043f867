package mainconfig

import (
	"context"
	"testing"

	appconfig "github.com/wolfman30/clinic-triage/internal/config"
)

func TestLoadAWSConfigStaticCredentials(t *testing.T) {
	cfg := &appconfig.Config{
		AWSRegion:          "us-west-2",
		AWSAccessKeyID:     "test-key",
		AWSSecretAccessKey: "test-secret",
	}

	awsCfg, err := LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if awsCfg.Region != "us-west-2" {
		t.Fatalf("expected region us-west-2, got %q", awsCfg.Region)
	}
	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("retrieve credentials: %v", err)
	}
	if creds.AccessKeyID != "test-key" {
		t.Fatalf("expected static access key, got %q", creds.AccessKeyID)
	}
}

func TestNewS3ClientEndpointOverride(t *testing.T) {
	cfg := &appconfig.Config{AWSRegion: "us-east-1", AWSEndpointOverride: "http://localhost:4566"}
	awsCfg, err := LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	opts := NewS3Client(awsCfg, cfg).Options()
	if opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://localhost:4566" {
		t.Fatalf("expected endpoint override, got %v", opts.BaseEndpoint)
	}
	if !opts.UsePathStyle {
		t.Fatalf("expected path-style addressing with an endpoint override")
	}
}
