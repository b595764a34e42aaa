package publishers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/damdeez/newsie/internal/domain"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: topic
    type: sns
    sns:
      topic_arn: " arn:aws:sns:us-east-1:123456789012:headlines "
      region: us-east-1
  - id: gcp
    type: pubsub
    enabled: true
    pubsub:
      project_id: newsie
      topic: headlines
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 2 || enabled[0].ID != "topic" || enabled[1].ID != "gcp" {
		t.Fatalf("unexpected enabled publishers %#v", enabled)
	}
	if cfg, _ := reg.ByID("topic"); cfg.SNS.TopicARN != "arn:aws:sns:us-east-1:123456789012:headlines" {
		t.Fatalf("topic arn not trimmed: %q", cfg.SNS.TopicARN)
	}
	if cfg, _ := reg.ByID("http1"); cfg.HTTP.Method != "POST" || cfg.HTTP.TimeoutSeconds != 5 {
		t.Fatalf("http defaults not applied: %#v", cfg.HTTP)
	}
}

func TestValidatePublisherConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  PublisherConfig
	}{
		{name: "missing http", cfg: PublisherConfig{ID: "h1", Type: TypeHTTP}},
		{name: "sqs without region", cfg: PublisherConfig{ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "https://sqs"}}},
		{name: "sns without arn", cfg: PublisherConfig{ID: "s", Type: TypeSNS, SNS: &SNSPublisherConfig{Region: "us-east-1"}}},
		{name: "pubsub without topic", cfg: PublisherConfig{ID: "p", Type: TypePubSub, PubSub: &PubSubPublisherConfig{ProjectID: "x"}}},
		{name: "half credentials", cfg: PublisherConfig{ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{
			QueueURL: "https://sqs", Region: "us-east-1", Credentials: AWSCredentials{AccessKeyID: "AKIA"},
		}}},
		{name: "unknown type", cfg: PublisherConfig{ID: "k", Type: "kafka"}},
	}
	for _, tc := range cases {
		if err := validatePublisherConfig(tc.cfg); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}

	ok := PublisherConfig{ID: "q", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "https://sqs", Region: "us-east-1"}}
	if err := validatePublisherConfig(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEventAttributesSkipEmpty(t *testing.T) {
	evt := NewEvent("headlines:us", "us", "", domain.Article{ID: "a1"}, time.Now())
	attrs := evt.Attributes()
	if len(attrs) != 3 || attrs["article_id"] != "a1" || attrs["country"] != "us" {
		t.Fatalf("unexpected attributes %#v", attrs)
	}
	if _, ok := attrs["provider"]; ok {
		t.Fatalf("empty provider should be omitted")
	}
	if evt.CollectedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp")
	}
}
