package prometheus

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

// Client wraps the Prometheus API client
type Client struct {
	api    v1.API
	config Config
}

// Config contains Prometheus client configuration
type Config struct {
	URL     string
	Timeout time.Duration
}

// Sample is a single value returned by an instant query
type Sample struct {
	Timestamp time.Time
	Value     float64
	Labels    map[string]string
}

// QueryResult holds the samples of a query along with any server warnings
type QueryResult struct {
	Samples  []Sample
	Warnings []string
}

// New creates a new Prometheus client
func New(config Config) (*Client, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("prometheus URL is empty")
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	apiClient, err := api.NewClient(api.Config{
		Address: config.URL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client: %w", err)
	}

	return &Client{
		api:    v1.NewAPI(apiClient),
		config: config,
	}, nil
}

// QueryLatest executes an instant query at the current time
func (c *Client) QueryLatest(ctx context.Context, query string) (*QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	value, warnings, err := c.api.Query(ctx, query, time.Now())
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	samples, err := parseValue(value)
	if err != nil {
		return nil, err
	}

	return &QueryResult{Samples: samples, Warnings: warnings}, nil
}

// TestConnection tests the connection to Prometheus
func (c *Client) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	if _, _, err := c.api.Query(ctx, "up", time.Now()); err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}

	return nil
}

// parseValue converts a model.Value to samples
func parseValue(value model.Value) ([]Sample, error) {
	samples := make([]Sample, 0)

	switch v := value.(type) {
	case model.Vector:
		for _, s := range v {
			samples = append(samples, Sample{
				Timestamp: s.Timestamp.Time(),
				Value:     float64(s.Value),
				Labels:    metricToMap(s.Metric),
			})
		}

	case model.Matrix:
		for _, stream := range v {
			for _, s := range stream.Values {
				samples = append(samples, Sample{
					Timestamp: s.Timestamp.Time(),
					Value:     float64(s.Value),
					Labels:    metricToMap(stream.Metric),
				})
			}
		}

	case *model.Scalar:
		samples = append(samples, Sample{
			Timestamp: v.Timestamp.Time(),
			Value:     float64(v.Value),
			Labels:    map[string]string{},
		})

	case *model.String:
		return nil, fmt.Errorf("string result type not supported")

	default:
		return nil, fmt.Errorf("unknown result type: %T", value)
	}

	return samples, nil
}

func metricToMap(metric model.Metric) map[string]string {
	labels := make(map[string]string, len(metric))
	for k, v := range metric {
		labels[string(k)] = string(v)
	}
	return labels
}
