// Package braket implements the QuantumRunner and DeviceCatalog ports on
// Amazon Braket. Task results are written by Braket to S3 and read back from
// there.
package braket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	awsbraket "github.com/aws/aws-sdk-go/service/braket"
	"github.com/aws/aws-sdk-go/service/braket/braketiface"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"

	"github.com/ericfisherdev/quantumvault/internal/domain/model"
	"github.com/ericfisherdev/quantumvault/internal/domain/port/driven"
)

const (
	// SV1DeviceARN is the managed state-vector simulator.
	SV1DeviceARN = "arn:aws:braket:::device/quantum-simulator/amazon/sv1"

	// DefaultResultPrefix is the S3 key prefix tasks write results under.
	DefaultResultPrefix = "quantum-verification"

	defaultPollInterval = 2 * time.Second
)

// Compile-time interface satisfaction check.
var _ driven.QuantumRunner = (*Runner)(nil)

// Runner submits circuits as OpenQASM 3 programs and waits for their results.
type Runner struct {
	braket       braketiface.BraketAPI
	s3           s3iface.S3API
	deviceARN    string
	bucket       string
	prefix       string
	pollInterval time.Duration
	logger       *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithDeviceARN targets a device other than SV1.
func WithDeviceARN(arn string) Option {
	return func(r *Runner) {
		if arn != "" {
			r.deviceARN = arn
		}
	}
}

// WithResultPrefix overrides DefaultResultPrefix.
func WithResultPrefix(prefix string) Option {
	return func(r *Runner) {
		if p := strings.Trim(prefix, "/"); p != "" {
			r.prefix = p
		}
	}
}

// WithPollInterval sets how often task status is checked.
func WithPollInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.pollInterval = d
		}
	}
}

// NewRunner creates a Runner writing results to bucket.
func NewRunner(bk braketiface.BraketAPI, s3c s3iface.S3API, bucket string, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		braket:       bk,
		s3:           s3c,
		deviceARN:    SV1DeviceARN,
		bucket:       bucket,
		prefix:       DefaultResultPrefix,
		pollInterval: defaultPollInterval,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns "braket".
func (r *Runner) Name() string { return "braket" }

// DeviceARN returns the device tasks are submitted to.
func (r *Runner) DeviceARN() string { return r.deviceARN }

// openQASMAction builds the task action document for an OpenQASM 3 program.
func openQASMAction(circuit model.Circuit) aws.JSONValue {
	return aws.JSONValue{
		"braketSchemaHeader": map[string]any{
			"name":    "braket.ir.openqasm.program",
			"version": "1",
		},
		"source": circuit.OpenQASM(),
	}
}

// taskResult is the subset of a gate-model results.json the runner reads.
type taskResult struct {
	Measurements   [][]int `json:"measurements"`
	MeasuredQubits []int   `json:"measuredQubits"`
}

// Run submits circuit, blocks until the task reaches a terminal state or ctx
// is done, and returns the measurement counts.
func (r *Runner) Run(ctx context.Context, circuit model.Circuit, shots int) (model.MeasurementCounts, error) {
	if err := circuit.Validate(); err != nil {
		return nil, err
	}

	arn, err := r.submit(ctx, circuit, shots)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("braket task submitted", "task_arn", arn, "device", r.deviceARN, "shots", shots)

	task, err := r.wait(ctx, arn)
	if err != nil {
		return nil, err
	}

	return r.fetchResult(ctx, aws.StringValue(task.OutputS3Bucket), aws.StringValue(task.OutputS3Directory))
}

func (r *Runner) submit(ctx context.Context, circuit model.Circuit, shots int) (string, error) {
	out, err := r.braket.CreateQuantumTaskWithContext(ctx, &awsbraket.CreateQuantumTaskInput{
		Action:            openQASMAction(circuit),
		ClientToken:       aws.String(uuid.NewString()),
		DeviceArn:         aws.String(r.deviceARN),
		OutputS3Bucket:    aws.String(r.bucket),
		OutputS3KeyPrefix: aws.String(r.prefix),
		Shots:             aws.Int64(int64(shots)),
	})
	if err != nil {
		return "", fmt.Errorf("create quantum task on %s: %w", r.deviceARN, err)
	}
	return aws.StringValue(out.QuantumTaskArn), nil
}

func (r *Runner) wait(ctx context.Context, arn string) (*awsbraket.GetQuantumTaskOutput, error) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		task, err := r.braket.GetQuantumTaskWithContext(ctx, &awsbraket.GetQuantumTaskInput{
			QuantumTaskArn: aws.String(arn),
		})
		if err != nil {
			return nil, fmt.Errorf("get quantum task %s: %w", arn, err)
		}

		switch status := aws.StringValue(task.Status); status {
		case awsbraket.QuantumTaskStatusCompleted:
			return task, nil
		case awsbraket.QuantumTaskStatusFailed, awsbraket.QuantumTaskStatusCancelled:
			return nil, fmt.Errorf("quantum task %s %s: %s", arn, strings.ToLower(status), aws.StringValue(task.FailureReason))
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for quantum task %s: %w", arn, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (r *Runner) fetchResult(ctx context.Context, bucket, dir string) (model.MeasurementCounts, error) {
	key := strings.TrimSuffix(dir, "/") + "/results.json"
	out, err := r.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get task result s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read task result: %w", err)
	}

	var res taskResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode task result: %w", err)
	}

	counts := make(model.MeasurementCounts)
	for _, shot := range res.Measurements {
		var b strings.Builder
		for _, bit := range shot {
			fmt.Fprintf(&b, "%d", bit)
		}
		counts[b.String()]++
	}
	return counts, nil
}
