// Command qdevices lists the Amazon Braket devices visible to the current AWS
// credentials and can run the Bell circuit on one or every online device.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	awsbraket "github.com/aws/aws-sdk-go/service/braket"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/spf13/pflag"

	braketadapter "github.com/ericfisherdev/quantumvault/internal/adapter/driven/braket"
	"github.com/ericfisherdev/quantumvault/internal/adapter/driven/quantum"
	"github.com/ericfisherdev/quantumvault/internal/domain/model"
	"github.com/ericfisherdev/quantumvault/internal/domain/port/driven"
)

type options struct {
	all    bool
	test   bool
	device string
	shots  int
	bucket string
	region string
	bb84   int
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		slog.Error("qdevices failed", "error", err)
		os.Exit(1)
	}
}

// parseFlags parses args and reports any error, with usage, on errOut.
func parseFlags(args []string, errOut io.Writer) (*options, error) {
	opts := &options{}
	flags := pflag.NewFlagSet("qdevices", pflag.ContinueOnError)
	flags.SetOutput(errOut)
	flags.BoolVarP(&opts.all, "all", "a", false, "Optional, list devices in every status, not only ONLINE")
	flags.BoolVarP(&opts.test, "test", "t", false, "Optional, run the Bell circuit on every online device")
	flags.StringVarP(&opts.device, "device", "d", "", "Optional, run the Bell circuit on this device ARN only (implies --test)")
	flags.IntVar(&opts.shots, "shots", 2, "Optional, shots per test run")
	flags.StringVar(&opts.bucket, "bucket", os.Getenv("QUANTUMVAULT_BRAKET_BUCKET"), "S3 bucket for task results, required with --test")
	flags.StringVar(&opts.region, "region", "us-east-1", "Optional, AWS region for listing and for region-less devices")
	flags.IntVar(&opts.bb84, "bb84", 0, "Optional, simulate a BB84 exchange over N qubits locally and exit")

	flags.Usage = func() {
		fmt.Fprintf(errOut, "Usage of qdevices:\n")
		flags.PrintDefaults()
	}

	// pflag reports its own parse errors on errOut.
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	fail := func(err error) (*options, error) {
		fmt.Fprintln(errOut, err)
		flags.Usage()
		return nil, err
	}
	if opts.device != "" {
		opts.test = true
	}
	if opts.shots < 1 {
		return fail(fmt.Errorf("--shots must be positive, got %d", opts.shots))
	}
	if opts.test && opts.bucket == "" {
		return fail(errors.New("--bucket is required with --test"))
	}
	return opts, nil
}

func run(ctx context.Context, opts *options, out io.Writer) error {
	if opts.bb84 > 0 {
		return printBB84(out, opts.bb84, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	}

	sess, err := session.NewSession(&aws.Config{Region: aws.String(opts.region)})
	if err != nil {
		return fmt.Errorf("create aws session: %w", err)
	}

	devices, err := listDevices(ctx, out, braketadapter.NewCatalog(awsbraket.New(sess)), opts.all)
	if err != nil {
		return err
	}
	if !opts.test {
		return nil
	}

	targets, err := selectTargets(devices, opts.device)
	if err != nil {
		return err
	}

	prefix := resultPrefix(time.Now())
	fmt.Fprintf(out, "\nWriting results to s3://%s/%s\n", opts.bucket, prefix)

	// Tasks must be submitted in the device's own region.
	sessions := map[string]*session.Session{opts.region: sess}
	newRunner := func(d model.Device) driven.QuantumRunner {
		region := d.Region()
		if region == "" {
			region = opts.region
		}
		rs, ok := sessions[region]
		if !ok {
			rs = sess.Copy(&aws.Config{Region: aws.String(region)})
			sessions[region] = rs
		}
		return braketadapter.NewRunner(awsbraket.New(rs), s3.New(rs), opts.bucket, slog.Default(),
			braketadapter.WithDeviceARN(d.ARN),
			braketadapter.WithResultPrefix(prefix),
		)
	}
	runDeviceTests(ctx, out, targets, newRunner, opts.shots)
	return nil
}

// resultPrefix names the S3 folder for one qdevices run.
func resultPrefix(now time.Time) string {
	return "test-" + now.UTC().Format("20060102-150405")
}

// listDevices prints the device table and returns the devices it printed.
func listDevices(ctx context.Context, out io.Writer, catalog driven.DeviceCatalog, all bool) ([]model.Device, error) {
	devices, err := catalog.ListDevices(ctx)
	if err != nil {
		return nil, err
	}

	shown := make([]model.Device, 0, len(devices))
	for _, d := range devices {
		if all || d.IsOnline() {
			shown = append(shown, d)
		}
	}

	if len(shown) == 0 {
		fmt.Fprintln(out, "No devices found.")
		return shown, nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPROVIDER\tTYPE\tSTATUS\tREGION\tARN")
	for _, d := range shown {
		region := d.Region()
		if region == "" {
			region = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", d.Name, d.Provider, d.Type, d.Status, region, d.ARN)
	}
	return shown, tw.Flush()
}

// selectTargets returns every online device, or only the device with the
// given ARN, which must be listed and online.
func selectTargets(devices []model.Device, arn string) ([]model.Device, error) {
	if arn == "" {
		var online []model.Device
		for _, d := range devices {
			if d.IsOnline() {
				online = append(online, d)
			}
		}
		return online, nil
	}

	for _, d := range devices {
		if d.ARN != arn {
			continue
		}
		if !d.IsOnline() {
			return nil, fmt.Errorf("device %s is %s", arn, d.Status)
		}
		return []model.Device{d}, nil
	}
	return nil, fmt.Errorf("device %s not found (use --all to include offline devices)", arn)
}

// runDeviceTests runs the Bell circuit on each target. Failures are reported
// per device and do not stop the remaining runs.
func runDeviceTests(ctx context.Context, out io.Writer, targets []model.Device, newRunner func(model.Device) driven.QuantumRunner, shots int) {
	for _, d := range targets {
		fmt.Fprintf(out, "Testing %s (%d shots)... ", d.Name, shots)
		counts, err := newRunner(d).Run(ctx, model.BellCircuit(), shots)
		if err != nil {
			fmt.Fprintf(out, "failed: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "%s\n", counts)
	}
}

func printBB84(out io.Writer, n int, rng *rand.Rand) error {
	res, err := quantum.SimulateBB84(n, rng)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "qubits:     %d\n", n)
	fmt.Fprintf(out, "sifted key: %s (%d bits)\n", bits(res.SiftedKey), len(res.SiftedKey))
	return nil
}

func bits(key []uint8) string {
	var b strings.Builder
	for _, k := range key {
		b.WriteByte('0' + k)
	}
	return b.String()
}
