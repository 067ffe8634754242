package metrics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/kilianp07/metromatic/core/factory"
	coremetrics "github.com/kilianp07/metromatic/core/metrics"
)

// CloudWatchConfig configures a cloudwatch backend.
type CloudWatchConfig struct {
	Region          string            `json:"region"`
	GroupName       string            `json:"groupName"`
	AccessKeyID     string            `json:"accessKeyId"`
	SecretAccessKey string            `json:"secretAccessKey"`
	Dimensions      map[string]string `json:"dimensions"`
	// Endpoint overrides the service endpoint, e.g. for localstack.
	Endpoint string `json:"endpoint"`
}

type putMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

var newCloudWatchClient = func(c CloudWatchConfig) putMetricDataAPI {
	opts := cloudwatch.Options{
		Region:      c.Region,
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, "")),
	}
	if c.Endpoint != "" {
		opts.BaseEndpoint = aws.String(c.Endpoint)
	}
	return cloudwatch.New(opts)
}

// cwChannel is one named metric stream within the namespace.
type cwChannel struct {
	namespace  string
	unit       types.StandardUnit
	dimensions []types.Dimension
}

// CloudWatchBackend writes samples to Amazon CloudWatch. Timing samples go to
// the count channel, gauge samples to the string channel. Every Send is one
// synchronous PutMetricData call.
type CloudWatchBackend struct {
	api     putMetricDataAPI
	count   cwChannel
	str     cwChannel
	timeout time.Duration
	now     func() time.Time
}

// NewCloudWatchBackend decodes conf and builds both metric channels.
func NewCloudWatchBackend(conf map[string]any) (coremetrics.Backend, error) {
	var c CloudWatchConfig
	if err := factory.Decode(conf, &c); err != nil {
		return nil, fmt.Errorf("%w: cloudwatch: %v", coremetrics.ErrConfig, err)
	}
	return NewCloudWatchBackendFromConfig(c)
}

// NewCloudWatchBackendFromConfig creates a cloudwatch backend from a typed config.
func NewCloudWatchBackendFromConfig(c CloudWatchConfig) (*CloudWatchBackend, error) {
	if c.Region == "" || c.GroupName == "" || c.AccessKeyID == "" || c.SecretAccessKey == "" {
		return nil, fmt.Errorf("%w: cloudwatch backend requires region, groupName, accessKeyId and secretAccessKey", coremetrics.ErrConfig)
	}
	dims := dimensionList(c.Dimensions)
	return &CloudWatchBackend{
		api:     newCloudWatchClient(c),
		count:   cwChannel{namespace: c.GroupName, unit: types.StandardUnitMilliseconds, dimensions: dims},
		str:     cwChannel{namespace: c.GroupName, unit: types.StandardUnitNone, dimensions: dims},
		timeout: 5 * time.Second,
		now:     time.Now,
	}, nil
}

// Send routes timing samples to the count channel and gauge samples to the
// string channel. Structured gauge payloads are flattened into one datum per
// numeric field, named "<name>.<field>".
func (b *CloudWatchBackend) Send(kind coremetrics.Kind, name string, value any) error {
	switch kind {
	case coremetrics.Timing:
		ms, ok := toFloat64(value)
		if !ok {
			return fmt.Errorf("%w: cloudwatch timing %q needs a duration, got %T", coremetrics.ErrUnsupportedOperation, name, value)
		}
		return b.put(b.count, []field{{Key: name, Value: ms}})
	case coremetrics.Gauge:
		if f, ok := toFloat64(value); ok {
			return b.put(b.str, []field{{Key: name, Value: f}})
		}
		if _, ok := value.(map[string]any); !ok {
			return fmt.Errorf("%w: cloudwatch gauge %q needs a number or a map, got %T", coremetrics.ErrUnsupportedOperation, name, value)
		}
		fs := numericFields(value)
		for i := range fs {
			fs[i].Key = name + "." + fs[i].Key
		}
		return b.put(b.str, fs)
	default:
		return fmt.Errorf("%w: cloudwatch backend does not support %q", coremetrics.ErrUnsupportedOperation, kind)
	}
}

func (b *CloudWatchBackend) put(ch cwChannel, fs []field) error {
	if len(fs) == 0 {
		return nil
	}
	now := b.now()
	data := make([]types.MetricDatum, 0, len(fs))
	for _, f := range fs {
		data = append(data, types.MetricDatum{
			MetricName: aws.String(f.Key),
			Value:      aws.Float64(f.Value),
			Unit:       ch.unit,
			Dimensions: ch.dimensions,
			Timestamp:  aws.Time(now),
		})
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	_, err := b.api.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(ch.namespace),
		MetricData: data,
	})
	return err
}

// dimensionList converts a dimension map to a list ordered by name.
func dimensionList(dims map[string]string) []types.Dimension {
	names := make([]string, 0, len(dims))
	for k := range dims {
		names = append(names, k)
	}
	sort.Strings(names)
	out := make([]types.Dimension, 0, len(names))
	for _, k := range names {
		out = append(out, types.Dimension{Name: aws.String(k), Value: aws.String(dims[k])})
	}
	return out
}
