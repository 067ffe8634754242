package metrics

import coremetrics "github.com/kilianp07/metromatic/core/metrics"

// init registers the network-backed and logging backends.
func init() {
	_ = coremetrics.RegisterBackend("statsd", NewStatsdBackend)
	_ = coremetrics.RegisterBackend("cloudwatch", NewCloudWatchBackend)
	_ = coremetrics.RegisterBackend("prometheus", NewPromSink)
	_ = coremetrics.RegisterBackend("influx", NewInfluxBackend)
	_ = coremetrics.RegisterBackend("log", NewLogBackend)
}
