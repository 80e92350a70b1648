/*
Package metrics provides Prometheus metrics for the Leonardo client,
registered via promauto under a shared namespace.

# Core types

  - Collector: holds the counter and histogram vectors and satisfies the
    client's MetricsRecorder interface.

# Metrics

  - API calls: total count by operation and status class (2xx/4xx/5xx),
    duration histogram by operation. Image downloads report through the
    same pair under the download_image operation.
  - Workflows: total count and duration histogram by outcome
    (success, failed, timeout, submit_failed), plus a counter of images
    produced by completed workflows.
*/
package metrics
