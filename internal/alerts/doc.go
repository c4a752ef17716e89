// Package alerts publishes notifications for days that breach or approach
// the control limits.
//
// Alerts are derived from a run report with FromReport and handed to a
// Dispatcher, which forwards them to every configured Publisher. Two
// publishers exist: a Kafka topic writer and a generic JSON webhook.
// Delivery failures are reported per channel and never change the outcome of
// the analysis.
package alerts
