package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Frame Metrics
var (
	// FramesReceived tracks /update payloads by outcome (accepted, invalid, failed)
	FramesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "displayproxy_frames_received_total",
			Help: "Total frames received over HTTP by result",
		},
		[]string{"result"},
	)

	// PanelRedraws tracks frames pushed to the e-paper panel
	PanelRedraws = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "displayproxy_panel_redraws_total",
			Help: "Total e-paper panel redraws",
		},
	)

	// PanelRedrawsSkipped tracks frames dropped by the diff gate
	PanelRedrawsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "displayproxy_panel_redraws_skipped_total",
			Help: "Total frames not drawn because they did not differ enough from the panel",
		},
	)

	// FrameDiffPercent tracks the pixel difference of incoming frames against the panel
	FrameDiffPercent = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "displayproxy_frame_diff_percent",
			Help:    "Percentage of pixels that differ from the frame currently on the panel",
			Buckets: []float64{0, 0.1, 0.5, 1, 2, 5, 10, 25, 50, 100},
		},
	)

	// RenderLoopErrors tracks recovered failures inside a render loop iteration
	RenderLoopErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "displayproxy_render_loop_errors_total",
			Help: "Total render loop iterations that failed and were skipped",
		},
	)
)

// Input Metrics
var (
	// ButtonPresses tracks recorded presses by label
	ButtonPresses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "displayproxy_button_presses_total",
			Help: "Total recorded button presses by label",
		},
		[]string{"label"},
	)
)

// HTTP and Event Metrics
var (
	// HTTPRequests tracks handled requests by method, route and status code
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "displayproxy_http_requests_total",
			Help: "Total HTTP requests by method, path and status code",
		},
		[]string{"method", "path", "code"},
	)

	// EventClients tracks connected press-event websocket clients
	EventClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "displayproxy_events_clients",
			Help: "Number of connected press-event websocket clients",
		},
	)

	// EventsDropped tracks press events not delivered to a slow websocket client
	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "displayproxy_events_dropped_total",
			Help: "Total press events dropped because a client buffer was full",
		},
	)

	// MQTTPublishErrors tracks failed MQTT press publications
	MQTTPublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "displayproxy_mqtt_publish_errors_total",
			Help: "Total press events that failed to publish to MQTT",
		},
	)
)
